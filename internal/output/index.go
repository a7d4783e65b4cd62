package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/recomment/internal/comments"
	"github.com/temirov/recomment/internal/types"
)

const (
	indexKeyFormat      = "File: %s\n"
	indexElementFormat  = "  %s (%d)\n"
	indexCommentFormat  = "    [%s] %s\n"
	indexNoAnchorLabel  = "-"
	indexSeparatorLine  = "----------------------------------------"
	xmlIndexRootElement = "index"
)

// CommentEntry is one anchored comment of an element.
type CommentEntry struct {
	Anchor string `json:"anchor,omitempty" xml:"anchor,attr,omitempty"`
	Text   string `json:"text" xml:",chardata"`
}

// ElementEntry lists the comments recorded for one element.
type ElementEntry struct {
	Name     string         `json:"name" xml:"name,attr"`
	Comments []CommentEntry `json:"comments" xml:"comment"`
}

// IndexEntry is the element index of one file or namespace.
type IndexEntry struct {
	Key      string         `json:"key" xml:"key,attr"`
	Elements []ElementEntry `json:"elements" xml:"element"`
}

// IndexEntries flattens index into entries sorted by key, elements in first-seen order.
func IndexEntries(index comments.Index) []IndexEntry {
	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	entries := make([]IndexEntry, 0, len(keys))
	for _, key := range keys {
		elementIndex := index[comments.IndexKey(key)]
		entry := IndexEntry{Key: key}
		for _, elementName := range elementIndex.Names() {
			elementComments := elementIndex.Comments(elementName)
			if len(elementComments) == 0 {
				continue
			}
			element := ElementEntry{Name: elementName, Comments: make([]CommentEntry, 0, len(elementComments))}
			for _, comment := range elementComments {
				element.Comments = append(element.Comments, CommentEntry{Anchor: comment.Anchor, Text: comment.Text})
			}
			entry.Elements = append(entry.Elements, element)
		}
		entries = append(entries, entry)
	}
	return entries
}

// RenderIndex writes the element index in the requested format.
func RenderIndex(writer io.Writer, index comments.Index, format string) error {
	entries := IndexEntries(index)
	switch format {
	case types.FormatRaw:
		return renderIndexRaw(writer, entries)
	case types.FormatJSON:
		encoded, jsonEncodeError := json.MarshalIndent(entries, indentPrefix, indentSpacer)
		if jsonEncodeError != nil {
			return jsonEncodeError
		}
		_, writeError := fmt.Fprintln(writer, string(encoded))
		return writeError
	case types.FormatXML:
		wrapper := struct {
			XMLName xml.Name     `xml:""`
			Entries []IndexEntry `xml:"file"`
		}{
			XMLName: xml.Name{Local: xmlIndexRootElement},
			Entries: entries,
		}
		encoded, xmlMarshalError := xml.MarshalIndent(wrapper, indentPrefix, indentSpacer)
		if xmlMarshalError != nil {
			return xmlMarshalError
		}
		_, writeError := fmt.Fprintln(writer, xmlHeader+string(encoded))
		return writeError
	default:
		return fmt.Errorf(unsupportedFormatMessage, format)
	}
}

func renderIndexRaw(writer io.Writer, entries []IndexEntry) error {
	keyColor := color.New(color.Bold)
	for entryIndex, entry := range entries {
		if entryIndex > 0 {
			if _, writeError := fmt.Fprintln(writer, indexSeparatorLine); writeError != nil {
				return writeError
			}
		}
		if _, writeError := fmt.Fprint(writer, keyColor.Sprintf(indexKeyFormat, entry.Key)); writeError != nil {
			return writeError
		}
		for _, element := range entry.Elements {
			if _, writeError := fmt.Fprintf(writer, indexElementFormat, element.Name, len(element.Comments)); writeError != nil {
				return writeError
			}
			for _, comment := range element.Comments {
				anchor := comment.Anchor
				if anchor == "" {
					anchor = indexNoAnchorLabel
				}
				text := strings.TrimRight(comment.Text, "\r\n")
				if _, writeError := fmt.Fprintf(writer, indexCommentFormat, anchor, text); writeError != nil {
					return writeError
				}
			}
		}
	}
	return nil
}
