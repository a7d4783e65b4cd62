// Package comments extracts comments from domain-definition text files and
// reintegrates them into a newer revision of the same files.
//
// Comments are grouped by the declaration element (Entry, Element, Abstract,
// Group or Grammar) they belong to. Each comment keeps the non-comment text it
// was anchored to so the reintegration pass can find the closest line in the
// new revision using a token overlap heuristic.
package comments

import "strings"

const (
	lineCommentMarker       = "//"
	urlMarker               = "://"
	blockCommentOpenMarker  = "/*"
	blockCommentCloseMarker = "*/"
	newlineCharacter        = "\n"
)

// AnchoredComment is a comment together with the text it was attached to.
type AnchoredComment struct {
	// Anchor is the non-comment text the comment belongs to. It is empty when
	// no suitable anchor line exists.
	Anchor string `json:"anchor" xml:"anchor"`
	// Text is the raw comment including its marker and line terminators.
	Text string `json:"text" xml:"text"`
}

// IsBlock reports whether the comment is a /* */ block comment.
func (comment AnchoredComment) IsBlock() bool {
	return strings.HasPrefix(strings.TrimSpace(comment.Text), blockCommentOpenMarker)
}

// HasAnchor reports whether the comment carries anchor text usable for matching.
func (comment AnchoredComment) HasAnchor() bool {
	return strings.TrimSpace(comment.Anchor) != ""
}

// ElementIndex maps element names to their comments. Element names keep the
// order in which they were first seen.
type ElementIndex struct {
	names    []string
	comments map[string][]AnchoredComment
}

// NewElementIndex returns an index holding only the sentinel element.
func NewElementIndex(sentinelElement string) *ElementIndex {
	index := &ElementIndex{comments: map[string][]AnchoredComment{}}
	index.Ensure(sentinelElement)
	return index
}

// Ensure creates an empty comment list for the element when it is absent.
func (index *ElementIndex) Ensure(elementName string) {
	if _, exists := index.comments[elementName]; exists {
		return
	}
	index.names = append(index.names, elementName)
	index.comments[elementName] = nil
}

// Append adds a comment to the end of the element's list.
func (index *ElementIndex) Append(elementName string, comment AnchoredComment) {
	index.Ensure(elementName)
	index.comments[elementName] = append(index.comments[elementName], comment)
}

// Has reports whether the element was declared or received comments.
func (index *ElementIndex) Has(elementName string) bool {
	if index == nil {
		return false
	}
	_, exists := index.comments[elementName]
	return exists
}

// Comments returns the element's comments in their original order.
func (index *ElementIndex) Comments(elementName string) []AnchoredComment {
	if index == nil {
		return nil
	}
	return index.comments[elementName]
}

// Names returns element names in first-seen order.
func (index *ElementIndex) Names() []string {
	if index == nil {
		return nil
	}
	return append([]string(nil), index.names...)
}

// Len returns the total number of comments across all elements.
func (index *ElementIndex) Len() int {
	if index == nil {
		return 0
	}
	total := 0
	for _, elementComments := range index.comments {
		total += len(elementComments)
	}
	return total
}

// Merge appends every element and comment of other to the receiver.
func (index *ElementIndex) Merge(other *ElementIndex) {
	if other == nil {
		return
	}
	for _, elementName := range other.names {
		index.Ensure(elementName)
		index.comments[elementName] = append(index.comments[elementName], other.comments[elementName]...)
	}
}

// IndexKey identifies one element index: a file name or a namespace.
type IndexKey string

// Index maps files (or namespaces) to their element indices.
type Index map[IndexKey]*ElementIndex
