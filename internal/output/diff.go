package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	diffOriginalHeaderFormat     = "--- %s\n"
	diffReintegratedHeaderFormat = "+++ %s (reintegrated)\n"
	diffInsertedLineFormat       = "+%d: %s"
	diffDeletedLineFormat        = "-%d: %s"
	newlineCharacter             = "\n"
)

// DiffLine is one changed line of a reintegrated file.
type DiffLine struct {
	Inserted bool
	// Number is the line number in the reintegrated file for insertions and
	// in the original file for deletions.
	Number int
	Text   string
}

// DiffLines compares original and reintegrated text line by line.
func DiffLines(original string, reintegrated string) []DiffLine {
	matcher := diffmatchpatch.New()
	originalRunes, reintegratedRunes, lineArray := matcher.DiffLinesToRunes(original, reintegrated)
	diffs := matcher.DiffCharsToLines(matcher.DiffMainRunes(originalRunes, reintegratedRunes, false), lineArray)

	var changed []DiffLine
	originalNumber := 1
	reintegratedNumber := 1
	for _, diff := range diffs {
		lines := splitDiffText(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			originalNumber += len(lines)
			reintegratedNumber += len(lines)
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				changed = append(changed, DiffLine{Inserted: true, Number: reintegratedNumber, Text: line})
				reintegratedNumber++
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				changed = append(changed, DiffLine{Number: originalNumber, Text: line})
				originalNumber++
			}
		}
	}
	return changed
}

// RenderDiff writes the changed lines of one file, insertions in green and
// deletions in red.
func RenderDiff(writer io.Writer, name string, original string, reintegrated string) error {
	changed := DiffLines(original, reintegrated)
	if len(changed) == 0 {
		return nil
	}
	if _, writeError := fmt.Fprintf(writer, diffOriginalHeaderFormat, name); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, diffReintegratedHeaderFormat, name); writeError != nil {
		return writeError
	}
	insertedColor := color.New(color.FgGreen)
	deletedColor := color.New(color.FgRed)
	for _, line := range changed {
		var rendered string
		if line.Inserted {
			rendered = insertedColor.Sprintf(diffInsertedLineFormat, line.Number, line.Text)
		} else {
			rendered = deletedColor.Sprintf(diffDeletedLineFormat, line.Number, line.Text)
		}
		if _, writeError := fmt.Fprintln(writer, rendered); writeError != nil {
			return writeError
		}
	}
	return nil
}

func splitDiffText(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, newlineCharacter)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for lineIndex, line := range lines {
		lines[lineIndex] = strings.TrimRight(line, "\r\n")
	}
	return lines
}
