package comments

import "strings"

// extractor walks the lines of one file and records anchored comments per element.
type extractor struct {
	lines          []string
	headers        headerDetector
	index          *ElementIndex
	currentElement string
}

// Extract builds the element index of one file. Lines keep their terminators.
func Extract(lines []string, options Options) (*ElementIndex, error) {
	options = options.withDefaults()
	state := &extractor{
		lines:          lines,
		headers:        newHeaderDetector(options.HeaderKeywords),
		index:          NewElementIndex(options.SentinelElement),
		currentElement: options.SentinelElement,
	}
	for lineIndex := 0; lineIndex < len(lines); lineIndex++ {
		nextIndex, extractError := state.processLine(lineIndex)
		if extractError != nil {
			return nil, &LineError{Line: lineIndex + 1, Text: strings.TrimRight(lines[lineIndex], newlineCharacter), Err: extractError}
		}
		lineIndex = nextIndex
	}
	return state.index, nil
}

// processLine handles the line at lineIndex and returns the index of the last
// line it consumed.
func (state *extractor) processLine(lineIndex int) (int, error) {
	line := state.lines[lineIndex]

	if commentStart := FindCommentStart(line); commentStart >= 0 {
		anchor := state.lineCommentAnchor(lineIndex, line[:commentStart])
		return lineIndex, state.record(anchor, line[commentStart:])
	}

	if openingOffset := strings.Index(line, blockCommentOpenMarker); openingOffset >= 0 {
		prefix := line[:openingOffset]
		if switchError := state.switchOnHeader(prefix); switchError != nil {
			return lineIndex, switchError
		}
		closingIndex := blockCommentEnd(state.lines, lineIndex, openingOffset)
		if closingIndex < 0 {
			return lineIndex, ErrUnbalancedBlockComment
		}
		blockText := line[openingOffset:] + strings.Join(state.lines[lineIndex+1:closingIndex+1], "")
		anchor := state.forwardAnchor(closingIndex + 1)
		if !isBlank(prefix) {
			anchor = state.lineCommentAnchor(lineIndex, prefix)
		}
		return closingIndex, state.record(anchor, blockText)
	}

	return lineIndex, state.switchOnHeader(line)
}

// lineCommentAnchor resolves the anchor of a line comment whose line starts with prefix.
func (state *extractor) lineCommentAnchor(lineIndex int, prefix string) string {
	if isBlank(prefix) {
		return state.forwardAnchor(lineIndex + 1)
	}
	if isUnfinishedString(prefix) {
		openingIndex := findBackward(state.lines, lineIndex-1, isUnfinishedString)
		if openingIndex >= 0 {
			return strings.TrimSpace(state.lines[openingIndex])
		}
	}
	return strings.TrimSpace(prefix)
}

// forwardAnchor returns the non-comment part of the first substantive line at
// or after startIndex, skipping blank lines, line comments and block comments.
// The anchor is empty when no such line exists.
func (state *extractor) forwardAnchor(startIndex int) string {
	for candidateIndex := max(startIndex, 0); candidateIndex < len(state.lines); candidateIndex++ {
		candidate := state.lines[candidateIndex]
		if isBlank(candidate) || isCommentOnly(candidate) {
			continue
		}
		if isBlockCommentStart(candidate) {
			closingIndex := blockCommentEnd(state.lines, candidateIndex, strings.Index(candidate, blockCommentOpenMarker))
			if closingIndex < 0 {
				return ""
			}
			candidateIndex = closingIndex
			continue
		}
		if commentStart := FindCommentStart(candidate); commentStart >= 0 {
			candidate = candidate[:commentStart]
		}
		if openingOffset := strings.Index(candidate, blockCommentOpenMarker); openingOffset >= 0 {
			candidate = candidate[:openingOffset]
		}
		return strings.TrimSpace(candidate)
	}
	return ""
}

// blockCommentEnd returns the index of the line closing the block comment
// opened at openingOffset of lines[openingIndex], or -1.
func blockCommentEnd(lines []string, openingIndex int, openingOffset int) int {
	bodyStart := openingOffset + len(blockCommentOpenMarker)
	if strings.Contains(lines[openingIndex][bodyStart:], blockCommentCloseMarker) {
		return openingIndex
	}
	return findForward(lines, openingIndex+1, func(candidate string) bool {
		return strings.Contains(candidate, blockCommentCloseMarker)
	})
}

// record appends a comment, first switching element when its anchor is a header.
func (state *extractor) record(anchor string, text string) error {
	if switchError := state.switchOnHeader(anchor); switchError != nil {
		return switchError
	}
	state.index.Append(state.currentElement, AnchoredComment{Anchor: anchor, Text: text})
	return nil
}

// switchOnHeader makes the element declared by text current when text is a header.
func (state *extractor) switchOnHeader(text string) error {
	if !state.headers.isHeader(text) {
		return nil
	}
	name, nameError := elementName(text)
	if nameError != nil {
		return nameError
	}
	state.currentElement = name
	state.index.Ensure(name)
	return nil
}

// findForward returns the index of the first line at or after startIndex that
// satisfies predicate, or -1.
func findForward(lines []string, startIndex int, predicate func(string) bool) int {
	for candidateIndex := max(startIndex, 0); candidateIndex < len(lines); candidateIndex++ {
		if predicate(lines[candidateIndex]) {
			return candidateIndex
		}
	}
	return -1
}

// findBackward returns the index of the nearest line at or before startIndex
// that satisfies predicate, or -1.
func findBackward(lines []string, startIndex int, predicate func(string) bool) int {
	for candidateIndex := min(startIndex, len(lines)-1); candidateIndex >= 0; candidateIndex-- {
		if predicate(lines[candidateIndex]) {
			return candidateIndex
		}
	}
	return -1
}
