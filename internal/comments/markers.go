package comments

import "strings"

const quoteCharacter = "\""

// CommentStart returns the first line comment marker position that is not the
// tail of a URL scheme separator, or -1 when every marker belongs to a URL.
// slashPositions holds the offsets of "//" and urlPositions the offsets of "://".
func CommentStart(slashPositions []int, urlPositions []int) int {
	urlStarts := make(map[int]struct{}, len(urlPositions))
	for _, urlPosition := range urlPositions {
		urlStarts[urlPosition] = struct{}{}
	}
	for _, slashPosition := range slashPositions {
		if _, partOfURL := urlStarts[slashPosition-1]; !partOfURL {
			return slashPosition
		}
	}
	return -1
}

// FindCommentStart locates the real line comment marker of line, or -1.
func FindCommentStart(line string) int {
	if !strings.Contains(line, lineCommentMarker) {
		return -1
	}
	return CommentStart(markerPositions(line, lineCommentMarker), markerPositions(line, urlMarker))
}

// markerPositions returns the offsets of non-overlapping occurrences of marker.
func markerPositions(line string, marker string) []int {
	var positions []int
	offset := 0
	for {
		relativeIndex := strings.Index(line[offset:], marker)
		if relativeIndex < 0 {
			return positions
		}
		positions = append(positions, offset+relativeIndex)
		offset += relativeIndex + len(marker)
	}
}

// isUnfinishedString reports whether text holds an odd number of quotes.
func isUnfinishedString(text string) bool {
	return strings.Count(text, quoteCharacter)%2 == 1
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isCommentOnly(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), lineCommentMarker)
}

func isBlockCommentStart(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), blockCommentOpenMarker)
}
