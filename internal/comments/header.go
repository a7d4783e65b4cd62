package comments

import "strings"

const headerSeparator = ":"

// headerDetector recognizes declaration headers lexically: a line is a header
// when it contains one of the keywords immediately followed by a colon.
type headerDetector struct {
	markers []string
}

func newHeaderDetector(keywords []string) headerDetector {
	markers := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		trimmedKeyword := strings.TrimSpace(keyword)
		if trimmedKeyword == "" {
			continue
		}
		markers = append(markers, trimmedKeyword+headerSeparator)
	}
	return headerDetector{markers: markers}
}

func (detector headerDetector) isHeader(line string) bool {
	for _, marker := range detector.markers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// elementName returns the text between the first and second colon, trimmed.
func elementName(line string) (string, error) {
	segments := strings.Split(line, headerSeparator)
	if len(segments) < 2 {
		return "", ErrMalformedHeader
	}
	name := strings.TrimSpace(segments[1])
	if name == "" {
		return "", ErrMalformedHeader
	}
	return name, nil
}
