package comments

import "strings"

const (
	referenceOpen  = "ref("
	referenceClose = ")"

	preferredPhrase      = "should be from"
	examplePhrase        = "could be from"
	extensiblePhrase     = "if covered"
	bindingKeyword       = "from"
	valueSetKeyword      = "VS"
	fromSeparator        = " from "
	preferredSuffix      = " (preferred)"
	exampleSuffix        = " (example)"
	extensibleToken      = "(extensible)"
	requiredSuffix       = " (required)"
	paddedPreferredToken = " " + preferredPhrase + " "
	exampleReplacement   = "from "
)

// termSubstitutions collapse vocabulary that changed between revisions. Order matters.
var termSubstitutions = []struct {
	from string
	to   string
}{
	{from: "Coding", to: "concept"},
	{from: "CodeableConcept", to: "concept"},
	{from: "EntryElement:", to: "Entry:"},
	{from: "Abstract Element:", to: "Abstract:"},
	{from: "Based on:", to: "Parent:"},
	{from: "value is type", to: "only"},
	{from: "is type", to: "substitute"},
	{from: "DataElement 5.0", to: "DataElement 6.0"},
}

// KeyTerms rewrites an old-revision line into the vocabulary of the new revision.
func KeyTerms(line string) string {
	normalized := strings.TrimRight(line, "\r\n")
	for _, substitution := range termSubstitutions {
		normalized = strings.ReplaceAll(normalized, substitution.from, substitution.to)
	}
	normalized = unwrapReferences(normalized)
	return restateBinding(normalized)
}

// unwrapReferences replaces every ref(X) with X. An unclosed wrapper keeps the
// remainder of the line as its inner term.
func unwrapReferences(line string) string {
	for {
		openIndex := strings.Index(line, referenceOpen)
		if openIndex < 0 {
			return line
		}
		innerStart := openIndex + len(referenceOpen)
		closeOffset := strings.Index(line[innerStart:], referenceClose)
		if closeOffset < 0 {
			return line[:openIndex] + line[innerStart:]
		}
		line = line[:openIndex] + line[innerStart:innerStart+closeOffset] + line[innerStart+closeOffset+len(referenceClose):]
	}
}

// restateBinding rewrites value set binding phrases into explicit strengths.
func restateBinding(line string) string {
	switch {
	case strings.Contains(line, preferredPhrase):
		before, after, found := strings.Cut(line, paddedPreferredToken)
		if !found {
			before, after, _ = strings.Cut(line, preferredPhrase)
		}
		return before + fromSeparator + after + preferredSuffix
	case strings.Contains(line, examplePhrase):
		before, after, _ := strings.Cut(line, examplePhrase)
		return before + exampleReplacement + after + exampleSuffix
	case strings.Contains(line, bindingKeyword) && strings.Contains(line, extensiblePhrase):
		return strings.ReplaceAll(line, extensiblePhrase, extensibleToken)
	case strings.Contains(line, bindingKeyword) && strings.Contains(line, valueSetKeyword):
		return line + requiredSuffix
	default:
		return line
	}
}

// Tokens splits a line into its set of non-empty whitespace-delimited tokens.
// Tabs count as whitespace.
func Tokens(line string) map[string]struct{} {
	fields := strings.Fields(line)
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}
	return tokens
}
