package comments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyTerms(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "codeable_concept", input: "Value: CodeableConcept", expected: "Value: concept"},
		{name: "coding", input: "Value: Coding\n", expected: "Value: concept"},
		{name: "entry_element", input: "EntryElement: Foo", expected: "Entry: Foo"},
		{name: "abstract_element", input: "Abstract Element: Foo", expected: "Abstract: Foo"},
		{name: "based_on", input: "Based on: Foo", expected: "Parent: Foo"},
		{name: "value_is_type", input: "Element: Foo value is type decimal", expected: "Element: Foo only decimal"},
		{name: "is_type", input: "Foo is type decimal", expected: "Foo substitute decimal"},
		{name: "data_element_version", input: "Grammar: DataElement 5.0", expected: "Grammar: DataElement 6.0"},
		{name: "references", input: "Value: ref(Patient) or ref(Group)", expected: "Value: Patient or Group"},
		{name: "unclosed_reference", input: "Value: ref(Patient", expected: "Value: Patient"},
		{name: "preferred_binding", input: "Value: concept should be from VS_X", expected: "Value: concept from VS_X (preferred)"},
		{name: "example_binding", input: "Value: concept could be from VS_X", expected: "Value: concept from  VS_X (example)"},
		{name: "extensible_binding", input: "Value: concept from VS_X if covered", expected: "Value: concept from VS_X (extensible)"},
		{name: "required_binding", input: "Value: Coding from VS_X", expected: "Value: concept from VS_X (required)"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, KeyTerms(testCase.input))
		})
	}
}

func TestKeyTermsIsTotal(t *testing.T) {
	inputs := []string{"", "ref(", "ref()", ")ref(", "should be from", "could be from", "from VS", "\n"}
	for _, input := range inputs {
		require.NotPanics(t, func() { KeyTerms(input) }, input)
	}
}

func TestKeyTermsIdempotentWithoutPatterns(t *testing.T) {
	inputs := []string{
		"Element: Foo\n",
		"Value: decimal",
		"Parent: Thing",
		"  Description: \"indented\"\t",
		"",
	}
	for _, input := range inputs {
		once := KeyTerms(input)
		require.Equal(t, once, KeyTerms(once), input)
	}
}

func TestTokens(t *testing.T) {
	tokens := Tokens("  Value:\tdecimal   decimal \n")
	require.Equal(t, map[string]struct{}{"Value:": {}, "decimal": {}}, tokens)
	require.Empty(t, Tokens(" \t\n"))
}
