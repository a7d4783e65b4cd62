package fileset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(testingHandle *testing.T, directory string, name string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filepath.Join(directory, name), []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("writing %s: %v", name, writeError)
	}
}

func TestFilterAllows(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		patterns []string
		expected bool
	}{
		{name: "definition_file", fileName: "oncology.txt", expected: true},
		{name: "value_set_file", fileName: "oncology_vs.txt", expected: false},
		{name: "map_file", fileName: "oncology_map.txt", expected: false},
		{name: "html_export", fileName: "oncology.txt.html", expected: false},
		{name: "json_export", fileName: "oncology.txt.json", expected: false},
		{name: "implementation_guide", fileName: "ig-oncology.txt", expected: false},
		{name: "wrong_extension", fileName: "oncology.md", expected: false},
		{name: "glob_pattern", fileName: "draft-oncology.txt", patterns: []string{"draft-*"}, expected: false},
		{name: "glob_pattern_miss", fileName: "oncology.txt", patterns: []string{"draft-*"}, expected: true},
		{name: "ignore_file_itself", fileName: IgnoreFileName, expected: false},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			filter := DefaultFilter().WithIgnorePatterns(testCase.patterns)
			if allowed := filter.Allows(testCase.fileName); allowed != testCase.expected {
				t.Fatalf("Allows(%q) = %v, expected %v", testCase.fileName, allowed, testCase.expected)
			}
		})
	}
}

func TestListRevisionAppliesFilterAndIgnoreFile(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	writeTestFile(testingHandle, directory, "b.txt", "Element: B\n")
	writeTestFile(testingHandle, directory, "a.txt", "Element: A\n")
	writeTestFile(testingHandle, directory, "a_vs.txt", "ValueSet: X\n")
	writeTestFile(testingHandle, directory, "scratch.txt", "Element: S\n")
	writeTestFile(testingHandle, directory, IgnoreFileName, "# scratch files\n\nscratch*\n")
	if mkdirError := os.Mkdir(filepath.Join(directory, "nested.txt"), 0o755); mkdirError != nil {
		testingHandle.Fatalf("creating nested directory: %v", mkdirError)
	}

	revision, listError := ListRevision(directory, DefaultFilter())
	if listError != nil {
		testingHandle.Fatalf("ListRevision error: %v", listError)
	}
	expected := []string{"a.txt", "b.txt"}
	if len(revision.Files) != len(expected) {
		testingHandle.Fatalf("expected %v, got %v", expected, revision.Files)
	}
	for fileIndex := range expected {
		if revision.Files[fileIndex] != expected[fileIndex] {
			testingHandle.Fatalf("expected %v, got %v", expected, revision.Files)
		}
	}
}

func TestListRevisionRejectsMissingDirectory(testingHandle *testing.T) {
	if _, listError := ListRevision(filepath.Join(testingHandle.TempDir(), "absent"), DefaultFilter()); listError == nil {
		testingHandle.Fatalf("expected error for missing directory")
	}
}

func TestLoadIgnorePatternsRejectsInvalidGlob(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	writeTestFile(testingHandle, directory, IgnoreFileName, "[unclosed\n")
	if _, loadError := LoadIgnorePatterns(filepath.Join(directory, IgnoreFileName)); loadError == nil {
		testingHandle.Fatalf("expected error for invalid pattern")
	}
}

func TestReadLinesKeepsTerminators(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	writeTestFile(testingHandle, directory, "a.txt", "one\ntwo\nthree")
	lines, readError := ReadLines(filepath.Join(directory, "a.txt"))
	if readError != nil {
		testingHandle.Fatalf("ReadLines error: %v", readError)
	}
	expected := []string{"one\n", "two\n", "three"}
	if len(lines) != len(expected) {
		testingHandle.Fatalf("expected %q, got %q", expected, lines)
	}
	for lineIndex := range expected {
		if lines[lineIndex] != expected[lineIndex] {
			testingHandle.Fatalf("expected %q, got %q", expected, lines)
		}
	}
}

func TestNamespaceOf(testingHandle *testing.T) {
	namespace, found := NamespaceOf([]string{"Grammar: DataElement 6.0\n", "Namespace: shr.oncology\n"})
	if !found || namespace != "shr.oncology" {
		testingHandle.Fatalf("unexpected namespace %q (found %v)", namespace, found)
	}
	if _, found := NamespaceOf([]string{"Element: Foo\n"}); found {
		testingHandle.Fatalf("expected no namespace")
	}
}

func TestListRevisionCanSkipIgnoreFile(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	writeTestFile(testingHandle, directory, "scratch.txt", "Element: S\n")
	writeTestFile(testingHandle, directory, IgnoreFileName, "scratch*\n")

	filter := DefaultFilter()
	filter.SkipIgnoreFile = true
	revision, listError := ListRevision(directory, filter)
	if listError != nil {
		testingHandle.Fatalf("ListRevision error: %v", listError)
	}
	if len(revision.Files) != 1 || revision.Files[0] != "scratch.txt" {
		testingHandle.Fatalf("expected scratch.txt to be listed, got %v", revision.Files)
	}
}
