package fileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/recomment/internal/utils"
)

const (
	namespaceHeader = "Namespace:"

	errorReadDirectoryFormat = "read directory %s: %w"
	errorNotDirectoryFormat  = "path %s is not a directory"
	errorReadFileFormat      = "read file %s: %w"
)

// Revision is a directory of domain-definition files.
type Revision struct {
	Directory string
	Files     []string
}

// ListRevision returns the sorted names of regular files in directory that the
// filter allows, extended by the patterns of the directory's ignore file.
func ListRevision(directory string, filter Filter) (Revision, error) {
	information, statError := os.Stat(directory)
	if statError != nil {
		return Revision{}, fmt.Errorf(errorReadDirectoryFormat, directory, statError)
	}
	if !information.IsDir() {
		return Revision{}, fmt.Errorf(errorNotDirectoryFormat, directory)
	}
	effectiveFilter := filter
	if !filter.SkipIgnoreFile {
		ignorePatterns, loadError := LoadIgnorePatterns(filepath.Join(directory, IgnoreFileName))
		if loadError != nil {
			return Revision{}, loadError
		}
		effectiveFilter = filter.WithIgnorePatterns(utils.DeduplicatePatterns(ignorePatterns))
	}

	directoryEntries, readError := os.ReadDir(directory)
	if readError != nil {
		return Revision{}, fmt.Errorf(errorReadDirectoryFormat, directory, readError)
	}
	revision := Revision{Directory: directory}
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.Type().IsRegular() {
			continue
		}
		if !effectiveFilter.Allows(directoryEntry.Name()) {
			continue
		}
		revision.Files = append(revision.Files, directoryEntry.Name())
	}
	sort.Strings(revision.Files)
	return revision, nil
}

// Path returns the full path of a file of the revision.
func (revision Revision) Path(fileName string) string {
	return filepath.Join(revision.Directory, fileName)
}

// ReadLines reads a whole file into lines that keep their terminators.
//
// #nosec G304
func ReadLines(filePath string) ([]string, error) {
	fileData, readError := os.ReadFile(filePath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadFileFormat, filePath, readError)
	}
	return SplitLines(string(fileData)), nil
}

// SplitLines splits text after every newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// NamespaceOf returns the namespace declared by the first Namespace: line.
func NamespaceOf(lines []string) (string, bool) {
	for _, line := range lines {
		_, namespace, found := strings.Cut(line, namespaceHeader)
		if !found {
			continue
		}
		namespace = strings.TrimSpace(namespace)
		if namespace != "" {
			return namespace, true
		}
	}
	return "", false
}
