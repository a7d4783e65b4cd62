// Package fileset lists the domain-definition files of a revision directory.
package fileset

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultExtension marks files holding domain definitions.
	DefaultExtension = ".txt"
	// IgnoreFileName lists extra glob patterns of files to skip inside a revision directory.
	IgnoreFileName = ".recommentignore"
)

// DefaultExcludedSubstrings name auxiliary artifacts: value sets, mappings,
// markup and data exports, implementation guide files.
var DefaultExcludedSubstrings = []string{"_vs", "_map", ".html", ".json", "ig-"}

// Filter decides which file names of a revision are processed.
type Filter struct {
	// Extension must be contained in the file name.
	Extension string
	// ExcludedSubstrings reject any file name containing one of them.
	ExcludedSubstrings []string
	// IgnorePatterns are doublestar globs matched against the file name.
	IgnorePatterns []string
	// SkipIgnoreFile disables reading IgnoreFileName from the revision directory.
	SkipIgnoreFile bool
}

// DefaultFilter returns the filter used for domain-definition revisions.
func DefaultFilter() Filter {
	return Filter{
		Extension:          DefaultExtension,
		ExcludedSubstrings: append([]string(nil), DefaultExcludedSubstrings...),
	}
}

// WithIgnorePatterns returns a copy of the filter with additional glob patterns.
func (filter Filter) WithIgnorePatterns(patterns []string) Filter {
	combined := make([]string, 0, len(filter.IgnorePatterns)+len(patterns))
	combined = append(combined, filter.IgnorePatterns...)
	combined = append(combined, patterns...)
	filter.IgnorePatterns = combined
	return filter
}

// Allows reports whether the named file should be processed.
func (filter Filter) Allows(fileName string) bool {
	baseName := filepath.Base(fileName)
	if baseName == IgnoreFileName {
		return false
	}
	if filter.Extension != "" && !strings.Contains(baseName, filter.Extension) {
		return false
	}
	for _, excludedSubstring := range filter.ExcludedSubstrings {
		if excludedSubstring != "" && strings.Contains(baseName, excludedSubstring) {
			return false
		}
	}
	for _, pattern := range filter.IgnorePatterns {
		matched, matchError := doublestar.Match(pattern, baseName)
		if matchError == nil && matched {
			return false
		}
	}
	return true
}
