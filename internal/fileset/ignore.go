package fileset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	ignoreCommentPrefix       = "#"
	invalidIgnorePatternError = "invalid pattern %q in %s"
	closeWarningFormat        = "Warning: failed to close %s: %v\n"
)

// LoadIgnorePatterns reads glob patterns from an ignore file. A missing file
// yields no patterns. Blank lines and lines starting with # are skipped.
//
// #nosec G304
func LoadIgnorePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, closeWarningFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, ignoreCommentPrefix) {
			continue
		}
		if !doublestar.ValidatePattern(trimmedLine) {
			return nil, fmt.Errorf(invalidIgnorePatternError, trimmedLine, ignoreFilePath)
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}
