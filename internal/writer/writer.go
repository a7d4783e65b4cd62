// Package writer persists reintegrated files without leaving partial output behind.
package writer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultFilePermission      os.FileMode = 0o644
	defaultDirectoryPermission os.FileMode = 0o755
	temporaryFilePattern                   = ".recomment-*"
	writeBufferSize                        = 64 * 1024

	errorCreateDirectoryFormat = "create output directory %s: %w"
	errorNotDirectoryFormat    = "output path %s exists and is not a directory"
	errorCreateTemporaryFormat = "create temporary file in %s: %w"
	errorWriteFormat           = "write %s: %w"
	errorReplaceFormat         = "replace %s: %w"
)

// EnsureDirectory creates directory and its parents when absent.
func EnsureDirectory(directory string) error {
	information, statError := os.Stat(directory)
	if statError == nil {
		if !information.IsDir() {
			return fmt.Errorf(errorNotDirectoryFormat, directory)
		}
		return nil
	}
	if !os.IsNotExist(statError) {
		return fmt.Errorf(errorCreateDirectoryFormat, directory, statError)
	}
	if mkdirError := os.MkdirAll(directory, defaultDirectoryPermission); mkdirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, directory, mkdirError)
	}
	return nil
}

// WriteAtomic writes text to a temporary file next to destination and renames
// it into place. On failure the temporary file is removed and destination is
// left untouched.
func WriteAtomic(destination string, text string) (err error) {
	directory := filepath.Dir(destination)
	temporaryFile, createError := os.CreateTemp(directory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf(errorCreateTemporaryFormat, directory, createError)
	}
	temporaryPath := temporaryFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = temporaryFile.Close()
		}
		if err != nil {
			_ = os.Remove(temporaryPath)
		}
	}()

	bufferedWriter := bufio.NewWriterSize(temporaryFile, writeBufferSize)
	if _, writeError := bufferedWriter.WriteString(text); writeError != nil {
		return fmt.Errorf(errorWriteFormat, destination, writeError)
	}
	if flushError := bufferedWriter.Flush(); flushError != nil {
		return fmt.Errorf(errorWriteFormat, destination, flushError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return fmt.Errorf(errorWriteFormat, destination, syncError)
	}
	closed = true
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(errorWriteFormat, destination, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, defaultFilePermission); chmodError != nil {
		return fmt.Errorf(errorWriteFormat, destination, chmodError)
	}
	if renameError := os.Rename(temporaryPath, destination); renameError != nil {
		return fmt.Errorf(errorReplaceFormat, destination, renameError)
	}
	return nil
}
