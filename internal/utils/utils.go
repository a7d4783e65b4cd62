// Package utils contains general helper functions used across the recomment tool.
package utils

import "strings"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// CompactValues trims every value, drops empty ones and removes duplicates.
func CompactValues(values []string) []string {
	trimmedValues := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if trimmedValue == EmptyString {
			continue
		}
		trimmedValues = append(trimmedValues, trimmedValue)
	}
	return DeduplicatePatterns(trimmedValues)
}
