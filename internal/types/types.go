// Package types defines the names shared across the recomment CLI packages.
package types

const (
	CommandReintegrate = "reintegrate"
	CommandIndex       = "index"
	CommandInit        = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// IsSupportedFormat reports whether the provided format is recognized.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatRaw, FormatJSON, FormatXML:
		return true
	default:
		return false
	}
}
