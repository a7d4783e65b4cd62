package comments

import "fmt"

// Strictness selects the token drift rule used by the matcher.
type Strictness string

const (
	// StrictnessTolerant allows one differing token on each side.
	StrictnessTolerant Strictness = "tolerant"
	// StrictnessStrict requires the new line to add no tokens and ignores
	// tokens the old anchor lost.
	StrictnessStrict Strictness = "strict"
)

const (
	// DefaultSentinelElement collects comments that precede the first declaration.
	DefaultSentinelElement = "DataElement 6.0"
	// DefaultIndentWidth is the number of spaces placed before reintegrated line comments.
	DefaultIndentWidth = 19
	// TokenDriftTolerance is the number of tokens allowed to differ per side.
	TokenDriftTolerance = 1

	unsupportedStrictnessFormat = "unsupported strictness %q"
)

// DefaultHeaderKeywords lists the keywords that open a declaration element.
var DefaultHeaderKeywords = []string{"Entry", "Element", "Abstract", "Group", "Grammar"}

// Normalizer rewrites an anchor line into canonical vocabulary before comparison.
type Normalizer func(line string) string

// Options configures extraction and reintegration.
type Options struct {
	HeaderKeywords  []string
	SentinelElement string
	IndentWidth     int
	Strictness      Strictness
	Normalizer      Normalizer
	// FlushOrphans emits comments of elements missing from the new revision
	// instead of dropping them.
	FlushOrphans bool
}

// DefaultOptions returns the canonical engine configuration.
func DefaultOptions() Options {
	return Options{
		HeaderKeywords:  append([]string(nil), DefaultHeaderKeywords...),
		SentinelElement: DefaultSentinelElement,
		IndentWidth:     DefaultIndentWidth,
		Strictness:      StrictnessTolerant,
		Normalizer:      KeyTerms,
		FlushOrphans:    true,
	}
}

// ParseStrictness validates a strictness name.
func ParseStrictness(value string) (Strictness, error) {
	switch Strictness(value) {
	case StrictnessTolerant, StrictnessStrict:
		return Strictness(value), nil
	default:
		return "", fmt.Errorf(unsupportedStrictnessFormat, value)
	}
}

func (options Options) withDefaults() Options {
	defaults := DefaultOptions()
	if len(options.HeaderKeywords) == 0 {
		options.HeaderKeywords = defaults.HeaderKeywords
	}
	if options.SentinelElement == "" {
		options.SentinelElement = defaults.SentinelElement
	}
	if options.IndentWidth < 0 {
		options.IndentWidth = 0
	}
	if options.Strictness == "" {
		options.Strictness = defaults.Strictness
	}
	if options.Normalizer == nil {
		options.Normalizer = defaults.Normalizer
	}
	return options
}
