package comments

// Matcher decides whether an old anchor and a new line denote the same content.
type Matcher struct {
	Strictness Strictness
	Normalizer Normalizer
}

// NewMatcher returns a matcher configured from options.
func NewMatcher(options Options) Matcher {
	options = options.withDefaults()
	return Matcher{Strictness: options.Strictness, Normalizer: options.Normalizer}
}

// Matches normalizes the old anchor with the vocabulary substitutions, leaves
// the new line as is, and compares their token sets.
func (matcher Matcher) Matches(oldAnchor string, newLine string) bool {
	normalizer := matcher.Normalizer
	if normalizer == nil {
		normalizer = KeyTerms
	}
	return TokenSetsMatch(Tokens(normalizer(oldAnchor)), Tokens(newLine), matcher.Strictness)
}

// TokenSetsMatch applies the drift rule to two token sets. The tolerant rule
// holds when |old-new| <= 1 and |new-old| <= 1. The strict rule holds when the
// new line adds no token.
func TokenSetsMatch(oldTokens map[string]struct{}, newTokens map[string]struct{}, strictness Strictness) bool {
	addedTokens := differenceSize(newTokens, oldTokens)
	if strictness == StrictnessStrict {
		return addedTokens == 0
	}
	return addedTokens <= TokenDriftTolerance && differenceSize(oldTokens, newTokens) <= TokenDriftTolerance
}

// differenceSize returns |left-right|.
func differenceSize(left map[string]struct{}, right map[string]struct{}) int {
	size := 0
	for token := range left {
		if _, shared := right[token]; !shared {
			size++
		}
	}
	return size
}
