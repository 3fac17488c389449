package scoring

import "strings"

// PercentMatch scores how closely an observed string matches the expected
// one, as a percentage in [0, 100]. Comparison is case-insensitive.
//
// The score is a positional penalty, not a true edit distance: characters
// are compared index by index up to the shorter length, every position that
// differs counts once, and the length difference counts once per extra
// character. The total is normalized against the longer length. A single
// inserted character therefore penalizes every position after it; the
// algorithm deliberately does not realign.
func PercentMatch(expected, observed string) float64 {
	e := []rune(strings.ToLower(expected))
	o := []rune(strings.ToLower(observed))

	maxLen := len(e)
	minLen := len(o)
	if minLen > maxLen {
		maxLen, minLen = minLen, maxLen
	}
	if maxLen == 0 {
		// Two empty strings are a perfect match.
		return 100
	}

	diff := maxLen - minLen
	for i := 0; i < minLen; i++ {
		if e[i] != o[i] {
			diff++
		}
	}

	score := (1 - float64(diff)/float64(maxLen)) * 100
	if score < 0 {
		return 0
	}
	return score
}
