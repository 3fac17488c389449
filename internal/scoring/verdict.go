package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// digitRun matches the first one-or-two digit run in otherwise unparseable
// verdict text.
var digitRun = regexp.MustCompile(`[0-9]{1,2}`)

// ParseHandwritingVerdict extracts a yes/no match and a 0-100 confidence
// from the vision service's free-text verdict (typically "yes, 82%").
//
// The upstream model returns prose, not a schema, so parsing never fails:
// an unresolvable match token defaults to no-match, and a confidence that
// cannot be read — even after stripping whitespace, "%" and trailing dots
// and falling back to the first short digit run — defaults to 0.
func ParseHandwritingVerdict(raw string) (match bool, confidence float64) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ':' || unicode.IsSpace(r)
	})

	matchResolved := false
	confResolved := false

	for _, f := range fields {
		token := strings.ToLower(strings.Trim(f, "."))

		if !matchResolved {
			switch token {
			case "yes":
				match = true
				matchResolved = true
				continue
			case "no":
				matchResolved = true
				continue
			}
		}

		if !confResolved && strings.ContainsAny(token, "0123456789") {
			cleaned := strings.TrimRight(strings.ReplaceAll(token, "%", ""), ".")
			if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
				confidence = v
				confResolved = true
			}
		}
	}

	if !confResolved {
		if run := digitRun.FindString(raw); run != "" {
			confidence, _ = strconv.ParseFloat(run, 64)
		}
	}

	if confidence < 0 {
		confidence = 0
	} else if confidence > 100 {
		confidence = 100
	}
	return match, confidence
}
