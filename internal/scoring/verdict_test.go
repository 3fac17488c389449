package scoring

import "testing"

func TestParseHandwritingVerdict(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantMatch bool
		wantConf  float64
	}{
		{"canonical", "yes, 82%", true, 82},
		{"no match", "no, 15%", false, 15},
		{"uppercase and trailing dot", "Yes, 90%.", true, 90},
		{"decimal confidence", "yes, 87.5%", true, 87.5},
		{"full marks", "yes, 100%", true, 100},
		{"bare number only", "73", false, 73},
		{"prose around the verdict", "The sample matches: yes. Similarity 64%.", true, 64},
		{"digit run fallback", "score is roughly 4 2 percent-ish", false, 4},
		{"no digits at all", "yes, very close", true, 0},
		{"unresolvable", "the model declined to answer", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, conf := ParseHandwritingVerdict(tt.raw)
			if match != tt.wantMatch || conf != tt.wantConf {
				t.Fatalf("ParseHandwritingVerdict(%q) = (%v, %v), want (%v, %v)",
					tt.raw, match, conf, tt.wantMatch, tt.wantConf)
			}
		})
	}
}
