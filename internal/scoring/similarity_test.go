package scoring

import "testing"

func TestPercentMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		observed string
		want     float64
	}{
		{"identical", "banana", "banana", 100},
		{"identical mixed case", "Apple", "aPPle", 100},
		{"both empty", "", "", 100},
		{"one dropped letter", "apple", "aple", 40}, // positions 3 and 4 shift, plus one missing char
		{"completely different", "cat", "dog", 0},
		{"single char match", "a", "a", 100},
		{"single char mismatch", "a", "b", 0},
		{"observed empty", "word", "", 0},
		{"expected empty", "", "word", 0},
		{"trailing extra char", "cat", "cats", 75},
		{"half wrong", "ab", "ac", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentMatch(tt.expected, tt.observed)
			if got != tt.want {
				t.Fatalf("PercentMatch(%q, %q) = %v, want %v", tt.expected, tt.observed, got, tt.want)
			}
		})
	}
}

func TestPercentMatchClamped(t *testing.T) {
	// Long garbage against a short word: raw penalty exceeds 100%.
	got := PercentMatch("hi", "zzzzzzzzzzzzzzzzzzzz")
	if got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}
