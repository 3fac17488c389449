// Package words holds the prompt banks for the five screening questions.
// Prompts are picked at random per issued question; the chosen value is
// recorded as the session's expected answer at issue time.
package words

import "math/rand/v2"

// TypedWords are spoken to the test-taker, who types what they heard.
var TypedWords = []string{
	"apple", "basket", "candle", "dragon", "elephant",
	"forest", "garden", "hammer", "island", "jungle",
	"kitten", "ladder", "mirror", "napkin", "orange",
}

// Letters are spoken one at a time for the single-letter question.
var Letters = []string{
	"a", "b", "d", "e", "g", "m", "n", "p", "q", "r", "s", "t", "u", "w",
}

// SpokenWords are shown as text and must be read aloud.
var SpokenWords = []string{
	"banana", "bicycle", "crocodile", "dinosaur", "library",
	"mountain", "sandwich", "telephone", "umbrella", "window",
}

// ReadAloudPassages are read aloud and checked for stuttering.
var ReadAloudPassages = []string{
	"The quick brown fox jumps over the lazy dog.",
	"She sells seashells by the seashore.",
	"A big black bug bit a big black bear.",
	"Peter picked a peck of pickled peppers.",
}

// HandwritingPhrases are spoken to the test-taker, who writes them by hand.
var HandwritingPhrases = []string{
	"Apple", "Bridge", "Castle", "Flower", "Planet", "Rocket", "Spring",
}

// Pick returns a uniformly random element of bank.
func Pick(bank []string) string {
	return bank[rand.IntN(len(bank))]
}
