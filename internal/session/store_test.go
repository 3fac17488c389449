package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dyscover/dyscover-backend/internal/model"
)

func fixedScore(*model.ScreeningResult) float64 { return 42 }

func TestGradeBeforeStart(t *testing.T) {
	s := NewStore()

	if err := s.Apply("nobody", func(*model.ScreeningResult) {}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Apply before start: got %v, want ErrNotStarted", err)
	}
	if _, err := s.Expected("nobody", model.QuestionTypedWord); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Expected before start: got %v, want ErrNotStarted", err)
	}
	if _, err := s.Finish("nobody", fixedScore); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Finish before start: got %v, want ErrNotStarted", err)
	}
}

func TestGradeBeforePromptIssued(t *testing.T) {
	s := NewStore()
	s.Start("k", "alice", "3A")

	if _, err := s.Expected("k", model.QuestionTypedWord); !errors.Is(err, ErrAnswerNotSet) {
		t.Fatalf("got %v, want ErrAnswerNotSet", err)
	}
}

func TestExpectedRoundTripAndOverwrite(t *testing.T) {
	s := NewStore()
	s.Start("k", "alice", "3A")

	if err := s.SetExpected("k", model.QuestionTypedWord, "apple"); err != nil {
		t.Fatalf("SetExpected: %v", err)
	}
	if err := s.SetExpected("k", model.QuestionTypedWord, "banana"); err != nil {
		t.Fatalf("SetExpected overwrite: %v", err)
	}

	got, err := s.Expected("k", model.QuestionTypedWord)
	if err != nil {
		t.Fatalf("Expected: %v", err)
	}
	if got != "banana" {
		t.Fatalf("got %q, want the overwritten value", got)
	}
}

func TestStartResetsInProgressSession(t *testing.T) {
	s := NewStore()
	s.Start("k", "alice", "3A")

	if err := s.SetExpected("k", model.QuestionLetter, "b"); err != nil {
		t.Fatalf("SetExpected: %v", err)
	}
	if err := s.Apply("k", func(r *model.ScreeningResult) {
		r.Questions[0] = model.OutcomeCorrect
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	s.Start("k", "alice", "3A")

	if _, err := s.Expected("k", model.QuestionLetter); !errors.Is(err, ErrAnswerNotSet) {
		t.Fatalf("registry survived restart: %v", err)
	}
	if _, err := s.Finish("k", fixedScore); !errors.Is(err, ErrNoData) {
		t.Fatalf("graded count survived restart: %v", err)
	}
}

func TestFinishLifecycle(t *testing.T) {
	s := NewStore()
	s.Start("k", "alice", "3A")

	if _, err := s.Finish("k", fixedScore); !errors.Is(err, ErrNoData) {
		t.Fatalf("Finish on untouched session: got %v, want ErrNoData", err)
	}

	if err := s.Apply("k", func(r *model.ScreeningResult) {
		r.Questions[0] = model.OutcomeCorrect
		r.SpellingAccuracy = 100
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	rec, err := s.Finish("k", fixedScore)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.TotalScore != 42 {
		t.Fatalf("TotalScore = %v, want aggregate result", rec.TotalScore)
	}
	if rec.Username != "alice" || rec.ClassName != "3A" {
		t.Fatalf("record identity lost: %+v", rec)
	}

	// Frozen: no further grading or finishing.
	if err := s.Apply("k", func(*model.ScreeningResult) {}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Apply after finish: got %v, want ErrNotStarted", err)
	}
	if _, err := s.Finish("k", fixedScore); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("double Finish: got %v, want ErrNotStarted", err)
	}
}

func TestConcurrentSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		key := fmt.Sprintf("taker-%d", w)
		username := fmt.Sprintf("user-%d", w)
		s.Start(key, username, "3A")

		wg.Add(1)
		go func(key string, acc float64) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_ = s.Apply(key, func(r *model.ScreeningResult) {
					r.SpellingAccuracy = acc
					r.Questions[0] = model.OutcomeCorrect
				})
			}
		}(key, float64(w))
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		key := fmt.Sprintf("taker-%d", w)
		rec, err := s.Finish(key, fixedScore)
		if err != nil {
			t.Fatalf("Finish(%s): %v", key, err)
		}
		if rec.SpellingAccuracy != float64(w) {
			t.Fatalf("session %s observed another session's write: accuracy %v", key, rec.SpellingAccuracy)
		}
		if rec.Username != fmt.Sprintf("user-%d", w) {
			t.Fatalf("session %s holds wrong identity %q", key, rec.Username)
		}
	}
}

func TestReapIdle(t *testing.T) {
	s := NewStore()
	s.Start("old", "alice", "3A")
	s.Start("fresh", "bob", "3A")

	// Backdate the first session.
	s.mu.Lock()
	s.sessions["old"].touched = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	reaped := s.ReapIdle(time.Hour)
	if len(reaped) != 1 || reaped[0] != "old" {
		t.Fatalf("reaped %v, want [old]", reaped)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if err := s.Apply("old", func(*model.ScreeningResult) {}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("reaped session still gradable: %v", err)
	}
	if err := s.Apply("fresh", func(*model.ScreeningResult) {}); err != nil {
		t.Fatalf("fresh session lost: %v", err)
	}
}
