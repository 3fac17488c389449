package session

import (
	"errors"
	"sync"
	"time"

	"github.com/dyscover/dyscover-backend/internal/model"
)

// Sentinel errors for session state-machine misuse. Handlers map these to
// client errors.
var (
	// ErrNotStarted is returned when a session key has no in-progress
	// session: it was never started, already finished, or reaped.
	ErrNotStarted = errors.New("session not started")
	// ErrAnswerNotSet is returned when a question is graded before its
	// prompt was issued in the current session.
	ErrAnswerNotSet = errors.New("expected answer not set")
	// ErrNoData is returned by Finish when no question was ever graded.
	ErrNoData = errors.New("no graded answers in session")
)

type state int

const (
	stateInProgress state = iota
	stateFinished
)

type entry struct {
	mu       sync.Mutex
	state    state
	result   model.ScreeningResult
	expected map[model.QuestionID]string
	graded   int
	touched  time.Time
}

// Store holds every live screening session, keyed per test-taker.
//
// Each session carries its own lock, so grading and finish calls on one key
// are serialized while distinct keys never contend. In-progress state is
// memory-only on purpose: finished records go to Postgres, abandoned
// sessions are reaped.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Start creates the session for key, or resets it if one is already in
// progress: the prior record and its expected answers are discarded.
func (s *Store) Start(key, username, className string) {
	s.mu.Lock()
	e, ok := s.sessions[key]
	if !ok {
		e = &entry{}
		s.sessions[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = stateInProgress
	e.result = model.NewScreeningResult(username, className)
	e.expected = make(map[model.QuestionID]string)
	e.graded = 0
	e.touched = time.Now()
}

func (s *Store) lookup(key string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotStarted
	}
	return e, nil
}

// SetExpected records the expected answer for a question, overwriting any
// prior expectation set since the last Start.
func (s *Store) SetExpected(key string, q model.QuestionID, value string) error {
	e, err := s.lookup(key)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateInProgress {
		return ErrNotStarted
	}
	e.expected[q] = value
	e.touched = time.Now()
	return nil
}

// Expected returns the expected answer for a question, or ErrAnswerNotSet
// if its prompt was never issued in the current session.
func (s *Store) Expected(key string, q model.QuestionID) (string, error) {
	e, err := s.lookup(key)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateInProgress {
		return "", ErrNotStarted
	}
	v, ok := e.expected[q]
	if !ok {
		return "", ErrAnswerNotSet
	}
	e.touched = time.Now()
	return v, nil
}

// Apply runs mutate on the session record under the session lock. Callers
// must resolve any collaborator result before calling Apply; mutate must not
// block.
func (s *Store) Apply(key string, mutate func(*model.ScreeningResult)) error {
	e, err := s.lookup(key)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateInProgress {
		return ErrNotStarted
	}
	mutate(&e.result)
	e.graded++
	e.touched = time.Now()
	return nil
}

// Finish freezes the session: aggregate computes the total score from the
// record, the session transitions out of InProgress, and a copy of the
// completed record is returned for persistence. Fails with ErrNoData when
// nothing was ever graded.
func (s *Store) Finish(key string, aggregate func(*model.ScreeningResult) float64) (model.ScreeningResult, error) {
	e, err := s.lookup(key)
	if err != nil {
		return model.ScreeningResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != stateInProgress {
		return model.ScreeningResult{}, ErrNotStarted
	}
	if e.graded == 0 {
		return model.ScreeningResult{}, ErrNoData
	}

	e.result.TotalScore = aggregate(&e.result)
	e.state = stateFinished
	e.touched = time.Now()
	return e.result, nil
}

// ReapIdle removes sessions untouched for longer than maxIdle and returns
// their keys. Finished sessions are already persisted; in-progress ones are
// abandoned attempts.
func (s *Store) ReapIdle(maxIdle time.Duration) []string {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped []string
	for key, e := range s.sessions {
		e.mu.Lock()
		stale := e.touched.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.sessions, key)
			reaped = append(reaped, key)
		}
	}
	return reaped
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
