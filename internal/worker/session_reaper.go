package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyscover/dyscover-backend/internal/session"
)

// ReapInterval is how often the reaper sweeps the session store.
const ReapInterval = time.Minute

// SessionReaper evicts screening sessions that sat idle past their TTL.
// In-progress state is memory-only; an abandoned test is simply discarded,
// finished records are already persisted.
type SessionReaper struct {
	sessions *session.Store
	ttl      time.Duration
	log      zerolog.Logger
}

// NewSessionReaper creates a new SessionReaper.
func NewSessionReaper(sessions *session.Store, ttl time.Duration, log zerolog.Logger) *SessionReaper {
	return &SessionReaper{
		sessions: sessions,
		ttl:      ttl,
		log:      log.With().Str("component", "session_reaper").Logger(),
	}
}

// Start runs the reap loop until the context is cancelled.
func (w *SessionReaper) Start(ctx context.Context) {
	w.log.Info().Dur("ttl", w.ttl).Msg("SessionReaper started")

	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionReaper stopped")
			return
		case <-ticker.C:
			if reaped := w.sessions.ReapIdle(w.ttl); len(reaped) > 0 {
				w.log.Info().
					Int("count", len(reaped)).
					Int("remaining", w.sessions.Len()).
					Msg("Idle sessions reaped")
			}
		}
	}
}
