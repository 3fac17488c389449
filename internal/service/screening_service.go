package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dyscover/dyscover-backend/internal/config"
	"github.com/dyscover/dyscover-backend/internal/model"
	"github.com/dyscover/dyscover-backend/internal/scoring"
	"github.com/dyscover/dyscover-backend/internal/session"
	"github.com/dyscover/dyscover-backend/internal/words"
)

// Sentinel errors surfaced to handlers.
var (
	// ErrDownstream wraps a failed or timed-out collaborator call. The
	// question's fields are left untouched so the test-taker can retry.
	ErrDownstream = errors.New("downstream service error")
	// ErrSaveFailed wraps a failed durable write at finish. The computed
	// score still reaches the caller.
	ErrSaveFailed = errors.New("record save failed")
)

// Collaborator interfaces. Implementations live in internal/speech,
// internal/vision and internal/classifier.
type (
	// Synthesizer renders prompt text to audio.
	Synthesizer interface {
		Synthesize(ctx context.Context, text string) ([]byte, error)
	}

	// Transcriber turns uploaded speech audio into text.
	Transcriber interface {
		Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	}

	// HandwritingAnalyzer returns a free-text verdict for a handwriting image.
	HandwritingAnalyzer interface {
		AssessHandwriting(ctx context.Context, expected string, image []byte, mimeType string) (string, error)
	}

	// StutterClassifier labels speech audio as stutter / no-stutter.
	StutterClassifier interface {
		Classify(ctx context.Context, audio io.Reader, filename string) (model.StutterMetric, error)
	}

	// ResultStore persists completed records.
	ResultStore interface {
		Insert(ctx context.Context, res *model.ScreeningResult) (*model.TestRecord, error)
		ListByUserAndClass(ctx context.Context, username, className string) ([]model.TestRecord, error)
	}
)

// Prompt is an issued question prompt: the audio rendering for listening
// questions, or the bare word for read-aloud questions.
type Prompt struct {
	Word  string
	Audio []byte
}

// ScreeningService drives the screening test: session lifecycle, prompt
// issuance, the five modality graders and the final aggregation.
//
// Collaborator calls always happen before the session record is touched, so
// no session lock is ever held across a network round trip, and a failed
// call leaves the question ungraded.
type ScreeningService struct {
	sessions   *session.Store
	results    ResultStore
	tts        Synthesizer
	stt        Transcriber
	vision     HandwritingAnalyzer
	classifier StutterClassifier
	rdb        *redis.Client
	cfg        *config.Config
	log        zerolog.Logger
}

// NewScreeningService creates a new ScreeningService. rdb may be nil to
// disable the prompt audio cache.
func NewScreeningService(
	sessions *session.Store,
	results ResultStore,
	tts Synthesizer,
	stt Transcriber,
	vision HandwritingAnalyzer,
	classifier StutterClassifier,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *ScreeningService {
	return &ScreeningService{
		sessions:   sessions,
		results:    results,
		tts:        tts,
		stt:        stt,
		vision:     vision,
		classifier: classifier,
		rdb:        rdb,
		cfg:        cfg,
		log:        log.With().Str("component", "screening_service").Logger(),
	}
}

// StartSession begins a screening attempt and returns its session key.
// Starting again under the same key would reset it; every call here mints a
// fresh key, so concurrent test-takers can never share state.
func (s *ScreeningService) StartSession(username, className string) string {
	key := uuid.New().String()
	s.sessions.Start(key, username, className)

	s.log.Info().
		Str("session", key).
		Str("username", username).
		Str("class", className).
		Msg("Screening session started")
	return key
}

// IssuePrompt picks the prompt for a question, records it as the expected
// answer, and renders it. Listening questions (1, 2 and 5) return audio;
// read-aloud questions (3 and 4) return the bare word for on-screen display.
// Re-issuing a question picks a fresh prompt and overwrites the expectation.
func (s *ScreeningService) IssuePrompt(ctx context.Context, key string, q model.QuestionID) (*Prompt, error) {
	var word string
	switch q {
	case model.QuestionTypedWord:
		word = words.Pick(words.TypedWords)
	case model.QuestionLetter:
		word = words.Pick(words.Letters)
	case model.QuestionSpokenWord:
		word = words.Pick(words.SpokenWords)
	case model.QuestionReadPassage:
		word = words.Pick(words.ReadAloudPassages)
	case model.QuestionHandwriting:
		word = words.Pick(words.HandwritingPhrases)
	default:
		return nil, fmt.Errorf("unknown question %d", q)
	}

	if err := s.sessions.SetExpected(key, q, word); err != nil {
		return nil, err
	}

	prompt := &Prompt{Word: word}
	if q == model.QuestionSpokenWord || q == model.QuestionReadPassage {
		return prompt, nil
	}

	audio, err := s.renderAudio(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", ErrDownstream, err)
	}
	prompt.Audio = audio
	return prompt, nil
}

// renderAudio synthesizes prompt speech, caching renderings per voice+text
// so repeated sessions do not re-bill the TTS service.
func (s *ScreeningService) renderAudio(ctx context.Context, text string) ([]byte, error) {
	cacheKey := config.CacheKey.PromptAudioKey(s.cfg.DeepgramVoice, text)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		} else if err != redis.Nil {
			s.log.Warn().Err(err).Msg("Prompt audio cache read failed")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownstreamTimeout)
	defer cancel()

	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, audio, s.cfg.PromptAudioTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Prompt audio cache write failed")
		}
	}
	return audio, nil
}

// GradeTypedWord grades question 1: exact case-insensitive match earns full
// spelling accuracy; anything else records the positional similarity score.
func (s *ScreeningService) GradeTypedWord(key, answer string) error {
	expected, err := s.sessions.Expected(key, model.QuestionTypedWord)
	if err != nil {
		return err
	}

	answer = strings.TrimSpace(answer)
	return s.sessions.Apply(key, func(r *model.ScreeningResult) {
		if strings.EqualFold(answer, expected) {
			r.Questions[0] = model.OutcomeCorrect
			r.SpellingAccuracy = 100
		} else {
			r.Questions[0] = model.OutcomeIncorrect
			r.SpellingAccuracy = scoring.PercentMatch(expected, answer)
		}
	})
}

// GradeLetter grades question 2: exact case-insensitive match only, no
// partial credit.
func (s *ScreeningService) GradeLetter(key, answer string) error {
	expected, err := s.sessions.Expected(key, model.QuestionLetter)
	if err != nil {
		return err
	}

	answer = strings.TrimSpace(answer)
	return s.sessions.Apply(key, func(r *model.ScreeningResult) {
		if strings.EqualFold(answer, expected) {
			r.Questions[1] = model.OutcomeCorrect
		} else {
			r.Questions[1] = model.OutcomeIncorrect
		}
	})
}

// GradeSpokenWord grades question 3: the uploaded audio is transcribed and
// compared case-insensitively against the prompted word.
func (s *ScreeningService) GradeSpokenWord(ctx context.Context, key string, audio io.Reader, filename string) error {
	expected, err := s.sessions.Expected(key, model.QuestionSpokenWord)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownstreamTimeout)
	defer cancel()

	text, err := s.stt.Transcribe(ctx, audio, filename)
	if err != nil {
		return fmt.Errorf("%w: transcribe: %v", ErrDownstream, err)
	}

	match := strings.EqualFold(strings.TrimSpace(text), expected)
	return s.sessions.Apply(key, func(r *model.ScreeningResult) {
		if match {
			r.Questions[2] = model.OutcomeCorrect
			r.SpeakingAccuracy = model.SpeakingYes
		} else {
			r.Questions[2] = model.OutcomeIncorrect
			r.SpeakingAccuracy = model.SpeakingNo
		}
	})
}

// GradeReadPassage grades question 4: the classifier's binary label is
// recorded verbatim; a clean (no-stutter) reading counts as correct.
func (s *ScreeningService) GradeReadPassage(ctx context.Context, key string, audio io.Reader, filename string) error {
	// The label alone decides the outcome, but the prompt must have been
	// issued in this session like every other question.
	if _, err := s.sessions.Expected(key, model.QuestionReadPassage); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownstreamTimeout)
	defer cancel()

	label, err := s.classifier.Classify(ctx, audio, filename)
	if err != nil {
		return fmt.Errorf("%w: classify: %v", ErrDownstream, err)
	}

	return s.sessions.Apply(key, func(r *model.ScreeningResult) {
		r.StutterMetric = label
		if label == model.StutterNone {
			r.Questions[3] = model.OutcomeCorrect
		} else {
			r.Questions[3] = model.OutcomeIncorrect
		}
	})
}

// GradeHandwriting grades question 5: the vision service's free-text verdict
// is parsed into a match flag and a confidence percentage. Returns the raw
// verdict for the client to display.
func (s *ScreeningService) GradeHandwriting(ctx context.Context, key string, image []byte, mimeType string) (string, error) {
	expected, err := s.sessions.Expected(key, model.QuestionHandwriting)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownstreamTimeout)
	defer cancel()

	verdict, err := s.vision.AssessHandwriting(ctx, expected, image, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: assess handwriting: %v", ErrDownstream, err)
	}

	match, confidence := scoring.ParseHandwritingVerdict(verdict)
	err = s.sessions.Apply(key, func(r *model.ScreeningResult) {
		r.HandwritingMatch = match
		r.HandwritingMetric = confidence
		if match {
			r.Questions[4] = model.OutcomeCorrect
		} else {
			r.Questions[4] = model.OutcomeIncorrect
		}
	})
	if err != nil {
		return "", err
	}
	return verdict, nil
}

// Finish freezes the session, computes the composite score and appends the
// record to durable storage. When the write fails the scored record is still
// returned alongside ErrSaveFailed so the caller keeps the result.
func (s *ScreeningService) Finish(ctx context.Context, key string) (*model.TestRecord, error) {
	res, err := s.sessions.Finish(key, scoring.Composite)
	if err != nil {
		return nil, err
	}

	rec, err := s.results.Insert(ctx, &res)
	if err != nil {
		s.log.Error().Err(err).Str("session", key).Msg("Record save failed")
		return &model.TestRecord{ScreeningResult: res}, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	s.log.Info().
		Str("session", key).
		Str("username", res.Username).
		Float64("total_score", res.TotalScore).
		Msg("Screening finished")
	return rec, nil
}

// History returns a student's persisted records within a class.
func (s *ScreeningService) History(ctx context.Context, username, className string) ([]model.TestRecord, error) {
	return s.results.ListByUserAndClass(ctx, username, className)
}
