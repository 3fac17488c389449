package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyscover/dyscover-backend/internal/config"
	"github.com/dyscover/dyscover-backend/internal/model"
	"github.com/dyscover/dyscover-backend/internal/session"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeResultStore struct {
	inserted  []model.ScreeningResult
	insertErr error
}

func (f *fakeResultStore) Insert(_ context.Context, res *model.ScreeningResult) (*model.TestRecord, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, *res)
	return &model.TestRecord{ID: int64(len(f.inserted)), ScreeningResult: *res, CreatedAt: time.Now()}, nil
}

func (f *fakeResultStore) ListByUserAndClass(context.Context, string, string) ([]model.TestRecord, error) {
	return nil, nil
}

type fakeSynthesizer struct{ err error }

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, io.Reader, string) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	verdict string
	err     error
}

func (f *fakeAnalyzer) AssessHandwriting(context.Context, string, []byte, string) (string, error) {
	return f.verdict, f.err
}

type fakeClassifier struct {
	label model.StutterMetric
	err   error
}

func (f *fakeClassifier) Classify(context.Context, io.Reader, string) (model.StutterMetric, error) {
	return f.label, f.err
}

type harness struct {
	svc        *ScreeningService
	sessions   *session.Store
	results    *fakeResultStore
	tts        *fakeSynthesizer
	stt        *fakeTranscriber
	vision     *fakeAnalyzer
	classifier *fakeClassifier
}

func newHarness() *harness {
	h := &harness{
		sessions:   session.NewStore(),
		results:    &fakeResultStore{},
		tts:        &fakeSynthesizer{},
		stt:        &fakeTranscriber{},
		vision:     &fakeAnalyzer{},
		classifier: &fakeClassifier{},
	}
	cfg := &config.Config{
		DeepgramVoice:     "aura-asteria-en",
		DownstreamTimeout: time.Second,
		PromptAudioTTL:    time.Minute,
	}
	h.svc = NewScreeningService(
		h.sessions, h.results,
		h.tts, h.stt, h.vision, h.classifier,
		nil, cfg, zerolog.Nop(),
	)
	return h
}

// issue issues a prompt and returns the expected answer it registered.
func (h *harness) issue(t *testing.T, key string, q model.QuestionID) string {
	t.Helper()
	if _, err := h.svc.IssuePrompt(context.Background(), key, q); err != nil {
		t.Fatalf("IssuePrompt(%d): %v", q, err)
	}
	expected, err := h.sessions.Expected(key, q)
	if err != nil {
		t.Fatalf("Expected(%d): %v", q, err)
	}
	return expected
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestEndToEndScreeningFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	key := h.svc.StartSession("alice", "3A")

	// Q1: exact typed match.
	wordOne := h.issue(t, key, model.QuestionTypedWord)
	if err := h.svc.GradeTypedWord(key, wordOne); err != nil {
		t.Fatalf("GradeTypedWord: %v", err)
	}

	// Q2: wrong letter ("#" is never in the bank).
	h.issue(t, key, model.QuestionLetter)
	if err := h.svc.GradeLetter(key, "#"); err != nil {
		t.Fatalf("GradeLetter: %v", err)
	}

	// Q3: transcription mismatches the prompt.
	h.issue(t, key, model.QuestionSpokenWord)
	h.stt.text = "completely different words"
	if err := h.svc.GradeSpokenWord(ctx, key, nil, "answer.wav"); err != nil {
		t.Fatalf("GradeSpokenWord: %v", err)
	}

	// Q4: classifier hears a stutter.
	h.issue(t, key, model.QuestionReadPassage)
	h.classifier.label = model.StutterDetected
	if err := h.svc.GradeReadPassage(ctx, key, nil, "reading.wav"); err != nil {
		t.Fatalf("GradeReadPassage: %v", err)
	}

	// Q5: vision service confirms the handwriting.
	h.issue(t, key, model.QuestionHandwriting)
	h.vision.verdict = "yes, 82%"
	verdict, err := h.svc.GradeHandwriting(ctx, key, []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("GradeHandwriting: %v", err)
	}
	if verdict != "yes, 82%" {
		t.Fatalf("verdict = %q", verdict)
	}

	rec, err := h.svc.Finish(ctx, key)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	want := model.ScreeningResult{
		Username:  "alice",
		ClassName: "3A",
		Questions: [model.QuestionCount]model.QuestionOutcome{
			model.OutcomeCorrect, model.OutcomeIncorrect, model.OutcomeIncorrect,
			model.OutcomeIncorrect, model.OutcomeCorrect,
		},
		SpellingAccuracy:  100,
		StutterMetric:     model.StutterDetected,
		SpeakingAccuracy:  model.SpeakingNo,
		HandwritingMetric: 82,
		HandwritingMatch:  true,
		// spelling 0, stutter -20, speaking -20, handwriting 0 (from
		// spelling accuracy).
		TotalScore: 60,
	}
	if rec.ScreeningResult != want {
		t.Fatalf("record mismatch:\ngot  %+v\nwant %+v", rec.ScreeningResult, want)
	}
	if len(h.results.inserted) != 1 {
		t.Fatalf("persisted %d records, want 1", len(h.results.inserted))
	}
}

func TestGradeBeforeStart(t *testing.T) {
	h := newHarness()

	if err := h.svc.GradeTypedWord("missing-key", "apple"); !errors.Is(err, session.ErrNotStarted) {
		t.Fatalf("got %v, want ErrNotStarted", err)
	}
}

func TestGradeBeforePromptIssued(t *testing.T) {
	h := newHarness()
	key := h.svc.StartSession("alice", "3A")

	if err := h.svc.GradeTypedWord(key, "apple"); !errors.Is(err, session.ErrAnswerNotSet) {
		t.Fatalf("got %v, want ErrAnswerNotSet", err)
	}
}

func TestPartialCreditOnMisspelling(t *testing.T) {
	h := newHarness()
	key := h.svc.StartSession("alice", "3A")

	word := h.issue(t, key, model.QuestionTypedWord)
	if err := h.svc.GradeTypedWord(key, word+"x"); err != nil {
		t.Fatalf("GradeTypedWord: %v", err)
	}

	rec, err := h.svc.Finish(context.Background(), key)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.Questions[0] != model.OutcomeIncorrect {
		t.Fatalf("outcome = %v, want incorrect", rec.Questions[0])
	}
	if rec.SpellingAccuracy <= 0 || rec.SpellingAccuracy >= 100 {
		t.Fatalf("accuracy = %v, want partial credit", rec.SpellingAccuracy)
	}
}

func TestIssuePromptModality(t *testing.T) {
	h := newHarness()
	key := h.svc.StartSession("alice", "3A")

	listening := []model.QuestionID{model.QuestionTypedWord, model.QuestionLetter, model.QuestionHandwriting}
	for _, q := range listening {
		prompt, err := h.svc.IssuePrompt(context.Background(), key, q)
		if err != nil {
			t.Fatalf("IssuePrompt(%d): %v", q, err)
		}
		if prompt.Audio == nil {
			t.Fatalf("question %d: want rendered audio", q)
		}
	}

	readAloud := []model.QuestionID{model.QuestionSpokenWord, model.QuestionReadPassage}
	for _, q := range readAloud {
		prompt, err := h.svc.IssuePrompt(context.Background(), key, q)
		if err != nil {
			t.Fatalf("IssuePrompt(%d): %v", q, err)
		}
		if prompt.Audio != nil || prompt.Word == "" {
			t.Fatalf("question %d: want bare word prompt, got %+v", q, prompt)
		}
	}
}

func TestDownstreamFailureLeavesQuestionUngraded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	key := h.svc.StartSession("alice", "3A")

	word := h.issue(t, key, model.QuestionSpokenWord)

	h.stt.err = errors.New("whisper unavailable")
	err := h.svc.GradeSpokenWord(ctx, key, nil, "answer.wav")
	if !errors.Is(err, ErrDownstream) {
		t.Fatalf("got %v, want ErrDownstream", err)
	}

	// The question can be retried once the collaborator recovers.
	h.stt.err = nil
	h.stt.text = word
	if err := h.svc.GradeSpokenWord(ctx, key, nil, "answer.wav"); err != nil {
		t.Fatalf("retry: %v", err)
	}

	rec, err := h.svc.Finish(ctx, key)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.SpeakingAccuracy != model.SpeakingYes || rec.Questions[2] != model.OutcomeCorrect {
		t.Fatalf("retried grade lost: %+v", rec.ScreeningResult)
	}
}

func TestFinishWithoutGradesFails(t *testing.T) {
	h := newHarness()
	key := h.svc.StartSession("alice", "3A")

	if _, err := h.svc.Finish(context.Background(), key); !errors.Is(err, session.ErrNoData) {
		t.Fatalf("got %v, want ErrNoData", err)
	}
}

func TestFinishReturnsScoreWhenSaveFails(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	key := h.svc.StartSession("alice", "3A")

	word := h.issue(t, key, model.QuestionTypedWord)
	if err := h.svc.GradeTypedWord(key, word); err != nil {
		t.Fatalf("GradeTypedWord: %v", err)
	}

	h.results.insertErr = errors.New("connection refused")
	rec, err := h.svc.Finish(ctx, key)
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("got %v, want ErrSaveFailed", err)
	}
	if rec == nil || rec.TotalScore == 0 {
		t.Fatal("scored record must still reach the caller on save failure")
	}
}

func TestStartSessionKeysAreUnique(t *testing.T) {
	h := newHarness()

	a := h.svc.StartSession("alice", "3A")
	b := h.svc.StartSession("alice", "3A")
	if a == b {
		t.Fatal("two attempts must never share a session key")
	}
}
