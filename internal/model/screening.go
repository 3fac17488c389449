package model

import "time"

// QuestionOutcome enumerates the graded verdict for a single question.
type QuestionOutcome string

const (
	OutcomeCorrect    QuestionOutcome = "correct"
	OutcomeIncorrect  QuestionOutcome = "incorrect"
	OutcomeUnanswered QuestionOutcome = "unanswered"
)

// StutterMetric is the verbatim label from the stutter classifier.
type StutterMetric string

const (
	StutterDetected StutterMetric = "stutter"
	StutterNone     StutterMetric = "no_stutter"
	StutterUnknown  StutterMetric = "unknown"
)

// SpeakingAccuracy records whether the spoken word matched the prompt.
type SpeakingAccuracy string

const (
	SpeakingYes     SpeakingAccuracy = "yes"
	SpeakingNo      SpeakingAccuracy = "no"
	SpeakingUnknown SpeakingAccuracy = "unknown"
)

// QuestionID identifies one of the five screening questions.
type QuestionID int

const (
	QuestionTypedWord    QuestionID = 1 // type the spoken word
	QuestionLetter       QuestionID = 2 // type the spoken letter
	QuestionSpokenWord   QuestionID = 3 // read the word aloud
	QuestionReadPassage  QuestionID = 4 // read aloud, checked for stuttering
	QuestionHandwriting  QuestionID = 5 // write the phrase by hand
	QuestionCount                   = 5
)

// Valid reports whether q is one of the five screening questions.
func (q QuestionID) Valid() bool {
	return q >= QuestionTypedWord && q <= QuestionHandwriting
}

// ScreeningResult is one test-taker's in-progress or frozen screening record.
// Fields are owned by exactly one grader each; outcomes are indexed by
// question number (Questions[0] is question 1).
type ScreeningResult struct {
	Username          string                         `json:"username"`
	ClassName         string                         `json:"class_name"`
	Questions         [QuestionCount]QuestionOutcome `json:"questions"`
	SpellingAccuracy  float64                        `json:"spelling_accuracy"`
	StutterMetric     StutterMetric                  `json:"stutter_metric"`
	SpeakingAccuracy  SpeakingAccuracy               `json:"speaking_accuracy"`
	HandwritingMetric float64                        `json:"handwriting_metric"`
	HandwritingMatch  bool                           `json:"handwriting_match"`
	TotalScore        float64                        `json:"total_score"`
}

// NewScreeningResult returns a record with every field at its pre-grading
// default: outcomes unanswered, metrics zero, categorical metrics unknown.
func NewScreeningResult(username, className string) ScreeningResult {
	r := ScreeningResult{
		Username:         username,
		ClassName:        className,
		StutterMetric:    StutterUnknown,
		SpeakingAccuracy: SpeakingUnknown,
	}
	for i := range r.Questions {
		r.Questions[i] = OutcomeUnanswered
	}
	return r
}

// DifficultyLevels maps the stored difficulty index to its display name.
// The index is annotated by the teacher dashboard, never by the scoring
// engine.
var DifficultyLevels = []string{"easy", "medium", "hard"}

// DifficultyName returns the display name for a stored difficulty index.
func DifficultyName(level int16) string {
	if level < 0 || int(level) >= len(DifficultyLevels) {
		return DifficultyLevels[0]
	}
	return DifficultyLevels[level]
}

// DifficultyIndex resolves a display name back to its stored index.
// Returns -1 when the name is not a known level.
func DifficultyIndex(name string) int16 {
	for i, lvl := range DifficultyLevels {
		if lvl == name {
			return int16(i)
		}
	}
	return -1
}

// TestRecord is a persisted screening result. Rows are append-only; the only
// later write is the dashboard's difficulty annotation.
type TestRecord struct {
	ID              int64     `json:"id"`
	ScreeningResult
	DifficultyLevel int16     `json:"difficulty_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// StartSessionRequest is the payload for starting a screening session.
type StartSessionRequest struct {
	Username  string `json:"username" binding:"required,min=1,max=100"`
	ClassName string `json:"class_name" binding:"required,min=1,max=100"`
}

// TypedWordAnswerRequest is the payload for grading question 1.
type TypedWordAnswerRequest struct {
	Answer string `json:"question_one_answer" binding:"required,max=100"`
}

// LetterAnswerRequest is the payload for grading question 2.
type LetterAnswerRequest struct {
	Answer string `json:"question_two_answer" binding:"required,max=10"`
}

// UpdateDifficultyRequest is the dashboard payload for annotating a
// student's difficulty level.
type UpdateDifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}
