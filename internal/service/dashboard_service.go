package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/dyscover/dyscover-backend/internal/model"
	"github.com/dyscover/dyscover-backend/internal/repository"
)

// ErrStudentNotFound is returned when a student has no persisted records.
var ErrStudentNotFound = errors.New("student has no records")

// StudentSummary is the dashboard view of one student: full history plus
// the running averages the charts are built from.
type StudentSummary struct {
	Username       string             `json:"username"`
	Difficulty     string             `json:"difficulty"`
	TestCount      int                `json:"test_count"`
	AvgTotal       float64            `json:"avg_total_score"`
	AvgSpelling    float64            `json:"avg_spelling_accuracy"`
	AvgHandwriting float64            `json:"avg_handwriting_metric"`
	Records        []model.TestRecord `json:"records"`
}

// DashboardService backs the teacher dashboard: class rosters, per-student
// history and the difficulty annotation. It only reads what the scoring
// engine wrote, except for the difficulty level.
type DashboardService struct {
	results *repository.ResultRepository
	log     zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(results *repository.ResultRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		results: results,
		log:     log.With().Str("component", "dashboard_service").Logger(),
	}
}

// ClassStudents lists the distinct students with records in a class.
func (s *DashboardService) ClassStudents(ctx context.Context, className string) ([]string, error) {
	return s.results.ClassUsernames(ctx, className)
}

// StudentSummary aggregates a student's full test history. The difficulty
// shown is the one annotated on the earliest record.
func (s *DashboardService) StudentSummary(ctx context.Context, username string) (*StudentSummary, error) {
	records, err := s.results.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrStudentNotFound
	}

	var totalSum, spellingSum, handwritingSum float64
	for _, rec := range records {
		totalSum += rec.TotalScore
		spellingSum += rec.SpellingAccuracy
		handwritingSum += rec.HandwritingMetric
	}

	n := float64(len(records))
	return &StudentSummary{
		Username:       username,
		Difficulty:     model.DifficultyName(records[0].DifficultyLevel),
		TestCount:      len(records),
		AvgTotal:       round2(totalSum / n),
		AvgSpelling:    round2(spellingSum / n),
		AvgHandwriting: round2(handwritingSum / n),
		Records:        records,
	}, nil
}

// SetDifficulty annotates every record of a student with a difficulty level
// name (easy, medium or hard).
func (s *DashboardService) SetDifficulty(ctx context.Context, username, difficulty string) error {
	level := model.DifficultyIndex(difficulty)
	if level < 0 {
		return fmt.Errorf("invalid difficulty level %q", difficulty)
	}

	affected, err := s.results.UpdateDifficulty(ctx, username, level)
	if err != nil {
		return fmt.Errorf("update difficulty: %w", err)
	}
	if affected == 0 {
		return ErrStudentNotFound
	}

	s.log.Info().
		Str("username", username).
		Str("difficulty", difficulty).
		Msg("Difficulty level annotated")
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
