package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dyscover/dyscover-backend/internal/model"
)

const recordColumns = `id, username, class_name,
	question1, question2, question3, question4, question5,
	spelling_accuracy, stutter_metric, speaking_accuracy,
	handwriting_metric, handwriting_match, total_score,
	difficulty_level, created_at`

// ResultRepository handles test record data access. Records are append-only
// from the scoring engine; the dashboard's difficulty annotation is the one
// later write.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert appends a completed screening result and returns the stored row.
func (r *ResultRepository) Insert(ctx context.Context, res *model.ScreeningResult) (*model.TestRecord, error) {
	rec := &model.TestRecord{ScreeningResult: *res}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_records (
			username, class_name,
			question1, question2, question3, question4, question5,
			spelling_accuracy, stutter_metric, speaking_accuracy,
			handwriting_metric, handwriting_match, total_score
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, difficulty_level, created_at`,
		res.Username, res.ClassName,
		res.Questions[0], res.Questions[1], res.Questions[2], res.Questions[3], res.Questions[4],
		res.SpellingAccuracy, res.StutterMetric, res.SpeakingAccuracy,
		res.HandwritingMetric, res.HandwritingMatch, res.TotalScore,
	).Scan(&rec.ID, &rec.DifficultyLevel, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByUserAndClass retrieves a student's records within one class, oldest
// first so score-over-time charts read left to right.
func (r *ResultRepository) ListByUserAndClass(ctx context.Context, username, className string) ([]model.TestRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM test_records
		 WHERE username = $1 AND class_name = $2
		 ORDER BY created_at ASC`, username, className,
	)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// ListByUser retrieves every record for a student across classes.
func (r *ResultRepository) ListByUser(ctx context.Context, username string) ([]model.TestRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM test_records
		 WHERE username = $1
		 ORDER BY created_at ASC`, username,
	)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// ClassUsernames lists the distinct students that have records in a class.
func (r *ResultRepository) ClassUsernames(ctx context.Context, className string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT username FROM test_records WHERE class_name = $1 ORDER BY username`,
		className,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		usernames = append(usernames, u)
	}
	return usernames, rows.Err()
}

// UpdateDifficulty annotates every record of a student with a difficulty
// level. Returns the number of rows touched.
func (r *ResultRepository) UpdateDifficulty(ctx context.Context, username string, level int16) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_records SET difficulty_level = $1 WHERE username = $2`,
		level, username,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRecords(rows pgx.Rows) ([]model.TestRecord, error) {
	defer rows.Close()

	var records []model.TestRecord
	for rows.Next() {
		var rec model.TestRecord
		if err := rows.Scan(
			&rec.ID, &rec.Username, &rec.ClassName,
			&rec.Questions[0], &rec.Questions[1], &rec.Questions[2], &rec.Questions[3], &rec.Questions[4],
			&rec.SpellingAccuracy, &rec.StutterMetric, &rec.SpeakingAccuracy,
			&rec.HandwritingMetric, &rec.HandwritingMatch, &rec.TotalScore,
			&rec.DifficultyLevel, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
