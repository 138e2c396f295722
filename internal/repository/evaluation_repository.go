package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godilite/store-audit/internal/repository/models"
)

type EvaluationRepository struct {
	db dbExecutor
	q  queries
}

func NewEvaluationRepository(db *sql.DB, driver string) *EvaluationRepository {
	return &EvaluationRepository{
		db: db,
		q: rebind(driver, queries{
			"upsert": `
				INSERT INTO evaluations (store_id, evaluator_id, answers, comment, average_rating, critical_fail, failed_questions, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (store_id, evaluator_id) DO UPDATE SET
					answers = excluded.answers,
					comment = excluded.comment,
					average_rating = excluded.average_rating,
					critical_fail = excluded.critical_fail,
					failed_questions = excluded.failed_questions,
					updated_at = excluded.updated_at
				RETURNING created_at`,
			"get": `
				SELECT store_id, evaluator_id, answers, comment, average_rating, critical_fail, failed_questions, created_at, updated_at
				FROM evaluations
				WHERE store_id = ? AND evaluator_id = ?`,
			"listByStore": `
				SELECT store_id, evaluator_id, answers, comment, average_rating, critical_fail, failed_questions, created_at, updated_at
				FROM evaluations
				WHERE store_id = ?`,
			"delete":            `DELETE FROM evaluations WHERE store_id = ? AND evaluator_id = ?`,
			"deleteAllForStore": `DELETE FROM evaluations WHERE store_id = ?`,
		}),
	}
}

// Upsert stores e keyed by (StoreID, EvaluatorID), fully replacing any
// previous version. The original CreatedAt of a replaced row is kept and
// returned on the result.
func (r *EvaluationRepository) Upsert(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	answers, err := json.Marshal(e.Answers)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("encode answers: %w", err)
	}
	failed := e.FailedCriticalQuestions
	if failed == nil {
		failed = []int{}
	}
	failedJSON, err := json.Marshal(failed)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("encode failed questions: %w", err)
	}

	var created timestamp
	err = r.db.QueryRowContext(ctx, r.q["upsert"],
		e.StoreID, e.EvaluatorID, string(answers), e.Comment, e.AverageRating, e.CriticalFail,
		string(failedJSON), e.CreatedAt, e.UpdatedAt,
	).Scan(&created)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("upsert evaluation: %w", err)
	}

	e.CreatedAt = created.Time
	e.FailedCriticalQuestions = failed
	return e, nil
}

func (r *EvaluationRepository) Get(ctx context.Context, storeID, evaluatorID string) (models.Evaluation, error) {
	e, err := scanEvaluation(r.db.QueryRowContext(ctx, r.q["get"], storeID, evaluatorID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Evaluation{}, ErrNotFound
	}
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("query evaluation: %w", err)
	}
	return e, nil
}

// ListByStore returns every committed evaluation of a store in no
// particular order.
func (r *EvaluationRepository) ListByStore(ctx context.Context, storeID string) ([]models.Evaluation, error) {
	rows, err := r.db.QueryContext(ctx, r.q["listByStore"], storeID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return out, nil
}

func (r *EvaluationRepository) Delete(ctx context.Context, storeID, evaluatorID string) error {
	res, err := r.db.ExecContext(ctx, r.q["delete"], storeID, evaluatorID)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return affectedOne(res, "delete evaluation")
}

// DeleteAllForStore removes every evaluation of a store and reports how
// many rows went away.
func (r *EvaluationRepository) DeleteAllForStore(ctx context.Context, storeID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q["deleteAllForStore"], storeID)
	if err != nil {
		return 0, fmt.Errorf("delete evaluations for store: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete evaluations for store rows affected: %w", err)
	}
	return n, nil
}

func scanEvaluation(row rowScanner) (models.Evaluation, error) {
	var (
		e                models.Evaluation
		answers, failed  string
		created, updated timestamp
	)
	err := row.Scan(&e.StoreID, &e.EvaluatorID, &answers, &e.Comment, &e.AverageRating,
		&e.CriticalFail, &failed, &created, &updated)
	if err != nil {
		return models.Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(answers), &e.Answers); err != nil {
		return models.Evaluation{}, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal([]byte(failed), &e.FailedCriticalQuestions); err != nil {
		return models.Evaluation{}, fmt.Errorf("decode failed questions: %w", err)
	}
	if e.FailedCriticalQuestions == nil {
		e.FailedCriticalQuestions = []int{}
	}
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time
	return e, nil
}
