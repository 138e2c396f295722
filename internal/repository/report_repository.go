package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/store-audit/internal/repository/models"
)

type ReportRepository struct {
	db dbExecutor
	q  queries
}

func NewReportRepository(db *sql.DB, driver string) *ReportRepository {
	return &ReportRepository{
		db: db,
		q: rebind(driver, queries{
			"create": `
				INSERT INTO reports (id, store_id, evaluator_id, reported_by, reason, status, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"listByStore": `
				SELECT id, store_id, evaluator_id, reported_by, reason, status, created_at
				FROM reports
				WHERE store_id = ?
				ORDER BY created_at DESC, id ASC`,
			"deleteAllForStore": `DELETE FROM reports WHERE store_id = ?`,
		}),
	}
}

func (r *ReportRepository) Create(ctx context.Context, report models.Report) (models.Report, error) {
	_, err := r.db.ExecContext(ctx, r.q["create"],
		report.ID, report.StoreID, report.EvaluatorID, report.ReportedBy, report.Reason, report.Status, report.CreatedAt)
	if err != nil {
		return models.Report{}, fmt.Errorf("insert report: %w", err)
	}
	return report, nil
}

// ListByStore returns the reports raised against a store's evaluations,
// newest first.
func (r *ReportRepository) ListByStore(ctx context.Context, storeID string) ([]models.Report, error) {
	rows, err := r.db.QueryContext(ctx, r.q["listByStore"], storeID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var (
			rep     models.Report
			created timestamp
		)
		if err := rows.Scan(&rep.ID, &rep.StoreID, &rep.EvaluatorID, &rep.ReportedBy, &rep.Reason, &rep.Status, &created); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		rep.CreatedAt = created.Time
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) DeleteAllForStore(ctx context.Context, storeID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q["deleteAllForStore"], storeID)
	if err != nil {
		return 0, fmt.Errorf("delete reports for store: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete reports for store rows affected: %w", err)
	}
	return n, nil
}
