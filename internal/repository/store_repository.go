package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/godilite/store-audit/internal/repository/models"
)

type StoreRepository struct {
	db dbExecutor
	q  queries
}

func NewStoreRepository(db *sql.DB, driver string) *StoreRepository {
	return &StoreRepository{
		db: db,
		q: rebind(driver, queries{
			"create": `
				INSERT INTO stores (id, name, city, category, rating_avg, rating_count, critical_count, created_at, updated_at)
				VALUES (?, ?, ?, ?, 0, 0, 0, ?, ?)`,
			"get": `
				SELECT id, name, city, category, rating_avg, rating_count, critical_count, created_at, updated_at
				FROM stores
				WHERE id = ?`,
			"list": `
				SELECT id, name, city, category, rating_avg, rating_count, critical_count, created_at, updated_at
				FROM stores
				ORDER BY created_at DESC, id ASC`,
			"delete": `DELETE FROM stores WHERE id = ?`,
			"updateSummary": `
				UPDATE stores
				SET rating_avg = ?, rating_count = ?, critical_count = ?, updated_at = ?
				WHERE id = ?`,
		}),
	}
}

// Create inserts a store with a zeroed summary.
func (r *StoreRepository) Create(ctx context.Context, store models.Store) (models.Store, error) {
	_, err := r.db.ExecContext(ctx, r.q["create"],
		store.ID, store.Name, store.City, store.Category, store.CreatedAt, store.CreatedAt)
	if err != nil {
		return models.Store{}, fmt.Errorf("insert store: %w", err)
	}
	store.Summary = models.StoreSummary{StoreID: store.ID, UpdatedAt: store.CreatedAt}
	return store, nil
}

func (r *StoreRepository) Get(ctx context.Context, id string) (models.Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, r.q["get"], id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Store{}, ErrNotFound
	}
	if err != nil {
		return models.Store{}, fmt.Errorf("query store: %w", err)
	}
	return s, nil
}

// List returns every store, newest first.
func (r *StoreRepository) List(ctx context.Context) ([]models.Store, error) {
	rows, err := r.db.QueryContext(ctx, r.q["list"])
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var out []models.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return out, nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q["delete"], id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return affectedOne(res, "delete store")
}

// UpdateSummary overwrites all summary fields of a store in one statement.
func (r *StoreRepository) UpdateSummary(ctx context.Context, summary models.StoreSummary) error {
	res, err := r.db.ExecContext(ctx, r.q["updateSummary"],
		summary.RatingAvg, summary.RatingCount, summary.CriticalCount, summary.UpdatedAt, summary.StoreID)
	if err != nil {
		return fmt.Errorf("update store summary: %w", err)
	}
	return affectedOne(res, "update store summary")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (models.Store, error) {
	var (
		s                models.Store
		created, updated timestamp
	)
	err := row.Scan(&s.ID, &s.Name, &s.City, &s.Category,
		&s.Summary.RatingAvg, &s.Summary.RatingCount, &s.Summary.CriticalCount,
		&created, &updated)
	if err != nil {
		return models.Store{}, err
	}
	s.CreatedAt = created.Time
	s.Summary.StoreID = s.ID
	s.Summary.UpdatedAt = updated.Time
	return s, nil
}
