package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/store-audit/pkg/database"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// dbExecutor is the subset of *sql.DB the repositories query through.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories groups the repositories sharing one connection pool.
type Repositories struct {
	Stores      *StoreRepository
	Evaluations *EvaluationRepository
	Reports     *ReportRepository
}

// NewRepositories builds every repository on db. driver selects the
// placeholder syntax of the generated queries.
func NewRepositories(db *sql.DB, driver string) *Repositories {
	return &Repositories{
		Stores:      NewStoreRepository(db, driver),
		Evaluations: NewEvaluationRepository(db, driver),
		Reports:     NewReportRepository(db, driver),
	}
}

type queries map[string]string

func rebind(driver string, q queries) queries {
	out := make(queries, len(q))
	for name, query := range q {
		out[name] = database.Rebind(driver, query)
	}
	return out
}

func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// timestamp scans TIMESTAMP columns from both drivers. go-sqlite3 only
// converts columns with a declared type, so expression results such as
// RETURNING values may come back as text.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", src)
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognised format %q", s)
}
