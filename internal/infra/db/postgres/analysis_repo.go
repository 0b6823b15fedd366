package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/db/sqlrow"
)

const schema = `
CREATE TABLE IF NOT EXISTS threat_analyses (
  seq           BIGSERIAL PRIMARY KEY,
  id            TEXT        NOT NULL UNIQUE,
  created_at    TIMESTAMPTZ NOT NULL,
  query         TEXT        NOT NULL,
  response_json JSONB       NOT NULL,
  tags_json     JSONB       NOT NULL,
  severity      TEXT        NOT NULL,
  attack_type   TEXT        NOT NULL DEFAULT ''
);`

const selectCols = `id, created_at, query, response_json::text, tags_json::text, severity, attack_type`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Migrate creates the table when missing
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Append inserts an analysis record; a duplicate id is an error
func (r *AnalysisRepository) Append(ctx context.Context, rec *domain.AnalysisRecord) error {
	row, err := sqlrow.Encode(rec)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO threat_analyses
  (id, created_at, query, response_json, tags_json, severity, attack_type)
VALUES ($1,$2,$3,$4::jsonb,$5::jsonb,$6,$7);
`
	_, err = r.db.ExecContext(ctx, q,
		row.ID, row.CreatedAt, row.Query, row.Response, row.Tags, row.Severity, row.AttackType)
	return err
}

// ListAll returns every record in insertion order
func (r *AnalysisRepository) ListAll(ctx context.Context) ([]*domain.AnalysisRecord, error) {
	q := `SELECT ` + selectCols + ` FROM threat_analyses ORDER BY seq ASC;`
	return r.query(ctx, q)
}

// Paginate returns a page of analysis records ordered newest first
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.AnalysisRecord, error) {
	limit, offset := sqlrow.Page(page, pageSize)
	q := `SELECT ` + selectCols + ` FROM threat_analyses ORDER BY seq DESC LIMIT $1 OFFSET $2;`
	return r.query(ctx, q, limit, offset)
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.AnalysisRecord, error) {
	q := `SELECT ` + selectCols + ` FROM threat_analyses WHERE id=$1 LIMIT 1;`
	var row sqlrow.Row
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(
		&row.ID, &row.CreatedAt, &row.Query, &row.Response, &row.Tags, &row.Severity, &row.AttackType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sqlrow.Decode(row)
}

func (r *AnalysisRepository) query(ctx context.Context, q string, args ...any) ([]*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		var row sqlrow.Row
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.Query, &row.Response, &row.Tags, &row.Severity, &row.AttackType); err != nil {
			return nil, err
		}
		rec, err := sqlrow.Decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
