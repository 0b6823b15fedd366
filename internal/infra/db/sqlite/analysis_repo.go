package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/db/sqlrow"
)

const schema = `
CREATE TABLE IF NOT EXISTS threat_analyses (
  seq           INTEGER PRIMARY KEY AUTOINCREMENT,
  id            TEXT    NOT NULL UNIQUE,
  created_at    TEXT    NOT NULL,
  query         TEXT    NOT NULL,
  response_json TEXT    NOT NULL,
  tags_json     TEXT    NOT NULL,
  severity      TEXT    NOT NULL,
  attack_type   TEXT    NOT NULL DEFAULT ''
);`

const selectCols = `id, created_at, query, response_json, tags_json, severity, attack_type`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Migrate creates the table when missing
func (r *AnalysisRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Append inserts one record; records are never updated
func (r *AnalysisRepository) Append(ctx context.Context, rec *domain.AnalysisRecord) error {
	row, err := sqlrow.Encode(rec)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO threat_analyses (id, created_at, query, response_json, tags_json, severity, attack_type)
VALUES (?,?,?,?,?,?,?);`
	_, err = r.db.ExecContext(ctx, q,
		row.ID, row.CreatedAt.Format(time.RFC3339Nano), row.Query,
		row.Response, row.Tags, row.Severity, row.AttackType,
	)
	return err
}

// ListAll returns every record in insertion order
func (r *AnalysisRepository) ListAll(ctx context.Context) ([]*domain.AnalysisRecord, error) {
	q := `SELECT ` + selectCols + ` FROM threat_analyses ORDER BY seq ASC;`
	return r.query(ctx, q)
}

// Paginate returns a page of records, newest first
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.AnalysisRecord, error) {
	limit, offset := sqlrow.Page(page, pageSize)
	q := `SELECT ` + selectCols + ` FROM threat_analyses ORDER BY seq DESC LIMIT ? OFFSET ?;`
	return r.query(ctx, q, limit, offset)
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.AnalysisRecord, error) {
	q := `SELECT ` + selectCols + ` FROM threat_analyses WHERE id=? LIMIT 1;`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

func (r *AnalysisRepository) query(ctx context.Context, q string, args ...any) ([]*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.AnalysisRecord, error) {
	var row sqlrow.Row
	var created string
	if err := s.Scan(&row.ID, &created, &row.Query, &row.Response, &row.Tags, &row.Severity, &row.AttackType); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	row.CreatedAt = ts
	return sqlrow.Decode(row)
}
