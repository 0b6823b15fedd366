package mysql

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
  seq           BIGINT AUTO_INCREMENT PRIMARY KEY,
  id            VARCHAR(64)  NOT NULL,
  created_at    DATETIME(6)  NOT NULL,
  query         TEXT         NOT NULL,
  response_json JSON         NOT NULL,
  tags_json     JSON         NOT NULL,
  severity      VARCHAR(16)  NOT NULL,
  attack_type   VARCHAR(32)  NOT NULL DEFAULT '',
  UNIQUE KEY uq_threat_analyses_id (id),
  KEY idx_threat_analyses_severity (severity)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

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
		return fmt.Errorf("mysql migrate: %w", err)
	}
	return nil
}

// Append inserts an analysis record. No upsert: records are never mutated.
func (r *AnalysisRepository) Append(ctx context.Context, rec *domain.AnalysisRecord) error {
	row, err := sqlrow.Encode(rec)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO threat_analyses
  (id, created_at, query, response_json, tags_json, severity, attack_type)
VALUES (?,?,?,?,?,?,?);
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
	q := `SELECT ` + selectCols + ` FROM threat_analyses ORDER BY seq DESC LIMIT ? OFFSET ?;`
	return r.query(ctx, q, limit, offset)
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.RecordID) (*domain.AnalysisRecord, error) {
	q := `SELECT ` + selectCols + ` FROM threat_analyses WHERE id=? LIMIT 1;`
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
