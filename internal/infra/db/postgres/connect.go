package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/threatlens/internal/infra/db/sqlrow"
)

// Connect opens a postgres:// URL through lib/pq
func Connect(ctx context.Context, url string) (*sql.DB, error) {
	return sqlrow.OpenPool(ctx, "postgres", url, sqlrow.DefaultPool)
}
