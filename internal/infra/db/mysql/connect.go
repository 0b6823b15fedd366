package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/threatlens/internal/infra/db/sqlrow"
)

// Connect opens a go-sql-driver DSN (see config.MySQLDSN)
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	return sqlrow.OpenPool(ctx, "mysql", dsn, sqlrow.DefaultPool)
}
