package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/threatlens/internal/config"
	"github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/db/mysql"
	"github.com/bryanwahyu/threatlens/internal/infra/db/postgres"
	"github.com/bryanwahyu/threatlens/internal/infra/db/sqlite"
)

// Store is a migrated repository plus the handle it runs on
type Store struct {
	DB     *sql.DB
	Repo   threats.Repository
	Driver string
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// Open connects to the backend chosen by cfg.Driver() and creates the table.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	driver := cfg.Driver()

	var (
		conn *sql.DB
		err  error
	)
	switch driver {
	case "postgres":
		conn, err = postgres.Connect(ctx, cfg.Database.URL)
	case "mysql":
		conn, err = mysql.Connect(ctx, cfg.MySQLDSN())
	default:
		conn, err = sqlite.Connect(ctx, cfg.SQLitePath())
	}
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", driver, err)
	}

	var repo interface {
		threats.Repository
		migrator
	}
	switch driver {
	case "postgres":
		repo = postgres.NewAnalysisRepository(conn)
	case "mysql":
		repo = mysql.NewAnalysisRepository(conn)
	default:
		repo = sqlite.NewAnalysisRepository(conn)
	}
	if err := repo.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{DB: conn, Repo: repo, Driver: driver}, nil
}

func (s *Store) Close() error { return s.DB.Close() }
