package sqlrow

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Pool sizes a server-backed connection pool
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	Attempts    int
	RetryDelay  time.Duration
}

// DefaultPool: 5 idle + 10 overflow connections, recycled every 30 minutes,
// three connection attempts two seconds apart.
var DefaultPool = Pool{
	MaxOpen:     15,
	MaxIdle:     5,
	MaxLifetime: 30 * time.Minute,
	Attempts:    3,
	RetryDelay:  2 * time.Second,
}

// OpenPool opens driver/dsn and pings it, retrying while the server comes up
func OpenPool(ctx context.Context, driver, dsn string, p Pool) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)

	attempts := max(p.Attempts, 1)
	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		if i >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(p.RetryDelay):
		}
	}
	db.Close()
	return nil, fmt.Errorf("%s unreachable after %d attempts: %w", driver, attempts, err)
}
