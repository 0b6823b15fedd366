package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/threatlens/internal/config"
	"github.com/bryanwahyu/threatlens/internal/domain/threats"
)

func TestOpenDefaultsToSQLiteFile(t *testing.T) {
	var cfg config.Config
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "threats.db")

	ctx := context.Background()
	store, err := Open(ctx, &cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "sqlite", store.Driver)

	rec := &threats.AnalysisRecord{ID: "one", Query: "q", Tags: threats.TagSet{Severity: threats.SeverityLow}}
	require.NoError(t, store.Repo.Append(ctx, rec))
	all, err := store.Repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, threats.SeverityLow, all[0].Tags.Severity)
}
