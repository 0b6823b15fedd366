package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
)

func newRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Connect(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewAnalysisRepository(db)
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx), "migrate must be repeatable")
	return repo
}

func record(i int, base time.Time) *domain.AnalysisRecord {
	raw := fmt.Sprintf(`{"attack_vector": "vector %d"}`, i)
	return &domain.AnalysisRecord{
		ID:        domain.RecordID(fmt.Sprintf("rec-%d", i)),
		// timestamps deliberately run backwards; order must follow insertion
		Timestamp: base.Add(-time.Duration(i) * time.Minute),
		Query:     fmt.Sprintf("query %d", i),
		Report:    domain.NewNormalizer().Normalize(raw),
		Tags:      domain.NewTagger().Tag(raw),
	}
}

func TestAppendListAllInsertionOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, record(i, base)))
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, rec := range all {
		assert.Equal(t, domain.RecordID(fmt.Sprintf("rec-%d", i)), rec.ID)
		assert.Equal(t, fmt.Sprintf("vector %d", i), rec.Report.AttackVector)
		assert.Equal(t, domain.SeverityMedium, rec.Tags.Severity)
		assert.True(t, base.Add(-time.Duration(i)*time.Minute).Equal(rec.Timestamp))
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	rec := record(1, time.Now())
	require.NoError(t, repo.Append(ctx, rec))

	dup := record(1, time.Now())
	dup.Query = "changed"
	assert.Error(t, repo.Append(ctx, dup))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "query 1", got.Query)
}

func TestPaginateNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, record(i, time.Now())))
	}

	page1, err := repo.Paginate(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, domain.RecordID("rec-4"), page1[0].ID)
	assert.Equal(t, domain.RecordID("rec-3"), page1[1].ID)

	page3, err := repo.Paginate(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, domain.RecordID("rec-0"), page3[0].ID)
}

func TestGetNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
