package threats

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
)

type memRepo struct {
	mu   sync.Mutex
	recs []*domain.AnalysisRecord
	err  error
}

func (m *memRepo) Append(_ context.Context, rec *domain.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *rec
	m.recs = append(m.recs, &cp)
	return nil
}

func (m *memRepo) ListAll(context.Context) ([]*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AnalysisRecord(nil), m.recs...), m.err
}

func (m *memRepo) Paginate(_ context.Context, page, size int) ([]*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rev []*domain.AnalysisRecord
	for i := len(m.recs) - 1; i >= 0; i-- {
		rev = append(rev, m.recs[i])
	}
	start := (page - 1) * size
	if start >= len(rev) {
		return nil, m.err
	}
	end := min(start+size, len(rev))
	return rev[start:end], m.err
}

func (m *memRepo) Get(_ context.Context, id domain.RecordID) (*domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeAI struct {
	mu      sync.Mutex
	answer  string
	err     error
	queries []string
}

func (f *fakeAI) Analyze(_ context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "Error: " + f.err.Error(), f.err
	}
	return f.answer, nil
}

type fakeArchive struct {
	key, contentType string
	data             []byte
}

func (f *fakeArchive) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	f.key, f.contentType, f.data = key, contentType, data
	return "http://minio.local/exports/" + key, nil
}
