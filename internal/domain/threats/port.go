package threats

import "context"

// Repository port for the append-only analysis log
type Repository interface {
	Append(ctx context.Context, rec *AnalysisRecord) error
	// ListAll returns every record in insertion order
	ListAll(ctx context.Context) ([]*AnalysisRecord, error)
	// Paginate returns newest first
	Paginate(ctx context.Context, page, pageSize int) ([]*AnalysisRecord, error)
	Get(ctx context.Context, id RecordID) (*AnalysisRecord, error)
}

// ArchiveStore port for keeping export files in object storage
type ArchiveStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
