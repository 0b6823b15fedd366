package threats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/threatlens/internal/application"
	domai "github.com/bryanwahyu/threatlens/internal/domain/ai"
	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/threatlens/internal/logging"
)

var (
	// ErrModelCall wraps any failure of the model client
	ErrModelCall = errors.New("model call failed")
	// ErrArchiveDisabled is returned when no object store is configured
	ErrArchiveDisabled = errors.New("export archive is not configured")
)

// Service implements the analysis use-cases.
// Normalizer and Tagger are stateless, so one Service is shared by all requests.
type Service struct {
	Repo       domain.Repository
	AI         domai.Client
	Normalizer domain.Normalizer
	Tagger     domain.Tagger
	Archive    domain.ArchiveStore // optional
	Clock      application.Clock
	Log        *zap.SugaredLogger
}

func (s *Service) log() *zap.SugaredLogger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Logger
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

//
// ==== USE CASES ====
//

// AnalyzeCommand is either a free-text Query or a Template with Params.
// TTP, ThreatActor and TargetSector are stored as pass-through tags.
type AnalyzeCommand struct {
	Query        string
	Template     string
	Params       map[string]string
	TTP          string
	ThreatActor  string
	TargetSector string
}

// ResolveQuery renders the template when one is named, otherwise returns the trimmed query
func ResolveQuery(cmd AnalyzeCommand) (string, error) {
	if cmd.Template != "" {
		q, err := prompt.Render(cmd.Template, cmd.Params)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
		}
		return q, nil
	}
	q := strings.TrimSpace(cmd.Query)
	if q == "" {
		return "", domain.ErrInvalidQuery
	}
	return q, nil
}

// Analyze asks the model, normalizes and tags the answer, and appends the record.
// A failed model call returns before the normalizer sees anything.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.AnalysisRecord, error) {
	query, err := ResolveQuery(cmd)
	if err != nil {
		return nil, err
	}

	raw, err := s.AI.Analyze(ctx, query)
	if err != nil {
		s.log().Warnw("model call failed", "query", query, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrModelCall, err)
	}

	outcome := s.Normalizer.Parse(raw)
	tags := s.Tagger.TagWith(raw, domain.TagSet{
		TTP:          cmd.TTP,
		ThreatActor:  cmd.ThreatActor,
		TargetSector: cmd.TargetSector,
	})

	rec := &domain.AnalysisRecord{
		ID:        domain.RecordID(uuid.New().String()),
		Timestamp: s.now(),
		Query:     query,
		Report:    outcome.Result(),
		Tags:      tags,
	}
	if err := s.Repo.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	s.log().Infow("analysis stored",
		"id", rec.ID,
		"shape", outcome.Shape(),
		"severity", tags.Severity,
		"attack_type", tags.AttackType,
	)
	return rec, nil
}

// PaginatedResult is one page of history, newest first
type PaginatedResult struct {
	Data     []*domain.AnalysisRecord `json:"data"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
}

// History returns a page of records, newest first
func (s *Service) History(ctx context.Context, page, pageSize int) (PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	list, err := s.Repo.Paginate(ctx, page, pageSize)
	if err != nil {
		return PaginatedResult{}, err
	}
	if list == nil {
		list = []*domain.AnalysisRecord{}
	}
	return PaginatedResult{Data: list, Page: page, PageSize: pageSize}, nil
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, id domain.RecordID) (*domain.AnalysisRecord, error) {
	return s.Repo.Get(ctx, id)
}

// Summary rekap severity and attack-type distribution over all records
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	all, err := s.Repo.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(all), nil
}

// Export renders every record in insertion order
func (s *Service) Export(ctx context.Context, format Format) ([]byte, error) {
	all, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Encode(format, all)
}

// ArchiveExport uploads an export to object storage and returns its URL
func (s *Service) ArchiveExport(ctx context.Context, format Format) (string, error) {
	if s.Archive == nil {
		return "", ErrArchiveDisabled
	}
	data, err := s.Export(ctx, format)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s.%s", s.now().UTC().Format("20060102T150405Z"), format)
	url, err := s.Archive.Put(ctx, key, format.ContentType(), data)
	if err != nil {
		return "", fmt.Errorf("archive export: %w", err)
	}
	s.log().Infow("export archived", "key", key, "bytes", len(data))
	return url, nil
}
