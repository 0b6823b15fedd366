package sqlrow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/threatlens/internal/domain/threats"
)

// Table shared by every SQL backend
const Table = "threat_analyses"

// Row is the column layout of one analysis record.
// Report and TagSet travel as JSON documents; severity and attack_type are
// duplicated into plain columns for filtering and summaries.
type Row struct {
	ID         string
	CreatedAt  time.Time
	Query      string
	Response   string
	Tags       string
	Severity   string
	AttackType string
}

// Encode validates a record and turns it into a Row
func Encode(rec *threats.AnalysisRecord) (Row, error) {
	if rec == nil {
		return Row{}, fmt.Errorf("nil analysis record")
	}
	if strings.TrimSpace(string(rec.ID)) == "" {
		return Row{}, fmt.Errorf("analysis record has no id")
	}
	if strings.TrimSpace(rec.Query) == "" {
		return Row{}, threats.ErrInvalidQuery
	}
	resp, err := json.Marshal(rec.Report)
	if err != nil {
		return Row{}, fmt.Errorf("encode report: %w", err)
	}
	tags := rec.Tags
	if tags.Severity == "" {
		tags.Severity = threats.SeverityMedium
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return Row{}, fmt.Errorf("encode tags: %w", err)
	}
	created := rec.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	return Row{
		ID:         string(rec.ID),
		CreatedAt:  created.UTC(),
		Query:      rec.Query,
		Response:   string(resp),
		Tags:       string(tagsJSON),
		Severity:   string(tags.Severity),
		AttackType: tags.AttackType,
	}, nil
}

// Decode rebuilds a record from a Row
func Decode(row Row) (*threats.AnalysisRecord, error) {
	rec := &threats.AnalysisRecord{
		ID:        threats.RecordID(row.ID),
		Timestamp: row.CreatedAt.UTC(),
		Query:     row.Query,
	}
	if strings.TrimSpace(row.Response) != "" {
		if err := json.Unmarshal([]byte(row.Response), &rec.Report); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", row.ID, err)
		}
	}
	if strings.TrimSpace(row.Tags) != "" {
		if err := json.Unmarshal([]byte(row.Tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("decode tags %s: %w", row.ID, err)
		}
	}
	if rec.Tags.Severity == "" {
		sev, err := threats.ParseSeverity(row.Severity)
		if err != nil {
			sev = threats.SeverityMedium
		}
		rec.Tags.Severity = sev
	}
	return rec, nil
}

// Page turns page/pageSize into limit/offset with the usual defaults
func Page(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
