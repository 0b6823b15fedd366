package threats

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
)

// Format of an export file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q (allowed: csv, json)", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// CSVHeader is the column order of a CSV export.
// response and tags hold the Report and TagSet as JSON text.
var CSVHeader = []string{"id", "timestamp", "query", "severity", "attack_type", "response", "tags"}

// Encode renders records, one row/object per record, in the given order
func Encode(format Format, records []*domain.AnalysisRecord) ([]byte, error) {
	switch format {
	case FormatCSV:
		return EncodeCSV(records)
	case FormatJSON:
		return EncodeJSON(records)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// EncodeCSV writes a header plus one row per record.
func EncodeCSV(records []*domain.AnalysisRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		resp, err := json.Marshal(rec.Report)
		if err != nil {
			return nil, fmt.Errorf("encode report %s: %w", rec.ID, err)
		}
		tags, err := json.Marshal(rec.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags %s: %w", rec.ID, err)
		}
		row := []string{
			string(rec.ID),
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.Query,
			string(rec.Tags.Severity),
			rec.Tags.AttackType,
			string(resp),
			string(tags),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// EncodeJSON writes an array of {id, timestamp, query, response, tags} objects
func EncodeJSON(records []*domain.AnalysisRecord) ([]byte, error) {
	if records == nil {
		records = []*domain.AnalysisRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// DecodeJSON reads an EncodeJSON export back
func DecodeJSON(r io.Reader) ([]*domain.AnalysisRecord, error) {
	var out []*domain.AnalysisRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json export: %w", err)
	}
	return out, nil
}

// DecodeCSV reads an EncodeCSV export back. Columns are matched by header
// name; timestamp, query, response and tags are required.
func DecodeCSV(r io.Reader) ([]*domain.AnalysisRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"timestamp", "query", "response", "tags"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv export is missing column %q", name)
		}
	}

	var out []*domain.AnalysisRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rec := &domain.AnalysisRecord{Query: row[col["query"]]}
		if i, ok := col["id"]; ok {
			rec.ID = domain.RecordID(row[i])
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, row[col["timestamp"]]); err != nil {
			return nil, fmt.Errorf("csv line %d: timestamp: %w", line, err)
		}
		if err := json.Unmarshal([]byte(row[col["response"]]), &rec.Report); err != nil {
			return nil, fmt.Errorf("csv line %d: response: %w", line, err)
		}
		if err := json.Unmarshal([]byte(row[col["tags"]]), &rec.Tags); err != nil {
			return nil, fmt.Errorf("csv line %d: tags: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
