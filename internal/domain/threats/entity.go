package threats

import (
	"fmt"
	"strings"
	"time"
)

// RecordID identifier type
type RecordID string

// Shape tells which parsing tier produced a Report
type Shape string

const (
	ShapeStructured Shape = "structured"
	ShapeSectioned  Shape = "sectioned"
	ShapeOpaque     Shape = "opaque"
)

// TTPs groups tactics, techniques and procedures from the extended schema
type TTPs struct {
	Tactics    []string `json:"tactics,omitempty"`
	Techniques []string `json:"techniques,omitempty"`
	Procedures []string `json:"procedures,omitempty"`
}

func (t TTPs) empty() bool {
	return len(t.Tactics) == 0 && len(t.Techniques) == 0 && len(t.Procedures) == 0
}

// Report is the normalized analysis of one model response.
// RawText always holds the response exactly as received.
type Report struct {
	AttackVector string   `json:"attack_vector,omitempty"`
	Timeline     []string `json:"timeline,omitempty"`
	Impact       []string `json:"impact,omitempty"`
	Mitigation   []string `json:"mitigation,omitempty"`

	// extended schema
	AttackVectors   []string `json:"attack_vectors,omitempty"`
	TTPs            *TTPs    `json:"ttps,omitempty"`
	IOCs            []string `json:"iocs,omitempty"`
	CVEs            []string `json:"cves,omitempty"`
	IncidentReports []string `json:"incident_reports,omitempty"`
	ThreatIntel     []string `json:"threat_intel,omitempty"`

	Sections []string `json:"sections,omitempty"`
	Shape    Shape    `json:"shape"`
	RawText  string   `json:"raw_text"`
}

// NumberedTimeline renders timeline steps as "1. step", "2. step", ...
func (r Report) NumberedTimeline() []string {
	out := make([]string, 0, len(r.Timeline))
	for i, step := range r.Timeline {
		out = append(out, fmt.Sprintf("%d. %s", i+1, step))
	}
	return out
}

// FieldSet returns the names of the non-empty named fields, in schema order
func (r Report) FieldSet() []string {
	var out []string
	add := func(name string, ok bool) {
		if ok {
			out = append(out, name)
		}
	}
	add("attack_vector", r.AttackVector != "")
	add("timeline", len(r.Timeline) > 0)
	add("impact", len(r.Impact) > 0)
	add("mitigation", len(r.Mitigation) > 0)
	add("attack_vectors", len(r.AttackVectors) > 0)
	add("ttps", r.TTPs != nil && !r.TTPs.empty())
	add("iocs", len(r.IOCs) > 0)
	add("cves", len(r.CVEs) > 0)
	add("incident_reports", len(r.IncidentReports) > 0)
	add("threat_intel", len(r.ThreatIntel) > 0)
	add("sections", len(r.Sections) > 0)
	return out
}

// Severity enum
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every level from lowest to highest
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ParseSeverity accepts any casing; unknown input is an error
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Score maps a severity onto the 0-100 gauge used by the dashboard
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 25
	case SeverityMedium:
		return 50
	case SeverityHigh:
		return 75
	case SeverityCritical:
		return 100
	default:
		return 0
	}
}

// Attack types the tagger can detect
const (
	AttackRansomware = "Ransomware"
	AttackPhishing   = "Phishing"
	AttackMalware    = "Malware"
)

// TagSet is the classification stored next to a Report.
// TTP, ThreatActor and TargetSector are supplied by the caller, never derived.
type TagSet struct {
	Severity     Severity `json:"severity"`
	AttackType   string   `json:"attack_type,omitempty"`
	TTP          string   `json:"ttp,omitempty"`
	ThreatActor  string   `json:"threat_actor,omitempty"`
	TargetSector string   `json:"target_sector,omitempty"`
}

// AnalysisRecord is one analyze action; append-only
type AnalysisRecord struct {
	ID        RecordID  `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Report    Report    `json:"response"`
	Tags      TagSet    `json:"tags"`
}
