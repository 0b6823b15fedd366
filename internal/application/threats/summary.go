package threats

import (
	"time"

	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
)

// Unclassified labels records without an attack type
const Unclassified = "Unclassified"

// TimelinePoint is one record on the severity timeline
type TimelinePoint struct {
	ID        domain.RecordID `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Query     string          `json:"query"`
	Severity  domain.Severity `json:"severity"`
	Score     int             `json:"score"`
}

// Summary is the data behind the dashboard charts
type Summary struct {
	Total        int                     `json:"total"`
	BySeverity   map[domain.Severity]int `json:"by_severity"`
	ByAttackType map[string]int          `json:"by_attack_type"`
	Timeline     []TimelinePoint         `json:"timeline"`
}

// Summarize counts records per severity (every level present, zero or not)
// and per attack type, and lists timeline points in record order.
func Summarize(records []*domain.AnalysisRecord) Summary {
	s := Summary{
		Total:        len(records),
		BySeverity:   make(map[domain.Severity]int, len(domain.Severities)),
		ByAttackType: map[string]int{},
		Timeline:     make([]TimelinePoint, 0, len(records)),
	}
	for _, sev := range domain.Severities {
		s.BySeverity[sev] = 0
	}
	for _, rec := range records {
		sev := rec.Tags.Severity
		if sev == "" {
			sev = domain.SeverityMedium
		}
		s.BySeverity[sev]++

		attack := rec.Tags.AttackType
		if attack == "" {
			attack = Unclassified
		}
		s.ByAttackType[attack]++

		s.Timeline = append(s.Timeline, TimelinePoint{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Query:     rec.Query,
			Severity:  sev,
			Score:     sev.Score(),
		})
	}
	return s
}
