package threats

import "strings"

// SeverityRule maps one severity level to its trigger keywords
type SeverityRule struct {
	Severity Severity
	Keywords []string
}

// AttackRule maps one attack type to its trigger keywords
type AttackRule struct {
	AttackType string
	Keywords   []string
}

// DefaultSeverityRules is ordered from highest to lowest priority.
func DefaultSeverityRules() []SeverityRule {
	return []SeverityRule{
		{SeverityCritical, []string{"critical", "severe", "high-risk", "immediate action"}},
		{SeverityHigh, []string{"high", "significant", "important", "serious"}},
		{SeverityMedium, []string{"medium", "moderate", "average"}},
		{SeverityLow, []string{"low", "minor", "minimal", "small"}},
	}
}

// DefaultAttackRules is ordered from highest to lowest priority.
func DefaultAttackRules() []AttackRule {
	return []AttackRule{
		{AttackRansomware, []string{"ransomware"}},
		{AttackPhishing, []string{"phishing"}},
		{AttackMalware, []string{"malware"}},
	}
}

// Tagger assigns a severity and attack type by keyword lookup.
//
// Severity rules are checked in table order and the first rule with any
// keyword present in the text wins, so with the default table "critical"
// beats "low" no matter where either appears. No match yields Medium.
// Matching is a case-insensitive substring test.
//
// A Tagger is immutable after construction; the zero value uses the default
// tables.
type Tagger struct {
	severity []SeverityRule
	attack   []AttackRule
}

type TaggerOption func(*Tagger)

// WithSeverityRules replaces the severity table; order is priority order.
func WithSeverityRules(rules []SeverityRule) TaggerOption {
	return func(t *Tagger) { t.severity = cloneSeverityRules(rules) }
}

// WithAttackRules replaces the attack-type table; order is priority order.
func WithAttackRules(rules []AttackRule) TaggerOption {
	return func(t *Tagger) { t.attack = cloneAttackRules(rules) }
}

func NewTagger(opts ...TaggerOption) Tagger {
	t := Tagger{
		severity: cloneSeverityRules(DefaultSeverityRules()),
		attack:   cloneAttackRules(DefaultAttackRules()),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Tag derives a TagSet from text. Absence of a match is not an error.
func (t Tagger) Tag(text string) TagSet {
	severityRules, attackRules := t.severity, t.attack
	if severityRules == nil {
		severityRules = cloneSeverityRules(DefaultSeverityRules())
	}
	if attackRules == nil {
		attackRules = cloneAttackRules(DefaultAttackRules())
	}

	lower := strings.ToLower(text)
	tags := TagSet{Severity: SeverityMedium}

	for _, rule := range severityRules {
		if containsAny(lower, rule.Keywords) {
			tags.Severity = rule.Severity
			break
		}
	}
	for _, rule := range attackRules {
		if containsAny(lower, rule.Keywords) {
			tags.AttackType = rule.AttackType
			break
		}
	}
	return tags
}

// TagWith tags text and carries over the caller-supplied pass-through fields
// of extra. Severity and AttackType always come from the text.
func (t Tagger) TagWith(text string, extra TagSet) TagSet {
	tags := t.Tag(text)
	tags.TTP = strings.TrimSpace(extra.TTP)
	tags.ThreatActor = strings.TrimSpace(extra.ThreatActor)
	tags.TargetSector = strings.TrimSpace(extra.TargetSector)
	return tags
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// keywords are stored lowercased
func cloneSeverityRules(in []SeverityRule) []SeverityRule {
	out := make([]SeverityRule, 0, len(in))
	for _, r := range in {
		out = append(out, SeverityRule{Severity: r.Severity, Keywords: lowerAll(r.Keywords)})
	}
	return out
}

func cloneAttackRules(in []AttackRule) []AttackRule {
	out := make([]AttackRule, 0, len(in))
	for _, r := range in {
		out = append(out, AttackRule{AttackType: r.AttackType, Keywords: lowerAll(r.Keywords)})
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
