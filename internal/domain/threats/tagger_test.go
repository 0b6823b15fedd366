package threats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagSeverity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Severity
	}{
		{"no keywords", "The sky is blue.", SeverityMedium},
		{"empty", "", SeverityMedium},
		{"critical keyword", "This is a SEVERE incident.", SeverityCritical},
		{"multi word keyword", "Immediate Action is required", SeverityCritical},
		{"high keyword", "A significant breach", SeverityHigh},
		{"medium keyword", "moderate exposure", SeverityMedium},
		{"low keyword", "only a minor issue", SeverityLow},
		{"critical beats low", "minor at first, then critical", SeverityCritical},
		{"critical beats low regardless of position", "critical at first, then minor", SeverityCritical},
		{"high beats low", "small team, serious damage", SeverityHigh},
		{"high-risk counts as critical", "a high-risk campaign", SeverityCritical},
		{"substring match", "the attackers follow a pattern", SeverityLow},
		{"substring match for high", "a highlight of the week", SeverityHigh},
	}

	tagger := NewTagger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tagger.Tag(tt.text).Severity)
		})
	}
}

func TestTagAttackType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"none", "a quiet day", ""},
		{"ransomware", "Ransomware encrypted the share", AttackRansomware},
		{"phishing", "a phishing wave", AttackPhishing},
		{"malware", "generic MALWARE dropper", AttackMalware},
		{"ransomware beats phishing", "phishing led to ransomware", AttackRansomware},
		{"phishing beats malware", "malware sent via phishing", AttackPhishing},
	}

	tagger := NewTagger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tagger.Tag(tt.text).AttackType)
		})
	}
}

func TestTagRansomwareWithoutSeverityKeywords(t *testing.T) {
	tags := NewTagger().Tag("The group deploys ransomware through exposed RDP.")
	assert.Equal(t, SeverityMedium, tags.Severity)
	assert.Equal(t, AttackRansomware, tags.AttackType)
}

func TestTagIsPure(t *testing.T) {
	tagger := NewTagger()
	text := "Critical phishing campaign with minor impact"
	assert.Equal(t, tagger.Tag(text), tagger.Tag(text))

	var zero Tagger
	assert.Equal(t, tagger.Tag(text), zero.Tag(text))
}

func TestTagWithPassThrough(t *testing.T) {
	tags := NewTagger().TagWith("serious malware", TagSet{
		Severity:     SeverityLow,
		AttackType:   "ignored",
		TTP:          " T1566 ",
		ThreatActor:  "Volt Typhoon",
		TargetSector: "Energy",
	})
	assert.Equal(t, TagSet{
		Severity:     SeverityHigh,
		AttackType:   AttackMalware,
		TTP:          "T1566",
		ThreatActor:  "Volt Typhoon",
		TargetSector: "Energy",
	}, tags)
}

func TestTaggerCustomRules(t *testing.T) {
	tagger := NewTagger(
		WithSeverityRules([]SeverityRule{{SeverityLow, []string{"DEMO"}}}),
		WithAttackRules([]AttackRule{{"Wiper", []string{"wiper"}}}),
	)
	tags := tagger.Tag("demo of a wiper; critical")
	assert.Equal(t, SeverityLow, tags.Severity)
	assert.Equal(t, "Wiper", tags.AttackType)
}

func TestSeverityScoreAndParse(t *testing.T) {
	for i, s := range Severities {
		assert.Equal(t, (i+1)*25, s.Score())
		parsed, err := ParseSeverity(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseSeverity("urgent")
	assert.Error(t, err)
	assert.Equal(t, 0, Severity("urgent").Score())
}
