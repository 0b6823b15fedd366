package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/threatlens/internal/infra/ai/prompt"
)

// Client answers from the built-in sample catalog. It is used when no API key
// is configured so the dashboard stays usable offline.
type Client struct{}

func NewClient() *Client { return &Client{} }

type report struct {
	AttackVector string   `json:"attack_vector"`
	Timeline     string   `json:"timeline"`
	Impact       string   `json:"impact"`
	Mitigation   string   `json:"mitigation"`
	TTPs         []string `json:"ttps"`
}

// Analyze returns a JSON report when the query names a sample threat and a
// two-paragraph text answer otherwise.
func (c *Client) Analyze(ctx context.Context, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q := strings.ToLower(query)
	for _, t := range prompt.SampleThreats() {
		name := strings.ToLower(strings.ReplaceAll(t.Name, "_", " "))
		first := strings.Fields(name)[0]
		if !strings.Contains(q, name) && !strings.Contains(q, first) {
			continue
		}
		b, err := json.Marshal(report{
			AttackVector: t.AttackVectors[0],
			Timeline:     "1. Initial access via " + strings.ToLower(t.AttackVectors[0]) + ". 2. Privilege escalation. 3. Objective execution.",
			Impact:       t.Description + ". Severity rated " + strings.ToLower(t.Severity) + ".",
			Mitigation:   "Harden " + strings.ToLower(t.AttackVectors[1]) + " paths. Monitor " + strings.ToLower(t.AttackVectors[2]) + ".",
			TTPs:         t.TTPs,
		})
		if err != nil {
			return "", fmt.Errorf("failed to marshal demo report: %w", err)
		}
		return string(b), nil
	}
	return fmt.Sprintf("Demo mode: no model is configured, so this is a canned answer to %q.\n\n"+
		"Configure an API key to receive a real analysis with moderate detail.", strings.TrimSpace(query)), nil
}
