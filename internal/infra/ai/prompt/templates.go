package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Template is a question with {placeholders} filled from user input
type Template struct {
	Key         string   `json:"key"`
	Template    string   `json:"template"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
}

var ErrUnknownTemplate = errors.New("unknown template")

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

var templates = map[string]Template{
	"timeline_analysis": {
		Template:    "What is the typical timeline and progression of {threat_type} attacks?",
		Description: "Analyzes the timeline of specific cyber threats",
	},
	"recent_threats": {
		Template:    "What are the most recent cyber threats identified in the past {time_period}?",
		Description: "Identifies recent cyber threats",
	},
	"attack_vector": {
		Template:    "What are the primary attack vectors used by {threat_actor}?",
		Description: "Analyzes attack vectors of specific threat actors",
	},
	"ttp_analysis": {
		Template:    "What are the main TTPs (Tactics, Techniques, and Procedures) associated with {threat_name}?",
		Description: "Analyzes specific threat TTPs",
	},
}

// SampleQueries are ready-made questions offered next to the templates.
var SampleQueries = []string{
	"What is the most common timeline in a ransomware attack?",
	"What is the most recent cyber threat identified?",
	"What is the attack vector for Volt Typhoon?",
	"What are the common TTPs used in supply chain attacks?",
}

// Templates lists every template sorted by key.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for key := range templates {
		t, _ := Lookup(key)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func Lookup(key string) (Template, error) {
	t, ok := templates[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, key)
	}
	t.Key = key
	for _, m := range placeholder.FindAllStringSubmatch(t.Template, -1) {
		t.Params = append(t.Params, m[1])
	}
	return t, nil
}

// Render fills the template's placeholders. Every placeholder needs a
// non-blank value; extra params are ignored.
func Render(key string, params map[string]string) (string, error) {
	t, err := Lookup(key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, p := range t.Params {
		if strings.TrimSpace(params[p]) == "" {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("template %s: missing params: %s", key, strings.Join(missing, ", "))
	}
	return placeholder.ReplaceAllStringFunc(t.Template, func(m string) string {
		return strings.TrimSpace(params[m[1:len(m)-1]])
	}), nil
}
