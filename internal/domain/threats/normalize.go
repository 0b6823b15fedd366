package threats

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// ParseOutcome is the result of one Parse call: Structured, Sectioned or Opaque.
type ParseOutcome interface {
	Result() Report
	Shape() Shape
}

// Structured means the response decoded as a JSON object with recognized keys.
type Structured struct{ report Report }

// Sectioned means the response was split into blank-line separated paragraphs.
type Sectioned struct{ report Report }

// Opaque means nothing could be extracted; only RawText is set.
type Opaque struct{ report Report }

func (o Structured) Result() Report { return o.report }
func (Structured) Shape() Shape { return ShapeStructured }
func (o Sectioned) Result() Report { return o.report }
func (Sectioned) Shape() Shape { return ShapeSectioned }
func (o Opaque) Result() Report { return o.report }
func (Opaque) Shape() Shape { return ShapeOpaque }

// Normalizer turns raw model output into a Report. It holds no state and is
// safe for concurrent use.
type Normalizer struct{}

func NewNormalizer() Normalizer { return Normalizer{} }

// Normalize never fails; the worst case is a Report with only RawText.
func (n Normalizer) Normalize(raw string) Report {
	return n.Parse(raw).Result()
}

// Parse runs the three tiers in order and reports which one produced the Report.
func (Normalizer) Parse(raw string) ParseOutcome {
	if r, ok := parseStructured(raw); ok {
		r.Shape = ShapeStructured
		r.RawText = raw
		return Structured{report: r}
	}
	if sections := splitSections(raw); len(sections) > 0 {
		return Sectioned{report: Report{Sections: sections, Shape: ShapeSectioned, RawText: raw}}
	}
	return Opaque{report: Report{Shape: ShapeOpaque, RawText: raw}}
}

const (
	boxedPrefix   = `\boxed{`
	sentenceSep   = ". "
	impactSep     = "."
	identifierSep = ","
)

var (
	fenceLang   = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
	enumeration = regexp.MustCompile(`^[0-9.]+\s*`)
)

// stripWrappers removes a Markdown code fence and the \boxed{...} wrapper
// some models put around their JSON.
func stripWrappers(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 && fenceLang.MatchString(strings.TrimSpace(s[:i])) {
			s = s[i+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	if strings.HasPrefix(s, boxedPrefix) {
		s = strings.TrimPrefix(s, boxedPrefix)
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "}"))
		// \boxed{"k": "v"} uses the box braces as the object braces
		if strings.HasPrefix(s, `"`) {
			s = "{" + s + "}"
		}
	}
	return s
}

func parseStructured(raw string) (Report, bool) {
	cleaned := stripWrappers(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return Report{}, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return Report{}, false
	}

	var r Report
	r.AttackVector = textOf(obj["attack_vector"])
	r.Timeline = timelineOf(obj["timeline"])
	if len(r.Timeline) == 0 {
		r.Timeline = timelineOf(obj["attack_timeline"])
	}
	r.Impact = listOf(obj["impact"], impactSep)
	r.Mitigation = listOf(obj["mitigation"], sentenceSep)

	r.AttackVectors = listOf(obj["attack_vectors"], sentenceSep)
	r.TTPs = ttpsOf(obj["ttps"])
	r.IOCs = listOf(obj["iocs"], identifierSep)
	r.CVEs = listOf(obj["cves"], identifierSep)
	r.IncidentReports = listOf(obj["incident_reports"], sentenceSep)
	r.ThreatIntel = listOf(obj["threat_intel"], sentenceSep)

	if len(r.FieldSet()) == 0 {
		return Report{}, false
	}
	return r, true
}

// textOf returns a string value trimmed, joins string arrays, and keeps any
// other JSON value as compact text.
func textOf(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if items, ok := arrayOf(raw); ok {
		return strings.Join(items, ", ")
	}
	return compact(raw)
}

// listOf splits a string value on sep, or takes an array as already split.
// Empty fragments are dropped.
func listOf(raw json.RawMessage, sep string) []string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitText(s, sep)
	}
	if items, ok := arrayOf(raw); ok {
		return items
	}
	if c := compact(raw); c != "" {
		return []string{c}
	}
	return nil
}

func timelineOf(raw json.RawMessage) []string {
	var out []string
	for _, step := range listOf(raw, sentenceSep) {
		step = strings.TrimSpace(enumeration.ReplaceAllString(step, ""))
		if step != "" {
			out = append(out, step)
		}
	}
	return out
}

func ttpsOf(raw json.RawMessage) *TTPs {
	if isNull(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	var t TTPs
	if err := json.Unmarshal(raw, &obj); err == nil {
		t.Tactics = listOf(obj["tactics"], identifierSep)
		t.Techniques = listOf(obj["techniques"], identifierSep)
		t.Procedures = listOf(obj["procedures"], sentenceSep)
	} else {
		// a bare list of technique ids, e.g. ["T1566", "T1110"]
		t.Techniques = listOf(raw, identifierSep)
	}
	if t.empty() {
		return nil
	}
	return &t
}

func splitText(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		part = strings.TrimSpace(strings.TrimSuffix(part, "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// arrayOf reports false when raw is not a JSON array.
func arrayOf(raw json.RawMessage) ([]string, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	var out []string
	for _, item := range arr {
		if isNull(item) {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			s = strings.TrimSpace(s)
		} else {
			s = compact(item)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func splitSections(raw string) []string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
