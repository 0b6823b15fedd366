package threats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBoxedJSON(t *testing.T) {
	raw := "\\boxed{{\"attack_vector\": \"Phishing email\", \"timeline\": \"Step one. Step two.\"}}"

	out := NewNormalizer().Parse(raw)
	require.IsType(t, Structured{}, out)

	r := out.Result()
	assert.Equal(t, "Phishing email", r.AttackVector)
	assert.Equal(t, []string{"Step one", "Step two"}, r.Timeline)
	assert.Empty(t, r.Impact)
	assert.Empty(t, r.Mitigation)
	assert.Empty(t, r.Sections)
	assert.Equal(t, raw, r.RawText)
	assert.Equal(t, ShapeStructured, r.Shape)
}

func TestNormalizeStructuredFields(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect Report
	}{
		{
			name:  "plain object",
			input: `{"attack_vector": "RDP brute force", "impact": "Data loss. Downtime.", "mitigation": "Enable MFA. Patch systems."}`,
			expect: Report{
				AttackVector: "RDP brute force",
				Impact:       []string{"Data loss", "Downtime"},
				Mitigation:   []string{"Enable MFA", "Patch systems"},
			},
		},
		{
			name:  "timeline enumeration stripped",
			input: `{"timeline": "1. Initial access. 2. Lateral movement. 3. Encryption."}`,
			expect: Report{
				Timeline: []string{"Initial access", "Lateral movement", "Encryption"},
			},
		},
		{
			name:  "arrays taken as already split",
			input: `{"mitigation": [" Backups ", "", "Segment networks"], "impact": ["Outage"]}`,
			expect: Report{
				Impact:     []string{"Outage"},
				Mitigation: []string{"Backups", "Segment networks"},
			},
		},
		{
			name:  "attack_timeline alias",
			input: `{"attack_timeline": ["1. Recon", "2. Exploit"]}`,
			expect: Report{
				Timeline: []string{"Recon", "Exploit"},
			},
		},
		{
			name:  "code fence",
			input: "```json\n{\"attack_vector\": \"Supply chain\"}\n```",
			expect: Report{
				AttackVector: "Supply chain",
			},
		},
		{
			name:  "box braces as object braces",
			input: `\boxed{"attack_vector": "USB drop"}`,
			expect: Report{
				AttackVector: "USB drop",
			},
		},
		{
			name: "extended schema",
			input: `{"attack_vectors": "Living off the land. Credential theft.",
				"ttps": {"tactics": "Initial Access, Persistence", "techniques": ["T1078", "T1133"], "procedures": "Uses valid accounts."},
				"iocs": ["1.2.3.4", {"domain": "evil.example"}],
				"cves": "CVE-2023-1234, CVE-2024-0001",
				"incident_reports": "Utility breach in 2023.",
				"threat_intel": {"source": "cisa"}}`,
			expect: Report{
				AttackVectors: []string{"Living off the land", "Credential theft"},
				TTPs: &TTPs{
					Tactics:    []string{"Initial Access", "Persistence"},
					Techniques: []string{"T1078", "T1133"},
					Procedures: []string{"Uses valid accounts"},
				},
				IOCs:            []string{"1.2.3.4", `{"domain":"evil.example"}`},
				CVEs:            []string{"CVE-2023-1234", "CVE-2024-0001"},
				IncidentReports: []string{"Utility breach in 2023"},
				ThreatIntel:     []string{`{"source":"cisa"}`},
			},
		},
		{
			name:  "ttps as bare list",
			input: `{"ttps": ["T1566", "T1110"]}`,
			expect: Report{
				TTPs: &TTPs{Techniques: []string{"T1566", "T1110"}},
			},
		},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := n.Parse(tt.input)
			require.IsType(t, Structured{}, out)

			want := tt.expect
			want.Shape = ShapeStructured
			want.RawText = tt.input
			assert.Equal(t, want, out.Result())
		})
	}
}

func TestNormalizeSections(t *testing.T) {
	raw := "  Ransomware usually starts with phishing.  \n\n\nEncryption follows within hours.\n"

	out := NewNormalizer().Parse(raw)
	require.IsType(t, Sectioned{}, out)

	r := out.Result()
	assert.Equal(t, []string{"Ransomware usually starts with phishing.", "Encryption follows within hours."}, r.Sections)
	assert.Empty(t, r.AttackVector)
	assert.Empty(t, r.Timeline)
	assert.Empty(t, r.Impact)
	assert.Empty(t, r.Mitigation)
	assert.Equal(t, raw, r.RawText)
}

func TestNormalizeFallsBackToSections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"broken json", `{"attack_vector": "x"`},
		{"no recognized keys", `{"summary": "nothing we know"}`},
		{"json array", `["a", "b"]`},
		{"python dict", `{'attack_vector': 'x'}`},
		{"trailing garbage", `{"attack_vector": "x"} and more`},
		{"empty recognized keys", `{"attack_vector": "", "timeline": null, "impact": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewNormalizer().Parse(tt.input)
			require.IsType(t, Sectioned{}, out)
			assert.Equal(t, []string{tt.input}, out.Result().Sections)
			assert.Equal(t, tt.input, out.Result().RawText)
		})
	}
}

func TestNormalizeOpaque(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\n", "\r\n\r\n"} {
		out := NewNormalizer().Parse(raw)
		require.IsType(t, Opaque{}, out)
		r := out.Result()
		assert.Equal(t, raw, r.RawText)
		assert.Empty(t, r.FieldSet())
		assert.Equal(t, ShapeOpaque, r.Shape)
	}
}

func TestNormalizeNeverPanicsAndKeepsRawText(t *testing.T) {
	inputs := []string{
		`\boxed{`,
		`\boxed{}`,
		"```",
		"```json\n```",
		`{"ttps": {"tactics": 5}}`,
		`{"timeline": "1. 2. 3."}`,
		`{"impact": {"nested": [1, 2, {"deep": true}]}}`,
		"\x00\xff\xfe",
		`null`,
		`"just a string"`,
	}
	n := NewNormalizer()
	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			r := n.Normalize(raw)
			assert.Equal(t, raw, r.RawText)
		}, raw)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := `{"attack_vector": "Phishing", "mitigation": "Train staff. Filter mail."}`
	n := NewNormalizer()
	assert.Equal(t, n.Normalize(raw), n.Normalize(raw))
}

func TestNumberedTimeline(t *testing.T) {
	r := Report{Timeline: []string{"Recon", "Exploit", "Exfiltrate"}}
	assert.Equal(t, []string{"1. Recon", "2. Exploit", "3. Exfiltrate"}, r.NumberedTimeline())
	assert.Empty(t, Report{}.NumberedTimeline())
}
