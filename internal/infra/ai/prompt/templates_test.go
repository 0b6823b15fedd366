package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		params   map[string]string
		expected string
		wantErr  bool
	}{
		{
			name:     "timeline",
			key:      "timeline_analysis",
			params:   map[string]string{"threat_type": " ransomware "},
			expected: "What is the typical timeline and progression of ransomware attacks?",
		},
		{
			name:     "extra params ignored",
			key:      "attack_vector",
			params:   map[string]string{"threat_actor": "Volt Typhoon", "unused": "x"},
			expected: "What are the primary attack vectors used by Volt Typhoon?",
		},
		{name: "missing param", key: "recent_threats", params: map[string]string{}, wantErr: true},
		{name: "blank param", key: "ttp_analysis", params: map[string]string{"threat_name": "  "}, wantErr: true},
		{name: "unknown template", key: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.key, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderUnknownTemplateIsTyped(t *testing.T) {
	_, err := Render("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestTemplatesSortedWithParams(t *testing.T) {
	list := Templates()
	require.Len(t, list, 4)
	keys := make([]string, 0, len(list))
	for _, tpl := range list {
		keys = append(keys, tpl.Key)
		assert.Len(t, tpl.Params, 1, tpl.Key)
	}
	assert.Equal(t, []string{"attack_vector", "recent_threats", "timeline_analysis", "ttp_analysis"}, keys)
}

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, SystemPrompt, GetSystemPrompt(false))
	structured := GetSystemPrompt(true)
	assert.True(t, strings.HasPrefix(structured, SystemPrompt))
	assert.Contains(t, structured, `"attack_vector"`)
}
