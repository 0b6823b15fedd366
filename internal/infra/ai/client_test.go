package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/threatlens/internal/config"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/demo"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/openai"
)

func TestNewFromConfig(t *testing.T) {
	var cfg config.Config
	assert.IsType(t, &demo.Client{}, NewFromConfig(&cfg))

	cfg.AI.APIKey = "sk-test"
	cfg.AI.Model = "openai/gpt-4o-mini"
	c, ok := NewFromConfig(&cfg).(*openai.Client)
	if assert.True(t, ok) {
		assert.Equal(t, "openai/gpt-4o-mini", c.Model)
	}
}
