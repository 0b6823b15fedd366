package ai

import (
	"github.com/bryanwahyu/threatlens/internal/config"
	domai "github.com/bryanwahyu/threatlens/internal/domain/ai"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/demo"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/openai"
	"github.com/bryanwahyu/threatlens/internal/logging"
)

// NewFromConfig returns the OpenAI-compatible client, or the offline demo
// client when no API key is configured.
func NewFromConfig(cfg *config.Config) domai.Client {
	if cfg.AI.APIKey == "" {
		logging.Logger.Warn("no AI API key configured, using demo responses")
		return demo.NewClient()
	}
	return openai.NewClient(openai.Options{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.Model,
		SiteURL:    cfg.AI.SiteURL,
		SiteName:   cfg.AI.SiteName,
		Structured: cfg.AI.Structured,
		Timeout:    cfg.AI.Timeout,
	})
}
