package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/threatlens/internal/domain/ai"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/prompt"
)

const (
	maxTokens      = 1024
	temperature    = 0.3
	defaultModel   = "openai/gpt-3.5-turbo"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// Options for an OpenAI-compatible endpoint (OpenRouter by default)
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	SiteURL    string // sent as HTTP-Referer
	SiteName   string // sent as X-Title
	Structured bool
	Timeout    time.Duration
}

type Client struct {
	*openai.Client
	Model      string
	Structured bool
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: attributionHeaders(opts.SiteURL, opts.SiteName),
		},
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: opts.Model, Structured: opts.Structured}
}

func (c *Client) Analyze(ctx context.Context, query string) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt(c.Structured)},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(query)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	bare := model[strings.LastIndex(model, "/")+1:]
	if strings.HasPrefix(bare, "o1") || strings.HasPrefix(bare, "o3") || strings.HasPrefix(bare, "o4") || strings.HasPrefix(bare, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", domai.ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", domai.ErrEmptyResponse
	}
	return content, nil
}

// classify maps provider status codes onto the domain errors
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", domai.ErrUnauthorized, err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}

func attributionHeaders(siteURL, siteName string) http.Header {
	h := http.Header{}
	if siteURL != "" {
		h.Set("HTTP-Referer", siteURL)
	}
	if siteName != "" {
		h.Set("X-Title", siteName)
	}
	return h
}

type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header[k] = v
	}
	return t.base.RoundTrip(req)
}
