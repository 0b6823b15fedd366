package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptyResponse indicates the provider answered without any content.
var ErrEmptyResponse = errors.New("ai returned an empty response")

// ErrUnauthorized indicates the provider rejected the API key.
var ErrUnauthorized = errors.New("ai credentials rejected")
