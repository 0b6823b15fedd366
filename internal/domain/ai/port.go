package ai

import "context"

// Client sends one security question to the model and returns its raw text.
// On error the returned text must be ignored.
type Client interface {
	Analyze(ctx context.Context, query string) (string, error)
}
