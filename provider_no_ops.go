package friendbot

import (
	"context"
	"time"
)

// NoOpsProvider implements CompletionProvider for testing purposes. It
// returns a canned response, optionally after a delay or with an error.
type NoOpsProvider struct {
	response CompletionResponse
	err      error
	delay    time.Duration
}

// NoOpsOption defines the function signature for option pattern.
type NoOpsOption func(*NoOpsProvider)

// WithResponse sets a custom CompletionResponse for the NoOpsProvider.
func WithResponse(response CompletionResponse) NoOpsOption {
	return func(n *NoOpsProvider) {
		n.response = response
	}
}

// WithError makes the provider fail with the given error.
func WithError(err error) NoOpsOption {
	return func(n *NoOpsProvider) {
		n.err = err
	}
}

// WithDelay makes the provider wait before responding, honoring context
// cancellation while it waits.
func WithDelay(delay time.Duration) NoOpsOption {
	return func(n *NoOpsProvider) {
		n.delay = delay
	}
}

// NewNoOpsProvider creates a new NoOpsProvider with optional configurations.
func NewNoOpsProvider(opts ...NoOpsOption) *NoOpsProvider {
	provider := &NoOpsProvider{
		response: CompletionResponse{
			Text:             "Default NoOps response",
			TotalOutputToken: 3,
			CompletionTime:   0.1,
		},
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// Complete implements the CompletionProvider interface.
func (n *NoOpsProvider) Complete(ctx context.Context, _ string, _ CompletionConfig) (CompletionResponse, error) {
	if n.delay > 0 {
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return CompletionResponse{}, ctx.Err()
		}
	}

	if n.err != nil {
		return CompletionResponse{}, n.err
	}
	return n.response, nil
}
