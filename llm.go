package friendbot

import (
	"context"
)

// CompletionRequest binds a sampling configuration to a provider so callers
// can issue repeated completions with consistent parameters.
type CompletionRequest struct {
	config   CompletionConfig
	provider CompletionProvider
}

// NewCompletionRequest creates a CompletionRequest with the specified
// configuration and provider. The provider parameter allows injecting
// different completion backends.
//
// Example usage:
//
//	client := friendbot.NewLocalClient("http://127.0.0.1:8080/v1", "")
//	provider := friendbot.NewOpenAIProvider(friendbot.OpenAIProviderConfig{
//	    Client: client,
//	    Model:  "/models/gemma-3-4b-it-q4_0.gguf",
//	})
//
//	request := friendbot.NewCompletionRequest(friendbot.NewCompletionConfig(
//	    friendbot.WithMaxToken(500),
//	    friendbot.WithStopSequences(friendbot.StopSequences()...),
//	), provider)
func NewCompletionRequest(config CompletionConfig, provider CompletionProvider) *CompletionRequest {
	return &CompletionRequest{
		config:   config,
		provider: provider,
	}
}

// Generate sends the prompt to the configured provider and returns its
// response. The call blocks until the provider finishes or ctx is done.
func (r *CompletionRequest) Generate(ctx context.Context, prompt string) (CompletionResponse, error) {
	return r.provider.Complete(ctx, prompt, r.config)
}
