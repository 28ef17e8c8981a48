package friendbot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// TracingProvider implements the decorator pattern for tracing.
type TracingProvider struct {
	provider CompletionProvider
}

// NewTracingProvider creates a new tracing decorator for any CompletionProvider.
func NewTracingProvider(provider CompletionProvider) *TracingProvider {
	return &TracingProvider{
		provider: provider,
	}
}

// Complete implements the CompletionProvider interface with added tracing.
func (t *TracingProvider) Complete(ctx context.Context, prompt string, config CompletionConfig) (CompletionResponse, error) {
	ctx, span := StartSpan(ctx, "CompletionProvider.Complete")
	defer span.End()

	startTime := time.Now()

	response, err := t.provider.Complete(ctx, prompt, config)
	if err != nil {
		span.RecordError(err)
		return CompletionResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("prompt_length", len(prompt)),
		attribute.Int("total_output_token", response.TotalOutputToken),
		attribute.Float64("completion_time", time.Since(startTime).Seconds()),
		attribute.Int64("max_token", config.maxToken),
		attribute.Float64("temperature", config.temperature),
		attribute.Float64("top_p", config.topP),
	)

	return response, nil
}
