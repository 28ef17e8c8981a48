// Package friendbot connects a Discord channel to a local large-language-model
// backend, keeping a short rolling conversation history per channel and
// cleaning up model output before it is sent back.
package friendbot

import (
	"context"
	"fmt"
)

// Role identifies the author side of a conversation turn.
type Role string

const (
	// RequesterRole marks a turn authored by a human in the channel.
	RequesterRole Role = "requester"

	// ResponderRole marks a turn synthesized by the model.
	ResponderRole Role = "responder"
)

// Turn is one authored contribution within a conversation history.
// A Turn is immutable once created.
type Turn struct {
	Role    Role
	Content string
}

// CompletionResponse holds the output of a single completion call.
type CompletionResponse struct {
	Text             string
	TotalOutputToken int
	CompletionTime   float64
}

// CompletionProvider is the external text-completion capability the pipeline
// calls into. Implementations may block for seconds to minutes; callers bound
// the call with the context. The provider performs no internal retry.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string, config CompletionConfig) (CompletionResponse, error)
}

// LLMError represents a failure reported by a completion backend.
type LLMError struct {
	Code    int
	Message string
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("LLM error %d: %s", e.Code, e.Message)
}

// CompletionConfig holds the sampling parameters forwarded to a provider.
type CompletionConfig struct {
	maxToken          int64
	temperature       float64
	topP              float64
	repetitionPenalty float64
	stopSequences     []string
}

// DefaultConfig matches the sampling parameters the bot ships with.
var DefaultConfig = CompletionConfig{
	maxToken:          500,
	temperature:       0.7,
	topP:              0.9,
	repetitionPenalty: 1.1,
}

// RequestOption is the function signature for completion config options.
type RequestOption func(*CompletionConfig)

// NewCompletionConfig creates a config with defaults, applying any options.
//
// Example usage:
//
//	config := friendbot.NewCompletionConfig(
//	    friendbot.WithMaxToken(500),
//	    friendbot.WithTemperature(0.7),
//	    friendbot.WithStopSequences(friendbot.StopSequences()...),
//	)
func NewCompletionConfig(opts ...RequestOption) CompletionConfig {
	config := DefaultConfig
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// WithMaxToken sets the maximum number of tokens to generate.
func WithMaxToken(maxToken int64) RequestOption {
	return func(c *CompletionConfig) {
		c.maxToken = maxToken
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) RequestOption {
	return func(c *CompletionConfig) {
		c.temperature = temperature
	}
}

// WithTopP sets the nucleus-sampling probability mass.
func WithTopP(topP float64) RequestOption {
	return func(c *CompletionConfig) {
		c.topP = topP
	}
}

// WithRepetitionPenalty sets the repeat-suppression factor, where 1.0 means
// no penalty.
func WithRepetitionPenalty(penalty float64) RequestOption {
	return func(c *CompletionConfig) {
		c.repetitionPenalty = penalty
	}
}

// WithStopSequences sets the literal substrings that end generation.
func WithStopSequences(stops ...string) RequestOption {
	return func(c *CompletionConfig) {
		c.stopSequences = append([]string{}, stops...)
	}
}
