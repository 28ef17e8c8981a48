package friendbot

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClientProvider defines the interface for talking to an
// OpenAI-compatible completion endpoint. It abstracts the single operation
// used by OpenAIProvider so tests can substitute a mock.
type OpenAIClientProvider interface {
	// CreateCompletion creates a new chat completion.
	CreateCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIClient implements OpenAIClientProvider using the official SDK.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAIClient with the provided API key and
// optional client options.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
	}
}

// NewLocalClient creates a client for a local OpenAI-compatible server such
// as a llama.cpp server, LM Studio or Ollama. Local servers usually ignore
// the API key; pass an empty string unless yours requires one.
//
// Example usage:
//
//	client := friendbot.NewLocalClient("http://127.0.0.1:8080/v1", "")
func NewLocalClient(baseURL, apiKey string) *OpenAIClient {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return NewOpenAIClient(apiKey, opts...)
}

// CreateCompletion implements the OpenAIClientProvider interface.
func (c *OpenAIClient) CreateCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
