package friendbot

import (
	"context"
	"time"

	"github.com/openai/openai-go"
)

// OpenAIProvider implements CompletionProvider against any OpenAI-compatible
// endpoint. It is how the bot reaches a local inference engine: llama.cpp's
// server, LM Studio and Ollama all expose this API in front of a model file.
type OpenAIProvider struct {
	client OpenAIClientProvider
	model  string
}

// OpenAIProviderConfig holds configuration for OpenAIProvider.
type OpenAIProviderConfig struct {
	// Client is the OpenAIClientProvider implementation to use.
	Client OpenAIClientProvider
	// Model identifies the model to the server. For local servers this is
	// typically the loaded model's artifact path or alias.
	Model string
}

// NewOpenAIProvider creates a new provider with the specified configuration.
func NewOpenAIProvider(config OpenAIProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{
		client: config.Client,
		model:  config.Model,
	}
}

// createCompletionParams maps a prompt and completion config onto the wire
// parameters.
func (p *OpenAIProvider) createCompletionParams(prompt string, config CompletionConfig) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(p.model),
		MaxTokens:   openai.Int(config.maxToken),
		Temperature: openai.Float(config.temperature),
		TopP:        openai.Float(config.topP),
	}

	if config.repetitionPenalty != 0 {
		// The wire format has no repeat_penalty; frequency_penalty is the
		// equivalent knob, centered on 0 instead of 1.
		params.FrequencyPenalty = openai.Float(config.repetitionPenalty - 1)
	}
	if len(config.stopSequences) > 0 {
		params.Stop = openai.F[openai.ChatCompletionNewParamsStopUnion](
			openai.ChatCompletionNewParamsStopArray(config.stopSequences))
	}

	return params
}

// Complete implements the CompletionProvider interface. The call blocks until
// the server responds or ctx is done; cancellation aborts the underlying HTTP
// request.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, config CompletionConfig) (CompletionResponse, error) {
	startTime := time.Now()

	completion, err := p.client.CreateCompletion(ctx, p.createCompletionParams(prompt, config))
	if err != nil {
		return CompletionResponse{}, err
	}

	if len(completion.Choices) == 0 {
		return CompletionResponse{}, &LLMError{Code: 400, Message: "no choices in response"}
	}

	return CompletionResponse{
		Text:             completion.Choices[0].Message.Content,
		TotalOutputToken: int(completion.Usage.CompletionTokens),
		CompletionTime:   time.Since(startTime).Seconds(),
	}, nil
}

// Warmup issues a one-token completion so a server that failed to load its
// model surfaces the failure at startup instead of on the first chat message.
func (p *OpenAIProvider) Warmup(ctx context.Context) error {
	_, err := p.client.CreateCompletion(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		}),
		Model:     openai.F(p.model),
		MaxTokens: openai.Int(1),
	})
	return err
}
