package friendbot

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every recognized option. Values come from the environment so
// secrets never live in source.
type Config struct {
	// DiscordToken authenticates the bot with the gateway. Required.
	DiscordToken string

	// ModelPath locates the model artifact and identifies it to the
	// inference server. Required.
	ModelPath string

	// BotName is the responder display name used in prompts and when
	// stripping identity echoes from output.
	BotName string

	// MaxHistoryTurns limits retained logical exchanges per conversation.
	MaxHistoryTurns int

	// ResponseTimeout bounds one inference call.
	ResponseTimeout time.Duration

	// Sampling parameters forwarded to the inference adapter.
	MaxTokens     int64
	Temperature   float64
	TopP          float64
	RepeatPenalty float64

	// BaseURL points at the local OpenAI-compatible inference server.
	BaseURL string
	// APIKey is sent to the inference server when it requires one.
	APIKey string

	// LogFile receives a rotated copy of the log stream alongside stdout.
	LogFile string

	// MaxConcurrentInference caps inference calls in flight across all
	// conversations. Zero leaves them unbounded.
	MaxConcurrentInference int64

	// SendRatePerSecond and SendBurst pace outbound replies. A zero rate
	// disables pacing.
	SendRatePerSecond float64
	SendBurst         int
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		return Config{}, fmt.Errorf("DISCORD_BOT_TOKEN is required in environment")
	}
	modelPath := os.Getenv("MODEL_PATH")
	if modelPath == "" {
		return Config{}, fmt.Errorf("MODEL_PATH is required in environment")
	}

	return Config{
		DiscordToken:           token,
		ModelPath:              modelPath,
		BotName:                envOrDefault("BOT_NAME", "Friend"),
		MaxHistoryTurns:        envIntOrDefault("MAX_HISTORY_TURNS", 10),
		ResponseTimeout:        time.Duration(envIntOrDefault("RESPONSE_TIMEOUT_SECONDS", 240)) * time.Second,
		MaxTokens:              int64(envIntOrDefault("LLM_MAX_TOKENS", 500)),
		Temperature:            envFloatOrDefault("LLM_TEMPERATURE", 0.7),
		TopP:                   envFloatOrDefault("LLM_TOP_P", 0.9),
		RepeatPenalty:          envFloatOrDefault("LLM_REPEAT_PENALTY", 1.1),
		BaseURL:                envOrDefault("LLM_BASE_URL", "http://127.0.0.1:8080/v1"),
		APIKey:                 os.Getenv("LLM_API_KEY"),
		LogFile:                envOrDefault("LOG_FILE", "bot_log.txt"),
		MaxConcurrentInference: int64(envIntOrDefault("MAX_CONCURRENT_INFERENCE", 0)),
		SendRatePerSecond:      envFloatOrDefault("SEND_RATE_PER_SECOND", 1),
		SendBurst:              envIntOrDefault("SEND_BURST", 5),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
