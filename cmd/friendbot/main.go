// Command friendbot runs the Discord bot against a local inference server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/friendlylab/friendbot"
	"github.com/friendlylab/friendbot/discord"
)

const warmupTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := friendbot.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := friendbot.NewProductionLogger(cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := friendbot.NewOpenAIProvider(friendbot.OpenAIProviderConfig{
		Client: friendbot.NewLocalClient(cfg.BaseURL, cfg.APIKey),
		Model:  cfg.ModelPath,
	})

	logger.WithFields(map[string]interface{}{
		"model":    cfg.ModelPath,
		"base_url": cfg.BaseURL,
	}).Info("loading model")

	warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	err = provider.Warmup(warmupCtx)
	cancel()
	if err != nil {
		logger.WithErr(err).Error("failed to load model")
		os.Exit(1)
	}
	logger.Info("model loaded successfully")

	store := friendbot.NewMemoryStore(cfg.MaxHistoryTurns)
	request := friendbot.NewCompletionRequest(friendbot.NewCompletionConfig(
		friendbot.WithMaxToken(cfg.MaxTokens),
		friendbot.WithTemperature(cfg.Temperature),
		friendbot.WithTopP(cfg.TopP),
		friendbot.WithRepetitionPenalty(cfg.RepeatPenalty),
		friendbot.WithStopSequences(friendbot.StopSequences()...),
	), friendbot.NewTracingProvider(provider))

	bot, err := discord.New(cfg.DiscordToken, logger, cfg.SendRatePerSecond, cfg.SendBurst)
	if err != nil {
		logger.WithErr(err).Error("failed to create gateway client")
		os.Exit(1)
	}

	bot.AttachHandler(friendbot.NewHandler(friendbot.HandlerConfig{
		Store:                  store,
		Builder:                friendbot.NewBuilder(store, cfg.BotName),
		Sanitizer:              friendbot.NewSanitizer(cfg.BotName),
		Request:                request,
		Messenger:              bot,
		Logger:                 logger,
		Timeout:                cfg.ResponseTimeout,
		MaxConcurrentInference: cfg.MaxConcurrentInference,
	}))

	if err := bot.Open(); err != nil {
		logger.WithErr(err).Error("failed to connect to gateway")
		os.Exit(1)
	}
	logger.Info("bot is running, press ctrl-c to exit")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return bot.Close()
	})

	if err := g.Wait(); err != nil {
		logger.WithErr(err).Error("shutdown error")
		os.Exit(1)
	}
	logger.Info("shut down cleanly")
}
