// Package discord binds the bot pipeline to the Discord gateway.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/friendlylab/friendbot"
)

// MessageHandler consumes inbound chat messages. friendbot.Handler satisfies
// it.
type MessageHandler interface {
	Handle(ctx context.Context, msg friendbot.InboundMessage)
}

// Bot wraps a discordgo session, translating gateway events into pipeline
// messages and replies back into channel sends. It implements
// friendbot.Messenger.
type Bot struct {
	session *discordgo.Session
	handler MessageHandler
	logger  friendbot.Logger
	limiter *rate.Limiter
}

// New creates a Bot authenticated with token. sendRate and sendBurst pace
// outbound sends; a zero or negative rate disables pacing.
func New(token string, logger friendbot.Logger, sendRate float64, sendBurst int) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	limit := rate.Inf
	if sendRate > 0 {
		limit = rate.Limit(sendRate)
	}
	if sendBurst < 1 {
		sendBurst = 1
	}

	return &Bot{
		session: session,
		logger:  logger,
		limiter: rate.NewLimiter(limit, sendBurst),
	}, nil
}

// AttachHandler registers the pipeline handler with the session. Call before
// Open.
func (b *Bot) AttachHandler(handler MessageHandler) {
	b.handler = handler
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
}

// Open connects to the gateway and starts receiving events.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

// SendMessage implements friendbot.Messenger.
func (b *Bot) SendMessage(ctx context.Context, conversationID, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.session.ChannelMessageSend(conversationID, text)
	return err
}

// Typing implements friendbot.Messenger. Best effort; a failed indicator is
// logged and otherwise ignored.
func (b *Bot) Typing(conversationID string) {
	if err := b.session.ChannelTyping(conversationID); err != nil {
		b.logger.WithErr(err).Debug("failed to send typing indicator")
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.WithFields(map[string]interface{}{
		"username": r.User.Username,
		"user_id":  r.User.ID,
	}).Info("logged in")
}

// onMessageCreate maps one gateway event onto one pipeline run. discordgo
// invokes each handler on its own goroutine, so a slow inference call never
// blocks the event loop.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	b.handler.Handle(context.Background(), friendbot.InboundMessage{
		ConversationID: m.ChannelID,
		AuthorID:       m.Author.Username,
		Content:        m.Content,
		IsSelf:         s.State.User != nil && m.Author.ID == s.State.User.ID,
	})
}
