package friendbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Fallback replies. Every accepted message yields exactly one outbound reply;
// when the pipeline cannot produce a real one, it degrades to one of these.
const (
	// GenerationFallback is sent when the completion call fails.
	GenerationFallback = "I'm having trouble thinking right now. Can you try again?"

	// TimeoutFallback is sent when the completion call exceeds the
	// configured timeout.
	TimeoutFallback = "I'm still thinking about that. Could you give me a moment and try again?"

	// UnexpectedFallback is sent when anything else goes wrong during
	// orchestration.
	UnexpectedFallback = "I encountered an unexpected error. Please try again."
)

// DefaultResponseTimeout bounds a single inference call.
const DefaultResponseTimeout = 240 * time.Second

// inboundStampLayout is the wrapper timestamp prepended to inbound content
// before it enters the prompt.
const inboundStampLayout = "Monday 01/02/2006 15:04:05"

// InboundMessage is one arriving chat message.
type InboundMessage struct {
	// ConversationID identifies the channel the message arrived in.
	ConversationID string
	// AuthorID is the author's display identifier.
	AuthorID string
	// Content is the raw message text.
	Content string
	// IsSelf marks messages authored by the bot's own identity.
	IsSelf bool
}

// Messenger dispatches replies back into a conversation. The Discord binding
// implements it; tests substitute a recorder.
type Messenger interface {
	// SendMessage sends one reply text into the conversation.
	SendMessage(ctx context.Context, conversationID, text string) error

	// Typing asserts a composing indicator for the conversation. Best
	// effort; failures are not reported.
	Typing(conversationID string)
}

// Handler orchestrates the per-message flow: build a prompt from bounded
// history, invoke inference with a timeout, sanitize the output, record the
// exchange and dispatch exactly one reply.
//
// Pipeline runs for the same conversation are serialized; distinct
// conversations proceed concurrently, each with its own inference call in
// flight.
type Handler struct {
	store     ConversationStore
	builder   *Builder
	sanitizer *Sanitizer
	request   *CompletionRequest
	messenger Messenger
	logger    Logger
	timeout   time.Duration
	inflight  *semaphore.Weighted

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// HandlerConfig holds the collaborators and tunables for a Handler.
type HandlerConfig struct {
	Store     ConversationStore
	Builder   *Builder
	Sanitizer *Sanitizer
	Request   *CompletionRequest
	Messenger Messenger
	Logger    Logger

	// Timeout bounds one inference call. Zero means DefaultResponseTimeout.
	Timeout time.Duration

	// MaxConcurrentInference caps inference calls in flight across all
	// conversations. Zero means unbounded.
	MaxConcurrentInference int64
}

// NewHandler creates a Handler from config.
func NewHandler(config HandlerConfig) *Handler {
	if config.Logger == nil {
		config.Logger = NewNullLogger()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultResponseTimeout
	}

	h := &Handler{
		store:     config.Store,
		builder:   config.Builder,
		sanitizer: config.Sanitizer,
		request:   config.Request,
		messenger: config.Messenger,
		logger:    config.Logger,
		timeout:   config.Timeout,
		locks:     make(map[string]*sync.Mutex),
	}
	if config.MaxConcurrentInference > 0 {
		h.inflight = semaphore.NewWeighted(config.MaxConcurrentInference)
	}
	return h
}

// Handle processes one inbound message to completion. Messages flagged as the
// bot's own are ignored entirely; every other message yields exactly one
// outbound reply, real or fallback.
func (h *Handler) Handle(ctx context.Context, msg InboundMessage) {
	if msg.IsSelf {
		return
	}

	logger := h.logger.WithFields(map[string]interface{}{
		"conversation_id": msg.ConversationID,
		"author":          msg.AuthorID,
		"request_id":      uuid.New().String(),
	})
	logger.Info("message received")

	reply := h.process(ctx, logger, msg)

	if err := h.messenger.SendMessage(ctx, msg.ConversationID, reply); err != nil {
		logger.WithErr(err).Error("failed to send reply")
		return
	}
	logger.WithFields(map[string]interface{}{"reply_chars": len(reply)}).Info("reply sent")
}

// process runs the pipeline and returns the reply text. Any panic during
// orchestration is recovered into the generic fallback so one message's
// failure never takes down the event loop.
func (h *Handler) process(ctx context.Context, logger Logger, msg InboundMessage) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{"panic": r}).Error("unexpected pipeline error")
			reply = UnexpectedFallback
		}
	}()

	unlock := h.lockConversation(msg.ConversationID)
	defer unlock()

	h.messenger.Typing(msg.ConversationID)

	stamped := msg.AuthorID + "-" + time.Now().Format(inboundStampLayout) + ": " + msg.Content
	prompt := h.builder.Build(msg.ConversationID, stamped)
	logger.WithFields(map[string]interface{}{
		"prompt_chars": len(prompt),
		"prompt_words": len(strings.Fields(prompt)),
	}).Info("prompt composed")

	raw, err := h.generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn(fmt.Sprintf("generation timed out after %s", h.timeout))
			return TimeoutFallback
		}
		logger.WithErr(err).Error("generation failed")
		return GenerationFallback
	}

	clean := h.sanitizer.Sanitize(raw, msg.AuthorID)
	h.store.Append(msg.ConversationID, Turn{Role: ResponderRole, Content: clean})
	return clean
}

// generate runs the completion call on its own goroutine bounded by the
// configured timeout. On timeout the caller returns immediately; a provider
// that ignores cancellation may keep running, its result landing in the
// buffered channel to be discarded.
func (h *Handler) generate(ctx context.Context, prompt string) (string, error) {
	if h.inflight != nil {
		if err := h.inflight.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer h.inflight.Release(1)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		response, err := h.request.Generate(ctx, prompt)
		done <- result{text: response.Text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// lockConversation acquires the per-conversation pipeline lock, creating it
// on first use, and returns the release function.
func (h *Handler) lockConversation(conversationID string) func() {
	h.locksMu.Lock()
	lock, ok := h.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[conversationID] = lock
	}
	h.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
