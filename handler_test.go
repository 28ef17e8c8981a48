package friendbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessenger records dispatched replies and typing indicators.
type fakeMessenger struct {
	mu      sync.Mutex
	sends   []string
	typing  int
	sendErr error
}

func (f *fakeMessenger) SendMessage(_ context.Context, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sends = append(f.sends, text)
	return nil
}

func (f *fakeMessenger) Typing(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
}

func (f *fakeMessenger) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.sends...)
}

// panicProvider triggers the unexpected-error path.
type panicProvider struct{}

func (panicProvider) Complete(context.Context, string, CompletionConfig) (CompletionResponse, error) {
	panic("kaboom")
}

func newTestHandler(provider CompletionProvider, messenger Messenger, timeout time.Duration) (*Handler, *MemoryStore) {
	store := NewMemoryStore(10)
	return NewHandler(HandlerConfig{
		Store:     store,
		Builder:   NewBuilder(store, "Robo"),
		Sanitizer: NewSanitizer("Robo"),
		Request:   NewCompletionRequest(NewCompletionConfig(), provider),
		Messenger: messenger,
		Timeout:   timeout,
	}), store
}

func TestHandler_SuccessfulExchange(t *testing.T) {
	messenger := &fakeMessenger{}
	provider := NewNoOpsProvider(WithResponse(CompletionResponse{Text: "Friend: hey bob!"}))
	handler, store := newTestHandler(provider, messenger, time.Second)

	handler.Handle(context.Background(), InboundMessage{
		ConversationID: "c1",
		AuthorID:       "bob",
		Content:        "hi",
	})

	require.Equal(t, []string{"hey bob!"}, messenger.sent())
	assert.Equal(t, 1, messenger.typing)

	turns := store.Turns("c1")
	require.Len(t, turns, 2)
	assert.Equal(t, RequesterRole, turns[0].Role)
	assert.True(t, strings.HasPrefix(turns[0].Content, "bob-"), "stamped content: %q", turns[0].Content)
	assert.True(t, strings.HasSuffix(turns[0].Content, ": hi"), "stamped content: %q", turns[0].Content)
	assert.Equal(t, Turn{Role: ResponderRole, Content: "hey bob!"}, turns[1])
}

func TestHandler_GenerationFailure(t *testing.T) {
	messenger := &fakeMessenger{}
	provider := NewNoOpsProvider(WithError(errors.New("backend exploded")))
	handler, store := newTestHandler(provider, messenger, time.Second)

	handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})

	assert.Equal(t, []string{GenerationFallback}, messenger.sent())
	// The requester turn stays; the fallback is never recorded.
	turns := store.Turns("c1")
	require.Len(t, turns, 1)
	assert.Equal(t, RequesterRole, turns[0].Role)
}

func TestHandler_Timeout(t *testing.T) {
	messenger := &fakeMessenger{}
	provider := NewNoOpsProvider(WithDelay(500 * time.Millisecond))
	handler, store := newTestHandler(provider, messenger, 20*time.Millisecond)

	start := time.Now()
	handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})

	assert.Less(t, time.Since(start), 400*time.Millisecond, "caller must not wait for the worker")
	assert.Equal(t, []string{TimeoutFallback}, messenger.sent())
	require.Equal(t, 1, store.Len("c1"))
	assert.Equal(t, RequesterRole, store.Turns("c1")[0].Role)
}

func TestHandler_SelfMessageIgnored(t *testing.T) {
	messenger := &fakeMessenger{}
	handler, store := newTestHandler(NewNoOpsProvider(), messenger, time.Second)

	handler.Handle(context.Background(), InboundMessage{
		ConversationID: "c1",
		AuthorID:       "Robo",
		Content:        "hello everyone",
		IsSelf:         true,
	})

	assert.Empty(t, messenger.sent())
	assert.Zero(t, messenger.typing)
	assert.Zero(t, store.Len("c1"))
}

func TestHandler_PanicMapsToUnexpectedFallback(t *testing.T) {
	messenger := &fakeMessenger{}
	handler, store := newTestHandler(panicProvider{}, messenger, time.Second)

	handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})

	assert.Equal(t, []string{UnexpectedFallback}, messenger.sent())
	assert.Equal(t, 1, store.Len("c1"))
}

func TestHandler_EveryMessageGetsOneReply(t *testing.T) {
	messenger := &fakeMessenger{}
	provider := NewNoOpsProvider(WithResponse(CompletionResponse{Text: "ok"}))
	handler, _ := newTestHandler(provider, messenger, time.Second)

	for i := 0; i < 5; i++ {
		handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})
	}

	assert.Len(t, messenger.sent(), 5)
}

func TestHandler_SameConversationRunsSerialize(t *testing.T) {
	messenger := &fakeMessenger{}
	provider := NewNoOpsProvider(
		WithResponse(CompletionResponse{Text: "reply"}),
		WithDelay(10*time.Millisecond),
	)
	handler, store := newTestHandler(provider, messenger, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})
		}()
	}
	wg.Wait()

	assert.Len(t, messenger.sent(), 2)

	// Serialized pipeline runs keep exchanges whole: requester and responder
	// turns alternate instead of interleaving.
	turns := store.Turns("c1")
	require.Len(t, turns, 4)
	assert.Equal(t, RequesterRole, turns[0].Role)
	assert.Equal(t, ResponderRole, turns[1].Role)
	assert.Equal(t, RequesterRole, turns[2].Role)
	assert.Equal(t, ResponderRole, turns[3].Role)
}

func TestHandler_BoundedConcurrentInference(t *testing.T) {
	messenger := &fakeMessenger{}
	store := NewMemoryStore(10)
	provider := NewNoOpsProvider(
		WithResponse(CompletionResponse{Text: "reply"}),
		WithDelay(10*time.Millisecond),
	)
	handler := NewHandler(HandlerConfig{
		Store:                  store,
		Builder:                NewBuilder(store, "Robo"),
		Sanitizer:              NewSanitizer("Robo"),
		Request:                NewCompletionRequest(NewCompletionConfig(), provider),
		Messenger:              messenger,
		Timeout:                time.Second,
		MaxConcurrentInference: 1,
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		conversationID := []string{"c1", "c2", "c3"}[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.Handle(context.Background(), InboundMessage{ConversationID: conversationID, AuthorID: "bob", Content: "hi"})
		}()
	}
	wg.Wait()

	assert.Len(t, messenger.sent(), 3)
}

func TestHandler_SendFailureDoesNotPanic(t *testing.T) {
	messenger := &fakeMessenger{sendErr: errors.New("gateway down")}
	handler, _ := newTestHandler(NewNoOpsProvider(), messenger, time.Second)

	assert.NotPanics(t, func() {
		handler.Handle(context.Background(), InboundMessage{ConversationID: "c1", AuthorID: "bob", Content: "hi"})
	})
}
