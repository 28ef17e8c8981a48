package friendbot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopSequences(t *testing.T) {
	assert.Equal(t, []string{"Human:", "Friend:"}, StopSequences())
}

func TestBuilder_Build_EmptyHistory(t *testing.T) {
	store := NewMemoryStore(10)
	builder := NewBuilder(store, "Robo")

	prompt := builder.Build("c1", "hi")

	expected := fmt.Sprintf(promptPreamble, "Robo", "Robo") + "Human: hi\nFriend:"
	assert.Equal(t, expected, prompt)
}

func TestBuilder_Build_AppendsRequesterTurn(t *testing.T) {
	store := NewMemoryStore(10)
	builder := NewBuilder(store, "Robo")

	builder.Build("c1", "hi")

	turns := store.Turns("c1")
	assert.Len(t, turns, 1)
	assert.Equal(t, Turn{Role: RequesterRole, Content: "hi"}, turns[0])
}

func TestBuilder_Build_RendersHistoryInOrder(t *testing.T) {
	store := NewMemoryStore(10)
	builder := NewBuilder(store, "Robo")

	builder.Build("c1", "how are you?")
	store.Append("c1", Turn{Role: ResponderRole, Content: "doing great"})
	prompt := builder.Build("c1", "glad to hear it")

	assert.True(t, strings.HasSuffix(prompt,
		"Human: how are you?\nFriend: doing great\nHuman: glad to hear it\nFriend:"),
		"unexpected prompt: %q", prompt)
}

func TestBuilder_Build_OnlyRetainedTurns(t *testing.T) {
	store := NewMemoryStore(1) // retains at most 2 turns
	builder := NewBuilder(store, "Robo")

	builder.Build("c1", "first")
	store.Append("c1", Turn{Role: ResponderRole, Content: "first reply"})
	prompt := builder.Build("c1", "second")

	assert.NotContains(t, prompt, "Human: first\n")
	assert.True(t, strings.HasSuffix(prompt, "Friend: first reply\nHuman: second\nFriend:"),
		"unexpected prompt: %q", prompt)
}

func TestBuilder_Build_EndsWithOpenResponderCue(t *testing.T) {
	store := NewMemoryStore(10)
	builder := NewBuilder(store, "Robo")

	prompt := builder.Build("c1", "hi")

	assert.True(t, strings.HasSuffix(prompt, "Friend:"))
	assert.False(t, strings.HasSuffix(prompt, "Friend: "))
}
