package friendbot

import (
	"fmt"
	"strings"
)

// Fixed role labels used both as transcript markup and as generation stop
// sequences. If user content contains one of these literals verbatim the
// sanitizer will treat it as a turn boundary; see Sanitizer.Sanitize.
const (
	requesterLabel = "Human"
	responderLabel = "Friend"
)

const promptPreamble = "Below is a conversation between a human and a friend on Discord. " +
	"The name of the friend is %s. " +
	"DO NOT INCLUDE %s DISCORD NAME OR TIME INFORMATION IN THE RESPONSE. \n\n"

// StopSequences returns the role labels that end generation when the model
// emits them.
func StopSequences() []string {
	return []string{requesterLabel + ":", responderLabel + ":"}
}

// Builder renders a conversation's bounded history plus a new requester turn
// into a single text prompt for the model.
type Builder struct {
	store         ConversationStore
	responderName string
}

// NewBuilder creates a Builder reading from store. responderName is the bot's
// display name, used in the prompt preamble.
func NewBuilder(store ConversationStore, responderName string) *Builder {
	return &Builder{
		store:         store,
		responderName: responderName,
	}
}

// Build appends content as a requester turn to the conversation's history,
// then renders the preamble, each retained turn as "<Label>: <content>" on
// its own line in chronological order, and a trailing open responder cue for
// the model to continue from.
func (b *Builder) Build(conversationID, content string) string {
	b.store.Append(conversationID, Turn{Role: RequesterRole, Content: content})

	var sb strings.Builder
	fmt.Fprintf(&sb, promptPreamble, b.responderName, b.responderName)

	for _, turn := range b.store.Turns(conversationID) {
		label := requesterLabel
		if turn.Role == ResponderRole {
			label = responderLabel
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, turn.Content)
	}

	sb.WriteString(responderLabel + ":")
	return sb.String()
}
