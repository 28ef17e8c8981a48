package friendbot

import (
	"regexp"
	"strings"
)

var (
	stopLabelPattern = regexp.MustCompile(`\bHuman:|\bFriend:`)

	weekdayStampPattern = regexp.MustCompile(
		`\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s\d{2}/\d{2}/\d{4}\s\d{2}:\d{2}:\d{2}:`)
	bareStampPattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\s\d{2}:\d{2}:\d{2}:`)

	extraWhitespacePattern = regexp.MustCompile(`\s{2,}`)
)

// Sanitizer strips role markers, timestamps and identity-prefix artifacts
// from raw model output. It is stateless; both methods are pure functions of
// their inputs.
type Sanitizer struct {
	responderName string
}

// NewSanitizer creates a Sanitizer for the given responder display name.
func NewSanitizer(responderName string) *Sanitizer {
	return &Sanitizer{responderName: responderName}
}

// Sanitize cleans raw generated text: text from the first role-label leak
// onward is dropped, embedded timestamps are removed, whitespace runs are
// collapsed, and a leading responder-name or author-label echo is stripped.
// A role label occurring inside genuine content is indistinguishable from a
// leak and truncates the output at that point.
//
// Applying Sanitize to an already-sanitized string returns it unchanged.
func (s *Sanitizer) Sanitize(raw, authorLabel string) string {
	return s.SanitizeWithTimestamp(raw, authorLabel, "")
}

// SanitizeWithTimestamp additionally removes every occurrence of the given
// timestamp literal. An empty timestamp skips that step.
func (s *Sanitizer) SanitizeWithTimestamp(raw, authorLabel, timestamp string) string {
	text := raw

	// A label at the very start is an identity echo, not trailing leakage;
	// drop the label itself and truncate at the next one.
	if loc := stopLabelPattern.FindStringIndex(text); loc != nil {
		if loc[0] == 0 {
			text = text[loc[1]:]
			if next := stopLabelPattern.FindStringIndex(text); next != nil {
				text = text[:next[0]]
			}
		} else {
			text = text[:loc[0]]
		}
	}
	text = strings.TrimSpace(text)

	if timestamp != "" {
		text = strings.ReplaceAll(text, timestamp, "")
	}

	text = weekdayStampPattern.ReplaceAllString(text, "")
	text = bareStampPattern.ReplaceAllString(text, "")

	text = extraWhitespacePattern.ReplaceAllString(text, " ")

	if s.responderName != "" {
		text = strings.TrimPrefix(text, s.responderName+": ")
		text = strings.TrimPrefix(text, s.responderName+" ")
	}
	text = strings.TrimSpace(text)

	if authorLabel != "" {
		text = strings.TrimPrefix(text, authorLabel+": ")
		text = strings.TrimPrefix(text, authorLabel+"- ")
		text = strings.TrimPrefix(text, authorLabel)
	}

	return strings.TrimSpace(text)
}
