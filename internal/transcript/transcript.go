// Package transcript encodes and decodes the flat text form of a
// conversation. A transcript is a sequence of lines, each turn being a line
// that starts with "User:" or "Bot:".
package transcript

import (
	"strings"
)

const (
	userMarker = "User:"
	botMarker  = "Bot:"

	// Sentinel stands in for an empty transcript when building a prompt.
	// It is never persisted.
	Sentinel = "No previous conversation."

	// NewSessionPreview is shown for sessions without any user turn.
	NewSessionPreview = "New Session"

	previewLimit  = 50
	previewSuffix = "..."
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one decoded line of a transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EncodeAppend appends one user/bot exchange to an existing transcript.
// Neither text is escaped: a line inside userText or botText that starts
// with a marker will decode as a separate turn.
func EncodeAppend(existing, userText, botText string) string {
	var b strings.Builder
	b.Grow(len(existing) + len(userText) + len(botText) + 14)
	b.WriteString(existing)
	b.WriteString("\n" + userMarker + " ")
	b.WriteString(userText)
	b.WriteString("\n" + botMarker + " ")
	b.WriteString(botText)
	return b.String()
}

// Decode returns the turns of a transcript in order. Lines without a marker,
// including the sentinel and continuation lines of multi-line replies, are
// dropped.
func Decode(transcript string) []Turn {
	turns := make([]Turn, 0)
	if transcript == "" {
		return turns
	}
	for _, line := range strings.Split(transcript, "\n") {
		switch {
		case strings.HasPrefix(line, userMarker):
			turns = append(turns, Turn{Role: RoleUser, Content: strings.TrimSpace(line[len(userMarker):])})
		case strings.HasPrefix(line, botMarker):
			turns = append(turns, Turn{Role: RoleAssistant, Content: strings.TrimSpace(line[len(botMarker):])})
		}
	}
	return turns
}

// Preview returns the first user line truncated to 50 characters with a
// trailing ellipsis, or NewSessionPreview if there is none.
func Preview(transcript string) string {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return NewSessionPreview
	}
	for _, line := range strings.Split(trimmed, "\n") {
		if !strings.HasPrefix(line, userMarker) {
			continue
		}
		content := []rune(strings.TrimSpace(line[len(userMarker):]))
		if len(content) > previewLimit {
			content = content[:previewLimit]
		}
		return string(content) + previewSuffix
	}
	return NewSessionPreview
}

// PromptHistory returns the transcript as it should appear in a prompt.
func PromptHistory(transcript string) string {
	if transcript == "" {
		return Sentinel
	}
	return transcript
}
