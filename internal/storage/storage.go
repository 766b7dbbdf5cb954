package storage

import "time"

// Event represents one completed chat exchange.
// Events are appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Escalated         bool      `json:"escalated,omitempty"`
	Model             string    `json:"model,omitempty"`
	PromptTokens      int       `json:"prompt_tokens,omitempty"`
	CompletionTokens  int       `json:"completion_tokens,omitempty"`
	TotalTokens       int       `json:"total_tokens,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions should return events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
