package chat

import (
	"context"
	"fmt"
	"time"

	"support-chat/internal/faq"
	"support-chat/internal/llm"
	"support-chat/internal/logger"
	"support-chat/internal/session"
	"support-chat/internal/storage"
	"support-chat/internal/transcript"
)

// DefaultSessionID is used when a chat request carries no session id.
const DefaultSessionID = "default"

// LLMError wraps a failed completion call.
type LLMError struct {
	Err error
}

func (e *LLMError) Error() string { return e.Err.Error() }

func (e *LLMError) Unwrap() error { return e.Err }

// Service answers support queries and exposes session history.
type Service struct {
	llm      llm.Client
	store    session.Store
	faqs     string
	recorder storage.Recorder
	now      func() time.Time
}

// NewService wires the orchestrator. recorder may be nil.
func NewService(llmClient llm.Client, store session.Store, faqs []faq.FAQ, recorder storage.Recorder) *Service {
	return &Service{
		llm:      llmClient,
		store:    store,
		faqs:     faq.Format(faqs),
		recorder: recorder,
		now:      time.Now,
	}
}

type Reply struct {
	Text      string
	Escalated bool
}

// Chat runs one exchange. The stored transcript is read, the model is
// asked, and the transcript with the new turn appended is written back.
// A failed write is logged and does not fail the call. Same-session calls
// racing each other can drop a turn; the last write wins.
func (s *Service) Chat(ctx context.Context, sessionID, query string) (*Reply, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	ctx = logger.WithSession(ctx, sessionID)
	log := logger.FromContext(ctx)

	stored := s.store.GetTranscript(ctx, sessionID)
	prompt := BuildPrompt(s.faqs, transcript.PromptHistory(stored), query)

	resp, err := s.llm.Generate(ctx, []llm.Message{{Role: llm.RoleSystem, Content: prompt}})
	if err != nil {
		log.Error().Err(err).Msg("llm call failed")
		return nil, &LLMError{Err: err}
	}
	log.Info().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.PromptTokens).
		Int("completion_tokens", resp.CompletionTokens).
		Int("total_tokens", resp.TotalTokens).
		Msg("llm response")

	updated := transcript.EncodeAppend(stored, query, resp.Content)
	if err := s.store.PutTranscript(ctx, sessionID, updated); err != nil {
		log.Error().Err(err).Msg("save history failed")
	}

	escalated := NeedsEscalation(resp.Content)
	s.record(ctx, storage.Event{
		Timestamp:         s.now().UTC(),
		SessionID:         sessionID,
		UserMessage:       query,
		AssistantResponse: resp.Content,
		Escalated:         escalated,
		Model:             resp.Model,
		PromptTokens:      resp.PromptTokens,
		CompletionTokens:  resp.CompletionTokens,
		TotalTokens:       resp.TotalTokens,
	})

	text := resp.Content
	if escalated {
		text += EscalationNotice
	}
	return &Reply{Text: text, Escalated: escalated}, nil
}

func (s *Service) record(ctx context.Context, ev storage.Event) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.AppendInteraction(ev); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("record interaction failed")
	}
}

type Summary struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// Sessions lists all sessions with a preview of their first user turn.
func (s *Service) Sessions(ctx context.Context) ([]Summary, error) {
	rows, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{ID: r.SessionID, Preview: transcript.Preview(r.Transcript)})
	}
	return out, nil
}

// History returns the decoded turns of a session; unknown sessions are empty.
func (s *Service) History(ctx context.Context, sessionID string) []transcript.Turn {
	return transcript.Decode(s.store.GetTranscript(ctx, sessionID))
}

// NewSession stores an empty transcript for sessionID, clearing any
// existing one. Failures are logged only.
func (s *Service) NewSession(ctx context.Context, sessionID string) {
	ctx = logger.WithSession(ctx, sessionID)
	if err := s.store.PutTranscript(ctx, sessionID, ""); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("create session failed")
		return
	}
	logger.FromContext(ctx).Info().Msg("session created")
}
