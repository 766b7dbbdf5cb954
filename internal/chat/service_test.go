package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat/internal/faq"
	"support-chat/internal/history"
	"support-chat/internal/llm"
	"support-chat/internal/session"
	"support-chat/internal/storage"
	"support-chat/internal/transcript"
)

type fakeLLM struct {
	resp  llm.Response
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Generate(_ context.Context, msgs []llm.Message) (llm.Response, error) {
	f.calls = append(f.calls, msgs)
	return f.resp, f.err
}

type memRecorder struct {
	mu     sync.Mutex
	events []storage.Event
	err    error
}

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) LoadInteractions() ([]storage.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.Event{}, m.events...), nil
}

// failingStore fails every write and list, and reads as empty.
type failingStore struct {
	*history.Manager
}

func (failingStore) PutTranscript(context.Context, string, string) error {
	return &session.StoreError{Op: "save history", Err: errors.New("disk full")}
}

func (failingStore) ListSessions(context.Context) ([]session.Session, error) {
	return nil, &session.ConnectionError{Err: errors.New("refused")}
}

func TestChat_FirstTurnAppendsToEmptyTranscript(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	model := &fakeLLM{resp: llm.Response{Content: "hello", Model: "test"}}
	rec := &memRecorder{}
	svc := NewService(model, store, []faq.FAQ{{Question: "Hours?", Answer: "9-5"}}, rec)

	reply, err := svc.Chat(ctx, "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text)
	assert.False(t, reply.Escalated)

	assert.Equal(t, "\nUser: hi\nBot: hello", store.GetTranscript(ctx, "s1"))

	require.Len(t, model.calls, 1)
	require.Len(t, model.calls[0], 1)
	msg := model.calls[0][0]
	assert.Equal(t, llm.RoleSystem, msg.Role)
	assert.Contains(t, msg.Content, "Q: Hours?\nA: 9-5")
	assert.Contains(t, msg.Content, "Full conversation history:\n"+transcript.Sentinel)
	assert.Contains(t, msg.Content, "User query: hi")

	require.Len(t, rec.events, 1)
	assert.Equal(t, "s1", rec.events[0].SessionID)
	assert.Equal(t, "hi", rec.events[0].UserMessage)
}

func TestChat_SecondTurnSeesHistory(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	model := &fakeLLM{resp: llm.Response{Content: "hello"}}
	svc := NewService(model, store, nil, nil)

	_, err := svc.Chat(ctx, "s1", "hi")
	require.NoError(t, err)
	model.resp.Content = "It ships tomorrow."
	_, err = svc.Chat(ctx, "s1", "where is my order?")
	require.NoError(t, err)

	prompt := model.calls[1][0].Content
	assert.Contains(t, prompt, "\nUser: hi\nBot: hello")
	assert.NotContains(t, prompt, transcript.Sentinel)
	assert.Contains(t, prompt, faq.NoFAQs)

	assert.Equal(t, []transcript.Turn{
		{Role: transcript.RoleUser, Content: "hi"},
		{Role: transcript.RoleAssistant, Content: "hello"},
		{Role: transcript.RoleUser, Content: "where is my order?"},
		{Role: transcript.RoleAssistant, Content: "It ships tomorrow."},
	}, svc.History(ctx, "s1"))
}

func TestChat_DefaultSessionID(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	svc := NewService(&fakeLLM{resp: llm.Response{Content: "ok"}}, store, nil, nil)

	_, err := svc.Chat(ctx, "", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, store.GetTranscript(ctx, DefaultSessionID))
}

func TestChat_EscalationSuffixIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	rec := &memRecorder{}
	svc := NewService(&fakeLLM{resp: llm.Response{Content: "I can connect you with a Human agent."}}, store, nil, rec)

	reply, err := svc.Chat(ctx, "s1", "refund now")
	require.NoError(t, err)
	assert.True(t, reply.Escalated)
	assert.True(t, strings.HasSuffix(reply.Text, EscalationNotice))
	assert.NotContains(t, store.GetTranscript(ctx, "s1"), "Escalating to human support")
	assert.True(t, rec.events[0].Escalated)
}

func TestChat_LLMErrorPersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	svc := NewService(&fakeLLM{err: errors.New("rate limited")}, store, nil, nil)

	_, err := svc.Chat(ctx, "s1", "hi")
	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Contains(t, err.Error(), "rate limited")

	list, _ := store.ListSessions(ctx)
	assert.Empty(t, list)
}

func TestChat_StoreWriteFailureStillReplies(t *testing.T) {
	svc := NewService(&fakeLLM{resp: llm.Response{Content: "hello"}}, &failingStore{Manager: history.NewManager()}, nil, &memRecorder{err: errors.New("read-only fs")})

	reply, err := svc.Chat(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Text)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	store := history.NewManager()
	svc := NewService(&fakeLLM{resp: llm.Response{Content: "hello"}}, store, nil, nil)

	svc.NewSession(ctx, "s1")
	svc.NewSession(ctx, "s2")
	_, err := svc.Chat(ctx, "s1", "hi")
	require.NoError(t, err)

	got, err := svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{ID: "s1", Preview: "hi..."},
		{ID: "s2", Preview: transcript.NewSessionPreview},
	}, got)
}

func TestSessions_Error(t *testing.T) {
	svc := NewService(&fakeLLM{}, &failingStore{Manager: history.NewManager()}, nil, nil)
	_, err := svc.Sessions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrConnection))
}

func TestHistory_UnknownSession(t *testing.T) {
	svc := NewService(&fakeLLM{}, history.NewManager(), nil, nil)
	got := svc.History(context.Background(), "nope")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildPrompt_DoesNotExpandPlaceholdersInInput(t *testing.T) {
	p := BuildPrompt("faq", "history", "what does {faqs} mean?")
	assert.Contains(t, p, "User query: what does {faqs} mean?")
}

func TestNeedsEscalation(t *testing.T) {
	assert.True(t, NeedsEscalation("Let me ESCALATE this"))
	assert.True(t, NeedsEscalation("a human will reply"))
	assert.False(t, NeedsEscalation("Your order shipped."))
}
