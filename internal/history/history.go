package history

import (
	"context"
	"sync"

	"support-chat/internal/session"
)

type entry struct {
	id         string
	transcript string
}

// Manager keeps transcripts in process memory. It satisfies session.Store
// and is meant for local runs and tests; nothing survives a restart.
type Manager struct {
	mu       sync.RWMutex
	index    map[string]int
	sessions []entry
}

var _ session.Store = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{index: make(map[string]int)}
}

func (m *Manager) EnsureSchema(context.Context) error { return nil }

func (m *Manager) GetTranscript(_ context.Context, sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[sessionID]
	if !ok {
		return ""
	}
	return m.sessions[i].transcript
}

func (m *Manager) PutTranscript(_ context.Context, sessionID, transcript string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.index[sessionID]; ok {
		m.sessions[i].transcript = transcript
		return nil
	}
	m.index[sessionID] = len(m.sessions)
	m.sessions = append(m.sessions, entry{id: sessionID, transcript: transcript})
	return nil
}

// ListSessions returns sessions in creation order.
func (m *Manager) ListSessions(context.Context) ([]session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]session.Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, session.Session{SessionID: e.id, Transcript: e.transcript})
	}
	return out, nil
}

func (m *Manager) Ping(context.Context) error { return nil }

func (m *Manager) Close() {}
