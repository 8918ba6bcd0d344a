package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live sessions by ID. Each client viewing surface (one
// modal, one tab) owns one session; closing it discards that session's
// cache and leases without touching any other. Sessions never share a
// cache: the same file open in two surfaces is fetched twice by design.
type Manager struct {
	newSession func() *Session

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager; factory builds a fresh Session
// per surface.
func NewManager(factory func() *Session) *Manager {
	return &Manager{
		newSession: factory,
		sessions:   map[string]*Session{},
	}
}

// Get returns the session for id, creating it if needed. An empty id
// allocates a new session; the returned id identifies it either way.
func (m *Manager) Get(id string) (string, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return id, s
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := m.newSession()
	m.sessions[id] = s
	return id, s
}

// Close tears down one session.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// CloseAll tears down every session, used at server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
