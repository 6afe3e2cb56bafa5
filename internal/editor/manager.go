package editor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
)

const DefaultIdleTimeout = 30 * time.Minute

type sessionKey struct {
	userID    string
	programID string
}

// Manager keeps one session per user and program.
type Manager struct {
	svc         Services
	metrics     *metrics.Manager
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewManager(svc Services, m *metrics.Manager, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		svc:         svc,
		metrics:     m,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    map[sessionKey]*Session{},
	}
}

// Open returns the user's session for the program, loading it on first use.
// Only the program's creator can open it.
func (m *Manager) Open(ctx context.Context, userID, programID string) (*Session, error) {
	key := sessionKey{userID, programID}
	m.mu.Lock()
	s, ok := m.sessions[key]
	m.mu.Unlock()
	if ok {
		s.touch()
		return s, nil
	}

	// the load happens outside the manager lock; a concurrent Open of the
	// same key keeps whichever session was stored first
	fresh := newSession(userID, programID, m.svc, m.now)
	if err := fresh.load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	m.sessions[key] = fresh
	m.metrics.GaugeEditorSessions.Set(float64(len(m.sessions)))
	return fresh, nil
}

// Dispatch opens the session if needed and applies the action.
func (m *Manager) Dispatch(ctx context.Context, userID, programID string, a Action) (*Snapshot, error) {
	s, err := m.Open(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, a)
}

// Close drops the session, if any.
func (m *Manager) Close(userID, programID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{userID, programID})
	m.metrics.GaugeEditorSessions.Set(float64(len(m.sessions)))
}

// CloseProgram drops every session of the program, used after it was deleted.
func (m *Manager) CloseProgram(programID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.sessions {
		if key.programID == programID {
			delete(m.sessions, key)
		}
	}
	m.metrics.GaugeEditorSessions.Set(float64(len(m.sessions)))
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for key, s := range m.sessions {
		if s.idleSince(now) > m.idleTimeout {
			delete(m.sessions, key)
			evicted++
		}
	}
	m.metrics.GaugeEditorSessions.Set(float64(len(m.sessions)))
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTimeout / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("editor sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Debugf("editor sweeper evicted %d idle sessions", n)
			}
		}
	}
}
