package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/starsandeep/sfsync/pkg/metrics"
)

// Manager keeps the live sessions of this process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
	logger   ectologger.Logger
}

func NewManager(idleTTL time.Duration, logger ectologger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *Manager) Create(userID string, selection Selection) *Session {
	s := New(uuid.NewString(), userID, selection, m.now())

	m.mu.Lock()
	m.sessions[s.ID()] = s
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.WithFields(map[string]any{
		"session_id":    s.ID(),
		"source_object": selection.SourceObject,
		"target_object": selection.TargetObject,
	}).Debug("session created")
	return s
}

// Get returns a live session and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "session %s not found", id)
	}
	s.Touch(m.now())
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !ok {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "session %s not found", id)
	}
	s.Close()
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep deletes sessions idle for longer than the idle TTL and returns how
// many it removed.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.logger.Infof("expired %d idle sessions", len(expired))
	}
	return len(expired)
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
