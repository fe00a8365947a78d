package session

import (
	"sync"
	"time"

	"github.com/go-logr/logr"

	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/errors"
)

// Info is the metadata kept alongside a session's state.
type Info struct {
	ID         core.SessionID `json:"id"`
	Source     string         `json:"source"`
	CreatedAt  time.Time      `json:"created_at"`
	LastAccess time.Time      `json:"last_access"`
}

type entry struct {
	mu    sync.Mutex
	state *State
	info  Info
}

// Store maps session ids to dataset states. Each entry has its own lock so
// one session's transitions are serialized without blocking the others.
type Store struct {
	mu      sync.Mutex
	entries map[core.SessionID]*entry
	max     int
	now     func() time.Time
	logger  logr.Logger
}

// NewStore creates a store holding at most max sessions. When full, creating
// a session evicts the least recently used one. max <= 0 means unbounded.
func NewStore(max int, logger logr.Logger) *Store {
	return &Store{
		entries: make(map[core.SessionID]*entry),
		max:     max,
		now:     time.Now,
		logger:  logger,
	}
}

// Create loads t into st and registers it. st must not be used by the
// caller afterwards.
func (s *Store) Create(st *State, t *table.Table, source string) (Info, error) {
	if err := st.Load(t); err != nil {
		return Info{}, err
	}
	now := s.now()
	e := &entry{
		state: st,
		info:  Info{ID: core.NewSessionID(), Source: source, CreatedAt: now, LastAccess: now},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.entries) >= s.max {
		s.evictOldestLocked()
	}
	s.entries[e.info.ID] = e
	s.logger.Info("session created", "session", e.info.ID, "source", source, "sessions", len(s.entries))
	return e.info, nil
}

func (s *Store) evictOldestLocked() {
	var (
		oldest core.SessionID
		at     time.Time
	)
	for id, e := range s.entries {
		if oldest == "" || e.info.LastAccess.Before(at) {
			oldest, at = id, e.info.LastAccess
		}
	}
	if oldest != "" {
		delete(s.entries, oldest)
		s.logger.Info("session evicted", "session", oldest, "last_access", at)
	}
}

// With runs fn while holding the session's lock.
func (s *Store) With(id core.SessionID, fn func(st *State, info Info) error) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	var info Info
	if ok {
		e.info.LastAccess = s.now()
		info = e.info
	}
	s.mu.Unlock()
	if !ok {
		return errors.NotFound("session " + id.String())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state, info)
}

// Delete drops a session. It reports whether the session existed.
func (s *Store) Delete(id core.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
