package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/outpost-calculator/internal/calculator"
)

// DefaultMaxSessions bounds the number of live selection sessions.
const DefaultMaxSessions = 1000

var (
	// ErrSessionNotFound indicates the session id is unknown or was pruned.
	ErrSessionNotFound = errors.New("selection session not found")
	// ErrTooManySessions indicates the store is at capacity.
	ErrTooManySessions = errors.New("too many active selection sessions")
)

// Storage keeps selection sessions addressed by id. Callbacks passed to View
// and Update run while the store holds its lock and must not retain the selection.
type Storage interface {
	Create(sel *calculator.Selection) (string, error)
	View(id string, fn func(*calculator.Selection) error) error
	Update(id string, fn func(*calculator.Selection) error) error
	Delete(id string) error
	Prune(idleSince time.Time) int
	Len() int
}

type session struct {
	selection *calculator.Selection
	touchedAt time.Time
}

// MemoryStorage keeps sessions in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	maxSessions int
	clock       func() time.Time
	newID       func() string
}

// Option configures MemoryStorage.
type Option func(*MemoryStorage)

// WithMaxSessions caps the number of live sessions. Non-positive values keep the default.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// NewMemoryStorage initialises an empty session store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		sessions:    make(map[string]*session),
		maxSessions: DefaultMaxSessions,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: func() string {
			return uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores sel under a new random id.
func (s *MemoryStorage) Create(sel *calculator.Selection) (string, error) {
	if sel == nil {
		return "", fmt.Errorf("create session: nil selection")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return "", ErrTooManySessions
	}

	id := s.newID()
	s.sessions[id] = &session{selection: sel, touchedAt: s.clock()}
	return id, nil
}

// View runs fn against the session under a read lock. It does not refresh the
// session's idle timer.
func (s *MemoryStorage) View(id string, fn func(*calculator.Selection) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(sess.selection)
}

// Update runs fn against the session under the write lock, so mutations of a
// store are applied one at a time.
func (s *MemoryStorage) Update(id string, fn func(*calculator.Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.touchedAt = s.clock()
	return fn(sess.selection)
}

// Delete removes the session.
func (s *MemoryStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Prune drops sessions last updated before idleSince and reports how many were removed.
func (s *MemoryStorage) Prune(idleSince time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.touchedAt.Before(idleSince) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
