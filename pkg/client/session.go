package client

import (
	"sync"

	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

// Store persists one identity per role
type Store interface {
	Load(role domain.Role) (Identity, bool)
	Save(role domain.Role, id Identity) error
	Clear() error
}

// Clearer is a read cache that must be emptied on logout
type Clearer interface {
	Clear()
}

// Session is the signed-in state for both roles plus the caches tied to it
type Session struct {
	store Store

	mu     sync.Mutex
	caches []Clearer
}

func NewSession(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) Identity(role domain.Role) (Identity, bool) {
	id, ok := s.store.Load(role)
	if !ok || id.Token == "" || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

func (s *Session) SignIn(role domain.Role, id Identity) error {
	return s.store.Save(role, id)
}

// Track registers a cache that Logout empties
func (s *Session) Track(c Clearer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches = append(s.caches, c)
}

// Logout clears both roles and every tracked cache
func (s *Session) Logout() error {
	s.mu.Lock()
	caches := s.caches
	s.mu.Unlock()
	for _, c := range caches {
		c.Clear()
	}
	return s.store.Clear()
}

// MemoryStore keeps identities in process
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[domain.Role]Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[domain.Role]Identity)}
}

func (m *MemoryStore) Load(role domain.Role) (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[role]
	return id, ok
}

func (m *MemoryStore) Save(role domain.Role, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[role] = id
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make(map[domain.Role]Identity)
	return nil
}
