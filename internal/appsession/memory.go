package appsession

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is a mutex-guarded in-memory Repository used in unit
// tests and when no MongoDB is configured. It enforces the same uniqueness
// rules as the Mongo indexes.
type MemoryRepository struct {
	mu       sync.RWMutex
	byToken  map[string]*Session
	guids    map[string]bool
	teleTans map[string]bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byToken:  make(map[string]*Session),
		guids:    make(map[string]bool),
		teleTans: make(map[string]bool),
	}
}

func (m *MemoryRepository) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[s.RegistrationTokenHash]; ok {
		return ErrDuplicateSession
	}
	if s.HashedGuid != "" && m.guids[s.HashedGuid] {
		return ErrDuplicateSession
	}
	if s.TeleTanHash != "" && m.teleTans[s.TeleTanHash] {
		return ErrDuplicateSession
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	cp := *s
	m.byToken[s.RegistrationTokenHash] = &cp
	if s.HashedGuid != "" {
		m.guids[s.HashedGuid] = true
	}
	if s.TeleTanHash != "" {
		m.teleTans[s.TeleTanHash] = true
	}
	return nil
}

func (m *MemoryRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byToken[tokenHash]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) ExistsByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byToken[tokenHash]
	return ok, nil
}

func (m *MemoryRepository) ExistsByGuidHash(ctx context.Context, guidHash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guids[guidHash], nil
}

func (m *MemoryRepository) ExistsByTeleTanHash(ctx context.Context, teleTanHash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.teleTans[teleTanHash], nil
}

func (m *MemoryRepository) IncrementTanCounter(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[tokenHash]
	if !ok {
		return ErrSessionNotFound
	}
	s.TanCounter++
	s.UpdatedAt = time.Now().UTC()
	return nil
}
