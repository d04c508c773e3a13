package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persists platform accounts. The Postgres implementation backs real
// deployments; the memory implementation serves DB-less runs and tests.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// MemoryStore holds accounts in process memory, keyed by lowercased email.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]*User
	byID    map[int64]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*User),
		byID:    make(map[int64]*User),
	}
}

func (s *MemoryStore) Create(ctx context.Context, user *User) error {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return ErrDuplicateEmail
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()

	stored := *user
	s.byEmail[key] = &stored
	s.byID[stored.ID] = &stored
	return nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}
