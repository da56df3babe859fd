// Package memorystorage provides a map-backed, volatile implementation of
// the storage interface. It mirrors the durable stores' behavior exactly,
// except nothing survives a process restart. A mutex stands in for the
// per-operation transactions of the SQL stores.
package memorystorage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

// MemoryStorage keeps user rows in an in-process map keyed by user ID.
type MemoryStorage struct {
	mu    sync.RWMutex
	users map[string]user.User
}

// New returns an empty volatile storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users: map[string]user.User{},
	}, nil
}

// CreateUser stores a new user with a freshly generated UUID.
func (s *MemoryStorage) CreateUser(ctx context.Context, username string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr := user.User{
		ID:       uuid.New().String(),
		Username: username,
	}
	s.users[usr.ID] = usr

	return usr, nil
}

// ListUsers returns all stored users in unspecified order.
func (s *MemoryStorage) ListUsers(ctx context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, id := range funk.Keys(s.users).([]string) {
		result = append(result, s.users[id])
	}

	return result, nil
}

// FindUserByID fetches a user by their UUID.
func (s *MemoryStorage) FindUserByID(ctx context.Context, id string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, found := s.users[id]

	return usr, found, nil
}

// FindUserByUsername fetches a user by their username. When several users
// share the username, an unspecified one is returned.
func (s *MemoryStorage) FindUserByUsername(ctx context.Context, username string) (user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, usr := range s.users {
		if usr.Username == username {
			return usr, true, nil
		}
	}

	return user.User{}, false, nil
}

// UpdateUser overwrites the username of the addressed user. The check and
// the write happen under one lock, matching the SQL stores' transactional
// existence guard.
func (s *MemoryStorage) UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.users[usr.ID]; !found {
		return user.User{}, false, nil
	}
	s.users[usr.ID] = usr

	return usr, true, nil
}

// DeleteUser removes the addressed user and reports whether it existed.
func (s *MemoryStorage) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.users[id]; !found {
		return false, nil
	}
	delete(s.users, id)

	return true, nil
}

// Ping always succeeds for the in-process storage.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-process storage.
func (s *MemoryStorage) Close() error {
	return nil
}
