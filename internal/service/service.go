// Package service implements the business layer of the user directory:
// create-or-fetch semantics on top of the storage CRUD operations.
package service

import (
	"context"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

type usersKeeper interface {
	CreateUser(ctx context.Context, username string) (user.User, error)

	ListUsers(ctx context.Context) ([]user.User, error)

	FindUserByID(ctx context.Context, id string) (user.User, bool, error)

	FindUserByUsername(ctx context.Context, username string) (user.User, bool, error)

	UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error)

	DeleteUser(ctx context.Context, id string) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersKeeper
	pinger
}

// Service exposes the user directory operations to the transport layer.
type Service struct {
	db storage
}

// New returns a Service backed by the given storage.
func New(db storage) *Service {
	return &Service{
		db: db,
	}
}

// CreateOrFetchUser returns the existing user with the given username, or
// creates a new one when none exists. The boolean result reports whether a
// user was created.
//
// The lookup and the insert are deliberately not atomic: two concurrent
// calls with the same username may both observe "absent" and insert two
// rows. The storage schema carries no uniqueness constraint, so both
// inserts succeed.
func (s *Service) CreateOrFetchUser(ctx context.Context, username string) (user.User, bool, error) {
	existing, found, err := s.db.FindUserByUsername(ctx, username)
	if err != nil {
		return user.User{}, false, err
	}
	if found {
		return existing, false, nil
	}

	created, err := s.db.CreateUser(ctx, username)
	if err != nil {
		return user.User{}, false, err
	}

	return created, true, nil
}

// ListUsers returns all users known to the directory.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.db.ListUsers(ctx)
}

// GetUser fetches a single user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (user.User, bool, error) {
	return s.db.FindUserByID(ctx, id)
}

// UpdateUser replaces the username of the addressed user. The storage
// performs the existence check and the write in one transaction; false
// means the user does not exist.
func (s *Service) UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error) {
	return s.db.UpdateUser(ctx, usr)
}

// DeleteUser removes the addressed user and reports whether it existed.
func (s *Service) DeleteUser(ctx context.Context, id string) (bool, error) {
	return s.db.DeleteUser(ctx, id)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
