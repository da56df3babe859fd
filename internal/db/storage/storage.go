// Package storage declares the interface every store backend of the user
// directory implements.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

// Storage is the persistence contract of the service.
//
// Absence of a row is reported through the boolean results, never as an
// error; an error always means a storage-layer fault. UpdateUser and
// DeleteUser run their existence check and the following write inside one
// transaction, so a concurrent delete can neither resurrect a row nor
// orphan a write.
type Storage interface {
	CreateUser(ctx context.Context, username string) (user.User, error)

	ListUsers(ctx context.Context) ([]user.User, error)

	FindUserByID(ctx context.Context, id string) (user.User, bool, error)

	FindUserByUsername(ctx context.Context, username string) (user.User, bool, error)

	UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error)

	DeleteUser(ctx context.Context, id string) (bool, error)

	Ping(ctx context.Context) error

	Close() error
}
