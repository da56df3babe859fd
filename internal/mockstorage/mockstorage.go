// Package mockstorage provides a testify-based mock implementation of the
// storage interface. It is used for unit testing the service and the HTTP
// handlers by simulating storage behavior, including storage faults.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

// StorageMock is a testify mock that implements the storage interface.
//
// Use it in tests to simulate database behavior.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a new user.
func (m *StorageMock) CreateUser(ctx context.Context, username string) (user.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(user.User), args.Error(1)
}

// ListUsers mocks fetching all users.
func (m *StorageMock) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

// FindUserByID mocks fetching a user by ID.
func (m *StorageMock) FindUserByID(ctx context.Context, id string) (user.User, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Bool(1), args.Error(2)
}

// FindUserByUsername mocks fetching a user by username.
func (m *StorageMock) FindUserByUsername(ctx context.Context, username string) (user.User, bool, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(user.User), args.Bool(1), args.Error(2)
}

// UpdateUser mocks the transactional username update.
func (m *StorageMock) UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error) {
	args := m.Called(ctx, usr)
	return args.Get(0).(user.User), args.Bool(1), args.Error(2)
}

// DeleteUser mocks the transactional delete.
func (m *StorageMock) DeleteUser(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
