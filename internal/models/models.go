// Package models contains the request and response shapes of the HTTP API.
package models

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}.
// The ID must repeat the id from the request path; the handler rejects a
// disagreement before the storage is touched, so ID carries no validation
// tag of its own.
type UpdateUserRequest struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeSqlite
	StorageTypeMemory
)
