// Package user defines the user entity stored and served by the directory
// service.
package user

// User is a single directory record.
// The ID is assigned once at creation and never changes; Username is the
// only mutable field.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Username is a free-form name. Uniqueness is approximated by the
	// service's lookup-before-insert, not enforced by the storage schema.
	Username string `json:"username"`
}
