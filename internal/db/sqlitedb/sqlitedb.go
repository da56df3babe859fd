// Package sqlitedb provides a SQLite-backed implementation of the storage
// interface. It serves both as the single-file durable store and, with the
// ":memory:" path, as the volatile store used by tests. Apart from
// persistence across restarts the two modes behave identically.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

// The schema is fixed and applied on every open; CREATE TABLE IF NOT
// EXISTS keeps the application idempotent.
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL
	)
`

// SqliteDB is a SQLite-backed implementation of the user storage.
type SqliteDB struct {
	database *sql.DB
}

// New opens (or creates) the SQLite database at the given path and ensures
// the schema exists. Pass ":memory:" for a volatile store.
func New(ctx context.Context, path string) (*SqliteDB, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}

	// journal_mode is not supported for in-memory databases. Ignore errors.
	_, _ = database.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := database.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = database.Close()
		return nil, err
	}

	if _, err := database.ExecContext(ctx, schema); err != nil {
		_ = database.Close()
		return nil, err
	}

	// A single connection keeps every statement on the same in-memory
	// database; with the default pool each pooled connection would see
	// its own empty ":memory:" instance.
	if path == ":memory:" {
		database.SetMaxOpenConns(1)
	}

	return &SqliteDB{database: database}, nil
}

// CreateUser inserts a new user row with a freshly generated UUID.
func (db *SqliteDB) CreateUser(ctx context.Context, username string) (user.User, error) {
	usr := user.User{
		ID:       uuid.New().String(),
		Username: username,
	}

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, username) VALUES (?, ?)`,
		usr.ID,
		usr.Username,
	)
	if err != nil {
		return user.User{}, err
	}

	return usr, nil
}

// ListUsers returns all user rows. An empty table yields an empty slice.
func (db *SqliteDB) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := db.database.QueryContext(ctx, `SELECT id, username FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []user.User{}
	for rows.Next() {
		var usr user.User
		if err := rows.Scan(&usr.ID, &usr.Username); err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindUserByID fetches a user by their UUID.
func (db *SqliteDB) FindUserByID(ctx context.Context, id string) (user.User, bool, error) {
	return scanUser(db.database.QueryRowContext(
		ctx,
		`SELECT id, username FROM users WHERE id = ?`,
		id,
	))
}

// FindUserByUsername fetches a user by their username.
func (db *SqliteDB) FindUserByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return scanUser(db.database.QueryRowContext(
		ctx,
		`SELECT id, username FROM users WHERE username = ?`,
		username,
	))
}

// UpdateUser overwrites the username of the row addressed by usr.ID.
// The existence check and the write run in one transaction.
func (db *SqliteDB) UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error) {
	transaction, err := db.database.Begin()
	if err != nil {
		return user.User{}, false, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	_, found, err := scanUser(transaction.QueryRowContext(
		ctx,
		`SELECT id, username FROM users WHERE id = ?`,
		usr.ID,
	))
	if err != nil {
		return user.User{}, false, err
	}
	if !found {
		return user.User{}, false, nil
	}

	_, err = transaction.ExecContext(
		ctx,
		`UPDATE users SET username = ? WHERE id = ?`,
		usr.Username,
		usr.ID,
	)
	if err != nil {
		return user.User{}, false, err
	}

	if err := transaction.Commit(); err != nil {
		return user.User{}, false, err
	}

	return usr, true, nil
}

// DeleteUser removes the row addressed by id within a transaction and
// reports whether a row existed to delete.
func (db *SqliteDB) DeleteUser(ctx context.Context, id string) (bool, error) {
	transaction, err := db.database.Begin()
	if err != nil {
		return false, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	_, found, err := scanUser(transaction.QueryRowContext(
		ctx,
		`SELECT id, username FROM users WHERE id = ?`,
		id,
	))
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	_, err = transaction.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	if err := transaction.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// Ping verifies connectivity with the SQLite database.
func (db *SqliteDB) Ping(ctx context.Context) error {
	return db.database.PingContext(ctx)
}

// Close closes the database and releases any associated resources.
func (db *SqliteDB) Close() error {
	return db.database.Close()
}

func scanUser(row *sql.Row) (user.User, bool, error) {
	var usr user.User
	err := row.Scan(&usr.ID, &usr.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}

	return usr, true, nil
}
