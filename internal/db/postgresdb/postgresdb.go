// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting user records.
// It runs schema migrations on startup and performs the update and delete
// existence checks inside transactions.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/userdir/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the user storage.
// It handles all persistence operations via a pooled database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables dropping all public tables before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Migrations are idempotent, so calling New against an already
// initialized database is safe.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a new user row with a freshly generated UUID and
// returns the constructed record. There is no uniqueness constraint on
// the username, so the insert never fails on duplicates.
func (db *PostgresDB) CreateUser(ctx context.Context, username string) (user.User, error) {
	usr := user.User{
		ID:       uuid.New().String(),
		Username: username,
	}

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)`,
		usr.ID,
		usr.Username,
	)
	if err != nil {
		return user.User{}, err
	}

	return usr, nil
}

// ListUsers returns all user rows. An empty table yields an empty slice.
func (db *PostgresDB) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, username FROM users`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []user.User{}
	for rows.Next() {
		var usr user.User
		err = rows.Scan(&usr.ID, &usr.Username)
		if err != nil {
			return nil, err
		}

		result = append(result, usr)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindUserByID fetches a user by their UUID.
// The boolean result reports whether the row exists.
func (db *PostgresDB) FindUserByID(ctx context.Context, id string) (user.User, bool, error) {
	return db.findUserBy(ctx, db.database, `SELECT id, username FROM users WHERE id = $1`, id)
}

// FindUserByUsername fetches a user by their username.
// When several rows share the username, an unspecified one is returned.
func (db *PostgresDB) FindUserByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return db.findUserBy(ctx, db.database, `SELECT id, username FROM users WHERE username = $1`, username)
}

// UpdateUser overwrites the username of the row addressed by usr.ID.
// The existence check and the write share one transaction; when the row
// is absent the transaction is rolled back and false is returned.
func (db *PostgresDB) UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error) {
	transaction, err := db.database.Begin()
	if err != nil {
		return user.User{}, false, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	_, found, err := db.findUserBy(ctx, transaction, `SELECT id, username FROM users WHERE id = $1`, usr.ID)
	if err != nil {
		return user.User{}, false, err
	}
	if !found {
		return user.User{}, false, nil
	}

	_, err = transaction.ExecContext(
		ctx,
		`UPDATE users SET username = $1 WHERE id = $2`,
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
func (db *PostgresDB) DeleteUser(ctx context.Context, id string) (bool, error) {
	transaction, err := db.database.Begin()
	if err != nil {
		return false, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	_, found, err := db.findUserBy(ctx, transaction, `SELECT id, username FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	_, err = transaction.ExecContext(
		ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, err
	}

	if err := transaction.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	err := db.database.Close()
	if err != nil {
		return err
	}

	return nil
}

func (db *PostgresDB) findUserBy(
	ctx context.Context,
	database queryer,
	query string,
	arg string,
) (user.User, bool, error) {
	row := database.QueryRowContext(ctx, query, arg)

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

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
