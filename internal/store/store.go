package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/memberreg/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (records, tx_log, idx_tx_log_sender)
const currentSchemaVersion = 0

// KV is the get/set view of the records table.
// Implemented by *Store (autocommit) and *Tx (inside Update).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides durable storage for registry records and the transaction log.
type Store struct {
	db *sql.DB
}

// Tx is a view of the store inside an Update transaction.
// It must not be used after the Update function returns.
type Tx struct {
	tx *sql.Tx
}

var (
	_ KV = (*Store)(nil)
	_ KV = (*Tx)(nil)
)

// Open creates or opens a SQLite database at the given path.
// Use ":memory:" for an isolated in-memory database.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times on the same file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time. A single connection also keeps
	// ":memory:" databases alive for the lifetime of the Store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// dsn makes every transaction BEGIN IMMEDIATE, so a writer takes the
// write lock before it reads and waits on busy_timeout for other processes.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_txlock=immediate"
	}
	return path + "?_txlock=immediate"
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Update runs fn inside a single SQL transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
//
// fn must only use the given *Tx; calling Store methods from inside fn
// blocks forever because the pool holds one connection.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op after commit

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get returns the record stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getRecord(ctx, s.db, key)
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return setRecord(ctx, s.db, key, value)
}

// Get returns the record stored under key within the transaction.
func (t *Tx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getRecord(ctx, t.tx, key)
}

// Set stores value under key within the transaction.
func (t *Tx) Set(ctx context.Context, key string, value []byte) error {
	return setRecord(ctx, t.tx, key, value)
}

// LastSeq returns the highest logged seq as seen by the transaction.
func (t *Tx) LastSeq(ctx context.Context) (int64, error) {
	return lastSeq(ctx, t.tx)
}

// AppendTx appends a log entry within the transaction.
func (t *Tx) AppendTx(ctx context.Context, rec ir.TxRecord) error {
	return appendTx(ctx, t.tx, rec)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
// There are none yet; a database written by a newer schema is refused.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
