package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used for created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
//
// The pool is limited to a single connection: the file is owned by this
// process and all access is single-writer. This also keeps ":memory:"
// databases alive for the lifetime of the store.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, &StorageError{Op: "opening sqlite db", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &StorageError{Op: "enabling WAL mode", Err: err}
	}

	// Wait on a locked file instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, &StorageError{Op: "setting busy timeout", Err: err}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema checks the current schema version and applies any
// outstanding migrations in order. It is safe to call on every start and
// never alters existing task rows.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	return s.withConn(ctx, "ensuring schema", func(conn *sqlx.Conn) error {
		currentVersion := 0

		// Check if schema_version table exists.
		var tableCount int
		err := conn.GetContext(ctx,
			&tableCount,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
		)
		if err != nil {
			return fmt.Errorf("checking schema_version table: %w", err)
		}

		if tableCount > 0 {
			err = conn.GetContext(ctx, &currentVersion,
				"SELECT COALESCE(MAX(version), 0) FROM schema_version")
			if err != nil {
				return fmt.Errorf("reading schema version: %w", err)
			}
		}

		for _, m := range migrations {
			if m.version <= currentVersion {
				continue
			}
			if err := applyMigration(ctx, conn, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// applyMigration runs a single migration inside its own transaction.
func applyMigration(ctx context.Context, conn *sqlx.Conn, m migration) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration v%d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("applying migration v%d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration v%d: %w", m.version, err)
	}
	return nil
}

// SeedIfEmpty inserts the sample tasks when the todos table has no rows.
// It returns the number of rows inserted, which is zero when the table
// already had data.
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context) (int, error) {
	inserted := 0
	err := s.withTx(ctx, "seeding sample tasks", func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM todos"); err != nil {
			return fmt.Errorf("counting todos: %w", err)
		}
		if count > 0 {
			return nil
		}

		now := s.now().UnixMilli()
		for _, title := range sampleTitles {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO todos (title, done, created_at) VALUES (?, 0, ?)",
				title, now,
			)
			if err != nil {
				return fmt.Errorf("inserting sample %q: %w", title, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// withConn runs fn on a connection taken from the pool and always returns
// it, whatever fn does. Unclassified errors become StorageErrors.
func (s *SQLiteStore) withConn(
	ctx context.Context,
	op string,
	fn func(conn *sqlx.Conn) error,
) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	defer conn.Close()

	return wrapStorage(op, fn(conn))
}

// withTx runs fn inside a transaction. The transaction is committed only
// when fn succeeds and rolled back on every other path.
func (s *SQLiteStore) withTx(
	ctx context.Context,
	op string,
	fn func(tx *sqlx.Tx) error,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return wrapStorage(op, err)
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
