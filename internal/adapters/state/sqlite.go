package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore keeps the instance state documents in a SQLite database, one
// row per scope. Rows hold the same XML document as XMLFileStore.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
	logger *logging.Logger
	mu     sync.RWMutex
}

// SQLiteStoreOption configures the store.
type SQLiteStoreOption func(*SQLiteStore)

// WithSQLiteLogger sets the logger.
func WithSQLiteLogger(l *logging.Logger) SQLiteStoreOption {
	return func(s *SQLiteStore) {
		s.logger = l
	}
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string, opts ...SQLiteStoreOption) (*SQLiteStore, error) {
	s := &SQLiteStore{dbPath: dbPath}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// schema_migrations does not exist yet
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Save upserts the document of scope.
func (s *SQLiteStore) Save(ctx context.Context, scope instance.Scope, state *instance.InstanceState) error {
	data, err := instance.MarshalDocument(state)
	if err != nil {
		return err
	}
	version := ""
	if state != nil {
		version = lo.FromPtr(state.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO instance_states (scope, version, document, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			version = excluded.version,
			document = excluded.document,
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
	`, scope.String(), version, string(data), checksum(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting instance state: %w", err)
	}
	s.logger.Debug("instance state saved", "scope", scope.String(), "db", s.dbPath)
	return nil
}

// Load returns the document of scope, or nil when none was saved.
func (s *SQLiteStore) Load(ctx context.Context, scope instance.Scope) (*instance.InstanceState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var document, sum string
	err := s.db.QueryRowContext(ctx,
		"SELECT document, checksum FROM instance_states WHERE scope = ?", scope.String(),
	).Scan(&document, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying instance state: %w", err)
	}

	if checksum([]byte(document)) != sum {
		return nil, core.ErrStorage(core.CodeStateCorrupted,
			fmt.Sprintf("checksum mismatch for scope %s", scope))
	}
	return instance.UnmarshalDocument([]byte(document), s.logger)
}

// Remove deletes the document of scope.
func (s *SQLiteStore) Remove(ctx context.Context, scope instance.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM instance_states WHERE scope = ?", scope.String()); err != nil {
		return fmt.Errorf("deleting instance state: %w", err)
	}
	return nil
}

// UpdatedAt returns when scope was last saved.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, scope instance.Scope) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT updated_at FROM instance_states WHERE scope = ?", scope.String(),
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("querying instance state: %w", err)
	}
	return updatedAt, true, nil
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
