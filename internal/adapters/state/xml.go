// Package state persists instance states on disk.
package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hugo-lorenzo-mato/devtools/internal/fsutil"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

// XMLFileStore keeps one XML document per scope in a directory.
type XMLFileStore struct {
	dir    string
	backup bool
	logger *logging.Logger
	mu     sync.Mutex
}

// XMLFileStoreOption configures the store.
type XMLFileStoreOption func(*XMLFileStore)

// WithBackup controls whether the previous document is kept as <scope>.xml.bak.
// Enabled by default.
func WithBackup(enabled bool) XMLFileStoreOption {
	return func(s *XMLFileStore) {
		s.backup = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) XMLFileStoreOption {
	return func(s *XMLFileStore) {
		s.logger = l
	}
}

// NewXMLFileStore creates a store rooted at dir.
func NewXMLFileStore(dir string, opts ...XMLFileStoreOption) *XMLFileStore {
	s := &XMLFileStore{
		dir:    dir,
		backup: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Dir returns the state directory.
func (s *XMLFileStore) Dir() string {
	return s.dir
}

// Path returns the document path of scope.
func (s *XMLFileStore) Path(scope instance.Scope) string {
	return filepath.Join(s.dir, scope.String()+".xml")
}

func (s *XMLFileStore) backupPath(scope instance.Scope) string {
	return s.Path(scope) + ".bak"
}

// Save writes the document of scope, keeping the previous one as backup.
func (s *XMLFileStore) Save(ctx context.Context, scope instance.Scope, state *instance.InstanceState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := instance.MarshalDocument(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(scope)
	if s.backup {
		if err := s.createBackup(scope); err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}
	}
	if err := writeStateFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	s.logger.Debug("instance state saved", "scope", scope.String(), "path", path, "bytes", len(data))
	return nil
}

// Load reads the document of scope. It falls back to the backup when the
// primary document is unreadable, and returns nil when neither exists.
func (s *XMLFileStore) Load(ctx context.Context, scope instance.Scope) (*instance.InstanceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(scope)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	state, err := s.loadFromPath(path)
	if err != nil {
		if !s.backup {
			return nil, fmt.Errorf("loading state: %w", err)
		}
		backupState, backupErr := s.loadFromPath(s.backupPath(scope))
		if backupErr != nil {
			return nil, fmt.Errorf("loading state: %w (backup also failed: %v)", err, backupErr)
		}
		s.logger.Warn("instance state unreadable, using backup", "scope", scope.String(), "error", err)
		return backupState, nil
	}
	return state, nil
}

func (s *XMLFileStore) loadFromPath(path string) (*instance.InstanceState, error) {
	data, err := fsutil.ReadDocument(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return instance.UnmarshalDocument(data, s.logger)
}

func (s *XMLFileStore) createBackup(scope instance.Scope) error {
	data, err := os.ReadFile(s.Path(scope))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return writeStateFile(s.backupPath(scope), data, 0o600)
}

// Remove deletes the document of scope and its backup.
func (s *XMLFileStore) Remove(ctx context.Context, scope instance.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.Path(scope), s.backupPath(scope)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// Close implements instance.Store.
func (s *XMLFileStore) Close() error {
	return nil
}
