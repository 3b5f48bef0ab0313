package state

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hugo-lorenzo-mato/devtools/internal/config"
	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

// Backend names accepted by NewStore.
const (
	BackendXML    = "xml"
	BackendSQLite = "sqlite"
)

// NewStore creates the store selected by cfg.Backend.
func NewStore(cfg config.StateConfig, logger *logging.Logger) (instance.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendXML, "":
		return NewXMLFileStore(cfg.Dir,
			WithBackup(cfg.Backup),
			WithLogger(logger),
		), nil
	case BackendSQLite:
		path := cfg.DBPath
		if path == "" {
			path = filepath.Join(cfg.Dir, "state.db")
		}
		// Ensure path has .db extension for SQLite
		if !strings.HasSuffix(path, ".db") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
		}
		return NewSQLiteStore(path, WithSQLiteLogger(logger))
	default:
		return nil, core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unknown state backend %q", cfg.Backend))
	}
}

// Remover is implemented by stores that can delete the state of a scope.
type Remover interface {
	Remove(ctx context.Context, scope instance.Scope) error
}

var (
	_ Remover = (*XMLFileStore)(nil)
	_ Remover = (*SQLiteStore)(nil)
)
