package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/devtools/internal/config"
	"github.com/hugo-lorenzo-mato/devtools/internal/core"
)

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	xmlStore, err := NewStore(config.StateConfig{Backend: "xml", Dir: dir, Backup: true}, nil)
	require.NoError(t, err)
	assert.IsType(t, &XMLFileStore{}, xmlStore)
	assert.Equal(t, dir, xmlStore.(*XMLFileStore).Dir())

	sqliteStore, err := NewStore(config.StateConfig{Backend: "SQLite", DBPath: filepath.Join(dir, "state.sqlite")}, nil)
	require.NoError(t, err)
	defer sqliteStore.Close()
	require.IsType(t, &SQLiteStore{}, sqliteStore)
	assert.Equal(t, filepath.Join(dir, "state.db"), sqliteStore.(*SQLiteStore).Path())

	_, err = NewStore(config.StateConfig{Backend: "postgres"}, nil)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}
