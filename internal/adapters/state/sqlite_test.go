package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	loaded, err := store.Load(ctx, instance.ScopeApplication)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, store.Save(ctx, instance.ScopeApplication, sampleState("first")))
	require.NoError(t, store.Save(ctx, instance.ScopeApplication, sampleState("second")))

	got, err := store.Load(ctx, instance.ScopeApplication)
	require.NoError(t, err)
	require.Len(t, got.Configurations, 1)
	assert.Equal(t, "string|second", *got.Configurations[0].Properties.Properties[0].Value)

	_, ok, err := store.UpdatedAt(ctx, instance.ScopeApplication)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Remove(ctx, instance.ScopeApplication))
	loaded, err = store.Load(ctx, instance.ScopeApplication)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, instance.ScopeDialog, sampleState("kept")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx, instance.ScopeDialog)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "string|kept", *got.Configurations[0].Properties.Properties[0].Value)
}

func TestSQLiteStore_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	require.NoError(t, store.Save(ctx, instance.ScopeDialog, sampleState("a")))

	_, err := store.db.ExecContext(ctx, "UPDATE instance_states SET document = '<InstanceState/>' WHERE scope = ?", "dialog")
	require.NoError(t, err)

	_, err = store.Load(ctx, instance.ScopeDialog)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatStorage))
}
