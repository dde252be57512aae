package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permitdesk/internal/sentinel"
)

// Both implementations must satisfy the same contract, so they share one
// test body.
func runKVContract(t *testing.T, kv KV) {
	ctx := context.Background()

	t.Run("missing key returns not found", func(t *testing.T) {
		_, err := kv.Get(ctx, "absent")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "draft", []byte(`{"v":1}`)))
		got, err := kv.Get(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":1}`), got)
	})

	t.Run("set overwrites prior value", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "draft", []byte(`{"v":1}`)))
		require.NoError(t, kv.Set(ctx, "draft", []byte(`{"v":2}`)))
		got, err := kv.Get(ctx, "draft")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":2}`), got)
	})

	t.Run("remove deletes the key", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "draft", []byte("x")))
		require.NoError(t, kv.Remove(ctx, "draft"))
		_, err := kv.Get(ctx, "draft")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("remove of missing key is not an error", func(t *testing.T) {
		assert.NoError(t, kv.Remove(ctx, "never-set"))
	})
}

func TestInMemoryContract(t *testing.T) {
	runKVContract(t, NewInMemory())
}

func TestSQLiteContract(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runKVContract(t, db)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "draft", []byte("payload")))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestInMemoryGetReturnsCopy(t *testing.T) {
	kv := NewInMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "draft", []byte("abc")))
	got, err := kv.Get(ctx, "draft")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := kv.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
