package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "store"))
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "players")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "players", []byte(`[{"slug":"a"}]`)))
	require.NoError(t, store.Set(ctx, "players", []byte(`[{"slug":"b"}]`)))

	raw, found, err := store.Get(ctx, "players")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `[{"slug":"b"}]`, string(raw))

	require.NoError(t, store.Delete(ctx, "players"))
	require.NoError(t, store.Delete(ctx, "players"))
	_, found, err = store.Get(ctx, "players")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "players", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "players.json", entries[0].Name())
}

func TestStore_NameCannotEscapeRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "../outside", []byte("{}")))

	if _, err := os.Stat(filepath.Join(dir, "outside.json")); err != nil {
		t.Fatalf("expected collection stored inside root: %v", err)
	}
}
