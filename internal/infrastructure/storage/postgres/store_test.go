package postgres

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_DB_URL"))
	if dsn == "" {
		t.Skip("TEST_DB_URL is not set")
	}

	ctx := context.Background()
	require.NoError(t, MigrateUp(dsn))

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	store := NewStore(db)
	t.Cleanup(func() { _ = store.Close() })

	name := "players-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), name) })

	_, found, err := store.Get(ctx, name)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, name, []byte(`[{"slug":"a"}]`)))
	require.NoError(t, store.Set(ctx, name, []byte(`[{"slug":"b"}]`)))

	raw, found, err := store.Get(ctx, name)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"slug":"b"}]`, string(raw))

	require.NoError(t, store.Delete(ctx, name))
	_, found, err = store.Get(ctx, name)
	require.NoError(t, err)
	require.False(t, found)
}
