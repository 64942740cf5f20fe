package storage

import "context"

// KeyPlayers names the roster blob.
const KeyPlayers = "players"

// Repository persists whole named blobs. Entries are never partially updated.
type Repository interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Set(ctx context.Context, name string, blob []byte) error
	Delete(ctx context.Context, name string) error
}
