package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/socli/internal/domain/storage"
)

const (
	selectCollectionSQL = `SELECT payload FROM collections WHERE name = $1`
	upsertCollectionSQL = `INSERT INTO collections (name, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`
	deleteCollectionSQL = `DELETE FROM collections WHERE name = $1`
)

// Store keeps each collection as one row of the collections table.
type Store struct {
	db *sqlx.DB
}

var _ storage.Repository = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, selectCollectionSQL, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "select collection %s", name)
	}
	return payload, true, nil
}

func (s *Store) Set(ctx context.Context, name string, blob []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertCollectionSQL, name, blob); err != nil {
		return errors.Wrapf(err, "upsert collection %s", name)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, deleteCollectionSQL, name); err != nil {
		return errors.Wrapf(err, "delete collection %s", name)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
