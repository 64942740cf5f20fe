package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/riskibarqy/socli/internal/domain/storage"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store keeps collections as plain string values under KeyPrefix+name.
type Store struct {
	client *goredis.Client
	prefix string
}

var _ storage.Repository = (*Store)(nil)

func NewStore(client *goredis.Client, keyPrefix string) *Store {
	return &Store{client: client, prefix: keyPrefix}
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", cfg.Addr)
	}
	return NewStore(client, cfg.KeyPrefix), nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get collection %s", name)
	}
	return raw, true, nil
}

func (s *Store) Set(ctx context.Context, name string, blob []byte) error {
	if err := s.client.Set(ctx, s.key(name), blob, 0).Err(); err != nil {
		return errors.Wrapf(err, "set collection %s", name)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return errors.Wrapf(err, "delete collection %s", name)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
