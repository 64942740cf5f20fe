package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/socli/internal/domain/storage"
)

// Store keeps one JSON document per collection under a root directory.
type Store struct {
	root string
}

var _ storage.Repository = (*Store)(nil)

// NewStore creates root when missing.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("store directory is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store directory %s", root)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name)+".json")
}

func (s *Store) Get(_ context.Context, name string) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read collection %s", name)
	}
	return raw, true, nil
}

// Set replaces the collection through a temp file and rename, so readers
// never see a partial document.
func (s *Store) Set(_ context.Context, name string, blob []byte) error {
	tmp, err := os.CreateTemp(s.root, "."+filepath.Base(name)+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", name)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write collection %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close temp file for %s", name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrapf(err, "replace collection %s", name)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "delete collection %s", name)
	}
	return nil
}
