// Package localfs keeps device-local collections as plain JSON files under
// the data directory. Zmanim never leave the machine they were entered on.
package localfs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core/zman"
)

type ZmanStore struct {
	path string
	mu   sync.Mutex
}

var _ zman.Store = (*ZmanStore)(nil)

func NewZmanStore(dataDir string) (*ZmanStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	return &ZmanStore{path: filepath.Join(dataDir, "zmanim.json")}, nil
}

func (s *ZmanStore) LoadZmanim(ctx context.Context) ([]zman.Zman, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []zman.Zman{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading zmanim file")
	}
	var zmanim []zman.Zman
	if err := json.Unmarshal(data, &zmanim); err != nil {
		return nil, errors.Wrap(err, "decoding zmanim file")
	}
	if zmanim == nil {
		zmanim = []zman.Zman{}
	}
	return zmanim, nil
}

func (s *ZmanStore) SaveZmanim(ctx context.Context, zmanim []zman.Zman) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if zmanim == nil {
		zmanim = []zman.Zman{}
	}
	data, err := json.MarshalIndent(zmanim, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding zmanim file")
	}
	return errors.Wrap(os.WriteFile(s.path, append(data, '\n'), 0o644), "writing zmanim file")
}
