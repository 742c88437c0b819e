// Package tiered persists whole JSON collections through a chain of
// fallbacks: authoritative remote file, TTL disk cache, static snapshot,
// empty. Writes always replace the full collection; when the remote is
// unreachable the write lands locally and the outcome says so.
package tiered

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/storage/cachefs"
	"github.com/mirpeset/mirpeset/storage/githubfs"
)

const (
	// VersionLocal marks data that was saved locally while the remote was
	// unreachable, VersionStatic data served from the published snapshot.
	VersionLocal  = "local-save"
	VersionStatic = "static-json"
	versionEmpty  = "empty"
)

type (
	// Remote is the authoritative file tier. *githubfs.Client satisfies it.
	Remote interface {
		GetFile(ctx context.Context, path string) (githubfs.File, error)
		PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error)
	}

	// Store loads and saves one named JSON document through the tiers.
	Store struct {
		key        string // collection name; also the cache key
		remote     Remote // nil when no remote is configured
		remotePath string
		cache      *cachefs.Cache
		staticURL  string // full URL of the published snapshot, "" to skip
		dataDir    string
		httpc      *http.Client
		logger     core.Logger

		mu      sync.Mutex
		lastSHA string // full revision of the last remote read
	}
)

func NewStore(key string, remote Remote, remotePath string, cache *cachefs.Cache, staticURL, dataDir string, logger core.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	return &Store{
		key:        key,
		remote:     remote,
		remotePath: remotePath,
		cache:      cache,
		staticURL:  staticURL,
		dataDir:    dataDir,
		httpc:      &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}, nil
}

func (s *Store) localPath() string    { return filepath.Join(s.dataDir, s.key+".json") }
func (s *Store) sentinelPath() string { return filepath.Join(s.dataDir, s.key+".deleted") }

// Load returns the current document and the version it came from. A nil
// document means the collection is empty. A reachable remote is
// authoritative and refreshes every lower tier; the cache only serves
// when the remote is missing or down. forceRefresh additionally skips the
// cache fallback so a write never builds on stale data.
func (s *Store) Load(ctx context.Context, forceRefresh bool) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a completed delete-all outlives stale remote and snapshot copies
	if _, err := os.Stat(s.sentinelPath()); err == nil {
		return nil, versionEmpty, nil
	}

	if s.remote != nil {
		file, err := s.remote.GetFile(ctx, s.remotePath)
		if err == nil && !json.Valid(file.Content) {
			// a corrupt remote document must not reach the cache or the
			// local mirror; serve a lower tier instead
			err = errors.Errorf("remote document is not valid JSON")
		}
		if err == nil {
			s.lastSHA = file.SHA
			version := githubfs.ShortRevision(file.SHA)
			s.cache.Set(s.key, file.Content, version)
			s.mirrorLocal(file.Content)
			return file.Content, version, nil
		}
		s.logger.Warn(fmt.Sprintf("%s: remote load failed, falling back: %v", s.key, err))
	}

	if !forceRefresh {
		if data, ok := s.cache.Get(s.key); ok {
			return data, s.cache.Version(s.key), nil
		}
	}

	if s.staticURL != "" {
		if data, err := s.fetchStatic(ctx); err == nil {
			s.cache.Set(s.key, data, VersionStatic)
			return data, VersionStatic, nil
		} else {
			s.logger.Warn(fmt.Sprintf("%s: static snapshot failed: %v", s.key, err))
		}
	}

	if data, err := os.ReadFile(s.localPath()); err == nil {
		return data, VersionLocal, nil
	}

	return nil, versionEmpty, nil
}

// Save replaces the whole document. The remote tier is tried first; if it
// cannot be reached the data is kept locally and the outcome reports
// RemoteSynced=false so callers can surface the degraded write.
func (s *Store) Save(ctx context.Context, data []byte, message string) (core.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// any save supersedes a prior delete-all
	if err := os.Remove(s.sentinelPath()); err != nil && !os.IsNotExist(err) {
		return core.SyncOutcome{}, errors.Wrap(err, "clearing delete marker")
	}

	if s.remote != nil {
		sha, err := s.push(ctx, data, message)
		if err == nil {
			version := githubfs.ShortRevision(sha)
			s.lastSHA = sha
			s.cache.Set(s.key, data, version)
			s.mirrorLocal(data)
			return core.SyncOutcome{RemoteSynced: true, Version: version}, nil
		}
		s.logger.Error(fmt.Sprintf("%s: remote save failed, keeping local copy", s.key), err)
	}

	if err := os.WriteFile(s.localPath(), data, 0o644); err != nil {
		return core.SyncOutcome{}, errors.Wrap(err, "saving local copy")
	}
	s.cache.Set(s.key, data, VersionLocal)
	return core.SyncOutcome{RemoteSynced: false, Version: VersionLocal}, nil
}

// push replaces the remote file, re-reading the revision once if it moved
// under us since the last load.
func (s *Store) push(ctx context.Context, data []byte, message string) (string, error) {
	if s.lastSHA == "" {
		s.refreshSHA(ctx)
	}
	sha, err := s.remote.PutFile(ctx, s.remotePath, data, s.lastSHA, message)
	if errors.Cause(err) == githubfs.ErrRevisionMismatch {
		s.refreshSHA(ctx)
		sha, err = s.remote.PutFile(ctx, s.remotePath, data, s.lastSHA, message)
	}
	return sha, err
}

func (s *Store) refreshSHA(ctx context.Context) {
	file, err := s.remote.GetFile(ctx, s.remotePath)
	switch {
	case err == nil:
		s.lastSHA = file.SHA
	case errors.Cause(err) == githubfs.ErrNotFound:
		s.lastSHA = "" // first write creates the file
	}
}

// DeleteAll empties the collection everywhere it can and drops a marker so
// stale tiers cannot resurrect the records.
func (s *Store) DeleteAll(ctx context.Context, message string) (core.SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := core.SyncOutcome{RemoteSynced: false, Version: VersionLocal}
	if s.remote != nil {
		if sha, err := s.push(ctx, []byte("[]\n"), message); err == nil {
			s.lastSHA = sha
			outcome = core.SyncOutcome{RemoteSynced: true, Version: githubfs.ShortRevision(sha)}
		} else {
			s.logger.Error(fmt.Sprintf("%s: remote delete-all failed, marking locally", s.key), err)
		}
	}

	s.cache.Remove(s.key)
	if err := os.Remove(s.localPath()); err != nil && !os.IsNotExist(err) {
		return outcome, errors.Wrap(err, "removing local copy")
	}
	if err := os.WriteFile(s.sentinelPath(), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return outcome, errors.Wrap(err, "writing delete marker")
	}
	return outcome, nil
}

func (s *Store) fetchStatic(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s?t=%d", s.staticURL, time.Now().UnixNano()/int64(time.Millisecond))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("snapshot: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errors.Errorf("snapshot is not valid JSON")
	}
	return data, nil
}

// mirrorLocal keeps the flat file in step with the freshest remote read so
// offline fallback serves recent data. Failures are non-fatal.
func (s *Store) mirrorLocal(data []byte) {
	if err := os.WriteFile(s.localPath(), data, 0o644); err != nil {
		s.logger.Warn(fmt.Sprintf("%s: mirroring local copy: %v", s.key, err))
	}
}
