// Package archive persists score snapshots to blob storage for audit
// and offline analysis. Archiving is optional and best-effort: the
// database row is the source of truth.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twealth/twealth/pkg/scoring"
)

// BlobStore abstracts blob storage for archived snapshots.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Archiver writes one JSON object per (user, month) snapshot.
type Archiver struct {
	store BlobStore
}

// NewArchiver creates an Archiver over the given blob store.
func NewArchiver(store BlobStore) *Archiver {
	return &Archiver{store: store}
}

// SnapshotKey returns the object key for a snapshot.
func SnapshotKey(snap *scoring.ScoreSnapshot) string {
	return fmt.Sprintf("scores/%s/%s.json", snap.UserID, snap.Month.UTC().Format("2006-01"))
}

// ArchiveSnapshot stores the snapshot as JSON. Re-archiving the same
// user-month overwrites the previous object.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, snap *scoring.ScoreSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return a.store.Put(ctx, SnapshotKey(snap), data)
}

// LocalStore implements BlobStore on the local filesystem. Useful for
// development and testing.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(key))
}

// Put stores a blob.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a blob.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}
