package archive_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twealth/twealth/internal/archive"
	"github.com/twealth/twealth/pkg/scoring"
)

func testSnapshot() *scoring.ScoreSnapshot {
	return &scoring.ScoreSnapshot{
		UserID:       "u1",
		Month:        time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		Cashflow:     87,
		Stability:    74,
		Growth:       90,
		Behavior:     100,
		TwealthIndex: 86,
		Band:         scoring.BandGreat,
		Confidence:   1.0,
	}
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "scores/u1/2026-07.json", archive.SnapshotKey(testSnapshot()))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := archive.NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "scores/u1/2026-07.json", []byte("hello")))
	data, err := store.Get(ctx, "scores/u1/2026-07.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = store.Get(ctx, "scores/u1/2026-08.json")
	assert.Error(t, err)
}

func TestArchiveSnapshot(t *testing.T) {
	dir := t.TempDir()
	archiver := archive.NewArchiver(archive.NewLocalStore(dir))
	snap := testSnapshot()

	require.NoError(t, archiver.ArchiveSnapshot(context.Background(), snap))

	data, err := os.ReadFile(filepath.Join(dir, "scores", "u1", "2026-07.json"))
	require.NoError(t, err)

	var got scoring.ScoreSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap.TwealthIndex, got.TwealthIndex)
	assert.Equal(t, snap.Band, got.Band)
	assert.True(t, snap.Month.Equal(got.Month))
}

func TestArchiveSnapshotOverwrites(t *testing.T) {
	store := archive.NewLocalStore(t.TempDir())
	archiver := archive.NewArchiver(store)
	ctx := context.Background()

	snap := testSnapshot()
	require.NoError(t, archiver.ArchiveSnapshot(ctx, snap))

	snap.TwealthIndex = 42
	require.NoError(t, archiver.ArchiveSnapshot(ctx, snap))

	data, err := store.Get(ctx, archive.SnapshotKey(snap))
	require.NoError(t, err)
	var got scoring.ScoreSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 42, got.TwealthIndex)
}
