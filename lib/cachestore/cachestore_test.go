package cachestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"tweetpipe/lib/telemetry"
)

func TestWriteSequenceNumbers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/cachestore")
	defer cleanup()

	store := New(t.TempDir())
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	first, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"a": 1}, at, "json")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T14.0.json", filepath.Base(first))

	second, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"a": 2}, at, "json")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T14.1.json", filepath.Base(second))

	third, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"a": 3}, at, "json")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T14.2.json", filepath.Base(third))

	// a different hour starts a fresh sequence
	other, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"a": 4}, at.Add(time.Hour), "json")
	require.NoError(t, err)
	require.Equal(t, "2025-06-01T15.0.json", filepath.Base(other))
}

func TestWriteSerialization(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/cachestore")
	defer cleanup()

	store := New(t.TempDir())
	ctx := context.Background()

	path, err := store.Write(ctx, "raw_cache", "# heading\nplain text", "md")
	require.NoError(t, err)
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# heading\nplain text", string(contents))

	path, err = store.Write(ctx, "ingest_cache", map[string]any{"full_content": "hello"}, "json")
	require.NoError(t, err)
	contents, err = os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(contents, &decoded))
	require.Equal(t, "hello", decoded["full_content"])
}

func TestLatest(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/cachestore")
	defer cleanup()

	store := New(t.TempDir())
	ctx := context.Background()

	_, err := store.Latest(ctx, "missing_dir", "json")
	require.ErrorIs(t, err, ErrNotFound)

	// directory exists but only holds the wrong extension
	_, err = store.Write(ctx, "mixed", "text", "md")
	require.NoError(t, err)
	_, err = store.Latest(ctx, "mixed", "json")
	require.ErrorIs(t, err, ErrNotFound)

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	older, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"n": 1}, at, "json")
	require.NoError(t, err)
	newer, err := store.WriteAt(ctx, "ingest_cache", map[string]any{"n": 2}, at, "json")
	require.NoError(t, err)

	// pin modification times so the ordering is deterministic
	base := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(older, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

	latest, err := store.Latest(ctx, "ingest_cache", "json")
	require.NoError(t, err)
	require.Equal(t, newer, latest)

	// swap the ordering, the older write now wins
	require.NoError(t, os.Chtimes(older, base.Add(time.Hour), base.Add(time.Hour)))
	latest, err = store.Latest(ctx, "ingest_cache", "json")
	require.NoError(t, err)
	require.Equal(t, older, latest)
}

func TestWriteUnprobeablePath(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/cachestore")
	defer cleanup()

	store := New(t.TempDir())
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// a NUL byte makes every stat fail with something other than
	// not-exist; the probe must surface that instead of looping
	_, err := store.WriteAt(ctx, "broken", "payload", at, "js\x00on")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to probe cache filename")
}

func TestLatestTieBreak(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/cachestore")
	defer cleanup()

	store := New(t.TempDir())
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	a, err := store.WriteAt(ctx, "ties", map[string]any{"n": 1}, at, "json")
	require.NoError(t, err)
	b, err := store.WriteAt(ctx, "ties", map[string]any{"n": 2}, at, "json")
	require.NoError(t, err)

	same := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(a, same, same))
	require.NoError(t, os.Chtimes(b, same, same))

	// equal modification times fall back to the lexicographically
	// largest filename, which is the higher sequence number here
	latest, err := store.Latest(ctx, "ties", "json")
	require.NoError(t, err)
	require.Equal(t, b, latest)
}
