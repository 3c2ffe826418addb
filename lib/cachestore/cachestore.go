// Package cachestore persists pipeline results as timestamped files.
//
// Every write creates a new file named {YYYY-MM-DDTHH}.{n}.{ext} where n is
// the smallest free sequence number for that hour. Files are never mutated
// after creation; "latest" is resolved by filesystem modification time.
package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/cachestore")

// ErrNotFound reports that a cache directory is absent or holds no file
// with the requested extension.
var ErrNotFound = errors.New("no cache file found")

const hourFormat = "2006-01-02T15"

// Store resolves cache directories relative to a root.
type Store struct {
	root string
}

func New(root string) Store {
	return Store{root: root}
}

// Dir returns the absolute path of a named cache directory.
func (s Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Write serializes payload into the next free {hour}.{n}.{ext} file inside
// dir, creating the directory if needed, and returns the written path.
// Maps, slices and structs are JSON-encoded; strings and byte slices are
// written verbatim.
func (s Store) Write(ctx context.Context, dir string, payload any, ext string) (string, error) {
	return s.WriteAt(ctx, dir, payload, time.Now(), ext)
}

// WriteAt is Write with an explicit timestamp, for callers that pin a run
// to a specific date.
func (s Store) WriteAt(ctx context.Context, dir string, payload any, at time.Time, ext string) (string, error) {
	_, span := tracer.Start(ctx, "WriteAt")
	defer span.End()

	cacheDir := s.Dir(dir)
	err := os.MkdirAll(cacheDir, 0755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache directory")
		return "", err
	}

	contents, err := serialize(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize payload")
		return "", err
	}

	path, err := nextFilename(cacheDir, at, ext)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to probe cache filenames")
		return "", err
	}
	err = os.WriteFile(path, contents, 0644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cache file")
		return "", err
	}

	span.SetAttributes(attribute.String("path", path))
	return path, nil
}

// Latest returns the path of the file with the greatest modification time
// among files of the given extension in dir. Ties on modification time
// break toward the lexicographically largest filename, so the result is
// deterministic. Returns ErrNotFound when nothing qualifies.
func (s Store) Latest(ctx context.Context, dir string, ext string) (string, error) {
	_, span := tracer.Start(ctx, "Latest")
	defer span.End()

	cacheDir := s.Dir(dir)
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: directory %s does not exist", ErrNotFound, cacheDir)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cache directory")
		return "", err
	}

	suffix := "." + ext
	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if latest == "" || mod.After(latestMod) || (mod.Equal(latestMod) && entry.Name() > filepath.Base(latest)) {
			latest = filepath.Join(cacheDir, entry.Name())
			latestMod = mod
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: no .%s files in %s", ErrNotFound, ext, cacheDir)
	}
	span.SetAttributes(attribute.String("path", latest))
	return latest, nil
}

func nextFilename(cacheDir string, at time.Time, ext string) (string, error) {
	base := at.Format(hourFormat)
	for count := 0; ; count++ {
		path := filepath.Join(cacheDir, fmt.Sprintf("%s.%d.%s", base, count, ext))
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		// an existing file continues the probe; anything else would loop
		// on the same failing path forever
		if err != nil {
			return "", fmt.Errorf("failed to probe cache filename %s: %w", path, err)
		}
	}
}

func serialize(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.MarshalIndent(payload, "", "  ")
	}
}
