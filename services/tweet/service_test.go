package tweet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"tweetpipe/lib/browser"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/runlog"
	"tweetpipe/lib/telemetry"
)

func TestRunFullPipeline(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/tweet")
	defer cleanup()
	setCredentials(t)

	dir := t.TempDir()
	ledger, err := runlog.Open(filepath.Join(dir, "runlog.db"))
	require.NoError(t, err)
	defer ledger.Close()

	store := cachestore.New(dir)
	fetcher := &stubFetcher{raw: Raw{
		Text: `{"raw_content": "X launches new API", "topics": ["ai"], "link": "https://example.com"}`,
	}}
	generator := &stubGenerator{response: `[{"content": "X launches new API"}]`}
	session := browser.NewSimulated("done")
	service := NewService(store, Options{
		Fetcher:   fetcher,
		Generator: generator,
		Session:   session,
		Ledger:    ledger,
	})

	ctx := context.Background()
	require.NoError(t, service.Run(ctx, ""))

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, generator.calls)
	require.Len(t, session.Tasks, 1)
	require.Contains(t, session.Tasks[0], "X launches new API #ai")

	// every stage left a cache entry behind
	for _, cacheDir := range []string{RawCacheDir, IngestCacheDir, TransformCacheDir} {
		_, err := store.Latest(ctx, cacheDir, "json")
		require.NoError(t, err, cacheDir)
	}

	// and a ledger row per stage
	runs, err := ledger.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	history, err := ledger.RunHistory(ctx, runs[0])
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, StageIngest, history[0].Stage)
	require.Equal(t, StageTransform, history[1].Stage)
	require.Equal(t, StagePost, history[2].Stage)
	for _, row := range history {
		require.Equal(t, runlog.StatusSuccess, row.Status)
	}
}

func TestRunSingleStage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/tweet")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	fetcher := &stubFetcher{raw: Raw{Text: `{"raw_content": "body", "topics": []}`}}
	generator := &stubGenerator{response: `[]`}
	service := NewService(store, Options{Fetcher: fetcher, Generator: generator})

	require.NoError(t, service.Run(context.Background(), StageIngest))
	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 0, generator.calls)
}

func TestRunWrapsStageFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/tweet")
	defer cleanup()

	dir := t.TempDir()
	ledger, err := runlog.Open(filepath.Join(dir, "runlog.db"))
	require.NoError(t, err)
	defer ledger.Close()

	store := cachestore.New(dir)
	generator := &stubGenerator{response: "not json at all"}
	service := NewService(store, Options{Generator: generator, Ledger: ledger})

	ctx := context.Background()
	_, err = store.Write(ctx, IngestCacheDir, map[string]any{"full_content": "news"}, "json")
	require.NoError(t, err)

	err = service.Run(ctx, StageTransform)
	require.Error(t, err)

	var pipelineErr *PipelineError
	require.True(t, errors.As(err, &pipelineErr))
	require.Equal(t, StageTransform, pipelineErr.Stage)
	require.ErrorIs(t, err, ErrParse)

	runs, err := ledger.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	history, err := ledger.RunHistory(ctx, runs[0])
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, runlog.StatusError, history[0].Status)
	require.NotEmpty(t, history[0].Error)
}

func TestValidStage(t *testing.T) {
	for _, stage := range []string{"", StageIngest, StageTransform, StagePost} {
		require.True(t, ValidStage(stage), stage)
	}
	require.False(t, ValidStage("deploy"))
}
