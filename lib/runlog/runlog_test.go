package runlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"tweetpipe/lib/telemetry"
)

func TestStageLifecycle(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/runlog")
	defer cleanup()

	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	runId := uuid.NewString()

	ingestId, err := store.StageStarted(ctx, runId, "ingest")
	require.NoError(t, err)
	require.NoError(t, store.StageFinished(ctx, ingestId, StatusSuccess, "/tmp/ingest_cache/2025-06-01T14.0.json", ""))

	transformId, err := store.StageStarted(ctx, runId, "transform")
	require.NoError(t, err)
	require.NoError(t, store.StageFinished(ctx, transformId, StatusError, "", "no content available"))

	history, err := store.RunHistory(ctx, runId)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.Equal(t, "ingest", history[0].Stage)
	require.Equal(t, StatusSuccess, history[0].Status)
	require.Equal(t, "/tmp/ingest_cache/2025-06-01T14.0.json", history[0].CachePath)
	require.False(t, history[0].FinishedAt.IsZero())

	require.Equal(t, "transform", history[1].Stage)
	require.Equal(t, StatusError, history[1].Status)
	require.Equal(t, "no content available", history[1].Error)

	// other runs are not visible
	other, err := store.RunHistory(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Empty(t, other)
}
