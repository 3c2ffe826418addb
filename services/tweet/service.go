// Package tweet implements the news-to-thread pipeline: ingest content
// from a fixed target, transform it into a tweet thread with a language
// model, and drive a browser session to compose the result. Stages
// communicate only through timestamped cache files, so any stage can be
// re-run alone and will pick up the latest output of its predecessor.
package tweet

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"tweetpipe/lib/browser"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/llm"
	"tweetpipe/lib/runlog"
)

var tracer = otel.Tracer("services/tweet")

// Cache directory names, one per stage.
const (
	RawCacheDir       = "raw_cache"
	IngestCacheDir    = "ingest_cache"
	TransformCacheDir = "transform_cache"
)

// Stage names accepted by Run.
const (
	StageIngest    = "ingest"
	StageTransform = "transform"
	StagePost      = "post"
)

type Service struct {
	cache     cachestore.Store
	fetcher   Fetcher
	generator llm.Generator
	session   browser.Session
	ledger    *runlog.Store
}

type Options struct {
	Fetcher   Fetcher
	Generator llm.Generator
	// Session is acquired by the caller for the duration of a run; the
	// service never opens or closes it.
	Session browser.Session
	// Ledger may be nil, stage runs are then not recorded.
	Ledger *runlog.Store
}

func NewService(cache cachestore.Store, opts Options) Service {
	return Service{
		cache:     cache,
		fetcher:   opts.Fetcher,
		generator: opts.Generator,
		session:   opts.Session,
		ledger:    opts.Ledger,
	}
}

// Run executes the pipeline. An empty stage runs the full
// ingest → transform → post sequence; a named stage runs alone. Stage
// failures come back wrapped in *PipelineError. There is no rollback:
// cache writes of completed stages are durable, so recovering from a
// failure means re-running from the failed stage.
func (s Service) Run(ctx context.Context, stage string) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	runId := uuid.NewString()
	slog.Info("starting pipeline run", "run_id", runId, "stage", stageLabel(stage))

	if stage == "" || stage == StageIngest {
		err := s.runStage(ctx, runId, StageIngest, func() error {
			_, err := s.Ingest(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}

	if stage == "" || stage == StageTransform {
		err := s.runStage(ctx, runId, StageTransform, func() error {
			_, err := s.Transform(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}

	if stage == "" || stage == StagePost {
		err := s.runStage(ctx, runId, StagePost, func() error {
			status, err := s.Post(ctx)
			if err != nil {
				return err
			}
			if status.Status != "success" {
				slog.Warn("post stage reported failure", "error", status.Error)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	slog.Info("pipeline run finished", "run_id", runId)
	return nil
}

func (s Service) runStage(ctx context.Context, runId, stage string, fn func() error) error {
	slog.Info("starting stage", "stage", stage)

	var entryId int64
	if s.ledger != nil {
		var err error
		entryId, err = s.ledger.StageStarted(ctx, runId, stage)
		if err != nil {
			slog.Warn("failed to record stage start", "stage", stage, "err", err)
			s.ledger = nil
		}
	}

	err := fn()

	if s.ledger != nil {
		status := runlog.StatusSuccess
		errMsg := ""
		if err != nil {
			status = runlog.StatusError
			errMsg = err.Error()
		}
		recordErr := s.ledger.StageFinished(ctx, entryId, status, "", errMsg)
		if recordErr != nil {
			slog.Warn("failed to record stage finish", "stage", stage, "err", recordErr)
		}
	}

	if err != nil {
		return &PipelineError{Stage: stage, Err: err}
	}
	slog.Info("stage completed", "stage", stage)
	return nil
}

func stageLabel(stage string) string {
	if stage == "" {
		return "all"
	}
	return stage
}

// ValidStage reports whether the stage name is one Run understands.
func ValidStage(stage string) bool {
	switch stage {
	case "", StageIngest, StageTransform, StagePost:
		return true
	}
	return false
}
