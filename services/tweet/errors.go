package tweet

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. Acquisition and persistence failures
// are recovered locally (logged, degraded to empty results); these
// sentinels mark the failures that propagate and abort a stage.
var (
	// ErrNoContent: the ingest result has nothing to generate from.
	ErrNoContent = errors.New("no content available to create a tweet")
	// ErrParse: the generation response is not valid JSON after cleanup.
	ErrParse = errors.New("failed to parse tweet generation response")
	// ErrBadFormat: a cache entry does not have the expected shape.
	ErrBadFormat = errors.New("invalid cache format")
	// ErrMissingConfig: a required credential is absent from the environment.
	ErrMissingConfig = errors.New("missing required configuration")
	// ErrBackend: an external generation or posting call failed.
	ErrBackend = errors.New("backend request failed")
)

// PipelineError wraps a stage failure with the name of the stage that
// produced it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q failed: %s", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
