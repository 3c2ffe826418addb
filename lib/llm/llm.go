// Package llm provides text-generation backends for the pipeline stages.
// Backends are treated as opaque: a prompt goes in, text comes out.
package llm

import (
	"context"
	"strings"
)

// Generator produces text from a prompt. Implementations are expected to
// be safe for sequential reuse; nothing in the pipeline calls Generate
// concurrently.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// StripFences removes a fenced code block wrapper from a generation
// response, tolerating both ```json and bare ``` fences. Models add these
// even when told not to.
func StripFences(response string) string {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		start := idx + len("```json")
		end := strings.LastIndex(response, "```")
		if end > start {
			response = response[start:end]
		}
	} else if idx := strings.Index(response, "```"); idx >= 0 {
		start := idx + len("```")
		end := strings.LastIndex(response, "```")
		if end > start {
			response = response[start:end]
		}
	}
	return strings.TrimSpace(response)
}
