package browser

import (
	"context"
	"log/slog"
	"strings"
)

// Simulated is a stand-in browser session that records every task instead
// of touching a real browser. The posting pipeline runs against it by
// default so nothing is ever published accidentally; tests use it to
// assert on the exact scripts a stage produced.
type Simulated struct {
	// Tasks holds every script passed to Run, in order.
	Tasks []string
	// Result is returned from every Run call.
	Result string
	closed bool
}

func NewSimulated(result string) *Simulated {
	return &Simulated{Result: result}
}

func (s *Simulated) Run(ctx context.Context, task string) (string, error) {
	s.Tasks = append(s.Tasks, task)
	for _, line := range strings.Split(task, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		slog.Debug("simulated browser step", "step", line)
	}
	return s.Result, nil
}

func (s *Simulated) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

// Closed reports whether the session has been released.
func (s *Simulated) Closed() bool {
	return s.closed
}
