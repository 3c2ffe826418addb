// Package browser abstracts the browser-automation agent the pipeline
// drives for ingest and posting. A Session is an explicitly constructed
// resource: callers acquire one per pipeline run, pass it down, and close
// it when the run finishes. There is no package-level shared session.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/telemetry"
)

var tracer = otel.Tracer("lib/browser")

// Session runs natural-language navigation tasks against a browser.
type Session interface {
	// Run executes a task script and returns the agent's final result,
	// usually a JSON document.
	Run(ctx context.Context, task string) (string, error)
	Close(ctx context.Context) error
}

type Options struct {
	Headless bool
}

// AgentSession talks to a browser-use style agent service over HTTP.
type AgentSession struct {
	http     *resty.Client
	headless bool
}

type AgentOptions struct {
	BaseUrl string
	Options
}

func NewAgentSession(opts AgentOptions) *AgentSession {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Minute * 5)
	telemetry.InstrumentResty(client, "lib/browser/agent")

	return &AgentSession{
		http:     client,
		headless: opts.Headless,
	}
}

type runRequest struct {
	Task     string `json:"task"`
	Headless bool   `json:"headless"`
}

type runResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (s *AgentSession) Run(ctx context.Context, task string) (string, error) {
	ctx, span := tracer.Start(ctx, "agent:Run")
	defer span.End()

	var out runResponse
	res, err := s.http.R().
		SetContext(ctx).
		SetBody(runRequest{Task: task, Headless: s.headless}).
		SetResult(&out).
		Post("/run")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent request failed")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("agent returned status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if out.Error != "" {
		err := fmt.Errorf("agent task failed: %s", out.Error)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out.Result, nil
}

func (s *AgentSession) Close(ctx context.Context) error {
	_, span := tracer.Start(ctx, "agent:Close")
	defer span.End()

	res, err := s.http.R().
		SetContext(ctx).
		Post("/shutdown")
	if err != nil {
		span.RecordError(err)
		return err
	}
	if res.IsError() {
		return fmt.Errorf("agent shutdown returned status %s", res.Status())
	}
	return nil
}
