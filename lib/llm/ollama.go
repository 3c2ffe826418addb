package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/telemetry"
)

const defaultOllamaModel = "llama3:latest"

type OllamaOptions struct {
	// defaults to http://localhost:11434
	BaseUrl string
	// defaults to llama3:latest
	Model string
}

type Ollama struct {
	http  *resty.Client
	model string
}

func NewOllama(opts OllamaOptions) *Ollama {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = "http://localhost:11434"
	}
	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 120)
	telemetry.InstrumentResty(client, "lib/llm/ollama")

	return &Ollama{
		http:  client,
		model: model,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "ollama:Generate")
	defer span.End()

	var out ollamaGenerateResponse
	res, err := o.http.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{
			Model:  o.model,
			Prompt: prompt,
			Stream: false,
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate request failed")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("ollama returned status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out.Response, nil
}

func (o *Ollama) ModelName() string {
	return o.model
}
