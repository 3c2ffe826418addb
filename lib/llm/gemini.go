package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/telemetry"
)

var tracer = otel.Tracer("lib/llm")

const defaultGeminiModel = "gemini-1.5-flash-latest"

type GeminiOptions struct {
	// defaults to the public generativelanguage endpoint
	BaseUrl string
	ApiKey  string
	// defaults to gemini-1.5-flash-latest
	Model string
}

type Gemini struct {
	http   *resty.Client
	model  string
	apiKey string
}

func NewGemini(opts GeminiOptions) *Gemini {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://generativelanguage.googleapis.com"
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 120)
	telemetry.InstrumentResty(client, "lib/llm/gemini")

	return &Gemini{
		http:   client,
		model:  model,
		apiKey: opts.ApiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "gemini:Generate")
	defer span.End()

	var out geminiResponse
	res, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", g.model))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate request failed")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("gemini returned status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("gemini returned no candidates")
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (g *Gemini) ModelName() string {
	return g.model
}
