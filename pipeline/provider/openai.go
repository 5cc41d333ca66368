// Package provider implements the pipeline's LLM capability against the
// OpenAI Responses API.
package provider

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/soulprintlabs/soulprint-pipeline/pipeline"
)

// OpenAIGenerator issues structured-output generation requests. It makes
// exactly one API call per request: the synthesis path runs under a hard
// timeout that leaves no room for retry backoff, so retrying (if wanted at
// all) belongs to the caller.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator for the given model. The API key
// comes from the environment (OPENAI_API_KEY) unless overridden.
func NewOpenAIGenerator(model string, opts ...option.RequestOption) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// GenerateStructuredJSON implements pipeline.StructuredGenerator.
func (g *OpenAIGenerator) GenerateStructuredJSON(ctx context.Context, req pipeline.GenerateRequest) (string, error) {
	if g == nil {
		return "", errors.New("OpenAIGenerator: nil generator")
	}
	if g.model == "" {
		return "", errors.New("OpenAIGenerator: model is empty")
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(req.MaxOutputTokens),
		Instructions:    openai.String(req.SystemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.UserContent, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}
