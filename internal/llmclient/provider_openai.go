package llmclient

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// openaiProvider drives the same Responses API + JSON-schema structured
// output path as ParsePDFPage/SummarizeItem in the teacher's internal/llm
// package, generalised from a fixed parsed-document shape to an
// arbitrary per-call schema.
type openaiProvider struct {
	client openai.Client
}

func newOpenAIProvider(apiKey string) *openaiProvider {
	return &openaiProvider{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (p *openaiProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string, schema map[string]any) (string, error) {
	chatModel := shared.ChatModel(model)
	if chatModel == "" {
		chatModel = shared.ChatModelGPT5Mini
	}

	input := responses.ResponseNewParamsInputUnion{
		OfInputItemList: responses.ResponseInputParam{},
	}
	if systemPrompt != "" {
		input.OfInputItemList = append(input.OfInputItemList,
			responses.ResponseInputItemParamOfMessage(
				responses.ResponseInputMessageContentListParam{
					responses.ResponseInputContentParamOfInputText(systemPrompt),
				},
				"system",
			),
		)
	}
	input.OfInputItemList = append(input.OfInputItemList,
		responses.ResponseInputItemParamOfMessage(
			responses.ResponseInputMessageContentListParam{
				responses.ResponseInputContentParamOfInputText(userPrompt),
			},
			"user",
		),
	)

	params := responses.ResponseNewParams{
		Model: chatModel,
		Input: input,
	}
	if schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("pagetree_response", schema),
		}
	}

	response, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return response.OutputText(), nil
}
