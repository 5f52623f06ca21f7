// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/pkg/types"
)

// OpenAIModel calls the Chat Completions API of OpenAI or an Azure OpenAI
// deployment.
type OpenAIModel struct {
	client    openai.Client
	model     string
	maxTokens int
	name      string
}

// NewOpenAI builds a model for the public OpenAI API. BaseURL, when set,
// points the client at a compatible endpoint.
func NewOpenAI(ep types.ModelEndpoint, httpClient *http.Client) *OpenAIModel {
	opts := commonOptions(ep, httpClient)
	opts = append(opts, option.WithAPIKey(ep.APIKey))
	if ep.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ep.BaseURL))
	}
	return &OpenAIModel{
		client:    openai.NewClient(opts...),
		model:     ep.Model,
		maxTokens: ep.MaxTokens,
		name:      string(types.ProviderOpenAI) + ":" + ep.Model,
	}
}

// NewAzure builds a model for an Azure OpenAI deployment. ep.Model is the
// deployment name; requests go to {base}/openai/deployments/{deployment}/
// with the api-key header and the api-version query parameter.
func NewAzure(ep types.ModelEndpoint, httpClient *http.Client) *OpenAIModel {
	base := strings.TrimSuffix(ep.BaseURL, "/") + "/openai/deployments/" + ep.Model + "/"
	opts := commonOptions(ep, httpClient)
	opts = append(opts,
		option.WithBaseURL(base),
		option.WithHeader("api-key", ep.APIKey),
		option.WithQuery("api-version", ep.APIVersion),
	)
	return &OpenAIModel{
		client:    openai.NewClient(opts...),
		model:     ep.Model,
		maxTokens: ep.MaxTokens,
		name:      string(types.ProviderAzure) + ":" + ep.Model,
	}
}

func commonOptions(ep types.ModelEndpoint, httpClient *http.Client) []option.RequestOption {
	opts := []option.RequestOption{option.WithMaxRetries(ep.MaxRetries)}
	if ep.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(ep.Timeout))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return opts
}

// Name returns "provider:model".
func (m *OpenAIModel) Name() string { return m.name }

// Call sends the conversation as chat messages. A schema is passed as a
// strict json_schema response format.
func (m *OpenAIModel) Call(ctx context.Context, req Request) (Response, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.Instructions),
	}
	for _, t := range conversation(req.History) {
		switch t.Role {
		case types.TurnAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: msgs,
	}
	if m.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(m.maxTokens))
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openai.String(req.Schema.Description),
					Schema:      req.Schema.Definition,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, m.classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &failure.ModelInvocationError{Model: m.name, Err: errors.New("empty choices")}
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
			return Response{}, &failure.ModelInvocationError{Model: m.name, Err: fmt.Errorf("refused: %s", refusal)}
		}
		return Response{}, &failure.ModelInvocationError{Model: m.name, Err: errors.New("empty content")}
	}

	return respond(req, content, Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}), nil
}

// classify maps client errors onto the failure taxonomy.
func (m *OpenAIModel) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return &failure.RateLimitError{Model: m.name, Err: err}
		}
		return &failure.ModelInvocationError{Model: m.name, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &failure.ModelInvocationError{Model: m.name, Err: err}
}
