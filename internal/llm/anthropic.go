// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/httputil"
	"github.com/pdiddy/journal-club/pkg/types"
)

// anthropicAPIURL is the Messages API endpoint. Package-level var for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

// schemaInstructionTmpl is appended to the system prompt when a structured
// reply is required; the Messages API has no response format parameter.
var schemaInstructionTmpl = template.Must(template.New("schema").Parse(`

Respond with a single JSON object that conforms to the following JSON Schema ({{.Name}}: {{.Description}}). Do not include any text outside the JSON object.

{{.JSON}}
`))

// AnthropicModel calls the Anthropic Messages API.
type AnthropicModel struct {
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	Client     *http.Client
}

// NewAnthropic builds a model from an endpoint configuration.
func NewAnthropic(ep types.ModelEndpoint, httpClient *http.Client) *AnthropicModel {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: ep.Timeout}
	}
	return &AnthropicModel{
		APIKey:     ep.APIKey,
		Model:      ep.Model,
		MaxTokens:  ep.MaxTokens,
		MaxRetries: ep.MaxRetries,
		Client:     httpClient,
	}
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name returns "anthropic:model".
func (a *AnthropicModel) Name() string { return string(types.ProviderAnthropic) + ":" + a.Model }

// Call sends the conversation to the Messages API.
func (a *AnthropicModel) Call(ctx context.Context, req Request) (Response, error) {
	system := req.Instructions
	if req.Schema != nil {
		var buf bytes.Buffer
		if err := schemaInstructionTmpl.Execute(&buf, req.Schema); err != nil {
			return Response{}, fmt.Errorf("rendering schema instruction: %w", err)
		}
		system += buf.String()
	}

	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	body := anthropicRequest{Model: a.Model, MaxTokens: maxTokens, System: system}
	for _, t := range conversation(req.History) {
		body.Messages = append(body.Messages, anthropicMessage{Role: string(t.Role), Content: t.Content})
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	var resp *http.Response
	if a.MaxRetries > 0 {
		httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(bodyBytes)), nil }
		resp, err = httputil.DoWithRetry(ctx, client, httpReq, a.MaxRetries)
	} else {
		resp, err = client.Do(httpReq)
	}
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, &failure.ModelInvocationError{Model: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("%s", strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusTooManyRequests {
			return Response{}, &failure.RateLimitError{Model: a.Name(), Err: apiErr}
		}
		return Response{}, &failure.ModelInvocationError{Model: a.Name(), StatusCode: resp.StatusCode, Err: apiErr}
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return Response{}, &failure.ModelInvocationError{Model: a.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}

	var text strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, &failure.ModelInvocationError{Model: a.Name(), Err: errors.New("no text content in response")}
	}

	return respond(req, text.String(), Usage{
		PromptTokens:     aResp.Usage.InputTokens,
		CompletionTokens: aResp.Usage.OutputTokens,
	}), nil
}
