package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const anthropicAPIVersion = "2023-06-01"

// anthropicProvider is a minimal net/http client for the Anthropic
// Messages API, grounded on the teacher's own GetFromURL
// (net/http.NewRequestWithContext + http.DefaultClient.Do) rather than a
// third-party SDK: no Anthropic Go SDK is grounded anywhere in the
// example pack, and inventing a dependency that isn't there is worse than
// reusing a pattern the teacher already uses for HTTP. Anthropic has no
// server-enforced JSON schema mode, so the schema is folded into the
// system prompt and the response is parsed leniently downstream by
// internal/llmclient/json.go.
type anthropicProvider struct {
	apiKey     string
	httpClient *http.Client
}

func newAnthropicProvider(apiKey string) *anthropicProvider {
	return &anthropicProvider{apiKey: apiKey, httpClient: http.DefaultClient}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	System    string              `json:"system,omitempty"`
	Messages  []anthropicMessage  `json:"messages"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *anthropicProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string, schema map[string]any) (string, error) {
	system := systemPrompt
	if schema != nil {
		schemaJSON, err := json.Marshal(schema)
		if err != nil {
			return "", fmt.Errorf("llmclient: marshal schema: %w", err)
		}
		if system != "" {
			system += "\n\n"
		}
		system += "Respond with a single JSON object matching this schema and nothing else:\n" + string(schemaJSON)
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: 8192,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llmclient: decode anthropic response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llmclient: anthropic error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llmclient: anthropic request failed with status %d", resp.StatusCode)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
