// Package llmclient implements Phase 2 (LLM Client, spec.md §4.2): a
// provider-agnostic JSON-mode completion call wrapped in rate limiting,
// bounded concurrency, retry-with-backoff, and per-phase metrics.
package llmclient

import (
	"context"
	"fmt"
)

// Provider is the minimal surface every backend must implement: a single
// JSON-mode completion call. schema is a JSON Schema describing the
// expected response shape; providers that support native structured
// output (OpenAI) enforce it server-side, providers that don't
// (Anthropic) fold it into the prompt instead.
type Provider interface {
	Complete(ctx context.Context, model, systemPrompt, userPrompt string, schema map[string]any) (string, error)
}

// NewProvider resolves a provider by name. Unknown names fail fast rather
// than silently falling back to a default, mirroring the provider switch
// in paperless-gpt's newLLMProvider.
func NewProvider(name, apiKey string) (Provider, error) {
	switch name {
	case "openai":
		return newOpenAIProvider(apiKey), nil
	case "anthropic":
		return newAnthropicProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("llmclient: unsupported provider %q (want \"openai\" or \"anthropic\")", name)
	}
}
