package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// CallJSON issues a JSON-mode completion and decodes it into target,
// tolerating the two failure modes real LLM output actually produces:
// markdown code fences around the object, and near-valid JSON that a
// strict decoder rejects but a lenient one (gjson) can still walk. If
// both the raw response and the repaired response fail to decode, it
// re-prompts exactly once with the parse error attached, per spec.md
// §4.2's "single re-prompt on parse failure" rule, before giving up.
func CallJSON(ctx context.Context, c *Client, phase string, estimatedTokens int, systemPrompt, userPrompt string, schema map[string]any, target any) error {
	// JSON mode requires the literal word "json" somewhere in the prompt.
	if !strings.Contains(strings.ToLower(systemPrompt+userPrompt), "json") {
		userPrompt += "\n\nRespond in json."
	}

	raw, err := c.Complete(ctx, phase, estimatedTokens, systemPrompt, userPrompt, schema)
	if err != nil {
		return err
	}

	if decodeErr := decodeLenient(raw, target); decodeErr == nil {
		return nil
	} else if repromptErr := reprompt(ctx, c, phase, estimatedTokens, systemPrompt, userPrompt, schema, raw, decodeErr, target); repromptErr != nil {
		return repromptErr
	}
	return nil
}

func reprompt(ctx context.Context, c *Client, phase string, estimatedTokens int, systemPrompt, userPrompt string, schema map[string]any, badResponse string, parseErr error, target any) error {
	preview := badResponse
	if len(preview) > 2000 {
		preview = preview[:2000] + "..."
	}
	fixupPrompt := fmt.Sprintf("%s\n\nYour previous response could not be parsed as JSON (%v):\n%s\n\nRespond again with ONLY a single valid JSON object matching the required schema.", userPrompt, parseErr, preview)

	raw, err := c.Complete(ctx, phase, estimatedTokens, systemPrompt, fixupPrompt, schema)
	if err != nil {
		return err
	}
	if err := decodeLenient(raw, target); err != nil {
		return fmt.Errorf("llmclient: response still not valid JSON after re-prompt: %w", err)
	}
	return nil
}

// decodeLenient tries a strict decode first, then falls back to
// stripping markdown fences and re-extracting the outermost JSON object
// via gjson/sjson before giving up.
func decodeLenient(raw string, target any) error {
	if err := json.Unmarshal([]byte(raw), target); err == nil {
		return nil
	}

	stripped := stripCodeFences(raw)
	if err := json.Unmarshal([]byte(stripped), target); err == nil {
		return nil
	}

	repaired, ok := repairJSON(stripped)
	if !ok {
		return fmt.Errorf("llmclient: could not repair response as JSON")
	}
	return json.Unmarshal([]byte(repaired), target)
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// repairJSON extracts the outermost {...} span and, if gjson can parse it
// leniently, rebuilds a canonical JSON document with sjson one top-level
// key at a time — this drops stray prose before or after the object.
// Each member's value is copied as gjson's raw text, so a defect inside a
// value (such as an unescaped control character) is left in place and
// the final strict decode still rejects it.
func repairJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	candidate := s[start : end+1]

	parsed := gjson.Parse(candidate)
	if !parsed.IsObject() {
		return "", false
	}

	rebuilt := "{}"
	var setErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		rebuilt, setErr = sjson.SetRaw(rebuilt, key.String(), value.Raw)
		return setErr == nil
	})
	if setErr != nil {
		return "", false
	}
	return rebuilt, true
}
