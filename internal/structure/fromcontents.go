package structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/tokenest"
	"github.com/vectorless/pagetree/models"
)

// contentsChunkTokenBudget caps how much contents-page text is sent in
// one LLM call; large contents regions (multi-page, dense front matter)
// are split into overlapping chunks so the model never has to hold the
// whole region in context at once.
const contentsChunkTokenBudget = 4000

// contentsOverlapLines is how many trailing lines of chunk k are
// repeated as leading context in chunk k+1, carrying the last-seen
// structure code forward so the LLM continues the sequence instead of
// restarting it (spec.md §4.4's "handoff" requirement).
const contentsOverlapLines = 3

var contentsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"structure": map[string]any{"type": "string"},
					"title":     map[string]any{"type": "string"},
					"page":      map[string]any{"type": "integer"},
				},
				"required":             []string{"structure", "title", "page"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"items"},
	"additionalProperties": false,
}

type contentsLLMItem struct {
	Structure string `json:"structure"`
	Title     string `json:"title"`
	Page      int    `json:"page"`
}

type contentsLLMResponse struct {
	Items []contentsLLMItem `json:"items"`
}

// FromContents prompts the LLM with printed contents text and requires a
// JSON array of {structure, title, page} objects (spec.md §4.4). Large
// regions are chunked with a trailing-line handoff so the structure
// codes stay monotone in pre-order across chunk boundaries.
func FromContents(ctx context.Context, client *llmclient.Client, text string) ([]models.TOCItem, error) {
	chunks := chunkContents(text)

	var allItems []contentsLLMItem
	lastCode := ""
	for i, chunk := range chunks {
		handoff := chunk
		if i > 0 && lastCode != "" {
			handoff = fmt.Sprintf("(continuing from structure code %s)\n\n%s", lastCode, chunk)
		}

		var resp contentsLLMResponse
		prompt := fmt.Sprintf(`Below is text from a printed table-of-contents page. Extract every entry as a JSON object with "structure" (a dotted hierarchical code such as "1", "1.1", "2"), "title", and "page" (the printed page number as an integer). The structure codes must be strictly increasing in pre-order. If no codes are visible in the source text, assign them yourself based on indentation and sequence. Respond with json.

%s`, handoff)

		if err := llmclient.CallJSON(ctx, client, "structure_extraction", tokenest.Estimate(chunk), "", prompt, contentsSchema, &resp); err != nil {
			return nil, fmt.Errorf("structure: extract from contents chunk %d: %w", i, err)
		}

		for _, item := range resp.Items {
			allItems = append(allItems, item)
			lastCode = item.Structure
		}
	}

	return reconcileContentsItems(allItems), nil
}

// reconcileContentsItems re-derives canonical structure codes with the
// shared CodeGenerator (rather than trusting the LLM's own arithmetic
// across chunk boundaries) while preserving the level depth the model
// reported for each entry.
func reconcileContentsItems(items []contentsLLMItem) []models.TOCItem {
	gen := NewCodeGenerator()
	out := make([]models.TOCItem, 0, len(items))

	for i, it := range items {
		level := Level(it.Structure)
		if level < 1 {
			level = 1
		}
		code := gen.Next(level)

		item := models.TOCItem{
			Structure: code,
			Title:     strings.TrimSpace(it.Title),
			Level:     level,
			ListIndex: i,
		}
		if it.Page > 0 {
			item.PhysicalIndex = it.Page
			item.HasPage = true
		}
		out = append(out, item)
	}
	return out
}

// chunkContents splits contents text into overlapping, token-budgeted
// chunks, repeating the last contentsOverlapLines lines of chunk k as
// leading context in chunk k+1.
func chunkContents(text string) []string {
	lines := strings.Split(text, "\n")
	if tokenest.Estimate(text) <= contentsChunkTokenBudget {
		return []string{text}
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	for _, line := range lines {
		lineTokens := tokenest.Estimate(line)
		if currentTokens+lineTokens > contentsChunkTokenBudget && len(current) > 0 {
			flush()
			overlapStart := len(current) - contentsOverlapLines
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = append([]string{}, current[overlapStart:]...)
			currentTokens = tokenest.Estimate(strings.Join(current, "\n"))
		}
		current = append(current, line)
		currentTokens += lineTokens
	}
	flush()

	return chunks
}
