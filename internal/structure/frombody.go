package structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/pdfsource"
	"github.com/vectorless/pagetree/internal/tokenest"
	"github.com/vectorless/pagetree/models"
)

// defaultSegmentTokenBudget is the default per-segment token budget for
// body segmentation (spec.md §4.4, "segment the body at the token budget
// (default 20,000 tokens per segment)").
const defaultSegmentTokenBudget = 20000

var bodySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"headings": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":          map[string]any{"type": "string"},
					"level":          map[string]any{"type": "integer"},
					"physical_index": map[string]any{"type": "integer"},
				},
				"required":             []string{"title", "level", "physical_index"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"headings"},
	"additionalProperties": false,
}

type bodyHeading struct {
	Title         string `json:"title"`
	Level         int    `json:"level"`
	PhysicalIndex int    `json:"physical_index"`
}

type bodyLLMResponse struct {
	Headings []bodyHeading `json:"headings"`
}

// FromBody reconstructs structure from raw body text when neither the
// embedded outline nor a printed contents page was usable (spec.md
// §4.3's content-based reconstruction, §4.4's "from body content").
// It segments the marker-wrapped text at segmentTokenBudget, asks the
// LLM to emit visible headings per segment, then reconciles adjacent
// segments by dropping boundary duplicates and renumbering.
func FromBody(ctx context.Context, client *llmclient.Client, pages []*models.Page, segmentTokenBudget int) ([]models.TOCItem, error) {
	return FromBodyWithPrefix(ctx, client, pages, segmentTokenBudget, "")
}

// FromBodyWithPrefix is FromBody seeded with a structure-code prefix, so
// recursive extraction of an oversized tree node continues the parent's
// numbering instead of restarting at "1" (spec.md §9's "Bug #2" fix —
// see structure.NewCodeGeneratorWithPrefix).
func FromBodyWithPrefix(ctx context.Context, client *llmclient.Client, pages []*models.Page, segmentTokenBudget int, codePrefix string) ([]models.TOCItem, error) {
	if segmentTokenBudget <= 0 {
		segmentTokenBudget = defaultSegmentTokenBudget
	}

	segments := segmentPages(pages, segmentTokenBudget)

	var allHeadings []bodyHeading
	for i, seg := range segments {
		wrapped := pdfsource.WrapWithMarkers(seg)

		var resp bodyLLMResponse
		prompt := fmt.Sprintf(`Below is a slice of a document's body text, with each page wrapped in <physical_index_N>...</physical_index_N> markers. List every structural heading you can see (chapter titles, section headings, subsection headings) in reading order, each tagged with its nesting level (1 = top level) and the physical_index of the page it appears on. Respond with json.

%s`, wrapped)

		if err := llmclient.CallJSON(ctx, client, "structure_extraction", tokenest.Estimate(wrapped), "", prompt, bodySchema, &resp); err != nil {
			return nil, fmt.Errorf("structure: extract from body segment %d: %w", i, err)
		}

		allHeadings = append(allHeadings, reconcileSegmentBoundary(allHeadings, resp.Headings)...)
	}

	return headingsToItems(allHeadings, codePrefix), nil
}

// segmentPages groups pages into runs whose combined token estimate
// stays under budget, never splitting a single page across segments.
func segmentPages(pages []*models.Page, budget int) [][]*models.Page {
	var segments [][]*models.Page
	var current []*models.Page
	currentTokens := 0

	for _, p := range pages {
		if currentTokens > 0 && currentTokens+p.TokenEstimate > budget {
			segments = append(segments, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, p)
		currentTokens += p.TokenEstimate
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// reconcileSegmentBoundary drops a heading repeated verbatim at a
// segment boundary (the same title on the same page as the previous
// segment's last heading) — the duplicate-at-the-boundary rule in
// spec.md §4.4.
func reconcileSegmentBoundary(existing []bodyHeading, next []bodyHeading) []bodyHeading {
	if len(existing) == 0 || len(next) == 0 {
		return next
	}
	last := existing[len(existing)-1]
	first := next[0]
	if strings.EqualFold(strings.TrimSpace(last.Title), strings.TrimSpace(first.Title)) && last.PhysicalIndex == first.PhysicalIndex {
		return next[1:]
	}
	return next
}

// headingsToItems assigns canonical structure codes via the shared
// CodeGenerator, repairing any non-monotone level jumps reported by the
// LLM (spec.md §4.4's "repair non-monotone codes by renumbering within
// the affected suffix") by clamping each level to at most one deeper
// than the previous item's level.
func headingsToItems(headings []bodyHeading, codePrefix string) []models.TOCItem {
	gen := NewCodeGeneratorWithPrefix(codePrefix)
	items := make([]models.TOCItem, 0, len(headings))

	baseDepth := 0
	if codePrefix != "" {
		baseDepth = Level(codePrefix)
	}

	prevLevel := baseDepth
	for i, h := range headings {
		level := baseDepth + h.Level
		if level < baseDepth+1 {
			level = baseDepth + 1
		}
		if level > prevLevel+1 {
			level = prevLevel + 1
		}
		prevLevel = level

		code := gen.Next(level)
		item := models.TOCItem{
			Structure: code,
			Title:     strings.TrimSpace(h.Title),
			Level:     level,
			ListIndex: i,
		}
		if h.PhysicalIndex > 0 {
			item.PhysicalIndex = h.PhysicalIndex
			item.HasPage = true
		}
		items = append(items, item)
	}
	return items
}
