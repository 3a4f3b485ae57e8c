package payload

import (
	"context"
	"fmt"
	"sync"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/tokenest"
	"github.com/vectorless/pagetree/models"
)

const summarizePrompt = `Summarize this section of a document into 1-3 sentences. Be concise and factual; use a neutral, detached tone. No lists, just coherent sentences.

Title: %s

%s`

// Summarize attaches a short LLM-written summary to every node in roots
// whose text is already populated, fanning out through the client's
// worker pool (spec.md §4.9: "prompt the LLM per node (bounded
// concurrency)"). Identical (title, start, end) inputs share one call
// via an in-memory cache, since the same section can recur across
// sibling branches in a noisy tree (e.g. a duplicated gap-fill node).
func Summarize(ctx context.Context, client *llmclient.Client, roots []*models.TreeNode) error {
	nodes := flattenWithText(roots)
	if len(nodes) == 0 {
		return nil
	}

	cache := &summaryCache{entries: make(map[string]string)}

	_, err := llmclient.ParallelProcess(ctx, client, nodes, func(ctx context.Context, _ int, n *models.TreeNode) (struct{}, error) {
		key := fmt.Sprintf("%s|%d|%d", n.Title, n.StartIndex, n.EndIndex)
		if cached, ok := cache.get(key); ok {
			n.Summary = cached
			return struct{}{}, nil
		}

		prompt := fmt.Sprintf(summarizePrompt, n.Title, n.Text)
		summary, err := client.Complete(ctx, "payload_summary", tokenest.Estimate(prompt), "", prompt, nil)
		if err != nil {
			return struct{}{}, err
		}
		n.Summary = summary
		cache.set(key, summary)
		return struct{}{}, nil
	})
	return err
}

func flattenWithText(roots []*models.TreeNode) []*models.TreeNode {
	var out []*models.TreeNode
	var walk func(n *models.TreeNode)
	walk = func(n *models.TreeNode) {
		if n.Text != "" {
			out = append(out, n)
		}
		for _, c := range n.Nodes {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// summaryCache deduplicates identical (title, page-range) summarisation
// calls within one document (spec.md §4.9).
type summaryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func (c *summaryCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *summaryCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}
