package payload

import (
	"context"
	"testing"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/logger"
	"github.com/vectorless/pagetree/models"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Complete(context.Context, string, string, string, map[string]any) (string, error) {
	p.calls++
	return "a short summary", nil
}

func TestSummarize_AttachesSummaries(t *testing.T) {
	provider := &countingProvider{}
	client := llmclient.New(provider, "test-model", 4, logger.NewNoOpLogger())

	roots := []*models.TreeNode{
		{Title: "Intro", StartIndex: 1, EndIndex: 1, Text: "Intro body text."},
	}
	if err := Summarize(context.Background(), client, roots); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if roots[0].Summary != "a short summary" {
		t.Errorf("roots[0].Summary = %q", roots[0].Summary)
	}
}

func TestSummarize_SkipsNodesWithoutText(t *testing.T) {
	provider := &countingProvider{}
	client := llmclient.New(provider, "test-model", 4, logger.NewNoOpLogger())

	roots := []*models.TreeNode{{Title: "Empty", StartIndex: 1, EndIndex: 1}}
	if err := Summarize(context.Background(), client, roots); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("expected no LLM calls for a textless node, got %d", provider.calls)
	}
}

func TestSummarize_DedupsIdenticalNodes(t *testing.T) {
	provider := &countingProvider{}
	// maxWorkers=1 serializes the fan-out so the second identical node
	// deterministically observes the first node's cache entry.
	client := llmclient.New(provider, "test-model", 1, logger.NewNoOpLogger())

	roots := []*models.TreeNode{
		{Title: "Dup", StartIndex: 1, EndIndex: 1, Text: "same text"},
		{Title: "Dup", StartIndex: 1, EndIndex: 1, Text: "same text"},
	}
	if err := Summarize(context.Background(), client, roots); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected the second identical node to hit the cache, got %d calls", provider.calls)
	}
}
