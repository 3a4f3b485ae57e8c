package pdfsource

import "github.com/vectorless/pagetree/internal/tokenest"

// estimateTokens delegates to internal/tokenest, the single heuristic
// shared across every phase that budgets text against a token limit.
func estimateTokens(text string) int {
	return tokenest.Estimate(text)
}
