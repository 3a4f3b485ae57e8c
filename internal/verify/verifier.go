// Package verify implements Phase 5 (Verifier, spec.md §4.6): confirming
// that each TOCItem's mapped title actually appears at or near its
// physical page, fixing what it can, and flagging what it can't.
package verify

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/pagemap"
	"github.com/vectorless/pagetree/models"
)

const (
	defaultMaxVerifyCount          = 100
	defaultVerificationConcurrency = 20
	nearTopFraction                = 1.0 / 3.0

	// largePDFVerifyCohort is the cohort size the large-PDF auto-downshift
	// narrows to, independent of max_verify_count, once total_pages
	// exceeds Options.LargePDFThreshold.
	largePDFVerifyCohort = 20
)

// EffectiveMaxVerifyCount applies the large-PDF auto-downshift: beyond
// largePDFThreshold pages, the verification cohort narrows to
// largePDFVerifyCohort regardless of what max_verify_count requested.
func EffectiveMaxVerifyCount(maxVerifyCount, totalPages, largePDFThreshold int) int {
	if maxVerifyCount <= 0 {
		maxVerifyCount = defaultMaxVerifyCount
	}
	if largePDFThreshold > 0 && totalPages > largePDFThreshold && maxVerifyCount > largePDFVerifyCohort {
		return largePDFVerifyCohort
	}
	return maxVerifyCount
}

// Result is one item's verification outcome.
type Result struct {
	ListIndex   int
	Passed      bool
	AppearStart bool
	FixedPage   int // non-zero when the smart fixer relocated the item
}

// cacheKey identifies a (normalised title, physical page) pair for
// Run's per-call verification cache.
type cacheKey struct {
	title string
	page  int
}

// SelectCohort picks up to maxVerifyCount items to verify, prioritising
// by level descending (deepest first) then by position — spec.md §4.6's
// "level-priority verification" (see also spec.md §9: coarse titles are
// usually easy, so finite budget should go to the fine-grained ones).
func SelectCohort(items []models.TOCItem, maxVerifyCount int) []int {
	if maxVerifyCount <= 0 {
		maxVerifyCount = defaultMaxVerifyCount
	}

	indices := make([]int, len(items))
	for i := range items {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return items[indices[a]].Level > items[indices[b]].Level
	})

	if len(indices) > maxVerifyCount {
		indices = indices[:maxVerifyCount]
	}
	return indices
}

// VerifyItem runs the two checks from spec.md §4.6 — existence and
// position — against the page the item was mapped to.
func VerifyItem(item models.TOCItem, page *models.Page) Result {
	res := Result{ListIndex: item.ListIndex}
	if page == nil {
		return res
	}

	normalizedTitle := pagemap.Normalize(item.Title)
	if normalizedTitle == "" {
		return res
	}

	normalizedPage := pagemap.Normalize(page.Text)
	idx := strings.Index(normalizedPage, normalizedTitle)
	if idx == -1 {
		return res
	}

	res.Passed = true
	if len(normalizedPage) > 0 {
		position := float64(idx) / float64(len(normalizedPage))
		res.AppearStart = position >= nearTopFraction
	}
	return res
}

// pageIndex builds a lookup from physical_index to Page for O(1) access
// during a fan-out over the verification cohort.
func pageIndex(pages []*models.Page) map[int]*models.Page {
	idx := make(map[int]*models.Page, len(pages))
	for _, p := range pages {
		idx[p.PhysicalIndex] = p
	}
	return idx
}

// Run verifies the selected cohort concurrently, bounded by the client's
// worker pool (spec.md §4.6's verification_concurrency semaphore is the
// same primitive the payload summaries fan out through — see
// internal/llmclient).
// Items that fail existence are handed to the smart fixer before the
// final pass/fail is recorded. It mutates items in place by ListIndex,
// per spec.md §5's ordering guarantee ("Verification writes back to
// TOCItems by list_index, never by arrival"). totalPages and
// largePDFThreshold apply the large-PDF cohort downshift (see
// EffectiveMaxVerifyCount); pass 0 for largePDFThreshold to disable it.
func Run(ctx context.Context, client *llmclient.Client, items []models.TOCItem, pages []*models.Page, maxVerifyCount, totalPages, largePDFThreshold int) ([]models.TOCItem, float64) {
	out := make([]models.TOCItem, len(items))
	copy(out, items)

	effectiveMax := EffectiveMaxVerifyCount(maxVerifyCount, totalPages, largePDFThreshold)
	cohort := SelectCohort(out, effectiveMax)
	byPage := pageIndex(pages)

	// cache memoises VerifyItem's existence/position check by normalised
	// title and physical page for the life of this Run call, so a smart
	// fixer retry that lands on a page another cohort item already
	// checked reuses that scan instead of redoing it.
	var mu sync.Mutex
	cache := make(map[cacheKey]Result)
	verifyCached := func(item models.TOCItem, page *models.Page) Result {
		if page == nil {
			return VerifyItem(item, page)
		}
		key := cacheKey{title: pagemap.Normalize(item.Title), page: page.PhysicalIndex}
		mu.Lock()
		cached, ok := cache[key]
		mu.Unlock()
		if ok {
			cached.ListIndex = item.ListIndex
			return cached
		}
		res := VerifyItem(item, page)
		mu.Lock()
		cache[key] = res
		mu.Unlock()
		return res
	}

	results, _ := llmclient.ParallelProcess(ctx, client, cohort, func(_ context.Context, _ int, itemIdx int) (Result, error) {
		item := out[itemIdx]
		page := byPage[item.PhysicalIndex]
		res := verifyCached(item, page)
		if !res.Passed {
			if fixedPage, ok := Fix(item, pages); ok {
				res = verifyCached(item, byPage[fixedPage])
				res.FixedPage = fixedPage
			}
		}
		return res, nil
	})

	for i, itemIdx := range cohort {
		if i >= len(results) {
			break
		}
		res := results[i]
		out[itemIdx].ValidationPassed = res.Passed
		out[itemIdx].AppearStart = res.AppearStart
		if res.FixedPage != 0 {
			out[itemIdx].PhysicalIndex = res.FixedPage
		}
	}

	return out, Accuracy(results)
}

// Accuracy is the ratio of items that passed verification within the
// cohort — a quality signal, not a correctness gate (spec.md §4.6).
func Accuracy(results []Result) float64 {
	if len(results) == 0 {
		return 1.0
	}
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(results))
}
