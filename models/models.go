// Package models holds the data types shared across every phase of the
// TOC extraction pipeline: the parsed page, the flat structural item,
// the nested output tree, and the options/result shapes of the public
// entry point.
package models

// Page is a single 1-based page of the source PDF. Text is populated
// lazily by internal/pdfsource and is never mutated once set.
type Page struct {
	PhysicalIndex   int    `json:"physical_index"`
	Text            string `json:"text"`
	TokenEstimate   int    `json:"token_estimate"`
	HasTableMarkers bool   `json:"has_table_markers,omitempty"`
}

// OutlineEntry is one bookmark from the PDF's embedded /Outlines tree,
// flattened to (level, title, page) with no nesting of its own — nesting
// is reconstructed later by the hierarchical code synthesiser.
type OutlineEntry struct {
	Level int
	Title string
	Page  int
}

// TOCItem is one entry of the flat, ordered sequence produced by
// Structure Extraction and mutated in place by Page Mapping and
// Verification.
type TOCItem struct {
	Structure        string `json:"structure"`
	Title            string `json:"title"`
	Level            int    `json:"level"`
	PhysicalIndex    int    `json:"physical_index,omitempty"`
	AppearStart      bool   `json:"appear_start,omitempty"`
	ListIndex        int    `json:"list_index"`
	ValidationPassed bool   `json:"validation_passed,omitempty"`
	// HasPage distinguishes "physical_index is genuinely unknown" from
	// "physical_index is 0", since 0 is not a valid 1-based page.
	HasPage bool `json:"-"`
}

// TreeNode is the externally observable unit of the output tree
// (spec.md §3, §6).
type TreeNode struct {
	Title      string      `json:"title"`
	StartIndex int         `json:"start_index"`
	EndIndex   int         `json:"end_index"`
	NodeID     string      `json:"node_id,omitempty"`
	Nodes      []*TreeNode `json:"nodes"`
	Text       string      `json:"text,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	IsGapFill  bool        `json:"is_gap_fill,omitempty"`
}

// Options mirrors the table in spec.md §6. Zero values are resolved to
// their documented defaults by pagetree.ResolveOptions.
type Options struct {
	Model                   string
	TOCCheckPages           int
	MaxPagesPerNode         int
	MaxTokensPerNode        int
	MaxVerifyCount          int
	VerificationConcurrency int
	NoRecursive             bool
	ForceVerification       bool
	LargePDFThreshold       int
	IfAddNodeID             bool
	IfAddNodeText           bool
	IfAddNodeSummary        bool
}

// ProgressFunc is the optional phase-boundary callback (spec.md §6).
// Ordering guarantee: monotone phase names, no ordering beyond that.
type ProgressFunc func(phaseName, message string, fraction float64)

// PhaseMetric is one phase's timing/call-count entry in the performance
// report.
type PhaseMetric struct {
	Phase        string  `json:"phase"`
	DurationMS   int64   `json:"duration_ms"`
	LLMCallCount int     `json:"llm_call_count"`
	TokensUsed   int     `json:"tokens_used"`
}

// Performance is the per-run metrics report (spec.md §2, §5).
type Performance struct {
	Phases       []PhaseMetric `json:"phases"`
	TotalMS      int64         `json:"total_ms"`
	Partial      bool          `json:"partial"`
}

// Statistics summarises the shape of the returned tree.
type Statistics struct {
	RootNodes int `json:"root_nodes"`
	TotalNodes int `json:"total_nodes"`
	MaxDepth  int `json:"max_depth"`
}

// GapFillInfo reports what Gap Filling found and did (spec.md §6).
type GapFillInfo struct {
	GapsFound          int     `json:"gaps_found"`
	GapsFilled         [][2]int `json:"gaps_filled"`
	OriginalCoverage   string  `json:"original_coverage"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// Result is the shape returned by the public entry point (spec.md §6).
type Result struct {
	SourceFile           string       `json:"source_file"`
	TotalPages           int          `json:"total_pages"`
	Structure            []*TreeNode  `json:"structure"`
	Statistics           Statistics   `json:"statistics"`
	VerificationAccuracy float64      `json:"verification_accuracy"`
	GapFillInfo          GapFillInfo  `json:"gap_fill_info"`
	Performance          Performance  `json:"performance"`
}
