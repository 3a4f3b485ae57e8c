// Package pagetree is the public entry point: BuildTree wires the eight
// internal phases (spec.md §4) into the single function described by
// spec.md §6, "build_tree(pdf_source, options) → { tree, performance,
// gap_fill_info }".
package pagetree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vectorless/pagetree/internal/gapfill"
	"github.com/vectorless/pagetree/internal/llmclient"
	"github.com/vectorless/pagetree/internal/logger"
	"github.com/vectorless/pagetree/internal/pagemap"
	"github.com/vectorless/pagetree/internal/pdfsource"
	"github.com/vectorless/pagetree/internal/payload"
	"github.com/vectorless/pagetree/internal/structure"
	"github.com/vectorless/pagetree/internal/tocselect"
	"github.com/vectorless/pagetree/internal/treebuild"
	"github.com/vectorless/pagetree/internal/verify"
	"github.com/vectorless/pagetree/models"
)

const (
	defaultTOCCheckPages           = 20
	defaultMaxPagesPerNode         = 10
	defaultMaxTokensPerNode        = 20000
	defaultMaxVerifyCount          = 100
	defaultVerificationConcurrency = 20
	defaultLargePDFThreshold       = 200

	// defaultAnthropicModel is used only when the resolved provider is
	// Anthropic and the caller left Options.Model empty; the OpenAI
	// provider already defaults internally (provider_openai.go).
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
)

// Source is the pdf_source of spec.md §6: either a filesystem path or an
// in-memory byte stream.
type Source struct {
	name string
	data []byte
}

// FromPath builds a Source that reads the PDF from disk.
func FromPath(path string) Source { return Source{name: path} }

// FromBytes builds a Source over an already-read PDF, tagged with name
// for Result.SourceFile and the empty-extraction filename fallback.
func FromBytes(name string, data []byte) Source { return Source{name: name, data: data} }

func (s Source) open() (*pdfsource.Document, error) {
	if s.data != nil {
		return pdfsource.Open(s.name, s.data)
	}
	return pdfsource.OpenPath(s.name)
}

// DefaultOptions returns every documented default (spec.md §6),
// including the booleans ResolveOptions cannot infer from a bare
// Options{}: a Go bool has no "unset" state distinct from false, so a
// caller that wants if_add_node_id's documented default of true should
// start from DefaultOptions rather than a zero-value literal.
func DefaultOptions() models.Options {
	return models.Options{
		TOCCheckPages:           defaultTOCCheckPages,
		MaxPagesPerNode:         defaultMaxPagesPerNode,
		MaxTokensPerNode:        defaultMaxTokensPerNode,
		MaxVerifyCount:          defaultMaxVerifyCount,
		VerificationConcurrency: defaultVerificationConcurrency,
		LargePDFThreshold:       defaultLargePDFThreshold,
		IfAddNodeID:             true,
	}
}

// ResolveOptions fills every zero-valued numeric field of opts with its
// documented default (spec.md §6), mirroring the teacher's
// config-field -> hard-default fallback in logger.NewLogger.
func ResolveOptions(opts models.Options) models.Options {
	if opts.TOCCheckPages <= 0 {
		opts.TOCCheckPages = defaultTOCCheckPages
	}
	if opts.MaxPagesPerNode <= 0 {
		opts.MaxPagesPerNode = defaultMaxPagesPerNode
	}
	if opts.MaxTokensPerNode <= 0 {
		opts.MaxTokensPerNode = defaultMaxTokensPerNode
	}
	if opts.MaxVerifyCount <= 0 {
		opts.MaxVerifyCount = defaultMaxVerifyCount
	}
	if opts.VerificationConcurrency <= 0 {
		opts.VerificationConcurrency = defaultVerificationConcurrency
	}
	if opts.LargePDFThreshold <= 0 {
		opts.LargePDFThreshold = defaultLargePDFThreshold
	}
	return opts
}

// newClient resolves the one environment contract the core reads
// (spec.md §6): LLM_PROVIDER plus that provider's API key. Unknown
// provider names fail fast rather than silently falling back, per
// llmclient.NewProvider.
func newClient(model string, maxWorkers int, log logger.Logger) (*llmclient.Client, error) {
	providerName := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if providerName == "" {
		providerName = "openai"
	}

	var apiKey string
	switch providerName {
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	provider, err := llmclient.NewProvider(providerName, apiKey)
	if err != nil {
		return nil, fmt.Errorf("pagetree: %w", err)
	}

	if model == "" && providerName == "anthropic" {
		model = defaultAnthropicModel
	}

	return llmclient.New(provider, model, maxWorkers, log), nil
}

// emitProgress invokes progress if the caller supplied one, a no-op
// otherwise (spec.md §6's "optional callback").
func emitProgress(progress models.ProgressFunc, phase, message string, fraction float64) {
	if progress != nil {
		progress(phase, message, fraction)
	}
}

// titleFromName derives a human title from a source's name/path when no
// other structure can be found at all (spec.md §8's boundary case "PDF
// with no detectable structure anywhere").
func titleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return "Document"
	}
	return base
}

// BuildTree is the core's single entry point (spec.md §6). log may be
// nil, in which case phases log nothing.
func BuildTree(ctx context.Context, source Source, opts models.Options, progress models.ProgressFunc, log logger.Logger) (*models.Result, error) {
	start := time.Now()
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	opts = ResolveOptions(opts)

	doc, err := source.open()
	if err != nil {
		return nil, fmt.Errorf("pagetree: open pdf: %w", err)
	}

	client, err := newClient(opts.Model, opts.VerificationConcurrency, log)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		SourceFile: doc.Name(),
		TotalPages: doc.TotalPages(),
	}

	emitProgress(progress, "parse", "reading pdf pages", 0.05)
	initialPages, err := doc.ParseInitial(opts.TOCCheckPages)
	if err != nil {
		return nil, fmt.Errorf("pagetree: parse initial pages: %w", err)
	}

	items, err := extractStructure(ctx, client, doc, initialPages, opts, progress, log)
	if err != nil {
		return nil, err
	}

	if cancelled(ctx) {
		return partialResult(result, nil, client, start), nil
	}

	emitProgress(progress, "parse", "reading remaining pages", 0.35)
	allPages, err := doc.ParseAll()
	if err != nil {
		return nil, fmt.Errorf("pagetree: parse all pages: %w", err)
	}

	if len(items) == 0 {
		log.WithPhase("structure_extraction").Info("no structure found anywhere, falling back to a single whole-document node")
		root := &models.TreeNode{
			Title:      titleFromName(doc.Name()),
			StartIndex: 1,
			EndIndex:   result.TotalPages,
			NodeID:     "0000",
		}
		roots := []*models.TreeNode{root}
		finishPayload(roots, allPages, opts)
		return finalizeResult(result, roots, client, start), nil
	}

	emitProgress(progress, "page_map", "mapping titles to physical pages", 0.45)
	items = pagemap.MapPages(items, allPages)

	if cancelled(ctx) {
		return partialResult(result, nil, client, start), nil
	}

	verifyLog := log.WithPhase("verify")
	if result.TotalPages > opts.LargePDFThreshold {
		verifyLog.Info("large_pdf_threshold %d exceeded (%d pages), narrowing verification cohort and disabling recursive expansion", opts.LargePDFThreshold, result.TotalPages)
	}

	accuracy := 1.0
	skipVerification := result.TotalPages > opts.LargePDFThreshold && !opts.ForceVerification
	if skipVerification {
		verifyLog.Info("skipping verification, %d pages exceeds large_pdf_threshold %d", result.TotalPages, opts.LargePDFThreshold)
	} else {
		emitProgress(progress, "verify", "verifying a sample of mapped titles", 0.55)
		items, accuracy = verify.Run(ctx, client, items, allPages, opts.MaxVerifyCount, result.TotalPages, opts.LargePDFThreshold)
	}
	result.VerificationAccuracy = accuracy

	if cancelled(ctx) {
		return partialResult(result, nil, client, start), nil
	}

	emitProgress(progress, "tree_build", "assembling the nested tree", 0.65)
	roots, codes := treebuild.BuildWithCodes(items, result.TotalPages)

	if !opts.NoRecursive {
		emitProgress(progress, "tree_build", "expanding oversized leaves", 0.72)
		if err := treebuild.ExpandOversized(ctx, client, allPages, roots, codes, opts.MaxPagesPerNode, opts.MaxTokensPerNode, opts.MaxVerifyCount, result.TotalPages, opts.LargePDFThreshold); err != nil {
			return nil, fmt.Errorf("pagetree: expand oversized nodes: %w", err)
		}
	}

	if cancelled(ctx) {
		treebuild.ReassignNodeIDs(roots)
		return partialResult(result, roots, client, start), nil
	}

	_, originalCoverageText := gapfill.Coverage(roots, result.TotalPages)
	gapsBefore := gapfill.FindGaps(roots, result.TotalPages)

	emitProgress(progress, "gap_fill", "filling uncovered pages", 0.8)
	roots, _ = gapfill.Fill(ctx, client, roots, allPages, result.TotalPages)
	treebuild.ReassignNodeIDs(roots)

	coveragePct, _ := gapfill.Coverage(roots, result.TotalPages)
	gapsFilled := make([][2]int, 0, len(gapsBefore))
	for _, g := range gapsBefore {
		gapsFilled = append(gapsFilled, [2]int{g.Start, g.End})
	}
	result.GapFillInfo = models.GapFillInfo{
		GapsFound:          len(gapsBefore),
		GapsFilled:         gapsFilled,
		OriginalCoverage:   originalCoverageText,
		CoveragePercentage: coveragePct,
	}

	emitProgress(progress, "payload", "attaching text, node ids, and summaries", 0.9)
	finishPayload(roots, allPages, opts)

	if opts.IfAddNodeSummary {
		if err := payload.Summarize(ctx, client, roots); err != nil {
			log.WithPhase("payload").Warn("summarization error (continuing with unsummarized nodes): %v", err)
		}
	}

	result.Structure = roots
	result.Statistics = treebuild.Statistics(roots)
	result.Performance = models.Performance{
		Phases:  client.Metrics().Snapshot(),
		TotalMS: time.Since(start).Milliseconds(),
	}

	emitProgress(progress, "done", "build complete", 1.0)
	return result, nil
}

// extractStructure runs Phases 3-4's source selection: an accepted
// embedded outline skips Phases 3 and 4 entirely; an accepted printed
// contents page skips Phase 4's body-reconstruction path; otherwise the
// full-body reconstruction path runs over every page (spec.md §4.3-4.4).
func extractStructure(ctx context.Context, client *llmclient.Client, doc *pdfsource.Document, initialPages []*models.Page, opts models.Options, progress models.ProgressFunc, log logger.Logger) ([]models.TOCItem, error) {
	phaseLog := log.WithPhase("toc_select")

	emitProgress(progress, "toc_select", "checking the embedded outline", 0.1)
	if entries, ok := doc.Outline(); ok && tocselect.AcceptOutline(entries) {
		phaseLog.Info("using embedded outline (%d entries)", len(entries))
		return structure.FromOutline(entries), nil
	}

	emitProgress(progress, "toc_select", "checking for a printed contents page", 0.18)
	if region, ok := tocselect.FindContentsPage(initialPages, opts.TOCCheckPages); ok {
		phaseLog.Info("using printed contents page (%d pages)", len(region.Pages))
		emitProgress(progress, "structure_extraction", "extracting from the contents page", 0.25)
		items, err := structure.FromContents(ctx, client, region.Text)
		if err != nil {
			return nil, fmt.Errorf("pagetree: extract from contents: %w", err)
		}
		return items, nil
	}

	phaseLog.Info("no outline or contents page found, reconstructing from body text")
	allPages, err := doc.ParseAll()
	if err != nil {
		return nil, fmt.Errorf("pagetree: parse all pages: %w", err)
	}
	emitProgress(progress, "structure_extraction", "reconstructing structure from body text", 0.3)
	items, err := structure.FromBody(ctx, client, allPages, opts.MaxTokensPerNode)
	if err != nil {
		return nil, fmt.Errorf("pagetree: extract from body: %w", err)
	}
	return items, nil
}

// finishPayload applies Phase 8's three boolean switches (spec.md §4.9).
// node_id is already populated by treebuild, but IfAddNodeID=false means
// it should not appear in the output, so it is cleared rather than left
// for Decorate to assign.
func finishPayload(roots []*models.TreeNode, pages []*models.Page, opts models.Options) {
	if !opts.IfAddNodeID {
		clearNodeIDs(roots)
	}
	payload.Decorate(roots, pages, false, opts.IfAddNodeText)
}

func clearNodeIDs(roots []*models.TreeNode) {
	for _, r := range roots {
		r.NodeID = ""
		clearNodeIDs(r.Nodes)
	}
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// partialResult is returned when ctx is cancelled between phases
// (spec.md §7's "Cancellation" policy): whatever structure was already
// built is returned with performance.partial = true rather than an
// error.
func partialResult(result *models.Result, roots []*models.TreeNode, client *llmclient.Client, start time.Time) *models.Result {
	result.Structure = roots
	result.Statistics = treebuild.Statistics(roots)
	result.Performance = models.Performance{
		Phases:  client.Metrics().Snapshot(),
		TotalMS: time.Since(start).Milliseconds(),
		Partial: true,
	}
	return result
}

func finalizeResult(result *models.Result, roots []*models.TreeNode, client *llmclient.Client, start time.Time) *models.Result {
	result.Structure = roots
	result.Statistics = treebuild.Statistics(roots)
	result.VerificationAccuracy = 1.0
	result.GapFillInfo = models.GapFillInfo{
		OriginalCoverage:   fmt.Sprintf("%d/%d", result.TotalPages, result.TotalPages),
		CoveragePercentage: 1.0,
	}
	result.Performance = models.Performance{
		Phases:  client.Metrics().Snapshot(),
		TotalMS: time.Since(start).Milliseconds(),
	}
	return result
}
