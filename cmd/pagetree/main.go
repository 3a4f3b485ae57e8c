package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vectorless/pagetree/internal/logger"
	"github.com/vectorless/pagetree/models"
	"github.com/vectorless/pagetree/pagetree"
)

func main() {
	var (
		model             = flag.String("model", "", "LLM model name (defaults to the provider's own default)")
		noRecursive       = flag.Bool("no-recursive", false, "disable Phase 6 recursion into oversized nodes")
		forceVerification = flag.Bool("force-verification", false, "verify even on PDFs above large-pdf-threshold")
		addText           = flag.Bool("add-text", false, "attach the source text to every node")
		addSummary        = flag.Bool("add-summary", false, "attach an LLM summary to every node")
		maxVerifyCount    = flag.Int("max-verify-count", 0, "cap on Phase 5 verification calls (0 = default)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <pdf-path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	log, err := logger.NewLogger(logger.LogConfig{})
	if err != nil {
		// Fall back to stderr if logger initialization fails.
		fmt.Fprintf(os.Stderr, "pagetree: logger init failed, continuing without file logging: %v\n", err)
		if log, err = logger.NewLogger(logger.LogConfig{Output: "stderr"}); err != nil {
			log = logger.NewNoOpLogger()
		}
	}

	log.Info("building tree for %s", pdfPath)

	opts := pagetree.DefaultOptions()
	opts.Model = *model
	opts.NoRecursive = *noRecursive
	opts.ForceVerification = *forceVerification
	opts.IfAddNodeText = *addText
	opts.IfAddNodeSummary = *addSummary
	if *maxVerifyCount > 0 {
		opts.MaxVerifyCount = *maxVerifyCount
	}

	progress := func(phase, message string, fraction float64) {
		log.WithPhase(phase).Debug("%.0f%%: %s", fraction*100, message)
	}

	result, err := pagetree.BuildTree(context.Background(), pagetree.FromPath(pdfPath), opts, progress, log)
	if err != nil {
		log.Fatal("build failed: %v", err)
	}

	printResult(result)
}

func printResult(result *models.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "pagetree: encoding result: %v\n", err)
		os.Exit(1)
	}
}
