package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coalesce/internal/pipeline"
	"github.com/ppiankov/coalesce/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file|dir>",
	Short: "Reconcile multiple documents in parallel",
	Long: `Batch processes many documents concurrently:
- Read document paths from a list file (one per line) or a directory
- Process documents in parallel with a configurable worker count
- Each document gets its own segment fan-out and reconciled record
- One document failing never affects the rest of the batch

Example:
  coalesce batch docs.txt
  coalesce batch ./filings --concurrency 8 --output-dir ./records
  coalesce batch docs.txt --provider ollama --model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent documents")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./coalesce-records", "output directory for records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared with the run command
	batchCmd.Flags().StringVar(&recordType, "record-type", "document", "record type to extract")
	batchCmd.Flags().StringVar(&schemaFile, "schema", "", "YAML file with additional record schemas")
	batchCmd.Flags().IntVar(&maxChars, "max-chars", 0, "maximum segment size in characters (0 = default)")
	batchCmd.Flags().IntVar(&overlapChars, "overlap", 0, "overlap between consecutive segments (0 = default)")
	batchCmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 0, "concurrent extractor calls per document (0 = default)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable extraction cache")
	batchCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
	batchCmd.Flags().Float64Var(&rps, "rps", 0, "requests per second against the backend (0 = default)")
	batchCmd.Flags().IntVar(&burst, "burst", 0, "rate limit burst size (0 = default)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildRunConfig()
	cfg.Concurrency.Workers = concurrency

	if err := resolveAPIKey(&cfg); err != nil {
		return err
	}

	registry, err := buildRegistry(schemaFile)
	if err != nil {
		return err
	}
	rules, ok := registry.Rules(recordType)
	if !ok {
		return fmt.Errorf("unknown record type %q (see 'coalesce schema')", recordType)
	}

	p, err := buildPipeline(&cfg, recordType, rules)
	if err != nil {
		return err
	}

	paths, err := collectPaths(input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents found in %s", input)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing %d document(s) with %d worker(s)...\n", len(paths), concurrency)

	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessPaths(ctx, paths)

	renderer := pipeline.NewRenderer()
	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Err)
			continue
		}
		succeeded++
		outPath := filepath.Join(outputDir, recordFileName(r.Path))
		if err := renderer.RenderJSON(r.Result, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: write %s: %v\n", outPath, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d/%d segments) -> %s\n",
			r.Path, r.Result.SegmentsSucceeded, r.Result.SegmentsTotal, outPath)
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d succeeded, %d failed\n", succeeded, failed)
	if succeeded == 0 {
		return fmt.Errorf("all %d document(s) failed", failed)
	}
	return nil
}

// collectPaths resolves the batch input: a directory of documents or a
// list file of paths.
func collectPaths(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return worker.ReadPathsFromDir(input)
	}
	return worker.ReadPathsFromFile(input)
}

// recordFileName derives the output file name for one input document
func recordFileName(docPath string) string {
	base := filepath.Base(docPath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".record.json"
}
