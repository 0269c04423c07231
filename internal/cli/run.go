package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coalesce/internal/model"
	"github.com/ppiankov/coalesce/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	recordType     string
	schemaFile     string
	runTimeout     time.Duration
	maxChars       int
	overlapChars   int
	singlePass     int
	maxConcurrency int
	noCache        bool
	llmProvider    string
	llmModel       string
	rps            float64
	burst          int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Reconcile a single document into one structured record",
	Long: `Run processes a single document:
- Split the text into overlapping, boundary-respecting segments
- Extract a partial record per segment through the configured LLM backend
- Reconcile partial records field-by-field into one result

Example:
  coalesce run report.txt
  coalesce run contract.html --record-type document --json out.json --md out.md
  coalesce run filing.txt --provider ollama --model llama3.1 --max-chars 8000`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Output flags
	runCmd.Flags().StringVar(&outJSON, "json", "record.json", "output JSON path")
	runCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Schema flags
	runCmd.Flags().StringVar(&recordType, "record-type", "document", "record type to extract")
	runCmd.Flags().StringVar(&schemaFile, "schema", "", "YAML file with additional record schemas")

	// Segmenter flags
	runCmd.Flags().IntVar(&maxChars, "max-chars", 0, "maximum segment size in characters (0 = default)")
	runCmd.Flags().IntVar(&overlapChars, "overlap", 0, "overlap between consecutive segments (0 = default)")
	runCmd.Flags().IntVar(&singlePass, "single-pass", 0, "single-pass threshold in characters (0 = default)")

	// Concurrency and backend flags
	runCmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 0, "concurrent extractor calls (0 = default)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall processing timeout")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable extraction cache")
	runCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
	runCmd.Flags().Float64Var(&rps, "rps", 0, "requests per second against the backend (0 = default)")
	runCmd.Flags().IntVar(&burst, "burst", 0, "rate limit burst size (0 = default)")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := buildRunConfig()

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Record type: %s\n", recordType)
		fmt.Fprintf(os.Stderr, "Backend: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

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

	result, err := p.Run(ctx, path)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}
	renderer.RenderSummary(result)

	return nil
}

// buildRunConfig merges defaults with command-line flags
func buildRunConfig() model.Config {
	cfg := model.DefaultConfig()

	if maxChars > 0 {
		cfg.Segmenter.MaxChars = maxChars
	}
	if overlapChars > 0 {
		cfg.Segmenter.OverlapChars = overlapChars
	}
	if singlePass > 0 {
		cfg.Segmenter.SinglePassThreshold = singlePass
	}
	if maxConcurrency > 0 {
		cfg.Concurrency.MaxInFlight = maxConcurrency
	}

	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	cfg.Cache.Enabled = !noCache
	if rps > 0 {
		cfg.RateLimiting.RequestsPerSecond = rps
	}
	if burst > 0 {
		cfg.RateLimiting.BurstSize = burst
	}
	cfg.Output.Verbose = verbose

	return cfg
}
