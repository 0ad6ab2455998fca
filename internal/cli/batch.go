package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimsift/claimsift/internal/pipeline"
	"github.com/claimsift/claimsift/internal/worker"
)

var (
	batchTimeout time.Duration
	batchWorkers int
	batchOutDir  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <claims-file>",
	Short: "Check multiple claims from a file concurrently",
	Long: `Batch reads claims from a file (one per line, # for comments) and
checks them concurrently. Each claim gets its own JSON report in the
output directory, plus a summary on stdout.

Example:
  claimsift batch claims.txt
  claimsift batch claims.txt --workers 8 --out-dir reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent claim checks")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "reports", "directory for per-claim JSON reports")

	// Shared pipeline flags
	batchCmd.Flags().IntVar(&maxPapers, "max-papers", 5, "papers to analyze per claim")
	batchCmd.Flags().StringVar(&tablePath, "table", "", "CHV lookup table JSON")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	claimsFile := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = batchWorkers

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	processor := worker.NewBatchProcessor(p, batchWorkers)
	results, err := processor.ProcessFile(ctx, claimsFile)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	failed := 0
	for i, res := range results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Text, res.Error)
			continue
		}

		path := filepath.Join(batchOutDir, fmt.Sprintf("claim-%03d.json", i+1))
		if err := renderer.RenderJSON(res.Report, path); err != nil {
			fmt.Fprintf(os.Stderr, "✗ write %s: %v\n", path, err)
			continue
		}
		fmt.Printf("✓ [%s %+.2f] %s\n", res.Report.Verdict, res.Report.Score.Value, truncate(res.Text, 70))
	}

	fmt.Printf("\nChecked %d claims, %d failed. Reports in %s/\n", len(results), failed, batchOutDir)
	if failed > 0 {
		return fmt.Errorf("%d of %d claims failed", failed, len(results))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
