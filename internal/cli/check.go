package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimsift/claimsift/internal/model"
	"github.com/claimsift/claimsift/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	maxPapers   int
	tablePath   string
	pubTypes    []string
	allSubjects bool
	noCache     bool
	noFooter    bool
	noRank      bool
	llmProvider string
	llmModel    string
	ncbiEmail   string
	ncbiAPIKey  string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim text>",
	Short: "Check a single claim against the biomedical literature",
	Long: `Check runs one piece of text through the full pipeline:
- Extract the structured claim (intervention and outcome)
- Normalize consumer phrasing to standardized medical concepts
- Search PubMed with a deterministic boolean query
- Analyze each retrieved paper for relevance, quality and direction
- Aggregate the per-paper judgments into a bounded truth score

Example:
  claimsift check "chia seeds are great for heart health"
  claimsift check "turmeric reduces inflammation" --json report.json --md report.md
  claimsift check "drinking relieves stress" --llm-provider anthropic --max-papers 10`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	checkCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall check timeout")
	checkCmd.Flags().IntVar(&maxPapers, "max-papers", 5, "papers to analyze per claim")
	checkCmd.Flags().StringVar(&tablePath, "table", "", "CHV lookup table JSON (see 'claimsift chv build')")
	checkCmd.Flags().StringSliceVar(&pubTypes, "pub-type", nil, "publication type filter (repeatable; default: clinical trials and RCTs)")
	checkCmd.Flags().BoolVar(&allSubjects, "all-subjects", false, "include non-human studies")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")
	checkCmd.Flags().BoolVar(&noRank, "no-rank", false, "disable embedding-based paper ranking")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")

	// NCBI flags
	checkCmd.Flags().StringVar(&ncbiEmail, "email", "", "contact email sent to NCBI E-utilities")
	checkCmd.Flags().StringVar(&ncbiAPIKey, "ncbi-api-key", "", "NCBI API key (raises the rate limit)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", text)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	report, err := p.CheckClaim(ctx, text)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Query: %s\n", report.Query)
		fmt.Fprintf(os.Stderr, "✓ Analyzed %d papers (%d excluded)\n", len(report.Documents), report.Excluded)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig merges flags and environment over the defaults.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.MaxPapers = maxPapers
	cfg.Normalize.TablePath = tablePath
	cfg.Query.PublicationTypes = pubTypes
	cfg.Query.HumanOnly = !allSubjects
	cfg.Cache.Enabled = !noCache
	cfg.Rank.Enabled = !noRank
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	case "":
		// No oracle: keyword fallback queries only.
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", llmProvider)
	}

	// The embedding ranker always uses OpenAI; without a key it stays off.
	cfg.Rank.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.Rank.APIKey == "" {
		cfg.Rank.Enabled = false
	}

	if ncbiEmail != "" {
		cfg.PubMed.Email = ncbiEmail
	} else if env := os.Getenv("NCBI_EMAIL"); env != "" {
		cfg.PubMed.Email = env
	}
	if ncbiAPIKey != "" {
		cfg.PubMed.APIKey = ncbiAPIKey
	} else if env := os.Getenv("NCBI_API_KEY"); env != "" {
		cfg.PubMed.APIKey = env
	}
	if cfg.PubMed.APIKey != "" {
		// NCBI allows 10 rps with a key.
		cfg.PubMed.RequestsPerSecond = 10
		cfg.PubMed.Burst = 10
	}

	return cfg, nil
}
