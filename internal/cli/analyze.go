package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/caseline/internal/model"
	"github.com/ppiankov/caseline/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON      string
	outMD        string
	family       string
	exposureDate string
	onsetDate    string
	receivedDate string
	timeout      time.Duration
	maxBytes     int64
	lexiconPath  string
	noCache      bool
	noFooter     bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single narrative and extract its timeline",
	Long: `Analyze reads one adverse event narrative (plain text or HTML,
"-" for stdin) and extracts:
- Clinical features: symptoms, diagnoses, drugs, vaccines, histories
- Temporal expressions, resolved to calendar dates where possible
- Feature-to-date associations with confidence grades
- Estimated exposure and onset dates for the whole document

Example:
  caseline analyze report.txt
  caseline analyze report.txt --family faers --json out.json --md out.md
  caseline analyze report.txt --exposure-date 2020-01-01 --llm`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "analysis.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Analysis flags
	analyzeCmd.Flags().StringVar(&family, "family", "vaers", "report family (vaers, faers, generic)")
	analyzeCmd.Flags().StringVar(&exposureDate, "exposure-date", "", "known exposure date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&onsetDate, "onset-date", "", "known onset date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&receivedDate, "received-date", "", "report received date (YYYY-MM-DD)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-document analysis timeout")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max narrative bytes to read")
	analyzeCmd.Flags().StringVar(&lexiconPath, "lexicon", "", "custom lexicon YAML (default: built-in)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM case summary generation")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Family: %s\n", family)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	result, err := analyzeOne(ctx, p, path)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d features\n", len(result.Features))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d temporal expressions\n", len(result.Timexes))
		if result.ExposureDate != "" {
			fmt.Fprintf(os.Stderr, "✓ Exposure date: %s\n", result.ExposureDate)
		}
		if result.LLM != nil && result.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", result.LLM.Provider, result.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderResult(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// analyzeOne loads the narrative and runs the pipeline with the
// caller-supplied dates attached.
func analyzeOne(ctx context.Context, p *pipeline.Pipeline, path string) (*model.DocumentFeature, error) {
	if exposureDate == "" && onsetDate == "" && receivedDate == "" {
		return p.AnalyzeFile(ctx, path)
	}

	loaded, err := pipeline.NewLoader(maxBytes).Load(path)
	if err != nil {
		return nil, err
	}
	req := model.Request{
		Text:         loaded.Text,
		ExposureDate: exposureDate,
		OnsetDate:    onsetDate,
		ReceivedDate: receivedDate,
		Family:       model.ReportFamily(family),
	}
	return p.Analyze(ctx, req, loaded.Subject)
}

// buildConfig assembles the effective configuration from flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Analysis.Family = family
	cfg.Analysis.Timeout = timeout
	cfg.Analysis.MaxBodyBytes = maxBytes
	cfg.Lexicon.Path = lexiconPath
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		if llmProvider == "openai" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		}
	}
	return cfg, nil
}
