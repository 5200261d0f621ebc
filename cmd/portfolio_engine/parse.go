package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchen/portfolio-engine/internal/observability"
	"github.com/dchen/portfolio-engine/internal/pipeline"
)

var parseCommand = &cobra.Command{
	Use:   "parse [resume files...]",
	Short: "Parse one or more resume documents into structured portfolio data",
	Long: `Extracts structured portfolio data from resume documents (PDF, HTML,
plain text, markdown). Providers are rotated until a candidate clears the
quality threshold; the winner is cross-validated against a second provider
and a completeness report is attached.

With multiple files, documents are parsed concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseCmd,
}

var (
	parseOutput      string
	parseVerbose     bool
	parseParallelism int
)

func init() {
	parseCommand.Flags().StringVarP(&parseOutput, "out", "o", "", "Write the parsed record JSON to a file (single document only)")
	parseCommand.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print attempt trail, score breakdown, and suggestions")
	parseCommand.Flags().IntVar(&parseParallelism, "parallel", 2, "Concurrent documents when parsing a batch")

	rootCmd.AddCommand(parseCommand)
}

func runParseCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	engine, err := pipeline.NewEngine(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	if len(args) == 1 {
		return parseOne(ctx, engine, args[0])
	}
	return parseMany(ctx, engine, args)
}

func parseOne(ctx context.Context, engine *pipeline.Engine, path string) error {
	printer := observability.NewPrinter(os.Stdout)

	opts := pipeline.RunOptions{DocumentPath: path}
	if parseVerbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			fmt.Printf("[%s] %s\n", e.Step, e.Message)
		}
	}

	result, err := engine.Run(ctx, opts)
	if err != nil {
		return err
	}

	if parseVerbose {
		printer.PrintAttemptTrail(result.Attempts)
		printer.PrintScoreBreakdown(result.Provider, result.Breakdown)
		printer.PrintSuggestions(result.Suggestions)
		printer.PrintCompletenessReport(result.Report)
	}
	printer.PrintRecordSummary(result.Record)

	if result.BelowThreshold {
		fmt.Printf("\nWarning: best candidate scored %.1f, below the %.1f threshold\n",
			result.Score, engine.Orchestrator().Threshold())
	}

	recordJSON, err := json.MarshalIndent(result.Record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if parseOutput != "" {
		if err := os.WriteFile(parseOutput, recordJSON, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("\nWrote record to %s\n", parseOutput)
		return nil
	}

	fmt.Printf("\n%s\n", recordJSON)
	return nil
}

func parseMany(ctx context.Context, engine *pipeline.Engine, paths []string) error {
	results := engine.RunBatch(ctx, paths, parseParallelism)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("OK    %s  provider=%s score=%.1f completeness=%d\n",
			r.Path, r.Result.Provider, r.Result.Score, r.Result.Report.Score)
	}

	fmt.Printf("\n%d parsed, %d failed\n", len(results)-failed, failed)
	if failed == len(results) {
		return fmt.Errorf("all %d documents failed", failed)
	}
	return nil
}
