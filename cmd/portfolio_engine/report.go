package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchen/portfolio-engine/internal/ingestion"
	"github.com/dchen/portfolio-engine/internal/llm"
	"github.com/dchen/portfolio-engine/internal/observability"
	"github.com/dchen/portfolio-engine/internal/types"
	"github.com/dchen/portfolio-engine/internal/validation"
)

var reportCommand = &cobra.Command{
	Use:   "report <record.json>",
	Short: "Produce a completeness report for an existing parsed record",
	Long: `Reads a previously parsed record (as written by "parse --out") and
produces a completeness report. With --doc and a Gemini key, the original
document is re-read and the detailed LLM comparison runs; otherwise the
quick rule-based check is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportCmd,
}

var reportDocument string

func init() {
	reportCommand.Flags().StringVarP(&reportDocument, "doc", "d", "", "Original resume document to compare against")

	rootCmd.AddCommand(reportCommand)
}

func runReportCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	var record types.PortfolioData
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("failed to parse record %s: %w", args[0], err)
	}
	record.EnsureSections()

	documentText := ""
	var client llm.Client
	if reportDocument != "" {
		documentText, _, err = ingestion.ExtractDocumentText(reportDocument)
		if err != nil {
			return err
		}
		if settings.GeminiAPIKey != "" {
			cfg := llm.DefaultConfig()
			if settings.GeminiModel != "" {
				cfg = cfg.WithModel(llm.TierStandard, settings.GeminiModel)
			}
			gemini, err := llm.NewGeminiClient(ctx, cfg, settings.GeminiAPIKey)
			if err != nil {
				return fmt.Errorf("failed to build gemini client: %w", err)
			}
			defer func() { _ = gemini.Close() }()
			client = gemini
		}
	}

	report := validation.NewValidator(client, logger).Report(ctx, documentText, &record)
	observability.NewPrinter(os.Stdout).PrintCompletenessReport(report)

	if !report.IsComplete {
		fmt.Printf("\nRecord is incomplete (score %d, complete at %d)\n", report.Score, validation.CompleteAt)
	}
	return nil
}
