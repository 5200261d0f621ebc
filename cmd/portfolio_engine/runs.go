package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dchen/portfolio-engine/internal/db"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recent parse runs",
	Long:  "Lists recent parse runs from the database. Requires DATABASE_URL.",
	RunE:  runRunsCmd,
}

var showCommand = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a parse run's attempt trail and artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCmd,
}

var runsLimit int

func init() {
	runsCommand.Flags().IntVarP(&runsLimit, "limit", "l", 20, "Maximum runs to list")

	rootCmd.AddCommand(runsCommand)
	rootCmd.AddCommand(showCommand)
}

func connectStore(ctx context.Context) (*db.DB, error) {
	settings, _, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if settings.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return db.Connect(ctx, settings.DatabaseURL)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %-9s  %s", run.ID, run.Status, run.CreatedAt.Format(time.RFC3339))
		if run.Provider != "" {
			line += fmt.Sprintf("  provider=%s score=%.1f", run.Provider, run.Score)
		}
		if run.BelowThreshold {
			line += "  (below threshold)"
		}
		fmt.Println(line)
	}
	return nil
}

func runShowCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Source:   %s\n", run.SourcePath)
	fmt.Printf("Status:   %s\n", run.Status)
	if run.Provider != "" {
		fmt.Printf("Provider: %s (score %.1f)\n", run.Provider, run.Score)
	}

	attempts, err := store.GetAttempts(ctx, runID)
	if err != nil {
		return err
	}
	if len(attempts) > 0 {
		fmt.Println("\nAttempts:")
		for i, a := range attempts {
			fmt.Printf("  %d. %-10s %-12s", i+1, a.Provider, a.Outcome)
			if a.Score > 0 {
				fmt.Printf(" score=%.1f", a.Score)
			}
			fmt.Println()
		}
	}

	record, err := store.GetArtifact(ctx, runID, db.StepRecord)
	if err != nil {
		return err
	}
	if record != nil {
		fmt.Printf("\nRecord:\n%s\n", record)
	}
	return nil
}
