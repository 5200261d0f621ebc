// Package main provides the entry point for the portfolio engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dchen/portfolio-engine/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio_engine",
	Short: "Adaptive multi-provider resume parser",
	Long:  "Portfolio Engine extracts structured portfolio data from resumes by rotating across multiple LLM providers, scoring every candidate, and cross-validating the winner.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger at the configured level
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// loadSettings reads configuration from the environment
func loadSettings() (*config.Settings, *slog.Logger, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(settings.LogLevel)
	slog.SetDefault(logger)
	return settings, logger, nil
}
