// Package pipeline wires ingestion, orchestration, cross-validation, and
// completeness reporting into the end-to-end resume parsing flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dchen/portfolio-engine/internal/config"
	"github.com/dchen/portfolio-engine/internal/crossval"
	"github.com/dchen/portfolio-engine/internal/db"
	"github.com/dchen/portfolio-engine/internal/ingestion"
	"github.com/dchen/portfolio-engine/internal/llm"
	"github.com/dchen/portfolio-engine/internal/orchestrator"
	"github.com/dchen/portfolio-engine/internal/providers"
	"github.com/dchen/portfolio-engine/internal/ratelimit"
	"github.com/dchen/portfolio-engine/internal/scoring"
	"github.com/dchen/portfolio-engine/internal/types"
	"github.com/dchen/portfolio-engine/internal/validation"
)

// ProgressEvent represents a progress update during a parse run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called as the pipeline advances
type ProgressCallback func(event ProgressEvent)

// RunOptions holds per-run inputs
type RunOptions struct {
	// DocumentPath is read and ingested when DocumentText is empty
	DocumentPath string
	// DocumentText bypasses ingestion when already available
	DocumentText string
	OnProgress   ProgressCallback
}

// RunResult is everything a parse run produces
type RunResult struct {
	Record         *types.PortfolioData
	Score          float64
	Breakdown      scoring.Breakdown
	Provider       string
	BelowThreshold bool
	Attempts       []types.ParseAttempt
	Suggestions    []types.Suggestion
	Report         *types.CompletenessReport
	Metadata       *ingestion.Metadata
	RunID          uuid.UUID
}

// Engine holds the long-lived pieces of the pipeline. Build one at
// startup and reuse it: the rotation cursor and rate-limit state live
// here and must be shared across runs.
type Engine struct {
	settings     *config.Settings
	orchestrator *orchestrator.Orchestrator
	crossval     *crossval.Validator
	completeness *validation.Validator
	database     *db.DB
	geminiClient llm.Client
	logger       *slog.Logger
}

// NewEngine builds the full pipeline from settings. At least one
// provider must have credentials.
func NewEngine(ctx context.Context, settings *config.Settings, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		extractors   []providers.Extractor
		geminiClient llm.Client
	)
	for _, name := range settings.EnabledProviders() {
		switch name {
		case providers.GeminiName:
			cfg := llm.DefaultConfig()
			if settings.GeminiModel != "" {
				cfg = cfg.WithModel(llm.TierStandard, settings.GeminiModel)
			}
			extractor, err := providers.NewGeminiExtractor(ctx, cfg, settings.GeminiAPIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to build gemini provider: %w", err)
			}
			extractors = append(extractors, extractor)
			client, err := llm.NewGeminiClient(ctx, cfg, settings.GeminiAPIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to build gemini client: %w", err)
			}
			geminiClient = client
		case providers.GroqName:
			extractors = append(extractors, providers.NewGroqExtractor(settings.GroqAPIKey, settings.GroqModel, logger))
		case providers.MistralName:
			extractors = append(extractors, providers.NewMistralExtractor(settings.MistralAPIKey, settings.MistralModel, logger))
		case providers.CohereName:
			extractors = append(extractors, providers.NewCohereExtractor(settings.CohereAPIKey, settings.CohereModel, logger))
		}
	}
	if len(extractors) == 0 {
		return nil, fmt.Errorf("no providers configured: set at least one provider API key")
	}

	tracker := ratelimit.NewTracker(
		ratelimit.WithCooldown(settings.RateLimitCooldown),
		ratelimit.WithLogger(logger),
	)

	engine := &Engine{
		settings: settings,
		orchestrator: orchestrator.New(extractors, tracker,
			orchestrator.WithThreshold(settings.MinQualityScore),
			orchestrator.WithMode(orchestrator.Mode(settings.ParserMode)),
			orchestrator.WithRotationReset(settings.RotationReset == config.RotationPerRun),
			orchestrator.WithLogger(logger),
		),
		crossval: crossval.New(tracker,
			crossval.WithLengthMargin(settings.CrossValidationMargin),
			crossval.WithLogger(logger),
		),
		completeness: validation.NewValidator(geminiClient, logger),
		geminiClient: geminiClient,
		logger:       logger,
	}

	if settings.DatabaseURL != "" {
		database, err := db.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			logger.Warn("pipeline.db_unavailable", "error", err)
		} else if err := database.EnsureSchema(ctx); err != nil {
			logger.Warn("pipeline.db_schema_failed", "error", err)
			database.Close()
		} else {
			engine.database = database
		}
	}

	return engine, nil
}

// Close releases provider clients and the database pool
func (e *Engine) Close() {
	if e.geminiClient != nil {
		_ = e.geminiClient.Close()
	}
	if e.database != nil {
		e.database.Close()
	}
}

// Orchestrator exposes the underlying orchestrator, mainly for status
// commands.
func (e *Engine) Orchestrator() *orchestrator.Orchestrator {
	return e.orchestrator
}

// Database returns the run store, or nil when persistence is disabled
func (e *Engine) Database() *db.DB {
	return e.database
}

func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run executes the full parse flow for one document. Provider errors are
// absorbed by the orchestrator; the only errors surfaced are unreadable
// documents and total provider exhaustion.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	documentText := opts.DocumentText
	var metadata *ingestion.Metadata

	if documentText == "" {
		var err error
		documentText, metadata, err = ingestion.ExtractDocumentText(opts.DocumentPath)
		if err != nil {
			return nil, err
		}
		emitProgress(&opts, "ingest", fmt.Sprintf("extracted %d chars from %s", len(documentText), opts.DocumentPath), metadata)
	}

	var runID uuid.UUID
	if e.database != nil {
		hash := ""
		if metadata != nil {
			hash = metadata.Hash
		}
		id, err := e.database.CreateRun(ctx, opts.DocumentPath, hash)
		if err != nil {
			e.logger.Warn("pipeline.create_run_failed", "error", err)
		} else {
			runID = id
		}
	}

	result, err := e.orchestrator.ProduceRecord(ctx, documentText)
	if err != nil {
		e.completeFailedRun(ctx, runID, err)
		return nil, err
	}
	emitProgress(&opts, "parse", fmt.Sprintf("%s scored %.1f after %d attempts", result.Provider, result.Score, len(result.Attempts)), nil)

	merged, suggestions := e.crossval.Validate(ctx, documentText, result.Record, result.Provider, e.orchestrator.Providers(), result.Candidates)
	if len(suggestions) > 0 {
		emitProgress(&opts, "cross_validate", fmt.Sprintf("%d suggestions generated", len(suggestions)), suggestions)
	}
	merged.EnsureSections()

	report := e.completeness.Report(ctx, documentText, merged)
	emitProgress(&opts, "report", fmt.Sprintf("completeness %d via %s", report.Score, report.StrategyUsed), report)

	runResult := &RunResult{
		Record:         merged,
		Score:          result.Score,
		Breakdown:      result.Breakdown,
		Provider:       result.Provider,
		BelowThreshold: result.BelowThreshold,
		Attempts:       result.Attempts,
		Suggestions:    suggestions,
		Report:         report,
		Metadata:       metadata,
		RunID:          runID,
	}

	e.persistRun(ctx, runID, runResult)
	return runResult, nil
}

func (e *Engine) completeFailedRun(ctx context.Context, runID uuid.UUID, cause error) {
	if e.database == nil || runID == uuid.Nil {
		return
	}
	if err := e.database.CompleteRun(ctx, runID, db.StatusFailed, "", 0, false); err != nil {
		e.logger.Warn("pipeline.complete_run_failed", "error", err)
	}
	var failed *orchestrator.AllProvidersFailedError
	if errors.As(cause, &failed) {
		if err := e.database.SaveAttempts(ctx, runID, failed.Attempts); err != nil {
			e.logger.Warn("pipeline.save_attempts_failed", "error", err)
		}
	}
}

func (e *Engine) persistRun(ctx context.Context, runID uuid.UUID, result *RunResult) {
	if e.database == nil || runID == uuid.Nil {
		return
	}
	if err := e.database.CompleteRun(ctx, runID, db.StatusCompleted, result.Provider, result.Score, result.BelowThreshold); err != nil {
		e.logger.Warn("pipeline.complete_run_failed", "error", err)
	}
	if err := e.database.SaveAttempts(ctx, runID, result.Attempts); err != nil {
		e.logger.Warn("pipeline.save_attempts_failed", "error", err)
	}
	if err := e.database.SaveArtifact(ctx, runID, db.StepRecord, result.Record); err != nil {
		e.logger.Warn("pipeline.save_artifact_failed", "step", db.StepRecord, "error", err)
	}
	if len(result.Suggestions) > 0 {
		if err := e.database.SaveArtifact(ctx, runID, db.StepSuggestions, result.Suggestions); err != nil {
			e.logger.Warn("pipeline.save_artifact_failed", "step", db.StepSuggestions, "error", err)
		}
	}
	if err := e.database.SaveArtifact(ctx, runID, db.StepReport, result.Report); err != nil {
		e.logger.Warn("pipeline.save_artifact_failed", "step", db.StepReport, "error", err)
	}
}

// BatchResult pairs a document path with its outcome
type BatchResult struct {
	Path   string
	Result *RunResult
	Err    error
}

// RunBatch parses several documents with bounded parallelism. Individual
// failures do not abort the batch; every path gets a BatchResult.
func (e *Engine) RunBatch(ctx context.Context, paths []string, parallelism int) []BatchResult {
	if parallelism <= 0 {
		parallelism = 2
	}

	results := make([]BatchResult, len(paths))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := e.Run(gCtx, RunOptions{DocumentPath: path})
			mu.Lock()
			results[i] = BatchResult{Path: path, Result: result, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
