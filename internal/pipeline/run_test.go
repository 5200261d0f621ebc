package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchen/portfolio-engine/internal/crossval"
	"github.com/dchen/portfolio-engine/internal/ingestion"
	"github.com/dchen/portfolio-engine/internal/orchestrator"
	"github.com/dchen/portfolio-engine/internal/providers"
	"github.com/dchen/portfolio-engine/internal/ratelimit"
	"github.com/dchen/portfolio-engine/internal/types"
	"github.com/dchen/portfolio-engine/internal/validation"
)

type stubExtractor struct {
	name   string
	record *types.PortfolioData
	err    error
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, text string) (*types.PortfolioData, error) {
	return s.record, s.err
}

func testEngine(extractors ...providers.Extractor) *Engine {
	tracker := ratelimit.NewTracker()
	return &Engine{
		orchestrator: orchestrator.New(extractors, tracker),
		crossval:     crossval.New(tracker),
		completeness: validation.NewValidator(nil, nil),
		logger:       slog.Default(),
	}
}

func goodRecord() *types.PortfolioData {
	return &types.PortfolioData{
		PersonalInfo: types.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100", Location: "Seattle"},
		Skills:       []string{"Go", "PostgreSQL"},
		Experience: []types.Experience{
			{Role: "Engineer", Company: "Acme", StartDate: "2020-01", EndDate: "Present",
				Description: "Built the ingestion platform and ran its on-call rotation."},
		},
		Education:    []types.Education{{Degree: "BS Computer Science", School: "State University"}},
		Projects:     []types.Project{},
		Achievements: []types.Achievement{},
	}
}

func TestRunEndToEnd(t *testing.T) {
	engine := testEngine(&stubExtractor{name: "gemini", record: goodRecord()})

	var steps []string
	result, err := engine.Run(context.Background(), RunOptions{
		DocumentText: "Jane Doe jane@example.com ...",
		OnProgress:   func(e ProgressEvent) { steps = append(steps, e.Step) },
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini", result.Provider)
	assert.Equal(t, "Jane Doe", result.Record.PersonalInfo.Name)
	assert.GreaterOrEqual(t, result.Score, orchestrator.DefaultThreshold)
	assert.False(t, result.BelowThreshold)
	require.NotNil(t, result.Report)
	assert.Equal(t, types.StrategyQuick, result.Report.StrategyUsed)
	assert.Contains(t, steps, "parse")
	assert.Contains(t, steps, "report")
}

func TestRunSectionsAlwaysShaped(t *testing.T) {
	// a sparse record still comes back with every section non-nil
	sparse := &types.PortfolioData{
		PersonalInfo: types.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"},
	}
	engine := testEngine(&stubExtractor{name: "gemini", record: sparse})

	result, err := engine.Run(context.Background(), RunOptions{DocumentText: "resume"})
	require.NoError(t, err)

	assert.NotNil(t, result.Record.Skills)
	assert.NotNil(t, result.Record.Experience)
	assert.NotNil(t, result.Record.Education)
	assert.NotNil(t, result.Record.Projects)
	assert.NotNil(t, result.Record.Achievements)
	assert.True(t, result.BelowThreshold)
}

func TestRunCrossValidationMergesSecondOpinion(t *testing.T) {
	// primary scores below threshold so both providers run, then the
	// second opinion's extra data merges in additively
	primary := &types.PortfolioData{
		PersonalInfo: types.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"},
		Skills:       []string{"Go"},
	}
	secondary := goodRecord()
	secondary.Skills = append(secondary.Skills, "Terraform")

	engine := testEngine(
		&stubExtractor{name: "gemini", record: primary},
		&stubExtractor{name: "groq", record: secondary},
	)

	result, err := engine.Run(context.Background(), RunOptions{DocumentText: "resume"})
	require.NoError(t, err)

	assert.Equal(t, "groq", result.Provider, "higher-scoring candidate wins")
	assert.Contains(t, result.Record.Skills, "Go", "primary-only skill merged from the other candidate")
}

func TestRunDocumentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\njane@example.com"), 0644))

	engine := testEngine(&stubExtractor{name: "gemini", record: goodRecord()})
	result, err := engine.Run(context.Background(), RunOptions{DocumentPath: path})
	require.NoError(t, err)

	require.NotNil(t, result.Metadata)
	assert.Equal(t, path, result.Metadata.SourcePath)
}

func TestRunUnreadableDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n "), 0644))

	engine := testEngine(&stubExtractor{name: "gemini", record: goodRecord()})
	result, err := engine.Run(context.Background(), RunOptions{DocumentPath: path})

	assert.Nil(t, result)
	var unreadable *ingestion.UnreadableDocumentError
	require.ErrorAs(t, err, &unreadable)
}

func TestRunAllProvidersFailed(t *testing.T) {
	engine := testEngine(
		&stubExtractor{name: "gemini", err: &providers.ProviderError{Provider: "gemini", Message: "down"}},
		&stubExtractor{name: "groq", err: &providers.RateLimitedError{Provider: "groq", Message: "quota"}},
	)

	result, err := engine.Run(context.Background(), RunOptions{DocumentText: "resume"})
	assert.Nil(t, result)

	var failed *orchestrator.AllProvidersFailedError
	require.ErrorAs(t, err, &failed)
	assert.Len(t, failed.Attempts, 2)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, "resume"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(paths[i], []byte("Jane Doe\njane@example.com"), 0644))
	}
	paths = append(paths, filepath.Join(dir, "missing.txt"))

	engine := testEngine(&stubExtractor{name: "gemini", record: goodRecord()})
	results := engine.RunBatch(context.Background(), paths, 2)

	require.Len(t, results, 4)
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		} else {
			assert.NotNil(t, r.Result)
		}
	}
	assert.Equal(t, 1, failures, "only the missing file fails")
}
