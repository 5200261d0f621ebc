package providers

import (
	"context"

	"github.com/dchen/portfolio-engine/internal/llm"
	"github.com/dchen/portfolio-engine/internal/types"
)

// GeminiName is the stable identifier for the Gemini adapter
const GeminiName = "gemini"

// GeminiExtractor wraps Google Gemini behind the Extractor contract
type GeminiExtractor struct {
	client llm.Client
}

// NewGeminiExtractor creates a Gemini-backed extractor. The model config
// defaults to llm.DefaultConfig when nil.
func NewGeminiExtractor(ctx context.Context, config *llm.Config, apiKey string) (*GeminiExtractor, error) {
	client, err := llm.NewGeminiClient(ctx, config, apiKey)
	if err != nil {
		return nil, &ProviderError{Provider: GeminiName, Message: "failed to create client", Cause: err}
	}
	return &GeminiExtractor{client: client}, nil
}

// Name returns the stable provider identifier
func (g *GeminiExtractor) Name() string {
	return GeminiName
}

// Extract parses resume text via Gemini's JSON mode
func (g *GeminiExtractor) Extract(ctx context.Context, resumeText string) (*types.PortfolioData, error) {
	prompt := buildExtractionPrompt(resumeText)

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, classifyBackendError(GeminiName, err)
	}

	return decodeRecord(GeminiName, raw)
}

// Close releases the underlying client
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}
