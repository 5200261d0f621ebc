package providers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dchen/portfolio-engine/internal/types"
)

// CohereName is the stable identifier for the Cohere adapter
const CohereName = "cohere"

const (
	cohereBaseURL      = "https://api.cohere.com"
	cohereDefaultModel = "command-r-08-2024"
)

// CohereExtractor wraps Cohere's v2 chat API behind the Extractor contract.
// Cohere does not speak the OpenAI protocol, so it gets its own adapter.
type CohereExtractor struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewCohereExtractor creates the Cohere adapter
func NewCohereExtractor(apiKey, model string, logger *slog.Logger) *CohereExtractor {
	if model == "" {
		model = cohereDefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CohereExtractor{
		apiKey:  apiKey,
		baseURL: cohereBaseURL,
		model:   model,
		http:    &http.Client{Timeout: 45 * time.Second},
		logger:  logger,
	}
}

// Name returns the stable provider identifier
func (c *CohereExtractor) Name() string {
	return CohereName
}

type cohereRequest struct {
	Model          string          `json:"model"`
	Messages       []cohereMessage `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *chatFormat     `json:"response_format,omitempty"`
}

type cohereMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cohereResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// Extract parses resume text via Cohere's v2 chat endpoint
func (c *CohereExtractor) Extract(ctx context.Context, resumeText string) (*types.PortfolioData, error) {
	payload := cohereRequest{
		Model: c.model,
		Messages: []cohereMessage{
			{Role: "user", Content: buildExtractionPrompt(resumeText)},
		},
		Temperature:    0.1,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	raw, status, err := sendJSON(ctx, c.http, c.baseURL+"/v2/chat", payload, headers, c.logger)
	if err != nil {
		return nil, classifyChatError(CohereName, status, raw, err)
	}

	var parsed cohereResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &InvalidOutputError{Provider: CohereName, Message: "failed to decode chat response", Cause: err}
	}
	if len(parsed.Message.Content) == 0 {
		return nil, &InvalidOutputError{Provider: CohereName, Message: "chat response has no content"}
	}

	return decodeRecord(CohereName, parsed.Message.Content[0].Text)
}
