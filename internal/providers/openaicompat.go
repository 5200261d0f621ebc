package providers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dchen/portfolio-engine/internal/types"
)

// Provider identifiers for the OpenAI-compatible backends
const (
	GroqName    = "groq"
	MistralName = "mistral"
)

// Default endpoints and models for the OpenAI-compatible backends
const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama-3.3-70b-versatile"

	mistralBaseURL      = "https://api.mistral.ai/v1"
	mistralDefaultModel = "mistral-small-latest"
)

// ChatConfig configures a ChatExtractor
type ChatConfig struct {
	Name        string        // provider identifier
	APIKey      string        // required
	BaseURL     string        // endpoint root, e.g. https://api.groq.com/openai/v1
	Model       string        // chat model name
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout, defaults to 45s
}

// ChatExtractor implements Extractor for any backend speaking the
// OpenAI-compatible /chat/completions protocol (Groq, Mistral).
type ChatExtractor struct {
	cfg    ChatConfig
	http   *http.Client
	logger *slog.Logger
}

// NewChatExtractor creates an extractor for an OpenAI-compatible endpoint
func NewChatExtractor(cfg ChatConfig, logger *slog.Logger) *ChatExtractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatExtractor{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// NewGroqExtractor creates the Groq adapter with its default endpoint
func NewGroqExtractor(apiKey, model string, logger *slog.Logger) *ChatExtractor {
	if model == "" {
		model = groqDefaultModel
	}
	return NewChatExtractor(ChatConfig{
		Name:    GroqName,
		APIKey:  apiKey,
		BaseURL: groqBaseURL,
		Model:   model,
	}, logger)
}

// NewMistralExtractor creates the Mistral adapter with its default endpoint
func NewMistralExtractor(apiKey, model string, logger *slog.Logger) *ChatExtractor {
	if model == "" {
		model = mistralDefaultModel
	}
	return NewChatExtractor(ChatConfig{
		Name:    MistralName,
		APIKey:  apiKey,
		BaseURL: mistralBaseURL,
		Model:   model,
	}, logger)
}

// Name returns the stable provider identifier
func (c *ChatExtractor) Name() string {
	return c.cfg.Name
}

// chatRequest is the OpenAI-compatible chat completion payload
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float32       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract parses resume text via the backend's chat completion endpoint
func (c *ChatExtractor) Extract(ctx context.Context, resumeText string) (*types.PortfolioData, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildExtractionPrompt(resumeText)},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	raw, status, err := sendJSON(ctx, c.http, c.cfg.BaseURL+"/chat/completions", payload, headers, c.logger)
	if err != nil {
		return nil, classifyChatError(c.cfg.Name, status, raw, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &InvalidOutputError{Provider: c.cfg.Name, Message: "failed to decode chat response", Cause: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &InvalidOutputError{Provider: c.cfg.Name, Message: "chat response has no choices"}
	}

	return decodeRecord(c.cfg.Name, parsed.Choices[0].Message.Content)
}

// classifyChatError maps an HTTP-level failure to the error taxonomy.
// 429 is always throttling; other statuses get a body sniff since some
// backends report quota exhaustion with a 400 or 403.
func classifyChatError(provider string, status int, body []byte, err error) error {
	if status == http.StatusTooManyRequests {
		return &RateLimitedError{Provider: provider, Message: "backend returned 429", Cause: err}
	}
	if len(body) > 0 && IsRateLimitMessage(string(body)) {
		return &RateLimitedError{Provider: provider, Message: "backend signaled quota exhaustion", Cause: err}
	}
	return classifyBackendError(provider, err)
}
