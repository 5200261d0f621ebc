// Package config loads engine settings from the environment and
// validates them before anything talks to a provider.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rotation policies for the orchestrator cursor
const (
	RotationPersist = "persist"
	RotationPerRun  = "per_run"
)

// Settings is the full configuration surface of the engine. Every field
// has a default; provider keys are the only values that gate behavior
// (a provider without a key is simply absent from the rotation).
type Settings struct {
	// Provider credentials; empty disables the provider
	GeminiAPIKey  string
	GroqAPIKey    string
	MistralAPIKey string
	CohereAPIKey  string

	// Per-provider model overrides; empty uses each adapter's default
	GeminiModel  string
	GroqModel    string
	MistralModel string
	CohereModel  string

	// Orchestration tunables
	MinQualityScore       float64       `validate:"gte=0,lte=100"`
	RateLimitCooldown     time.Duration `validate:"gt=0"`
	CrossValidationMargin float64       `validate:"gt=0,lte=1"`
	ParserMode            string        `validate:"oneof=adaptive fallback ensemble"`
	RotationReset         string        `validate:"oneof=persist per_run"`

	// Persistence; empty disables run storage
	DatabaseURL string

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Defaults returns Settings with every tunable at its default
func Defaults() *Settings {
	return &Settings{
		MinQualityScore:       75.0,
		RateLimitCooldown:     5 * time.Minute,
		CrossValidationMargin: 0.20,
		ParserMode:            "adaptive",
		RotationReset:         RotationPersist,
		LogLevel:              "info",
	}
}

// Load reads Settings from the environment on top of the defaults.
// Call godotenv.Load beforehand if a .env file should be honored.
func Load() (*Settings, error) {
	s := Defaults()

	s.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	s.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	s.MistralAPIKey = os.Getenv("MISTRAL_API_KEY")
	s.CohereAPIKey = os.Getenv("COHERE_API_KEY")

	s.GeminiModel = os.Getenv("GEMINI_MODEL")
	s.GroqModel = os.Getenv("GROQ_MODEL")
	s.MistralModel = os.Getenv("MISTRAL_MODEL")
	s.CohereModel = os.Getenv("COHERE_MODEL")

	s.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("MIN_QUALITY_SCORE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MIN_QUALITY_SCORE %q: %w", v, err)
		}
		s.MinQualityScore = parsed
	}

	if v := os.Getenv("RATE_LIMIT_COOLDOWN"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_COOLDOWN %q: %w", v, err)
		}
		s.RateLimitCooldown = parsed
	}

	if v := os.Getenv("CROSS_VALIDATION_MARGIN"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CROSS_VALIDATION_MARGIN %q: %w", v, err)
		}
		s.CrossValidationMargin = parsed
	}

	if v := os.Getenv("PARSER_MODE"); v != "" {
		s.ParserMode = strings.ToLower(v)
	}
	if v := os.Getenv("ROTATION_RESET"); v != "" {
		s.RotationReset = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		s.LogLevel = strings.ToLower(v)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges and enumerations
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EnabledProviders lists providers that have credentials, in rotation
// priority order.
func (s *Settings) EnabledProviders() []string {
	var enabled []string
	if s.GeminiAPIKey != "" {
		enabled = append(enabled, "gemini")
	}
	if s.GroqAPIKey != "" {
		enabled = append(enabled, "groq")
	}
	if s.MistralAPIKey != "" {
		enabled = append(enabled, "mistral")
	}
	if s.CohereAPIKey != "" {
		enabled = append(enabled, "cohere")
	}
	return enabled
}
