package ai

import (
	"fmt"
	"log/slog"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string
	OllamaModel   string
}

// NewGateway creates a Gateway based on the config. This is the factory
// function - switch AI provider by changing config.Provider.
func NewGateway(cfg Config, logger *slog.Logger) (Gateway, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiGateway(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Auto: Gemini first when a key is available, Ollama as fallback.
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.GeminiAPIKey != "" {
			return NewFallbackGateway(NewGeminiGateway(cfg.GeminiAPIKey), ollama, logger), nil
		}
		return ollama, nil
	}
}
