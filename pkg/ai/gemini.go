package ai

import (
	"context"
	"strings"

	"onebox-backend/pkg/gemini"
)

// GeminiGateway implements Gateway on top of the Gemini REST service.
type GeminiGateway struct {
	svc *gemini.Service
}

// NewGeminiGateway creates a new Gemini-backed gateway
func NewGeminiGateway(apiKey string) *GeminiGateway {
	return &GeminiGateway{svc: gemini.NewService(apiKey)}
}

// CategorizeEmail implements Gateway
func (g *GeminiGateway) CategorizeEmail(ctx context.Context, subject, body string) (string, error) {
	text, err := g.svc.Generate(ctx, CategorizePrompt(subject, body))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateReply implements Gateway
func (g *GeminiGateway) GenerateReply(ctx context.Context, subject, body string, contexts []string) (string, error) {
	text, err := g.svc.Generate(ctx, ReplyPrompt(subject, body, contexts))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
