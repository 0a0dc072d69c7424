package ai

import (
	"context"
	"log/slog"
)

// FallbackGateway tries a primary provider and falls back to a secondary
// one when the primary call fails for any reason.
type FallbackGateway struct {
	primary  Gateway
	fallback Gateway
	logger   *slog.Logger
}

// NewFallbackGateway creates a gateway chaining primary and fallback providers
func NewFallbackGateway(primary, fallback Gateway, logger *slog.Logger) *FallbackGateway {
	return &FallbackGateway{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("component", "ai_fallback"),
	}
}

// CategorizeEmail implements Gateway
func (f *FallbackGateway) CategorizeEmail(ctx context.Context, subject, body string) (string, error) {
	label, err := f.primary.CategorizeEmail(ctx, subject, body)
	if err == nil {
		return label, nil
	}
	f.logger.Warn("primary classifier failed, falling back", "error", err)
	return f.fallback.CategorizeEmail(ctx, subject, body)
}

// GenerateReply implements Gateway
func (f *FallbackGateway) GenerateReply(ctx context.Context, subject, body string, contexts []string) (string, error) {
	reply, err := f.primary.GenerateReply(ctx, subject, body, contexts)
	if err == nil {
		return reply, nil
	}
	f.logger.Warn("primary reply provider failed, falling back", "error", err)
	return f.fallback.GenerateReply(ctx, subject, body, contexts)
}
