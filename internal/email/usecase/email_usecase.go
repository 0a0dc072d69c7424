package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"onebox-backend/internal/email/domain"
	"onebox-backend/internal/email/repository"
)

// ContextWriter stores custom context snippets for reply suggestions.
type ContextWriter interface {
	AddContext(ctx context.Context, text string, metadata map[string]interface{}) (string, error)
}

// EmailUsecase is the read/write surface behind the HTTP API.
type EmailUsecase interface {
	SearchEmails(ctx context.Context, q domain.SearchQuery) ([]*domain.Email, int64, error)
	GetEmailByID(ctx context.Context, id string) (*domain.Email, error)
	// UpdateCategory overrides the stored category with a manual label.
	UpdateCategory(ctx context.Context, id string, category domain.Category) error
	// GenerateReply drafts a fresh suggested reply for a stored message
	// and persists it.
	GenerateReply(ctx context.Context, id string) (string, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	AddContext(ctx context.Context, text string, metadata map[string]interface{}) (string, error)
}

type emailUsecase struct {
	repo      repository.EmailRepository
	suggester ReplySuggester
	contexts  ContextWriter
	logger    *slog.Logger
}

// NewEmailUsecase creates a new email usecase
func NewEmailUsecase(
	repo repository.EmailRepository,
	suggester ReplySuggester,
	contexts ContextWriter,
	logger *slog.Logger,
) EmailUsecase {
	return &emailUsecase{
		repo:      repo,
		suggester: suggester,
		contexts:  contexts,
		logger:    logger.With("component", "email"),
	}
}

func (u *emailUsecase) SearchEmails(ctx context.Context, q domain.SearchQuery) ([]*domain.Email, int64, error) {
	return u.repo.Search(ctx, q)
}

func (u *emailUsecase) GetEmailByID(ctx context.Context, id string) (*domain.Email, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *emailUsecase) UpdateCategory(ctx context.Context, id string, category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("invalid category %q", category)
	}
	return u.repo.Update(ctx, id, map[string]interface{}{"category": category})
}

func (u *emailUsecase) GenerateReply(ctx context.Context, id string) (string, error) {
	email, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	reply, err := u.suggester.SuggestReply(ctx, email.Subject, email.Body)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	if err := u.repo.Update(ctx, id, map[string]interface{}{"suggested_reply": reply}); err != nil {
		u.logger.Warn("failed to persist suggested reply", "email", id, "error", err)
	}
	return reply, nil
}

func (u *emailUsecase) GetStats(ctx context.Context) (*domain.Stats, error) {
	byCategory, err := u.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, count := range byCategory {
		total += count
	}
	return &domain.Stats{Total: total, ByCategory: byCategory}, nil
}

func (u *emailUsecase) AddContext(ctx context.Context, text string, metadata map[string]interface{}) (string, error) {
	if u.contexts == nil {
		return "", fmt.Errorf("vector store not configured")
	}
	return u.contexts.AddContext(ctx, text, metadata)
}
