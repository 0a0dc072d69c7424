package repository

import (
	"context"
	"errors"

	"onebox-backend/internal/email/domain"
)

var (
	// ErrNotFound is returned when no message matches the given id.
	ErrNotFound = errors.New("email not found")
	// ErrDuplicate is returned when a create collides with an existing id.
	ErrDuplicate = errors.New("email already exists")
)

// EmailRepository is the storage contract for canonical messages.
type EmailRepository interface {
	// Create persists a new message and fails with ErrDuplicate when the
	// primary key already exists.
	Create(ctx context.Context, email *domain.Email) error
	// Update applies a partial update to the message with the given id.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	GetByID(ctx context.Context, id string) (*domain.Email, error)
	// ExistsByAccountAndUID answers the dedup question: has this
	// (account, uid) pair been ingested already?
	ExistsByAccountAndUID(ctx context.Context, accountID string, uid uint32) (bool, error)
	Search(ctx context.Context, q domain.SearchQuery) ([]*domain.Email, int64, error)
	CountByCategory(ctx context.Context) (map[domain.Category]int64, error)
}
