package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"onebox-backend/internal/email/domain"
	"onebox-backend/internal/email/parser"
	"onebox-backend/internal/email/repository"
)

// Classifier assigns a category label to a message.
type Classifier interface {
	CategorizeEmail(ctx context.Context, subject, body string) (string, error)
}

// ReplySuggester drafts a suggested reply for a message.
type ReplySuggester interface {
	SuggestReply(ctx context.Context, subject, body string) (string, error)
}

// Notifier fans out alerts for interesting messages.
type Notifier interface {
	NotifyInterested(ctx context.Context, email *domain.Email)
}

// IngestUsecase turns raw fetched messages into persisted, classified
// records.
type IngestUsecase interface {
	IngestRawMessage(ctx context.Context, accountID, mailbox string, uid uint32, raw []byte) error
}

type ingestUsecase struct {
	repo       repository.EmailRepository
	classifier Classifier
	suggester  ReplySuggester
	notifier   Notifier
	logger     *slog.Logger

	// inflight guards against the same message being processed twice
	// concurrently, e.g. when backfill and a mailbox update overlap.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewIngestUsecase creates a new ingestion usecase
func NewIngestUsecase(
	repo repository.EmailRepository,
	classifier Classifier,
	suggester ReplySuggester,
	notifier Notifier,
	logger *slog.Logger,
) IngestUsecase {
	return &ingestUsecase{
		repo:       repo,
		classifier: classifier,
		suggester:  suggester,
		notifier:   notifier,
		logger:     logger.With("component", "ingest"),
		inflight:   make(map[string]struct{}),
	}
}

// IngestRawMessage decodes, deduplicates, classifies and persists one
// message. Classification and reply failures degrade the record instead
// of dropping it; only decode and storage failures abort the pipeline.
func (u *ingestUsecase) IngestRawMessage(ctx context.Context, accountID, mailbox string, uid uint32, raw []byte) error {
	parsed, err := parser.Decode(raw)
	if err != nil {
		return fmt.Errorf("failed to decode message uid %d: %w", uid, err)
	}

	id := domain.EmailID(accountID, uid)
	if !u.tryAcquire(id) {
		u.logger.Debug("message already being processed", "email", id)
		return nil
	}
	defer u.release(id)

	exists, err := u.repo.ExistsByAccountAndUID(ctx, accountID, uid)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate %s: %w", id, err)
	}
	if exists {
		u.logger.Debug("skipping duplicate message", "email", id)
		return nil
	}

	subject := parsed.Subject
	if subject == "" {
		subject = "(No Subject)"
	}
	body := parsed.BodyText
	if body == "" {
		body = parsed.BodyHTML
	}

	// The classifier and reply generator work best on plain text, so
	// HTML-only messages get stripped for them while the stored body
	// keeps the original payload.
	classifyText := parsed.BodyText
	if classifyText == "" {
		classifyText = parser.HTMLToText(parsed.BodyHTML)
	}

	category := domain.CategoryUncategorized
	label, err := u.classifier.CategorizeEmail(ctx, subject, classifyText)
	if err != nil {
		u.logger.Warn("classification failed, storing uncategorized", "email", id, "error", err)
	} else {
		category = domain.ParseCategory(strings.TrimSpace(label))
	}

	suggestedReply := ""
	if category == domain.CategoryInterested {
		suggestedReply, err = u.suggester.SuggestReply(ctx, subject, classifyText)
		if err != nil {
			u.logger.Warn("reply suggestion failed", "email", id, "error", err)
			suggestedReply = ""
		}
	}

	date := parsed.Date
	if date.IsZero() {
		date = time.Now()
	}

	email := &domain.Email{
		ID:             id,
		AccountID:      accountID,
		Folder:         mailbox,
		From:           parsed.From,
		To:             parsed.To,
		Subject:        subject,
		Body:           body,
		HTML:           parsed.BodyHTML,
		Date:           date,
		UID:            uid,
		Category:       category,
		SuggestedReply: suggestedReply,
	}

	if err := u.repo.Create(ctx, email); err != nil {
		if err == repository.ErrDuplicate {
			u.logger.Debug("message persisted by a concurrent writer", "email", id)
			return nil
		}
		return fmt.Errorf("failed to store %s: %w", id, err)
	}

	u.logger.Info("message ingested", "email", id, "subject", subject, "category", category)

	if category == domain.CategoryInterested {
		// Notifications render plain text, so HTML-only messages go out
		// with the stripped body rather than raw markup.
		notified := *email
		notified.Body = classifyText
		u.notifier.NotifyInterested(ctx, &notified)
	}
	return nil
}

func (u *ingestUsecase) tryAcquire(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, busy := u.inflight[id]; busy {
		return false
	}
	u.inflight[id] = struct{}{}
	return true
}

func (u *ingestUsecase) release(id string) {
	u.mu.Lock()
	delete(u.inflight, id)
	u.mu.Unlock()
}
