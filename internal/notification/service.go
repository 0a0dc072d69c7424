package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"onebox-backend/internal/email/domain"
)

const previewLength = 200

// Service fans out best-effort alerts for interesting messages to a
// Slack incoming webhook and a generic webhook. Failures are logged and
// never propagated to the ingestion pipeline.
type Service struct {
	slackWebhookURL string
	webhookURL      string
	client          *http.Client
	logger          *slog.Logger
}

// NewService creates a new notification service
func NewService(slackWebhookURL, webhookURL string, logger *slog.Logger) *Service {
	return &Service{
		slackWebhookURL: slackWebhookURL,
		webhookURL:      webhookURL,
		client:          &http.Client{Timeout: 10 * time.Second},
		logger:          logger.With("component", "notification"),
	}
}

// NotifyInterested dispatches both notifiers in parallel and returns once
// both have completed or failed.
func (s *Service) NotifyInterested(ctx context.Context, email *domain.Email) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.sendSlackAlert(ctx, email)
	}()
	go func() {
		defer wg.Done()
		s.postWebhook(ctx, email)
	}()
	wg.Wait()
}

func (s *Service) sendSlackAlert(ctx context.Context, email *domain.Email) {
	if s.slackWebhookURL == "" {
		s.logger.Warn("slack webhook not configured")
		return
	}

	from := email.From.Name
	if from == "" {
		from = email.From.Address
	}
	preview := email.Body
	if runes := []rune(preview); len(runes) > previewLength {
		preview = string(runes[:previewLength]) + "..."
	}

	payload := map[string]interface{}{
		"text": "🎯 New Interested Email Received!",
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]interface{}{
					"type":  "plain_text",
					"text":  "🎯 New Interested Email",
					"emoji": true,
				},
			},
			{
				"type": "section",
				"fields": []map[string]string{
					{"type": "mrkdwn", "text": "*From:*\n" + from},
					{"type": "mrkdwn", "text": "*Account:*\n" + email.AccountID},
					{"type": "mrkdwn", "text": "*Subject:*\n" + email.Subject},
					{"type": "mrkdwn", "text": "*Date:*\n" + email.Date.Format(time.RFC1123)},
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": "*Preview:*\n" + preview,
				},
			},
		},
	}

	if err := s.postJSON(ctx, s.slackWebhookURL, payload); err != nil {
		s.logger.Error("failed to send slack notification", "email", email.ID, "error", err)
		return
	}
	s.logger.Info("slack notification sent", "email", email.ID)
}

func (s *Service) postWebhook(ctx context.Context, email *domain.Email) {
	if s.webhookURL == "" {
		s.logger.Warn("webhook URL not configured")
		return
	}

	payload := map[string]interface{}{
		"event":     "email.interested",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data": map[string]interface{}{
			"id":        email.ID,
			"accountId": email.AccountID,
			"from":      email.From,
			"subject":   email.Subject,
			"body":      email.Body,
			"date":      email.Date,
			"category":  email.Category,
		},
	}

	if err := s.postJSON(ctx, s.webhookURL, payload); err != nil {
		s.logger.Error("failed to trigger webhook", "email", email.ID, "error", err)
		return
	}
	s.logger.Info("webhook triggered", "email", email.ID)
}

func (s *Service) postJSON(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
