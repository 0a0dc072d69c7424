package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"onebox-backend/internal/email/domain"
	"onebox-backend/internal/email/repository"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func rawMessage(subject, body string) []byte {
	msg := "From: Alice <alice@example.com>\n" +
		"To: me@example.com\n"
	if subject != "" {
		msg += "Subject: " + subject + "\n"
	}
	msg += "Date: Mon, 06 Jan 2025 10:30:00 +0000\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"\n" + body + "\n"
	return []byte(crlf(msg))
}

func rawHTMLMessage(subject, html string) []byte {
	msg := "From: Alice <alice@example.com>\n" +
		"To: me@example.com\n" +
		"Subject: " + subject + "\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: text/html; charset=utf-8\n" +
		"\n" + html + "\n"
	return []byte(crlf(msg))
}

type fakeRepo struct {
	mu      sync.Mutex
	emails  map[string]*domain.Email
	updates map[string]map[string]interface{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		emails:  make(map[string]*domain.Email),
		updates: make(map[string]map[string]interface{}),
	}
}

func (f *fakeRepo) Create(_ context.Context, email *domain.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[email.ID]; ok {
		return repository.ErrDuplicate
	}
	f.emails[email.ID] = email
	return nil
}

func (f *fakeRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[id]; !ok {
		return repository.ErrNotFound
	}
	f.updates[id] = fields
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.emails[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return email, nil
}

func (f *fakeRepo) ExistsByAccountAndUID(_ context.Context, accountID string, uid uint32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.emails[domain.EmailID(accountID, uid)]
	return ok, nil
}

func (f *fakeRepo) Search(_ context.Context, _ domain.SearchQuery) ([]*domain.Email, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Email
	for _, e := range f.emails {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountByCategory(_ context.Context) (map[domain.Category]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.Category]int64)
	for _, e := range f.emails {
		counts[e.Category]++
	}
	return counts, nil
}

type fakeClassifier struct {
	label string
	err   error
	calls int
}

func (f *fakeClassifier) CategorizeEmail(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.label, f.err
}

type fakeSuggester struct {
	reply string
	err   error
	calls int
}

func (f *fakeSuggester) SuggestReply(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	bodies   []string
}

func (f *fakeNotifier) NotifyInterested(_ context.Context, email *domain.Email) {
	f.mu.Lock()
	f.notified = append(f.notified, email.ID)
	f.bodies = append(f.bodies, email.Body)
	f.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestIngest(repo *fakeRepo, classifier Classifier, suggester ReplySuggester, notifier Notifier) IngestUsecase {
	return NewIngestUsecase(repo, classifier, suggester, notifier, testLogger())
}

func TestIngestStoresAndClassifies(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{label: "Spam"}
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, classifier, &fakeSuggester{}, notifier)

	for _, uid := range []uint32{101, 102} {
		if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", uid, rawMessage("Offer", "Buy now")); err != nil {
			t.Fatalf("ingest uid %d: %v", uid, err)
		}
	}

	if len(repo.emails) != 2 {
		t.Fatalf("stored %d emails, want 2", len(repo.emails))
	}
	for _, id := range []string{"account_1_101", "account_1_102"} {
		email, ok := repo.emails[id]
		if !ok {
			t.Fatalf("missing email %s", id)
		}
		if email.Category != domain.CategorySpam {
			t.Errorf("%s category = %q", id, email.Category)
		}
		if email.Folder != "INBOX" {
			t.Errorf("%s folder = %q", id, email.Folder)
		}
	}
	if len(notifier.notified) != 0 {
		t.Errorf("spam should not notify, got %v", notifier.notified)
	}
}

func TestIngestSkipsDuplicates(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{label: "Interested"}
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, classifier, &fakeSuggester{reply: "Thanks!"}, notifier)

	raw := rawMessage("Hello", "I am interested")
	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 7, raw); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 7, raw); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if len(repo.emails) != 1 {
		t.Fatalf("stored %d emails, want 1", len(repo.emails))
	}
	if classifier.calls != 1 {
		t.Errorf("classifier called %d times, want 1", classifier.calls)
	}
	if len(notifier.notified) != 1 {
		t.Errorf("notified %d times, want 1", len(notifier.notified))
	}
}

func TestIngestDefaultsSubjectAndBody(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestIngest(repo, &fakeClassifier{label: "Uncategorized"}, &fakeSuggester{}, &fakeNotifier{})

	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 1, rawMessage("", "hi")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	email := repo.emails["account_1_1"]
	if email.Subject != "(No Subject)" {
		t.Errorf("subject = %q", email.Subject)
	}

	html := "<html><body><p>rich only</p></body></html>"
	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 2, rawHTMLMessage("Rich", html)); err != nil {
		t.Fatalf("ingest html: %v", err)
	}
	email = repo.emails["account_1_2"]
	if !strings.Contains(email.Body, "<p>rich only</p>") {
		t.Errorf("body should fall back to html, got %q", email.Body)
	}
	if email.Date.IsZero() {
		t.Error("missing date should default to ingestion time")
	}
}

func TestIngestClassifierFailure(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{err: errors.New("provider down")}
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, classifier, &fakeSuggester{}, notifier)

	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 5, rawMessage("Hello", "text")); err != nil {
		t.Fatalf("ingest should not fail on classifier error: %v", err)
	}

	email := repo.emails["account_1_5"]
	if email == nil {
		t.Fatal("email should still be stored")
	}
	if email.Category != domain.CategoryUncategorized {
		t.Errorf("category = %q, want Uncategorized", email.Category)
	}
	if len(notifier.notified) != 0 {
		t.Error("uncategorized must not notify")
	}
}

func TestIngestInterestedFlow(t *testing.T) {
	repo := newFakeRepo()
	suggester := &fakeSuggester{reply: "Happy to chat, here is my calendar."}
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, &fakeClassifier{label: "Interested"}, suggester, notifier)

	if err := uc.IngestRawMessage(context.Background(), "account_2", "INBOX", 9, rawMessage("Re: Proposal", "Sounds great")); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	email := repo.emails["account_2_9"]
	if email.Category != domain.CategoryInterested {
		t.Fatalf("category = %q", email.Category)
	}
	if email.SuggestedReply != suggester.reply {
		t.Errorf("suggested reply = %q", email.SuggestedReply)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != "account_2_9" {
		t.Errorf("notified = %v", notifier.notified)
	}
}

func TestIngestHTMLOnlyNotifiesPlainText(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, &fakeClassifier{label: "Interested"}, &fakeSuggester{reply: "ok"}, notifier)

	html := "<html><body><p>I would love a demo</p></body></html>"
	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 21, rawHTMLMessage("Demo request", html)); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// Stored body keeps the raw markup.
	email := repo.emails["account_1_21"]
	if !strings.Contains(email.Body, "<p>") {
		t.Errorf("stored body = %q, want raw html", email.Body)
	}

	// The notifier gets readable text, not markup.
	if len(notifier.bodies) != 1 {
		t.Fatalf("notified %d times, want 1", len(notifier.bodies))
	}
	if strings.ContainsAny(notifier.bodies[0], "<>") {
		t.Errorf("notification body contains markup: %q", notifier.bodies[0])
	}
	if !strings.Contains(notifier.bodies[0], "I would love a demo") {
		t.Errorf("notification body = %q", notifier.bodies[0])
	}
}

func TestIngestReplyFailureStillNotifies(t *testing.T) {
	repo := newFakeRepo()
	suggester := &fakeSuggester{err: errors.New("llm timeout")}
	notifier := &fakeNotifier{}
	uc := newTestIngest(repo, &fakeClassifier{label: "Interested"}, suggester, notifier)

	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 11, rawMessage("Re: Offer", "yes")); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	email := repo.emails["account_1_11"]
	if email.SuggestedReply != "" {
		t.Errorf("suggested reply = %q, want empty", email.SuggestedReply)
	}
	if len(notifier.notified) != 1 {
		t.Error("notification should still fire when reply generation fails")
	}
}

func TestIngestMalformedMessage(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{label: "Interested"}
	uc := newTestIngest(repo, classifier, &fakeSuggester{}, &fakeNotifier{})

	if err := uc.IngestRawMessage(context.Background(), "account_1", "INBOX", 3, []byte("garbage")); err == nil {
		t.Fatal("expected decode error")
	}
	if len(repo.emails) != 0 {
		t.Error("nothing should be stored for a malformed message")
	}
	if classifier.calls != 0 {
		t.Error("classifier should not run for a malformed message")
	}
}
