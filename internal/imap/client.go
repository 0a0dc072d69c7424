package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"onebox-backend/pkg/config"
)

// Transport establishes mail sessions for accounts.
type Transport interface {
	Connect(ctx context.Context, account config.Account) (Session, error)
}

// Session is one live connection to a mailbox server. At most one live
// session exists per account; the connection manager owns it exclusively.
type Session interface {
	// SelectMailbox opens a mailbox, optionally read-only.
	SelectMailbox(name string, readOnly bool) error
	// SearchSince returns the uids of messages received at or after since.
	SearchSince(since time.Time) ([]uint32, error)
	// SearchUnseen returns the uids of messages without the \Seen flag.
	SearchUnseen() ([]uint32, error)
	// FetchRaw streams the full raw payload of each uid to handle. It
	// returns once the fetch stream has ended.
	FetchRaw(uids []uint32, handle func(uid uint32, raw []byte)) error
	// WaitUpdate blocks until the server signals a mailbox change, the
	// connection fails, or ctx is cancelled.
	WaitUpdate(ctx context.Context) error
	Close() error
}

// Dialer implements Transport over go-imap.
type Dialer struct {
	dialTimeout time.Duration
	logger      *slog.Logger
}

// NewDialer creates a new IMAP transport
func NewDialer(dialTimeout time.Duration, logger *slog.Logger) *Dialer {
	if dialTimeout == 0 {
		dialTimeout = 30 * time.Second
	}
	return &Dialer{dialTimeout: dialTimeout, logger: logger}
}

// Connect dials the account's server, logs in and returns the session.
func (d *Dialer) Connect(ctx context.Context, account config.Account) (Session, error) {
	addr := fmt.Sprintf("%s:%d", account.Host, account.Port)
	dialer := &net.Dialer{Timeout: d.dialTimeout}

	var conn net.Conn
	var err error
	if account.TLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, nil)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create IMAP client: %w", err)
	}

	if err := c.Login(account.User, account.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	// The updates channel is wired once, before any command traffic, and
	// stays owned by the session for its whole lifetime. The client's
	// reader goroutine delivers unilateral updates to it at any moment,
	// so the field must never be reassigned while commands run. The
	// buffer absorbs updates arriving between WaitUpdate calls.
	updates := make(chan client.Update, 64)
	c.Updates = updates

	return &imapSession{
		c:       c,
		updates: updates,
		logger:  d.logger.With("account", account.ID),
	}, nil
}

type imapSession struct {
	c       *client.Client
	updates chan client.Update
	logger  *slog.Logger
}

func (s *imapSession) SelectMailbox(name string, readOnly bool) error {
	if _, err := s.c.Select(name, readOnly); err != nil {
		return fmt.Errorf("failed to select %s: %w", name, err)
	}
	return nil
}

func (s *imapSession) SearchSince(since time.Time) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search since %s: %w", since.Format("2006-01-02"), err)
	}
	return uids, nil
}

func (s *imapSession) SearchUnseen() ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := s.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search unseen: %w", err)
	}
	return uids, nil
}

func (s *imapSession) FetchRaw(uids []uint32, handle func(uid uint32, raw []byte)) error {
	if len(uids) == 0 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	// Peek keeps the \Seen flag untouched so the watcher stays in
	// control of what counts as processed.
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 32)
	done := make(chan error, 1)
	go func() {
		done <- s.c.UidFetch(seqSet, items, messages)
	}()

	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			s.logger.Warn("message has no body section", "uid", msg.Uid)
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			s.logger.Warn("failed to read message body", "uid", msg.Uid, "error", err)
			continue
		}
		handle(msg.Uid, raw)
	}

	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

// WaitUpdate runs IDLE until the server reports a mailbox change. A nil
// return means new mail may be available; any error means the session is
// no longer usable. Updates buffered while other commands ran (the
// search and fetch between two waits) are consumed first, so a change
// signalled in that window returns immediately instead of waiting for
// the next server event.
func (s *imapSession) WaitUpdate(ctx context.Context) error {
	for {
		select {
		case update := <-s.updates:
			if _, ok := update.(*client.MailboxUpdate); ok {
				return nil
			}
			continue
		default:
		}
		break
	}

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.c.Idle(stop, nil)
	}()

	stopIdle := func() {
		close(stop)
		<-done
	}

	for {
		select {
		case <-ctx.Done():
			stopIdle()
			return ctx.Err()
		case err := <-done:
			if err != nil {
				return fmt.Errorf("idle failed: %w", err)
			}
			return nil
		case update := <-s.updates:
			if _, ok := update.(*client.MailboxUpdate); ok {
				stopIdle()
				return nil
			}
		}
	}
}

func (s *imapSession) Close() error {
	return s.c.Logout()
}
