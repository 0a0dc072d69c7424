package imap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"onebox-backend/pkg/config"
)

// State of one account connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateBackfilling
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateBackfilling:
		return "backfilling"
	case StateWatching:
		return "watching"
	default:
		return "disconnected"
	}
}

// RetryPolicy controls reconnection after a session ends.
type RetryPolicy struct {
	// Delay between the end of one session and the next connect attempt.
	Delay time.Duration
	// MaxAttempts caps consecutive failed attempts; 0 retries forever.
	MaxAttempts int
}

// Ingestor receives raw messages fetched from the mail server.
type Ingestor interface {
	IngestRawMessage(ctx context.Context, accountID, mailbox string, uid uint32, raw []byte) error
}

// ManagerConfig configures the connection manager.
type ManagerConfig struct {
	Accounts   []config.Account
	Transport  Transport
	Ingestor   Ingestor
	Retry      RetryPolicy
	SyncWindow time.Duration
	Mailbox    string
}

// Manager owns one long-lived watcher goroutine per configured account.
// Each watcher backfills recent history, then idles for new mail and
// reconnects forever when the session drops.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	mu     sync.RWMutex
	states map[string]State

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration)
}

// NewManager creates a new connection manager
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Retry.Delay == 0 {
		cfg.Retry.Delay = 5 * time.Second
	}
	if cfg.SyncWindow == 0 {
		cfg.SyncWindow = 30 * 24 * time.Hour
	}

	m := &Manager{
		cfg:    cfg,
		logger: logger.With("component", "imap"),
		states: make(map[string]State),
		sleep:  sleepCtx,
	}
	for _, account := range cfg.Accounts {
		m.states[account.ID] = StateDisconnected
	}
	return m
}

// Initialize starts a watcher per account with credentials. Calling it
// again is a no-op.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	for _, account := range m.cfg.Accounts {
		if account.User == "" || account.Password == "" {
			m.logger.Info("skipping account without credentials", "account", account.ID)
			continue
		}
		m.setState(account.ID, StateConnecting)
		m.wg.Add(1)
		go func(account config.Account) {
			defer m.wg.Done()
			m.runAccount(ctx, account)
		}(account)
	}
}

// runAccount keeps one account connected until ctx is cancelled or the
// retry budget is exhausted.
func (m *Manager) runAccount(ctx context.Context, account config.Account) {
	logger := m.logger.With("account", account.ID)
	attempts := 0

	for {
		m.setState(account.ID, StateConnecting)
		err := m.runSession(ctx, account, logger)
		m.setState(account.ID, StateDisconnected)

		if ctx.Err() != nil {
			logger.Info("watcher stopped")
			return
		}

		if err != nil {
			attempts++
			logger.Error("session ended", "error", err, "attempt", attempts)
		} else {
			attempts = 0
			logger.Warn("session ended, reconnecting")
		}

		if m.cfg.Retry.MaxAttempts > 0 && attempts >= m.cfg.Retry.MaxAttempts {
			logger.Error("giving up after repeated failures", "attempts", attempts)
			return
		}

		m.sleep(ctx, m.cfg.Retry.Delay)
		if ctx.Err() != nil {
			logger.Info("watcher stopped")
			return
		}
	}
}

// runSession drives one full connect / backfill / watch cycle. A nil
// error means the session ended cleanly (server closed the connection).
func (m *Manager) runSession(ctx context.Context, account config.Account, logger *slog.Logger) error {
	session, err := m.cfg.Transport.Connect(ctx, account)
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Info("connected", "host", account.Host)

	if err := session.SelectMailbox(m.cfg.Mailbox, true); err != nil {
		return err
	}

	m.setState(account.ID, StateBackfilling)
	since := time.Now().Add(-m.cfg.SyncWindow)
	uids, err := session.SearchSince(since)
	if err != nil {
		return err
	}
	logger.Info("backfilling", "since", since.Format("2006-01-02"), "messages", len(uids))
	if err := m.dispatch(ctx, session, account.ID, uids); err != nil {
		return err
	}

	m.setState(account.ID, StateWatching)
	logger.Info("watching for new mail")

	for {
		if err := session.WaitUpdate(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		uids, err := session.SearchUnseen()
		if err != nil {
			return err
		}
		if len(uids) == 0 {
			continue
		}
		logger.Info("new mail", "messages", len(uids))
		if err := m.dispatch(ctx, session, account.ID, uids); err != nil {
			return err
		}
	}
}

// dispatch fetches the given uids and hands each message to the ingestor
// on its own goroutine, so a slow classifier never stalls the fetch
// stream or the watch loop.
func (m *Manager) dispatch(ctx context.Context, session Session, accountID string, uids []uint32) error {
	return session.FetchRaw(uids, func(uid uint32, raw []byte) {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.cfg.Ingestor.IngestRawMessage(ctx, accountID, m.cfg.Mailbox, uid, raw); err != nil {
				m.logger.Error("failed to ingest message", "account", accountID, "uid", uid, "error", err)
			}
		}()
	})
}

// ConnectionStatus reports, per configured account, whether a live
// session currently exists.
func (m *Manager) ConnectionStatus() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]bool, len(m.states))
	for id, state := range m.states {
		status[id] = state == StateBackfilling || state == StateWatching
	}
	return status
}

// AccountState returns the connection state for one account.
func (m *Manager) AccountState(accountID string) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[accountID]
}

// Disconnect stops every watcher and waits for in-flight work to finish.
// Safe to call more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()

	m.mu.Lock()
	for id := range m.states {
		m.states[id] = StateDisconnected
	}
	m.mu.Unlock()

	m.logger.Info("all accounts disconnected")
}

func (m *Manager) setState(accountID string, state State) {
	m.mu.Lock()
	m.states[accountID] = state
	m.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
