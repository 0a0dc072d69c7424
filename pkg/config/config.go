package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Account is one configured IMAP mailbox credential set.
type Account struct {
	ID       string
	Host     string
	Port     int
	User     string
	Password string
	TLS      bool
}

// Config application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=onebox port=5432 sslmode=disable"`

	// IMAP sync
	SyncDays       int           `env:"IMAP_SYNC_DAYS" envDefault:"30"`
	ReconnectDelay time.Duration `env:"IMAP_RECONNECT_DELAY" envDefault:"5s"`
	DialTimeout    time.Duration `env:"IMAP_DIAL_TIMEOUT" envDefault:"30s"`

	// Account slots, same shape as the original deployment env
	IMAPHost1     string `env:"IMAP_HOST_1"`
	IMAPPort1     int    `env:"IMAP_PORT_1" envDefault:"993"`
	IMAPUser1     string `env:"IMAP_USER_1"`
	IMAPPassword1 string `env:"IMAP_PASSWORD_1"`
	IMAPTLS1      bool   `env:"IMAP_TLS_1" envDefault:"true"`

	IMAPHost2     string `env:"IMAP_HOST_2"`
	IMAPPort2     int    `env:"IMAP_PORT_2" envDefault:"993"`
	IMAPUser2     string `env:"IMAP_USER_2"`
	IMAPPassword2 string `env:"IMAP_PASSWORD_2"`
	IMAPTLS2      bool   `env:"IMAP_TLS_2" envDefault:"true"`

	// AI providers
	AIProvider    string `env:"AI_PROVIDER" envDefault:"auto"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llama3"`

	// Chroma vector store
	ChromaAPIKey   string `env:"CHROMA_API_KEY"`
	ChromaTenant   string `env:"CHROMA_TENANT"`
	ChromaDatabase string `env:"CHROMA_DATABASE"`

	// Notifications
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	WebhookURL      string `env:"WEBHOOK_URL"`

	// Seed context for reply suggestions
	RAGContext string `env:"RAG_CONTEXT" envDefault:"I am applying for a job position. If the lead is interested, share the meeting booking link: https://cal.com/example"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// IMAPAccounts returns every account slot, including ones missing
// credentials; the connection manager decides which to skip.
func (c *Config) IMAPAccounts() []Account {
	return []Account{
		{ID: "account_1", Host: c.IMAPHost1, Port: c.IMAPPort1, User: c.IMAPUser1, Password: c.IMAPPassword1, TLS: c.IMAPTLS1},
		{ID: "account_2", Host: c.IMAPHost2, Port: c.IMAPPort2, User: c.IMAPUser2, Password: c.IMAPPassword2, TLS: c.IMAPTLS2},
	}
}

// SyncWindow is the backfill window derived from SyncDays.
func (c *Config) SyncWindow() time.Duration {
	return time.Duration(c.SyncDays) * 24 * time.Hour
}
