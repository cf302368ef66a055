package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"perception/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Feed          FeedConfig
	Leaderboard   LeaderboardConfig
	Redis         RedisConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"perception"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

// FeedConfig describes the upstream Perception feed API and the fetch window.
// The window is a fixed most-recent lookback; pages are fetched concurrently
// and the load is all-or-nothing.
type FeedConfig struct {
	BaseURL      string        `envconfig:"FEED_BASE_URL" required:"true"`
	UserID       string        `envconfig:"FEED_USER_ID" default:"perception"`
	LookbackDays int           `envconfig:"FEED_LOOKBACK_DAYS" default:"1"`
	PageSize     int           `envconfig:"FEED_PAGE_SIZE" default:"100"`
	Pages        int           `envconfig:"FEED_PAGES" default:"20"`
	LoadTimeout  time.Duration `envconfig:"FEED_LOAD_TIMEOUT" default:"30s"`
	// Client-side ceiling on request rate during the page fan-out
	RequestsPerSecond float64 `envconfig:"FEED_REQUESTS_PER_SECOND" default:"20"`
}

type LeaderboardConfig struct {
	// Accounts below this mention count are dropped before ranking
	MinMentions int `envconfig:"LEADERBOARD_MIN_MENTIONS" default:"1"`
	// Default page size for the ranked list (the podium is always the top 3)
	DisplayLimit int `envconfig:"LEADERBOARD_DISPLAY_LIMIT" default:"20"`
	// How long a stored snapshot stays valid in shared stores
	SnapshotTTL time.Duration `envconfig:"LEADERBOARD_SNAPSHOT_TTL" default:"1h"`
}

type RedisConfig struct {
	// Host empty means Redis is not used; snapshots stay in process memory
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type TelegramConfig struct {
	// BotToken empty disables the podium notifier
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	RefresherInterval time.Duration `envconfig:"WORKER_REFRESHER_INTERVAL" default:"15m"`
	RefresherEnabled  bool          `envconfig:"WORKER_REFRESHER_ENABLED" default:"true"`

	NotifierInterval time.Duration `envconfig:"WORKER_NOTIFIER_INTERVAL" default:"1h"`
	NotifierEnabled  bool          `envconfig:"WORKER_NOTIFIER_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if cfg.Feed.Pages < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "FEED_PAGES must be >= 1, got %d", cfg.Feed.Pages)
	}
	if cfg.Feed.PageSize < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "FEED_PAGE_SIZE must be >= 1, got %d", cfg.Feed.PageSize)
	}

	return &cfg, nil
}
