package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN" validate:"required"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies Telegram webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Stacks      string `yaml:"stacks"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Rotation settings for the file sink.
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// DataConfig points the travel data store at its scraped JSON corpus.
type DataConfig struct {
	// Dir is the root directory containing index.json and the category files.
	Dir string `yaml:"dir" envconfig:"DATA_DIR" validate:"required"`
	// Preload parses every indexed file at startup instead of on first use.
	// Unset means enabled.
	Preload *bool `yaml:"preload" envconfig:"DATA_PRELOAD"`
}

// PreloadEnabled reports whether startup preloading is on (the default).
func (d DataConfig) PreloadEnabled() bool {
	return d.Preload == nil || *d.Preload
}

// PlanConfig tunes the trip planning dialogue.
type PlanConfig struct {
	// SessionTTLMinutes evicts planning sessions idle longer than this; 0 -> 30.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" envconfig:"PLAN_SESSION_TTL_MINUTES"`
	// MaxRecommendations caps how many matches are shown on confirmation.
	MaxRecommendations int `yaml:"max_recommendations" envconfig:"PLAN_MAX_RECOMMENDATIONS"`
}

// SessionTTL returns the planner idle expiry as a duration.
func (p PlanConfig) SessionTTL() time.Duration {
	return time.Duration(p.SessionTTLMinutes) * time.Minute
}

// EmailConfig configures the SMTP notification transport.
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"NOTIFY_EMAIL_ENABLED"`
	Host     string `yaml:"host" envconfig:"SMTP_HOST"`
	Port     int    `yaml:"port" envconfig:"SMTP_PORT"`
	Username string `yaml:"username" envconfig:"SMTP_USERNAME"`
	Password string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From     string `yaml:"from" envconfig:"SMTP_FROM" validate:"omitempty,email"`
	To       string `yaml:"to" envconfig:"NOTIFY_EMAIL_TO" validate:"omitempty,email"`
}

// NotifyWebhookConfig configures the HTTP notification transport.
type NotifyWebhookConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"NOTIFY_WEBHOOK_ENABLED"`
	URL     string `yaml:"url" envconfig:"NOTIFY_WEBHOOK_URL" validate:"omitempty,url"`
	Token   string `yaml:"token" envconfig:"NOTIFY_WEBHOOK_TOKEN"`
	// MaxAttempts bounds in-call retries for retryable transport failures.
	MaxAttempts int `yaml:"max_attempts" envconfig:"NOTIFY_WEBHOOK_MAX_ATTEMPTS"`
}

// NotifyConfig aggregates the business notification transports.
type NotifyConfig struct {
	Email   EmailConfig         `yaml:"email"`
	Webhook NotifyWebhookConfig `yaml:"webhook"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration of the whole bot process.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Data      DataConfig      `yaml:"data"`
	Plan      PlanConfig      `yaml:"plan"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &cfg, nil
}

// Normalize performs semantic validation of configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if cfg.Plan.SessionTTLMinutes < 0 {
		return fmt.Errorf("plan.session_ttl_minutes must be >= 0")
	}
	if cfg.Plan.SessionTTLMinutes == 0 {
		cfg.Plan.SessionTTLMinutes = 30
	}
	if cfg.Plan.MaxRecommendations <= 0 {
		cfg.Plan.MaxRecommendations = 5
	}

	if cfg.Notify.Email.Enabled {
		if strings.TrimSpace(cfg.Notify.Email.Host) == "" {
			return fmt.Errorf("notify.email.host is required when notify.email.enabled")
		}
		if cfg.Notify.Email.Port <= 0 {
			cfg.Notify.Email.Port = 587
		}
		if strings.TrimSpace(cfg.Notify.Email.From) == "" {
			cfg.Notify.Email.From = cfg.Notify.Email.Username
		}
		if strings.TrimSpace(cfg.Notify.Email.To) == "" {
			return fmt.Errorf("notify.email.to is required when notify.email.enabled")
		}
	}
	if cfg.Notify.Webhook.Enabled {
		if strings.TrimSpace(cfg.Notify.Webhook.URL) == "" {
			return fmt.Errorf("notify.webhook.url is required when notify.webhook.enabled")
		}
		if cfg.Notify.Webhook.MaxAttempts <= 0 {
			cfg.Notify.Webhook.MaxAttempts = 3
		}
	}
	return nil
}
