package config

import (
	"fmt"
	"log"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "DRAFT_REVIEWER_CONFIG"
	wikiAPIURLEnv     = "WIKI_API_URL"
	wikiAccessToken   = "WIKI_ACCESS_TOKEN"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Source kinds understood by the title-source registry.
const (
	SourceStatic   = "static"
	SourceCategory = "category"
	SourceListing  = "listing"
)

// Config holds high-level settings required across the application.
type Config struct {
	Wiki          WikiConfig         `yaml:"wiki"`
	Submission    SubmissionConfig   `yaml:"submission"`
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// WikiConfig describes how to reach the wiki's Action API.
type WikiConfig struct {
	APIURL      string        `yaml:"apiUrl"`
	ArticlePath string        `yaml:"articlePath"`
	AccessToken string        `yaml:"accessToken"`
	UserAgent   string        `yaml:"userAgent"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SubmissionConfig names the status template and the stale-draft window.
type SubmissionConfig struct {
	TemplateName string `yaml:"templateName"`
	StaleMonths  int    `yaml:"staleMonths"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes Postgres connection details; empty DSN disables the ledger.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines how often the sweeper runs in watch mode.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SourceConfig describes one list of drafts the sweeper inspects.
type SourceConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Titles   []string `yaml:"titles"`
	Category string   `yaml:"category"`
	URL      string   `yaml:"url"`
	Prefix   string   `yaml:"prefix"`
	Limit    int      `yaml:"limit"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate reports settings the application cannot start without.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Wiki),
		validation.Field(&c.Sources),
	); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate requires an absolute api.php URL.
func (w WikiConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.APIURL, validation.Required, is.RequestURL),
		validation.Field(&w.ArticlePath, is.RequestURL),
		validation.Field(&w.Timeout, validation.Min(time.Duration(0))),
	)
}

// Validate checks that a source names a known kind and carries what that kind needs.
func (s SourceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Kind, validation.Required, validation.In(SourceStatic, SourceCategory, SourceListing)),
		validation.Field(&s.Titles, validation.When(s.Kind == SourceStatic, validation.Required)),
		validation.Field(&s.Category, validation.When(s.Kind == SourceCategory, validation.Required)),
		validation.Field(&s.URL, validation.When(s.Kind == SourceListing, validation.Required), is.RequestURL),
		validation.Field(&s.Limit, validation.Min(0)),
	)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(wikiAPIURLEnv); v != "" {
		c.Wiki.APIURL = v
	}

	if v := os.Getenv(wikiAccessToken); v != "" {
		c.Wiki.AccessToken = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Wiki.APIURL != "" {
		base.Wiki.APIURL = override.Wiki.APIURL
	}
	if override.Wiki.ArticlePath != "" {
		base.Wiki.ArticlePath = override.Wiki.ArticlePath
	}
	if override.Wiki.AccessToken != "" {
		base.Wiki.AccessToken = override.Wiki.AccessToken
	}
	if override.Wiki.UserAgent != "" {
		base.Wiki.UserAgent = override.Wiki.UserAgent
	}
	if override.Wiki.Timeout > 0 {
		base.Wiki.Timeout = override.Wiki.Timeout
	}

	if override.Submission.TemplateName != "" {
		base.Submission.TemplateName = override.Submission.TemplateName
	}
	if override.Submission.StaleMonths > 0 {
		base.Submission.StaleMonths = override.Submission.StaleMonths
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Wiki: WikiConfig{
			APIURL:      "https://en.wikipedia.org/w/api.php",
			ArticlePath: "https://en.wikipedia.org/wiki",
			UserAgent:   "DraftReviewer/1.0",
			Timeout:     20 * time.Second,
		},
		Submission: SubmissionConfig{TemplateName: "AFC submission", StaleMonths: 6},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
		Database:   DatabaseConfig{DSN: ""},
		Scheduler:  SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sources: []SourceConfig{
			{
				Name:     "afc-drafts",
				Kind:     SourceCategory,
				Category: "Category:Declined AfC submissions",
				Limit:    50,
			},
		},
	}
}
