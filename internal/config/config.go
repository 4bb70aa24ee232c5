// Package config resolves runtime settings. Later layers win:
// defaults, then the YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath      = "CYCLECAST_CONFIG"
	EnvDBPath          = "CYCLECAST_DB"
	EnvTimezone        = "TZ"
	EnvLanguage        = "CYCLECAST_LANG"
	EnvEducationURL    = "CYCLECAST_EDUCATION_URL"
	EnvTelegramToken   = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID  = "TELEGRAM_CHAT_ID"
	EnvReminderTime    = "CYCLECAST_REMINDER_TIME"
	EnvPredictedPeriod = "CYCLECAST_PREDICTED_REMINDER"
	EnvMetricsTextfile = "CYCLECAST_METRICS_TEXTFILE"
)

const (
	defaultTimezone = "UTC"
	defaultLanguage = "en"
	defaultDirName  = ".cyclecast"
)

type Config struct {
	DBPath           string         `yaml:"db_path" json:"db_path"`
	Timezone         string         `yaml:"timezone" json:"timezone"`
	Language         string         `yaml:"language" json:"language"`
	EducationBaseURL string         `yaml:"education_base_url" json:"education_base_url"`
	Reminder         ReminderConfig `yaml:"reminder" json:"reminder"`
	MetricsTextfile  string         `yaml:"metrics_textfile" json:"metrics_textfile"`
}

type ReminderConfig struct {
	// PredictedPeriodEnabled seeds the stored preference on first run only.
	PredictedPeriodEnabled *bool  `yaml:"predicted_period_enabled" json:"predicted_period_enabled,omitempty"`
	Time                   string `yaml:"time" json:"time"`
	TelegramBotToken       string `yaml:"telegram_bot_token" json:"-"`
	TelegramChatID         string `yaml:"telegram_chat_id" json:"telegram_chat_id"`
}

func Default() *Config {
	return &Config{
		DBPath:   filepath.Join(homeDir(), defaultDirName, "cyclecast.db"),
		Timezone: defaultTimezone,
		Language: defaultLanguage,
	}
}

// Load resolves the configuration. An explicit path must exist; the
// default path is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = getEnv(EnvConfigPath, DefaultPath())
		explicit = os.Getenv(EnvConfigPath) != ""
	}

	fileConfig, err := loadFromPath(path)
	switch {
	case err == nil:
		cfg = merge(cfg, fileConfig)
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	return applyEnv(cfg), nil
}

func DefaultPath() string {
	return filepath.Join(homeDir(), defaultDirName, "config.yaml")
}

// Location resolves Timezone, falling back to UTC.
func (cfg *Config) Location() *time.Location {
	return mustLoadLocation(cfg.Timezone)
}

func loadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// merge copies the non-empty fields of src over dst.
func merge(dst *Config, src *Config) *Config {
	if src.DBPath != "" {
		dst.DBPath = expandHome(src.DBPath)
	}
	if src.Timezone != "" {
		dst.Timezone = src.Timezone
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.EducationBaseURL != "" {
		dst.EducationBaseURL = src.EducationBaseURL
	}
	if src.MetricsTextfile != "" {
		dst.MetricsTextfile = expandHome(src.MetricsTextfile)
	}
	if src.Reminder.PredictedPeriodEnabled != nil {
		enabled := *src.Reminder.PredictedPeriodEnabled
		dst.Reminder.PredictedPeriodEnabled = &enabled
	}
	if src.Reminder.Time != "" {
		dst.Reminder.Time = src.Reminder.Time
	}
	if src.Reminder.TelegramBotToken != "" {
		dst.Reminder.TelegramBotToken = src.Reminder.TelegramBotToken
	}
	if src.Reminder.TelegramChatID != "" {
		dst.Reminder.TelegramChatID = src.Reminder.TelegramChatID
	}
	return dst
}

func applyEnv(cfg *Config) *Config {
	cfg.DBPath = expandHome(getEnv(EnvDBPath, cfg.DBPath))
	cfg.Timezone = getEnv(EnvTimezone, cfg.Timezone)
	cfg.Language = getEnv(EnvLanguage, cfg.Language)
	cfg.EducationBaseURL = getEnv(EnvEducationURL, cfg.EducationBaseURL)
	cfg.MetricsTextfile = getEnv(EnvMetricsTextfile, cfg.MetricsTextfile)
	cfg.Reminder.Time = getEnv(EnvReminderTime, cfg.Reminder.Time)
	cfg.Reminder.TelegramBotToken = getEnv(EnvTelegramToken, cfg.Reminder.TelegramBotToken)
	cfg.Reminder.TelegramChatID = getEnv(EnvTelegramChatID, cfg.Reminder.TelegramChatID)

	if raw := os.Getenv(EnvPredictedPeriod); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			log.Printf("invalid %s %q, ignoring", EnvPredictedPeriod, raw)
		} else {
			cfg.Reminder.PredictedPeriodEnabled = &enabled
		}
	}
	return cfg
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
