// Package appconfig loads and saves the djdeploy settings file.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeProduction = "production"
	ModeDebug      = "debug"

	DefaultIssueURL    = "https://github.com/GoogleCloudPlatform/django-cloud-deploy/issues/new"
	DefaultToolTimeout = 5 * time.Second
)

type Config struct {
	Mode    string        `yaml:"mode"`
	Log     LogConfig     `yaml:"log"`
	Crash   CrashConfig   `yaml:"crash"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type CrashConfig struct {
	IssueURL    string `yaml:"issue_url"`
	ToolTimeout string `yaml:"tool_timeout"`
	// ReportDir holds the local bug-report files. Empty means the OS temp dir.
	ReportDir   string `yaml:"report_dir"`
	CheckLatest bool   `yaml:"check_latest"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // sqlite | postgres
	DSN     string `yaml:"dsn"`
}

// NotifyConfig lists team channels that are told about crash reports the
// user agreed to file.
type NotifyConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	SlackToken     string `yaml:"slack_token"`
	SlackChannel   string `yaml:"slack_channel"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID string `yaml:"telegram_chat_id"`
}

// StateDir is where djdeploy keeps config, logs and crash history.
func StateDir() string {
	if dir := strings.TrimSpace(os.Getenv("DJDEPLOY_STATE_DIR")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".djdeploy"
	}
	return filepath.Join(home, ".djdeploy")
}

func ConfigPath() string {
	return filepath.Join(StateDir(), "config.yaml")
}

func Default() Config {
	return Config{
		Mode: ModeProduction,
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(StateDir(), "logs", "djdeploy.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Crash: CrashConfig{
			IssueURL:    DefaultIssueURL,
			ToolTimeout: DefaultToolTimeout.String(),
			CheckLatest: true,
		},
		History: HistoryConfig{
			Enabled: true,
			Driver:  "sqlite",
			DSN:     filepath.Join(StateDir(), "history.db"),
		},
	}
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.applyEnv().Normalize(), nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.applyEnv().Normalize(), nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg.Normalize())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c Config) applyEnv() Config {
	if mode := strings.TrimSpace(os.Getenv("DJDEPLOY_MODE")); mode != "" {
		c.Mode = mode
	}
	if u := strings.TrimSpace(os.Getenv("DJDEPLOY_ISSUE_URL")); u != "" {
		c.Crash.IssueURL = u
	}
	return c
}

// Normalize fills blanks with defaults and canonicalizes enum fields.
func (c Config) Normalize() Config {
	def := Default()
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != ModeDebug {
		c.Mode = ModeProduction
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if strings.TrimSpace(c.Crash.IssueURL) == "" {
		c.Crash.IssueURL = def.Crash.IssueURL
	}
	if _, err := time.ParseDuration(c.Crash.ToolTimeout); err != nil {
		c.Crash.ToolTimeout = def.Crash.ToolTimeout
	}
	c.History.Driver = strings.ToLower(strings.TrimSpace(c.History.Driver))
	if c.History.Driver != "postgres" {
		c.History.Driver = "sqlite"
	}
	if c.History.Driver == "sqlite" && c.History.DSN == "" {
		c.History.DSN = def.History.DSN
	}
	return c
}

func (c Config) IsDebug() bool {
	return c.Mode == ModeDebug
}

// ToolTimeout bounds each helper-tool version query.
func (c Config) ToolTimeout() time.Duration {
	d, err := time.ParseDuration(c.Crash.ToolTimeout)
	if err != nil || d <= 0 {
		return DefaultToolTimeout
	}
	return d
}
