package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port          int           `yaml:"port"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieDomain  string        `yaml:"cookie_domain"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	RateLimit     int           `yaml:"rate_limit"` // mutating requests per user per window
	RateWindow    time.Duration `yaml:"rate_window"`
}

type AdminConfig struct {
	Port int `yaml:"port"` // /metrics and health probes
}

type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type PollConfig struct {
	Interval        time.Duration `yaml:"interval"`         // single-job poll spacing
	MaxAttempts     int           `yaml:"max_attempts"`     // single-job poll budget
	RefreshInterval time.Duration `yaml:"refresh_interval"` // inbox list re-fetch
	SnoozeInterval  time.Duration `yaml:"snooze_interval"`  // due-snooze sweep
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TipTTL   time.Duration `yaml:"tip_ttl"`
}

type AIConfig struct {
	OpenAIKey        string `yaml:"openai_key"`
	GeminiKey        string `yaml:"gemini_key"`
	GeminiURL        string `yaml:"gemini_url"`
	DefaultModel     string `yaml:"default_model"`
	ConcurrentLimit  int    `yaml:"concurrent_limit"`
	InputPriceMicro  int64  `yaml:"input_token_price_micros"`
	OutputPriceMicro int64  `yaml:"output_token_price_micros"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
	MinPriority   int    `yaml:"min_priority"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Poll     PollConfig     `yaml:"poll"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Notify   NotifyConfig   `yaml:"notify"`
	Workers  WorkerConfig   `yaml:"workers"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 12 * time.Hour
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 30
	}
	if cfg.Server.RateWindow <= 0 {
		cfg.Server.RateWindow = time.Minute
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Upstream.Timeout <= 0 {
		cfg.Upstream.Timeout = 15 * time.Second
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = 2 * time.Second
	}
	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 120
	}
	if cfg.Poll.RefreshInterval <= 0 {
		cfg.Poll.RefreshInterval = 15 * time.Second
	}
	if cfg.Poll.SnoozeInterval <= 0 {
		cfg.Poll.SnoozeInterval = time.Minute
	}
	if cfg.Redis.TipTTL <= 0 {
		cfg.Redis.TipTTL = 24 * time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.Workers.Count <= 0 {
		cfg.Workers.Count = 8
	}

	// Minimal validation
	if cfg.Upstream.BaseURL == "" {
		return nil, errors.New("upstream.base_url is required")
	}
	if cfg.Upstream.APIKey == "" {
		return nil, errors.New("upstream.api_key is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.SessionSecret == "" && !dev {
		return nil, errors.New("server.session_secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
