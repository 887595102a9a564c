package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type ForumConfig struct {
	BaseURL        string `yaml:"base_url"`
	Topic          string `yaml:"topic"`
	Limit          int    `yaml:"limit"`
	Format         string `yaml:"format"` // "json" or "rss"
	UserAgent      string `yaml:"user_agent"`
	RequestTimeout string `yaml:"request_timeout"`
}

type PipelineConfig struct {
	Window       string `yaml:"window"`
	MaxRecords   int    `yaml:"max_records"`
	MaxReplies   int    `yaml:"max_replies"`
	RequestDelay string `yaml:"request_delay"`
	TopN         int    `yaml:"top_n"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini", "openai" or "anthropic"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  string `yaml:"timeout"`
}

type StorageConfig struct {
	// Target selects the durable blob store. Empty means local-file mode.
	Target     string `yaml:"target"`
	OutputPath string `yaml:"output_path"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	RefreshCooldown string `yaml:"refresh_cooldown"`
}

type ScheduleConfig struct {
	Interval   string `yaml:"interval"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	Forum    ForumConfig    `yaml:"forum"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

// providerKeyEnv lists the provider specific environment variables
// consulted after NEWSDIGEST_LLM_KEY.
var providerKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// LLMKey returns the resolved model credential (config, then env vars).
func (c *Config) LLMKey() string {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	if key := os.Getenv("NEWSDIGEST_LLM_KEY"); key != "" {
		return key
	}
	if env, ok := providerKeyEnv[c.LLM.Provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// LocalMode reports whether no durable storage target is configured.
func (c *Config) LocalMode() bool {
	return c.Storage.Target == ""
}

func (c *Config) Window() time.Duration {
	return parseDuration(c.Pipeline.Window, 24*time.Hour)
}

func (c *Config) RequestDelay() time.Duration {
	return parseDuration(c.Pipeline.RequestDelay, time.Second)
}

func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Forum.RequestTimeout, 30*time.Second)
}

func (c *Config) LLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 2*time.Minute)
}

func (c *Config) RefreshCooldown() time.Duration {
	return parseDuration(c.Server.RefreshCooldown, time.Minute)
}

func (c *Config) ScheduleInterval() time.Duration {
	return parseDuration(c.Schedule.Interval, 24*time.Hour)
}

// ParseDuration accepts Go durations plus an "Nd" day suffix.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsdigest", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the embedded defaults, overlays the file at path (or the XDG
// default when path is empty), then applies environment overrides.
// A missing file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NEWSDIGEST_STORAGE"); v != "" {
		cfg.Storage.Target = v
	} else if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		cfg.Storage.Target = "s3://" + v
	}
	if v := os.Getenv("NEWSDIGEST_TOPIC"); v != "" {
		cfg.Forum.Topic = v
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Forum.BaseURL)
	if err != nil {
		return fmt.Errorf("forum.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("forum.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Forum.Topic == "" {
		return fmt.Errorf("forum.topic is required")
	}
	if cfg.Forum.Format != "json" && cfg.Forum.Format != "rss" {
		return fmt.Errorf("forum.format: unknown format %q (valid: json, rss)", cfg.Forum.Format)
	}
	if cfg.Forum.Limit <= 0 {
		return fmt.Errorf("forum.limit must be positive, got %d", cfg.Forum.Limit)
	}
	if cfg.Pipeline.MaxRecords <= 0 || cfg.Pipeline.MaxReplies <= 0 || cfg.Pipeline.TopN <= 0 {
		return fmt.Errorf("pipeline caps must be positive (max_records=%d, max_replies=%d, top_n=%d)",
			cfg.Pipeline.MaxRecords, cfg.Pipeline.MaxReplies, cfg.Pipeline.TopN)
	}
	if _, ok := providerKeyEnv[cfg.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider: unknown provider %q (valid: gemini, openai, anthropic)", cfg.LLM.Provider)
	}
	return nil
}
