package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEWSDIGEST_STORAGE", "S3_BUCKET_NAME", "NEWSDIGEST_TOPIC", "NEWSDIGEST_LLM_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)
	assert.Equal(t, "artificial", cfg.Forum.Topic)
	assert.Equal(t, 50, cfg.Forum.Limit)
	assert.Equal(t, 10, cfg.Pipeline.MaxRecords)
	assert.Equal(t, 3, cfg.Pipeline.MaxReplies)
	assert.Equal(t, 5, cfg.Pipeline.TopN)
	assert.Equal(t, 24*time.Hour, cfg.Window())
	assert.Equal(t, time.Second, cfg.RequestDelay())
	assert.True(t, cfg.LocalMode())
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
forum:
  topic: MachineLearning
pipeline:
  window: 2d
storage:
  target: sqlite:///tmp/digest.db
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MachineLearning", cfg.Forum.Topic)
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.Forum.Limit)
	assert.Equal(t, "https://www.reddit.com", cfg.Forum.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Window())
	assert.False(t, cfg.LocalMode())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	t.Setenv("S3_BUCKET_NAME", "digest-bucket")
	t.Setenv("NEWSDIGEST_TOPIC", "LocalLLaMA")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3://digest-bucket", cfg.Storage.Target)
	assert.Equal(t, "LocalLLaMA", cfg.Forum.Topic)

	t.Setenv("NEWSDIGEST_STORAGE", "redis://localhost:6379/0")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.Target)
}

func TestLLMKeyResolution(t *testing.T) {
	clearEnv(t)
	cfg := &Config{LLM: LLMConfig{Provider: "gemini"}}
	assert.Equal(t, "", cfg.LLMKey())

	t.Setenv("GEMINI_API_KEY", "gem")
	assert.Equal(t, "gem", cfg.LLMKey())

	t.Setenv("NEWSDIGEST_LLM_KEY", "generic")
	assert.Equal(t, "generic", cfg.LLMKey())

	cfg.LLM.APIKey = "inline"
	assert.Equal(t, "inline", cfg.LLMKey())
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad scheme", "forum:\n  base_url: ftp://reddit.com\n"},
		{"bad format", "forum:\n  format: atom\n"},
		{"bad provider", "llm:\n  provider: llama\n"},
		{"zero records", "pipeline:\n  max_records: 0\n"},
		{"zero replies", "pipeline:\n  max_replies: 0\n"},
		{"empty topic", "forum:\n  topic: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"1s", time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"soon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.err {
			assert.Error(t, err, "ParseDuration(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseDuration(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseDuration(%q)", tt.input)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.Pipeline.Window = "garbage"
	cfg.Pipeline.RequestDelay = "0s"
	assert.Equal(t, 24*time.Hour, cfg.Window())
	assert.Equal(t, time.Duration(0), cfg.RequestDelay())
	assert.Equal(t, time.Minute, cfg.RefreshCooldown())
}
