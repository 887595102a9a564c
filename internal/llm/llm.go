// Package llm wraps the generative-text providers used to rank posts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider turns a single text prompt into a single text response.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ErrNoAPIKey is returned by New when no credential is configured.
var ErrNoAPIKey = errors.New("llm: no API key configured")

// Options selects and configures a provider.
type Options struct {
	Provider string // "gemini", "openai" or "anthropic"
	Model    string
	APIKey   string
	BaseURL  string // optional endpoint override
	Timeout  time.Duration
}

// New creates a Provider from opts.
func New(opts Options) (Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w for %q", ErrNoAPIKey, opts.Provider)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	client := &http.Client{Timeout: opts.Timeout}

	switch opts.Provider {
	case "gemini":
		p, err := newGemini(opts, client)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		return newOpenAI(opts, client), nil
	case "anthropic":
		return newAnthropic(opts, client), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (valid: gemini, openai, anthropic)", opts.Provider)
	}
}

// Unavailable returns a provider whose every call fails with err.
func Unavailable(name string, err error) Provider {
	return unavailable{name: name, err: err}
}

type unavailable struct {
	name string
	err  error
}

func (u unavailable) Name() string { return u.name }

func (u unavailable) Generate(context.Context, string) (string, error) {
	return "", u.err
}
