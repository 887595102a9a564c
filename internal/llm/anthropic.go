package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 2048

type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropic(opts Options, httpClient *http.Client) *anthropicProvider {
	model := opts.Model
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &anthropicProvider{client: anthropic.NewClient(reqOpts...), model: model}
}

func (a *anthropicProvider) Name() string { return "anthropic" }

func (a *anthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)
	if err != nil {
		slog.Error("Anthropic API call failed", "error", err, "duration", duration, "model", a.model)
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty anthropic response")
	}

	slog.Debug("Anthropic API response",
		"model", a.model,
		"duration", duration,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens)
	return sb.String(), nil
}
