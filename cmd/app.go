package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bryan-buckman/newsdigest/internal/config"
	"github.com/bryan-buckman/newsdigest/internal/forum"
	"github.com/bryan-buckman/newsdigest/internal/llm"
	"github.com/bryan-buckman/newsdigest/internal/pipeline"
	"github.com/bryan-buckman/newsdigest/internal/publish"
	"github.com/bryan-buckman/newsdigest/internal/storage"
	"github.com/bryan-buckman/newsdigest/internal/summarize"
)

// openPublisher opens the configured blob store, or none in local mode.
// The returned close func is always non-nil.
func openPublisher(ctx context.Context, c *config.Config) (*publish.Publisher, func(), error) {
	if c.LocalMode() {
		slog.Info("no storage target configured, using local file", "path", c.Storage.OutputPath)
		return publish.New(nil, c.Storage.OutputPath), func() {}, nil
	}

	store, err := storage.Open(ctx, c.Storage.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	slog.Info("storage opened", "backend", store.Backend())
	return publish.New(store, c.Storage.OutputPath), func() { store.Close() }, nil
}

// newRunner wires the pipeline stages from config. A missing model
// credential does not fail construction; runs end as SummarizeFailed.
func newRunner(c *config.Config, pub pipeline.Publisher) (*pipeline.Runner, error) {
	provider, err := llm.New(llm.Options{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLMKey(),
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLMTimeout(),
	})
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		slog.Warn("no model credential configured, summarization will fail", "provider", c.LLM.Provider)
		provider = llm.Unavailable(c.LLM.Provider, err)
	case err != nil:
		return nil, err
	}

	client := forum.NewClient(forum.Options{
		BaseURL:   c.Forum.BaseURL,
		UserAgent: c.Forum.UserAgent,
		Format:    c.Forum.Format,
		Timeout:   c.RequestTimeout(),
	})

	return &pipeline.Runner{
		Source: client,
		Enricher: &pipeline.Enricher{
			Source:     client,
			MaxRecords: c.Pipeline.MaxRecords,
			MaxReplies: c.Pipeline.MaxReplies,
			Delay:      c.RequestDelay(),
		},
		Summarizer: &summarize.Summarizer{
			Provider: provider,
			Topic:    c.Forum.Topic,
			TopN:     c.Pipeline.TopN,
		},
		Publisher: pub,
		Topic:     c.Forum.Topic,
		Limit:     c.Forum.Limit,
		Window:    c.Window(),
	}, nil
}
