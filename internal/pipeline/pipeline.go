// Package pipeline turns a forum listing into a published, ranked digest.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/google/uuid"
)

// ListingSource fetches the newest submissions of a community.
type ListingSource interface {
	Listing(ctx context.Context, topic string, limit int) (*model.Listing, error)
}

// Summarizer ranks records through the language model.
type Summarizer interface {
	Summarize(ctx context.Context, records []model.Record) ([]model.RankedItem, error)
}

// Publisher persists a finished digest.
type Publisher interface {
	Publish(ctx context.Context, digest model.Digest) error
}

// Result describes one finished run.
type Result struct {
	RunID    string
	Outcome  model.Outcome
	Digest   model.Digest
	Fetched  int
	Recent   int
	Records  int
	Err      error
	Duration time.Duration
}

// Runner executes the fetch → filter → enrich → summarize → link → publish
// sequence. Runs are serialized; a scheduled run and a manual refresh never
// overlap.
type Runner struct {
	Source     ListingSource
	Enricher   *Enricher
	Summarizer Summarizer
	Publisher  Publisher

	Topic  string
	Limit  int
	Window time.Duration
	Now    func() time.Time

	mu sync.Mutex
}

// Run performs one complete pass and reports its terminal outcome. Stage
// failures become outcomes; Run itself never fails.
func (r *Runner) Run(ctx context.Context) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	log := slog.With("run", res.RunID, "topic", r.Topic)
	defer func() {
		res.Duration = time.Since(start)
		log.Info("run finished", "outcome", res.Outcome, "items", len(res.Digest), "duration", res.Duration)
	}()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	window := r.Window
	if window <= 0 {
		window = DefaultWindow
	}

	log.Info("fetching posts", "limit", r.Limit)
	listing, err := r.Source.Listing(ctx, r.Topic, r.Limit)
	if err != nil || listing == nil || len(listing.Submissions) == 0 {
		res.Outcome, res.Err = model.OutcomeNoData, err
		return res
	}
	res.Fetched = len(listing.Submissions)

	recent := FilterRecent(listing, now(), window)
	res.Recent = len(recent)
	log.Info("filtered posts", "fetched", res.Fetched, "recent", res.Recent, "window", window)
	if len(recent) == 0 {
		res.Outcome = model.OutcomeNoRecent
		return res
	}

	records := r.Enricher.Enrich(ctx, recent)
	res.Records = len(records)
	log.Info("enriched posts", "records", res.Records)

	items, err := r.Summarizer.Summarize(ctx, records)
	if err != nil || len(items) == 0 {
		res.Outcome, res.Err = model.OutcomeSummarizeFailed, err
		return res
	}

	digest := Link(items, records)
	log.Info("linked digest", "items", len(digest))

	if err := r.Publisher.Publish(ctx, digest); err != nil {
		res.Outcome, res.Err, res.Digest = model.OutcomePublishFailed, err, digest
		return res
	}

	res.Outcome, res.Digest = model.OutcomeDone, digest
	return res
}
