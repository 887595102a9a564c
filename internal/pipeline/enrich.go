package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/forum"
	"github.com/bryan-buckman/newsdigest/internal/model"
)

// Enrichment defaults.
const (
	DefaultMaxRecords = 10
	DefaultMaxReplies = 3
	DefaultDelay      = time.Second
)

// ReplySource fetches the top-level replies of a submission.
type ReplySource interface {
	Replies(ctx context.Context, permalink string) ([]forum.Reply, error)
}

// SleepFunc pauses before each reply fetch. Tests substitute a no-op.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enricher projects filtered submissions into records, attaching a few
// replies to each. Fetches are strictly sequential with a fixed pause
// before every one of them.
type Enricher struct {
	Source     ReplySource
	MaxRecords int
	MaxReplies int
	Delay      time.Duration
	Sleep      SleepFunc
}

// Enrich returns at most MaxRecords records in input order. The index of a
// record in the result is its ordinal. A failed reply fetch yields a record
// with no comments; it never aborts the pass.
func (e *Enricher) Enrich(ctx context.Context, subs []model.Submission) []model.Record {
	maxRecords := e.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if len(subs) > maxRecords {
		subs = subs[:maxRecords]
	}
	sleep := e.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	records := make([]model.Record, 0, len(subs))
	for _, sub := range subs {
		rec := model.Record{
			Title:       sub.Title,
			Selftext:    sub.Selftext,
			URL:         sub.URL,
			Score:       sub.Score,
			NumComments: sub.NumComments,
			Comments:    []string{},
		}

		if err := sleep(ctx, e.Delay); err != nil {
			slog.Debug("enrich delay interrupted", "id", sub.ID, "error", err)
		}

		replies, err := e.Source.Replies(ctx, sub.Permalink)
		if err != nil {
			slog.Warn("using empty comments", "id", sub.ID, "permalink", sub.Permalink, "error", err)
		} else {
			rec.Comments = e.topReplies(replies)
		}
		records = append(records, rec)
	}
	return records
}

// topReplies looks at the first MaxReplies replies and keeps those that
// carry body text.
func (e *Enricher) topReplies(replies []forum.Reply) []string {
	maxReplies := e.MaxReplies
	if maxReplies <= 0 {
		maxReplies = DefaultMaxReplies
	}
	if len(replies) > maxReplies {
		replies = replies[:maxReplies]
	}
	bodies := make([]string, 0, len(replies))
	for _, r := range replies {
		if r.Body == nil {
			continue
		}
		bodies = append(bodies, *r.Body)
	}
	return bodies
}
