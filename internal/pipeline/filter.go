package pipeline

import (
	"time"

	"github.com/bryan-buckman/newsdigest/internal/model"
)

// DefaultWindow is the trailing recency window.
const DefaultWindow = 24 * time.Hour

// FilterRecent keeps submissions created at or after now-window, preserving
// source order. The cutoff is computed once for the whole listing.
func FilterRecent(listing *model.Listing, now time.Time, window time.Duration) []model.Submission {
	if listing == nil || len(listing.Submissions) == 0 {
		return []model.Submission{}
	}

	cutoff := float64(now.Unix()) + float64(now.Nanosecond())/1e9 - window.Seconds()

	recent := make([]model.Submission, 0, len(listing.Submissions))
	for _, sub := range listing.Submissions {
		if sub.CreatedUTC >= cutoff {
			recent = append(recent, sub)
		}
	}
	return recent
}
