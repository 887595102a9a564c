package forum

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bryan-buckman/newsdigest/internal/model"
)

// rssListing reads the community's feed. The feed carries no score or
// comment count, so those stay zero. Entries without a published or
// updated time are skipped.
func (c *Client) rssListing(ctx context.Context, topic string) (*model.Listing, error) {
	u := fmt.Sprintf("%s/r/%s/new.rss", c.baseURL, url.PathEscape(topic))

	feed, err := c.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed r/%s: %w", topic, err)
	}

	listing := &model.Listing{Submissions: make([]model.Submission, 0, len(feed.Items))}
	for _, item := range feed.Items {
		var created time.Time
		switch {
		case item.PublishedParsed != nil:
			created = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			created = *item.UpdatedParsed
		default:
			// without a timestamp the recency filter cannot judge the entry
			slog.Warn("skipping feed entry without timestamp", "topic", topic, "link", item.Link)
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		text := htmlToText(content)

		listing.Submissions = append(listing.Submissions, model.Submission{
			ID:         strings.TrimPrefix(item.GUID, "t3_"),
			Title:      item.Title,
			Selftext:   &text,
			URL:        item.Link,
			CreatedUTC: float64(created.Unix()),
			Permalink:  permalinkPath(item.Link),
		})
	}
	return listing, nil
}

// htmlToText flattens an HTML fragment to whitespace-normalised text.
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func permalinkPath(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return link
	}
	return u.Path
}
