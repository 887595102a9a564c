// Package forum fetches submission listings and reply trees from the forum.
package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/mmcdole/gofeed"
)

// DefaultUserAgent is a browser-like identification header.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Listing formats.
const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

// Reply is a top-level reply. Body is nil when the entry carries no text
// (for example a "load more" stub).
type Reply struct {
	Body *string
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Format    string
	Timeout   time.Duration
}

// Client talks to the forum's public JSON (or RSS) endpoints.
type Client struct {
	baseURL   string
	userAgent string
	format    string
	http      *http.Client
	parser    *gofeed.Parser
}

// NewClient creates a client. Zero-valued options fall back to defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.reddit.com"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: opts.Timeout}

	parser := gofeed.NewParser()
	parser.UserAgent = opts.UserAgent
	parser.Client = httpClient

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		format:    opts.Format,
		http:      httpClient,
		parser:    parser,
	}
}

// wire shapes of the listing and comment endpoints

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingEnvelope struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type commentData struct {
	Body *string `json:"body"`
}

// Listing fetches the newest submissions for topic. Any transport,
// status or decode failure is logged here and returned as an error with a
// nil listing.
func (c *Client) Listing(ctx context.Context, topic string, limit int) (*model.Listing, error) {
	var (
		listing *model.Listing
		err     error
	)
	if c.format == FormatRSS {
		listing, err = c.rssListing(ctx, topic)
	} else {
		listing, err = c.jsonListing(ctx, topic, limit)
	}
	if err != nil {
		slog.Error("forum listing fetch failed", "topic", topic, "format", c.format, "error", err)
		return nil, err
	}
	return listing, nil
}

func (c *Client) jsonListing(ctx context.Context, topic string, limit int) (*model.Listing, error) {
	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, url.PathEscape(topic), limit)

	var env listingEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("fetch listing r/%s: %w", topic, err)
	}

	listing := &model.Listing{Submissions: make([]model.Submission, 0, len(env.Data.Children))}
	for _, child := range env.Data.Children {
		var sub model.Submission
		if err := json.Unmarshal(child.Data, &sub); err != nil {
			slog.Warn("skipping malformed submission", "topic", topic, "error", err)
			continue
		}
		listing.Submissions = append(listing.Submissions, sub)
	}
	return listing, nil
}

// Replies fetches the reply tree for a submission permalink and returns its
// top-level replies in source order.
func (c *Client) Replies(ctx context.Context, permalink string) ([]Reply, error) {
	u := c.baseURL + "/" + strings.TrimLeft(strings.TrimSuffix(permalink, "/"), "/") + ".json"

	var pages []listingEnvelope
	if err := c.getJSON(ctx, u, &pages); err != nil {
		slog.Warn("forum comment fetch failed", "permalink", permalink, "error", err)
		return nil, fmt.Errorf("fetch comments %s: %w", permalink, err)
	}
	// [0] is the submission itself, [1] the comment listing.
	if len(pages) < 2 {
		return nil, nil
	}

	replies := make([]Reply, 0, len(pages[1].Data.Children))
	for _, child := range pages[1].Data.Children {
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			replies = append(replies, Reply{})
			continue
		}
		replies = append(replies, Reply{Body: cd.Body})
	}
	return replies, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
