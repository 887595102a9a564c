// Package model defines shared data structures.
package model

// Submission is a single post as returned by the forum listing endpoint.
type Submission struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    *string `json:"selftext"` // nil when the source omits it
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"` // seconds since epoch
	Permalink   string  `json:"permalink"`
}

// Listing is the ordered result of one listing fetch, newest first.
type Listing struct {
	Submissions []Submission
}

// Record is the minimal projection of a submission sent to the model.
// Its position in the containing slice is the ordinal the model refers back to.
type Record struct {
	Title       string   `json:"title"`
	Selftext    *string  `json:"selftext"`
	URL         string   `json:"url"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	Comments    []string `json:"comments"`
}

// RankedItem is one entry of the model's ranked output.
type RankedItem struct {
	Rank        int
	Ordinal     *int // nil when missing or not an integer
	Title       string
	Explanation string
}

// DigestItem is a ranked item after linking: the ordinal is gone and the
// source URL is attached when the ordinal resolved.
type DigestItem struct {
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url,omitempty"`
}

// Digest is the published ranked list.
type Digest []DigestItem
