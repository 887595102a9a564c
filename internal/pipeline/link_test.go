package pipeline

import (
	"testing"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/stretchr/testify/assert"
)

func intp(i int) *int { return &i }

func TestLink(t *testing.T) {
	records := []model.Record{
		{URL: "https://example.com/0"},
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
	}
	items := []model.RankedItem{
		{Rank: 1, Ordinal: intp(0), Title: "a", Explanation: "x"},
		{Rank: 2, Ordinal: intp(2), Title: "b", Explanation: "y"},
		{Rank: 3, Ordinal: intp(9), Title: "c", Explanation: "z"},
		{Rank: 4, Ordinal: nil, Title: "d"},
		{Rank: 5, Ordinal: intp(-1), Title: "e"},
	}

	digest := Link(items, records)
	assert.Len(t, digest, 5)
	assert.Equal(t, model.DigestItem{Rank: 1, Title: "a", Explanation: "x", URL: "https://example.com/0"}, digest[0])
	assert.Equal(t, "https://example.com/2", digest[1].URL)
	assert.Empty(t, digest[2].URL)
	assert.Equal(t, "c", digest[2].Title)
	assert.Empty(t, digest[3].URL)
	assert.Empty(t, digest[4].URL)
}

func TestLinkEmpty(t *testing.T) {
	digest := Link(nil, nil)
	assert.NotNil(t, digest)
	assert.Empty(t, digest)
}
