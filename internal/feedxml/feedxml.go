// Package feedxml exports digests as RSS 2.0 documents.
package feedxml

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/model"
)

// RSS represents the root of an RSS 2.0 document.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel contains feed metadata and items.
type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

// Item is one ranked digest entry.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	Description string `xml:"description"`
	GUID        *GUID  `xml:"guid,omitempty"`
	Category    string `xml:"category,omitempty"`
}

// GUID identifies an item across feed refreshes.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Meta describes the channel.
type Meta struct {
	Topic string
	Link  string
	Built time.Time
}

// Export renders digest as an RSS 2.0 document. Items without a source URL
// get a non-permalink GUID derived from the build date and rank.
func Export(meta Meta, digest model.Digest) ([]byte, error) {
	doc := RSS{
		Version: "2.0",
		Channel: Channel{
			Title:       fmt.Sprintf("r/%s digest", meta.Topic),
			Link:        meta.Link,
			Description: fmt.Sprintf("Most significant recent posts in r/%s", meta.Topic),
		},
	}
	if !meta.Built.IsZero() {
		doc.Channel.LastBuildDate = meta.Built.UTC().Format(time.RFC1123Z)
	}

	day := meta.Built.UTC().Format("2006-01-02")
	for _, d := range digest {
		item := Item{
			Title:       fmt.Sprintf("#%d %s", d.Rank, d.Title),
			Link:        d.URL,
			Description: d.Explanation,
			Category:    meta.Topic,
		}
		if d.URL != "" {
			item.GUID = &GUID{IsPermaLink: true, Value: d.URL}
		} else {
			item.GUID = &GUID{Value: fmt.Sprintf("%s-%s-%d", meta.Topic, day, d.Rank)}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}
