package pipeline

import "github.com/bryan-buckman/newsdigest/internal/model"

// Link resolves each item's ordinal to the URL of the record it points at.
// Items with a missing or out-of-range ordinal keep no URL. Every input
// item yields exactly one output item, in the same order.
func Link(items []model.RankedItem, records []model.Record) model.Digest {
	digest := make(model.Digest, 0, len(items))
	for _, item := range items {
		out := model.DigestItem{
			Rank:        item.Rank,
			Title:       item.Title,
			Explanation: item.Explanation,
		}
		if idx := item.Ordinal; idx != nil && *idx >= 0 && *idx < len(records) {
			out.URL = records[*idx].URL
		}
		digest = append(digest, out)
	}
	return digest
}
