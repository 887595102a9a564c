// Package summarize asks the language model to rank enriched records and
// parses its answer.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bryan-buckman/newsdigest/internal/llm"
	"github.com/bryan-buckman/newsdigest/internal/model"
)

// DefaultTopN is the number of items the model is asked for.
const DefaultTopN = 5

// ErrEmpty is returned when the model answered with an empty list.
var ErrEmpty = errors.New("model returned no ranked items")

const promptTemplate = `You are a news analyst covering the r/%[1]s community. The JSON below lists recent posts from r/%[1]s together with a few of their top comments. Each post has an "index" field giving its position in the list.

Your task:
1. Read the posts and their comments.
2. Pick the %[2]d most significant news items or discussions.
3. For each one give a short headline, a brief explanation of 2-5 sentences, and the index of the post it comes from.

Input data:
%[3]s

Output format (JSON):
[
  {
    "rank": 1,
    "original_index": 0,
    "title": "Headline for the item",
    "explanation": "Why it matters..."
  }
]

Return ONLY the JSON array. Do not wrap it in markdown code fences.`

// promptRecord is a record as presented to the model.
type promptRecord struct {
	Index int `json:"index"`
	model.Record
}

// BuildPrompt renders the instruction template around the serialized records.
func BuildPrompt(topic string, topN int, records []model.Record) (string, error) {
	payload := make([]promptRecord, len(records))
	for i, r := range records {
		payload[i] = promptRecord{Index: i, Record: r}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize records: %w", err)
	}
	return fmt.Sprintf(promptTemplate, topic, topN, data), nil
}

// Summarizer ranks records through a single model call.
type Summarizer struct {
	Provider llm.Provider
	Topic    string
	TopN     int
}

// Summarize returns at most TopN ranked items. Any failure, whether the call
// itself or an answer that does not parse, comes back as an error with no
// items; callers treat it as a failed run, not a crash.
func (s *Summarizer) Summarize(ctx context.Context, records []model.Record) ([]model.RankedItem, error) {
	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	prompt, err := BuildPrompt(s.Topic, topN, records)
	if err != nil {
		return nil, err
	}

	text, err := s.Provider.Generate(ctx, prompt)
	if err != nil {
		slog.Error("summarization call failed", "provider", s.Provider.Name(), "error", err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	items, err := Parse(text)
	if err != nil {
		slog.Error("summarization response unusable", "provider", s.Provider.Name(), "error", err, "response", truncate(text, 200))
		return nil, err
	}
	if len(items) > topN {
		items = items[:topN]
	}
	return items, nil
}

// StripFences removes an optional surrounding markdown code fence, tagged
// "json" or untagged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 7 && strings.EqualFold(text[:7], "```json") {
		text = text[7:]
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

type rawItem struct {
	Rank          json.RawMessage `json:"rank"`
	OriginalIndex json.RawMessage `json:"original_index"`
	Ordinal       json.RawMessage `json:"ordinal"`
	Title         string          `json:"title"`
	Explanation   string          `json:"explanation"`
}

// Parse decodes the model's answer into ranked items. The answer must be a
// non-empty JSON array of objects, optionally fenced. An ordinal that is
// absent or not an integer is kept as nil rather than failing the parse.
func Parse(text string) ([]model.RankedItem, error) {
	body := StripFences(text)

	var raw []rawItem
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("parse ranked items: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	items := make([]model.RankedItem, 0, len(raw))
	for i, r := range raw {
		ordRaw := r.OriginalIndex
		if len(ordRaw) == 0 {
			ordRaw = r.Ordinal
		}
		rank := i + 1
		if n := intValue(r.Rank); n != nil {
			rank = *n
		}
		items = append(items, model.RankedItem{
			Rank:        rank,
			Ordinal:     intValue(ordRaw),
			Title:       r.Title,
			Explanation: r.Explanation,
		})
	}
	return items, nil
}

// intValue returns the integer held by raw, or nil when raw is absent, null
// or any other JSON value (including 2.0 and "2").
func intValue(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	num, ok := v.(json.Number)
	if !ok || strings.ContainsAny(num.String(), ".eE") {
		return nil
	}
	n, err := num.Int64()
	if err != nil {
		return nil
	}
	i := int(n)
	return &i
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
