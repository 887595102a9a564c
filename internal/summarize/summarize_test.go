package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func sampleRecords() []model.Record {
	body := "self text"
	return []model.Record{
		{Title: "Zero", Selftext: &body, URL: "https://example.com/0", Score: 10, NumComments: 2, Comments: []string{"nice"}},
		{Title: "One", URL: "https://example.com/1", Comments: []string{}},
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`[1]`, `[1]`},
		{"```json\n[1]\n```", `[1]`},
		{"```\n[1]\n```", `[1]`},
		{"  ```JSON[1]```  ", `[1]`},
		{"[1]\n```", `[1]`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.input), "StripFences(%q)", tt.input)
	}
}

func TestParseFencedArray(t *testing.T) {
	text := "```json\n" + `[
  {"rank": 1, "original_index": 0, "title": "A", "explanation": "first"},
  {"rank": 2, "original_index": 2, "title": "B", "explanation": "second"},
  {"rank": 3, "original_index": 9, "title": "C", "explanation": "third"}
]` + "\n```"

	items, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, want := range []int{0, 2, 9} {
		require.NotNil(t, items[i].Ordinal)
		assert.Equal(t, want, *items[i].Ordinal)
		assert.Equal(t, i+1, items[i].Rank)
	}
	assert.Equal(t, "B", items[1].Title)
	assert.Equal(t, "second", items[1].Explanation)
}

func TestParseOrdinalVariants(t *testing.T) {
	text := `[
  {"rank": 1, "original_index": "1", "title": "string"},
  {"rank": 2, "original_index": 1.5, "title": "float"},
  {"rank": 3, "original_index": null, "title": "null"},
  {"rank": 4, "title": "missing"},
  {"rank": 5, "ordinal": 1, "title": "alias"},
  {"title": "no rank", "original_index": 0}
]`
	items, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, items, 6)
	for i := 0; i < 4; i++ {
		assert.Nil(t, items[i].Ordinal, items[i].Title)
	}
	require.NotNil(t, items[4].Ordinal)
	assert.Equal(t, 1, *items[4].Ordinal)
	assert.Equal(t, 6, items[5].Rank)
}

func TestParseFailures(t *testing.T) {
	tests := []string{
		"",
		"Here are the top stories: ...",
		`{"rank": 1}`,
		`[1, 2, 3]`,
		"```json\n[{\"rank\": 1,\n```",
	}
	for _, text := range tests {
		_, err := Parse(text)
		assert.Error(t, err, "Parse(%q)", text)
	}
}

func TestParseEmptyArray(t *testing.T) {
	_, err := Parse("[]")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("artificial", 5, sampleRecords())
	require.NoError(t, err)

	assert.Contains(t, prompt, "r/artificial")
	assert.Contains(t, prompt, "Pick the 5 most significant")
	assert.Contains(t, prompt, `"original_index"`)

	start := strings.Index(prompt, "Input data:\n") + len("Input data:\n")
	end := strings.Index(prompt, "\n\nOutput format")
	var payload []map[string]any
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end]), &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, float64(0), payload[0]["index"])
	assert.Equal(t, float64(1), payload[1]["index"])
	assert.Equal(t, "One", payload[1]["title"])
	assert.Nil(t, payload[1]["selftext"])
	assert.Equal(t, []any{}, payload[1]["comments"])
}

func TestSummarizeTruncatesToTopN(t *testing.T) {
	fake := &fakeProvider{response: `[
  {"rank": 1, "original_index": 0, "title": "A"},
  {"rank": 2, "original_index": 1, "title": "B"},
  {"rank": 3, "original_index": 0, "title": "C"}
]`}
	s := &Summarizer{Provider: fake, Topic: "artificial", TopN: 2}

	items, err := s.Summarize(context.Background(), sampleRecords())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1].Title)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Pick the 2 most significant")
}

func TestSummarizeProviderError(t *testing.T) {
	s := &Summarizer{Provider: &fakeProvider{err: errors.New("quota exceeded")}, Topic: "artificial"}
	items, err := s.Summarize(context.Background(), sampleRecords())
	assert.Error(t, err)
	assert.Nil(t, items)
}

func TestSummarizeUnparsable(t *testing.T) {
	s := &Summarizer{Provider: &fakeProvider{response: "I could not find any news today."}, Topic: "artificial"}
	items, err := s.Summarize(context.Background(), sampleRecords())
	assert.Error(t, err)
	assert.Empty(t, items)
}
