package model

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadArticles(t *testing.T) {
	t.Run("Load valid dataset", func(t *testing.T) {
		data := `{
			"Nvidia": [{"headline": "Nvidia invests $5 billion in Intel", "content": "Nvidia  will invest\n https://x.y/z in Intel.", "source": "Reuters", "url": "https://reuters.com/a", "timestamp": "2025-09-18"}],
			"AMD": [{"headline": "AMD launches MI355", "content": "AMD launched.", "source": "CNBC", "timestamp": "2025-09-18"}]
		}`

		articles, err := LoadArticles(strings.NewReader(data), testLogger())
		require.NoError(t, err, "Expected LoadArticles to not return an error")
		require.Len(t, articles, 2)

		assert.Equal(t, "AMD", articles[0].Company, "Expected companies in alphabetical order")
		assert.Equal(t, "Nvidia", articles[1].Company)
		assert.Equal(t, "Nvidia will invest in Intel.", articles[1].Content, "Expected content to be cleaned")
	})

	t.Run("Skip malformed entries", func(t *testing.T) {
		data := `{"Intel": [
			{"headline": "", "content": "missing headline", "timestamp": "2025-09-18"},
			{"headline": "Intel earnings", "content": "ok", "timestamp": "2025-09-18"},
			"not an object",
			{"headline": "No timestamp", "content": "x"}
		]}`
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		articles, err := LoadArticles(strings.NewReader(data), logger)
		require.NoError(t, err)
		require.Len(t, articles, 1, "Expected only the valid article")
		assert.Equal(t, "Intel earnings", articles[0].Headline)
		assert.Contains(t, buf.String(), "Skipping", "Expected skipped entries to be logged")
	})

	t.Run("Nil logger falls back to the default logger", func(t *testing.T) {
		data := `{"Intel": [{"headline": "", "content": "missing headline"}, "not an object", {"headline": "Intel earnings", "content": "ok", "timestamp": "2025-09-18"}]}`

		var articles []*Article
		var err error
		require.NotPanics(t, func() {
			articles, err = LoadArticles(strings.NewReader(data), nil)
		}, "Expected skipped entries to be logged without a logger")
		require.NoError(t, err)
		require.Len(t, articles, 1)
	})

	t.Run("Unreadable input is an ingestion error", func(t *testing.T) {
		_, err := LoadArticles(strings.NewReader("[1,2"), testLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIngestion, "Expected ErrIngestion")
	})
}

func TestArticleDocument(t *testing.T) {
	t.Run("Render indexing text", func(t *testing.T) {
		a := &Article{Company: "AMD", Headline: "H", Source: "S", Content: "C", Timestamp: "T"}
		assert.Equal(t, "Category: AMD\nHeadline: H\nSource: S\nContent: C\nTimestamp: T", a.Document())
	})

	t.Run("Metadata carries article fields", func(t *testing.T) {
		a := &Article{Company: "AMD", Headline: "H", URL: "https://amd.com"}
		m := a.Metadata()
		assert.Equal(t, "AMD", m["company"])
		assert.Equal(t, "https://amd.com", m["url"])
	})
}

func TestGroupByCompany(t *testing.T) {
	t.Run("Group keeps order", func(t *testing.T) {
		a1 := &Article{Company: "AMD", Headline: "1"}
		a2 := &Article{Company: "Intel", Headline: "2"}
		a3 := &Article{Company: "AMD", Headline: "3"}

		grouped := GroupByCompany([]*Article{a1, a2, a3})
		assert.Equal(t, []*Article{a1, a3}, grouped["AMD"])
		assert.Equal(t, []*Article{a2}, grouped["Intel"])
	})
}
