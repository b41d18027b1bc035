package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArticles = `{
	"NVIDIA": [
		{
			"headline": "Nvidia to invest $5 billion in Intel",
			"content": "Nvidia will invest $5 billion in Intel stock as part of a strategic partnership on data center chips. Analysts expect revenue gains for both companies.",
			"source": "Reuters",
			"timestamp": "2025-09-18"
		},
		{
			"headline": "Best gaming laptop deal: save $300 on RTX 5080 at Amazon",
			"content": "This gaming laptop hits 240 fps in benchmark runs and is on sale.",
			"source": "Slickdeals",
			"timestamp": "2025-09-18"
		}
	]
}`

const testGraph = `{
	"NVIDIA": [
		{"date": "2025-09-15", "triplets": [
			{"subject": "Nvidia", "relation": {"verb": "invests in", "detail": "$5 billion stake"}, "object": "Intel"},
			{"subject": "Nvidia", "relation": {"verb": "partners with", "detail": "CoWoS capacity"}, "object": "TSMC"},
			{"subject": "TSMC", "relation": {"verb": "expands", "detail": "Arizona fab"}, "object": "Arizona"}
		]}
	]
}`

func testEmbedder(text string) ([]float32, error) {
	embedding := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			embedding[r-'a']++
		}
	}
	return embedding, nil
}

type testProvider struct{}

func (testProvider) Search(ctx context.Context, query string, max int) ([]model.RawResult, error) {
	return []model.RawResult{
		{Title: "Nvidia stock rises after Intel investment", Href: "https://www.reuters.com/markets/nvidia", Body: "Shares gained on the $5 billion investment."},
		{Title: "Best RTX gaming laptop deals", Href: "https://slickdeals.net/rtx", Body: "Gaming laptop discount with 20% off."},
	}, nil
}

type testGenerator struct{}

func (testGenerator) Name() string { return "test" }

func (testGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "query engineer"):
		return `{"query": "Nvidia Intel investment"}`, nil
	case strings.Contains(prompt, "CHUNKS:"):
		return "{\"topline\": \"Nvidia invests in Intel.\"}\n- Intel gains capital", nil
	case strings.Contains(prompt, "leader of a team"):
		return `{"summary": "Nvidia buys a stake in Intel.", "financial_impact_trend": "Positive for both."}`, nil
	default:
		return "### Summary Paragraph\nNvidia buys into Intel.\n\n### Key Insight\nTies deepen.\n\n### Key Implications\n- Intel gains capital\n", nil
	}
}

// setupTestEnv points the configuration at temporary files and injects fakes.
func setupTestEnv(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "news.json"), []byte(testArticles), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.json"), []byte(testGraph), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nvidia_7day.md"), []byte("Nvidia deepened ties with Intel."), 0644))

	t.Setenv("GRAPH_FILE", filepath.Join(dir, "graph.json"))
	t.Setenv("GRAPH_SUMMARY_DIR", dir)
	t.Setenv("VECTOR_DB_FOLDER", filepath.Join(dir, "vector_db"))
	t.Setenv("PACING_INTERVAL", "0s")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CHIPNEWS_CONFIG", "")

	appOptions = []chipnews.Option{
		chipnews.WithEmbedder(testEmbedder),
		chipnews.WithSearchProvider(testProvider{}),
		chipnews.WithGenerators(testGenerator{}, testGenerator{}),
	}
	t.Cleanup(func() {
		appOptions = nil
	})

	return dir
}

func executeCommand(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCmd(t *testing.T) {
	names := []string{}
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, expected := range []string{"filter", "index", "graph", "search", "run", "schedule"} {
		assert.Contains(t, names, expected, "Expected root command to have %s", expected)
	}

	flag := rootCmd.PersistentFlags().Lookup("db")
	require.NotNil(t, flag, "db flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestFilterCmd(t *testing.T) {
	dir := setupTestEnv(t)

	t.Run("Writes kept articles", func(t *testing.T) {
		stdout, stderr, err := executeCommand("filter", filepath.Join(dir, "news.json"), "--mode", "moderate")
		require.NoError(t, err, "Expected filter to not return an error")

		var kept map[string][]*model.Article
		require.NoError(t, json.Unmarshal([]byte(stdout), &kept), "Expected stdout to be the ingestion format")
		require.Len(t, kept["NVIDIA"], 1)
		assert.Equal(t, "Nvidia to invest $5 billion in Intel", kept["NVIDIA"][0].Headline)
		assert.Contains(t, stderr, "NVIDIA: kept 1 of 2 (50.0%)")
	})

	t.Run("Unknown mode", func(t *testing.T) {
		_, _, err := executeCommand("filter", filepath.Join(dir, "news.json"), "--mode", "paranoid")
		assert.Error(t, err)
	})

	t.Run("Requires a file", func(t *testing.T) {
		_, _, err := executeCommand("filter")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	})
}

func TestIndexCmd(t *testing.T) {
	dir := setupTestEnv(t)

	stdout, _, err := executeCommand("index", "build", filepath.Join(dir, "news.json"))
	require.NoError(t, err, "Expected index build to not return an error")
	assert.Contains(t, stdout, "Indexed 2 chunks from 2 articles")

	stdout, _, err = executeCommand("index", "query", "Nvidia invest Intel", "-k", "1")
	require.NoError(t, err, "Expected index query to not return an error")
	assert.Contains(t, stdout, "--- CHUNK 1 ---")
	assert.Contains(t, stdout, "Nvidia to invest $5 billion in Intel")
	assert.NotContains(t, stdout, "--- CHUNK 2 ---")

	t.Run("Index type needs a database", func(t *testing.T) {
		_, _, err := executeCommand("index", "type", "hnsw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--db")
	})

	t.Run("Unknown index type is rejected", func(t *testing.T) {
		_, _, err := executeCommand("index", "type", "btree")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported index type")
	})
}

func TestGraphCmd(t *testing.T) {
	setupTestEnv(t)

	t.Run("Entities", func(t *testing.T) {
		stdout, _, err := executeCommand("graph", "entities", "nvidia")
		require.NoError(t, err)
		assert.Equal(t, "Arizona\nIntel\nNvidia\nTSMC\n", stdout)
	})

	t.Run("Relations between in both directions", func(t *testing.T) {
		forward, _, err := executeCommand("graph", "between", "NVIDIA", "intel", "nvidia")
		require.NoError(t, err)
		backward, _, err := executeCommand("graph", "between", "NVIDIA", "Nvidia", "Intel")
		require.NoError(t, err)
		assert.Equal(t, "(Nvidia) --[invests in]--> (Intel): invests in ($5 billion stake, 2025-09-15)\n", forward)
		assert.Equal(t, forward, backward)
	})

	t.Run("Neighborhood", func(t *testing.T) {
		stdout, _, err := executeCommand("graph", "neighborhood", "NVIDIA", "Intel", "--hops", "2")
		require.NoError(t, err)
		assert.Equal(t, "Nvidia (1 hops: Intel -> Nvidia)\nTSMC (2 hops: Intel -> Nvidia -> TSMC)\n", stdout)
	})

	t.Run("Summary", func(t *testing.T) {
		stdout, _, err := executeCommand("graph", "summary", "NVIDIA")
		require.NoError(t, err)
		assert.Equal(t, "Nvidia deepened ties with Intel.\n", stdout)
	})

	t.Run("Unknown chipmaker", func(t *testing.T) {
		_, _, err := executeCommand("graph", "entities", "Qualcomm")
		assert.ErrorIs(t, err, model.ErrUnknownEntity)
	})
}

func TestSearchCmd(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := executeCommand("search", "Nvidia Intel", "--max", "5", "--min-relevance", "0.5")
	require.NoError(t, err, "Expected search to not return an error")

	var results []model.SearchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 1, "Expected consumer content to be dropped")
	assert.Equal(t, "Nvidia stock rises after Intel investment", results[0].Title)
	assert.Equal(t, model.SourceTierPremium, results[0].SourceTier)
}

func TestRunCmd(t *testing.T) {
	dir := setupTestEnv(t)

	t.Run("JSON reports", func(t *testing.T) {
		stdout, stderr, err := executeCommand("run", filepath.Join(dir, "news.json"), "--output", "json", "--filter", "--workers", "1")
		require.NoError(t, err, "Expected run to not return an error")

		var reports []*model.TaskReport
		require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
		require.Len(t, reports, 1, "Expected the gaming deal to be filtered")
		assert.Equal(t, model.ReportStatusOK, reports[0].Status)
		assert.Equal(t, "Nvidia buys a stake in Intel.", reports[0].Summary)
		assert.Contains(t, stderr, "Processed 1 articles: 1 succeeded, 0 failed")
	})

	t.Run("Markdown report to file", func(t *testing.T) {
		out := filepath.Join(dir, "report.md")
		_, _, err := executeCommand("run", filepath.Join(dir, "news.json"), "--output", "markdown", "--date", "2025-09-18", "--out", out)
		require.NoError(t, err, "Expected run to not return an error")

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "### Summary Report of Financial News (2025-09-18)")
		assert.Contains(t, string(data), "- Intel gains capital")
	})
}

func TestScheduleCmd(t *testing.T) {
	dir := setupTestEnv(t)

	t.Run("Requires a cron spec", func(t *testing.T) {
		_, _, err := executeCommand("schedule", filepath.Join(dir, "news.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "cron" not set`)
	})

	t.Run("Report job writes the report of the day", func(t *testing.T) {
		app, err := newApp(rootCmd)
		require.NoError(t, err)
		defer app.Close()

		outDir := t.TempDir()
		job := reportJob(app, filepath.Join(dir, "news.json"), batchOptions{filter: true, workers: 1}, outDir)
		require.NoError(t, job.Run(context.Background()), "Expected the report job to not return an error")

		path := filepath.Join(outDir, "report_"+time.Now().Format(time.DateOnly)+".json")
		assert.FileExists(t, path)
	})
}
