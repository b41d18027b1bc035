package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/siherrmann/chipnews/core/graph"
	"github.com/siherrmann/chipnews/model"
	"github.com/stretchr/testify/require"
)

const testGraphDataset = `{
	"NVIDIA": [
		{"date": "2025-09-15", "triplets": [
			{"subject": "Nvidia", "relation": {"verb": "invests in", "detail": "$5 billion stake"}, "object": "Intel"},
			{"subject": "Nvidia", "relation": {"verb": "partners with", "detail": "CoWoS capacity"}, "object": "TSMC"},
			{"subject": "TSMC", "relation": {"verb": "expands", "detail": "Arizona fab"}, "object": "Arizona"}
		]}
	],
	"AMD": [
		{"date": "2025-09-15", "triplets": [
			{"subject": "AMD", "relation": {"verb": "wins", "detail": "MI350 order"}, "object": "Oracle"}
		]}
	]
}`

type memorySummaries map[string]string

func (m memorySummaries) Summary(chipmaker string) (string, error) {
	summary, ok := m[chipmaker]
	if !ok {
		return "", fmt.Errorf("no summary for %s", chipmaker)
	}
	return summary, nil
}

func (m memorySummaries) Across() (string, error) {
	return "", fmt.Errorf("no across summary")
}

func newTestGraph(t *testing.T) *graph.Graph {
	dataset, err := graph.ReadDataset(strings.NewReader(testGraphDataset))
	require.NoError(t, err, "Expected ReadDataset to not return an error")

	g := graph.New(memorySummaries{"NVIDIA": "Nvidia deepened ties with Intel and TSMC."}, nil)
	g.LoadTriplets(dataset)
	return g
}

type fakeRetriever struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *fakeRetriever) Name() string { return "retriever" }

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return "--- CHUNK 1 ---\nNvidia buys Intel stake\nMETADATA: {}\n", nil
}

type searchCall struct {
	query string
	focus model.Focus
}

type fakeSearch struct {
	mu    sync.Mutex
	calls []searchCall
}

func (f *fakeSearch) Name() string { return "search" }

func (f *fakeSearch) SearchWithFocus(ctx context.Context, query string, maxResults int, focus model.Focus, minRelevance float64) []model.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{query: query, focus: focus})
	if strings.Contains(query, "guidance") {
		return nil
	}
	return []model.SearchResult{{
		Title:          "Result for " + query,
		URL:            "https://www.reuters.com/x",
		SourceTier:     model.SourceTierPremium,
		Significance:   model.SignificanceHighImpact,
		OpinionSummary: "From premium source",
	}}
}

func (f *fakeSearch) focusOf(query string) model.Focus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if call.query == query {
			return call.focus
		}
	}
	return ""
}

// fakeGenerator answers by prompt kind. A kind mapped to an error fails.
type fakeGenerator struct {
	mu       sync.Mutex
	name     string
	answers  map[string]string
	errs     map[string]error
	prompts  []string
	failWhen func(prompt string) bool
}

const (
	kindQuery  = "query"
	kindWorker = "worker"
	kindMerge  = "merge"
	kindReport = "report"
)

func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "query engineer"):
		return kindQuery
	case strings.Contains(prompt, "CHUNKS:"):
		return kindWorker
	case strings.Contains(prompt, "leader of a team"):
		return kindMerge
	default:
		return kindReport
	}
}

func newFakeGenerator(name string) *fakeGenerator {
	return &fakeGenerator{
		name: name,
		answers: map[string]string{
			kindQuery:  "```json\n{\"query\": \"Nvidia Intel stake September 2025\"}\n```",
			kindWorker: "{\"topline\": \"Nvidia invests $5 billion in Intel.\", \"confidence\": \"high\"}\n- Intel shares jump\n- Nvidia gains x86 access",
			kindMerge:  `{"summary": "Nvidia takes a stake in Intel.", "financial_impact_trend": "Positive for both stocks."}`,
			kindReport: "### Summary Report of Financial News (2025-09-18)\n\n### Summary Paragraph\nNvidia invests in Intel.\n\n### Key Insight\nTies deepen.\n\n### Key Implications\n- Intel gains a partner\n- Nvidia gains x86 access\n",
		},
		errs: map[string]error{},
	}
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.failWhen != nil && f.failWhen(prompt) {
		return "", fmt.Errorf("generator unavailable")
	}
	kind := promptKind(prompt)
	if err := f.errs[kind]; err != nil {
		return "", err
	}
	return f.answers[kind], nil
}

type fakeDelay struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (f *fakeDelay) Name() string { return "delay" }

func (f *fakeDelay) Wait(ctx context.Context, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	if f.err != nil {
		return f.err
	}
	return ctx.Err()
}

type testSetup struct {
	caps      Capabilities
	retriever *fakeRetriever
	search    *fakeSearch
	leader    *fakeGenerator
	worker    *fakeGenerator
	delay     *fakeDelay
}

func newTestSetup(t *testing.T) *testSetup {
	s := &testSetup{
		retriever: &fakeRetriever{},
		search:    &fakeSearch{},
		leader:    newFakeGenerator("leader"),
		worker:    newFakeGenerator("worker"),
		delay:     &fakeDelay{},
	}
	s.caps = Capabilities{
		Retriever: s.retriever,
		Graph:     newTestGraph(t),
		Search:    s.search,
		Leader:    s.leader,
		Worker:    s.worker,
		Delay:     s.delay,
	}
	return s
}

func (s *testSetup) coordinator(t *testing.T, metrics *Metrics) *Coordinator {
	c, err := NewCoordinator(s.caps, DefaultConfig(), metrics, nil)
	require.NoError(t, err, "Expected NewCoordinator to not return an error")
	return c
}

func nvidiaArticle() *model.Article {
	return &model.Article{
		Headline:  "Nvidia to invest $5 billion in Intel",
		Content:   "Nvidia will buy Intel shares and co-develop x86 chips, while TSMC keeps H200 production.",
		Source:    "Reuters",
		Timestamp: "2025-09-18",
		Company:   "NVIDIA",
	}
}

// itemRecorder hands out real per-item pacers and records the stages each
// item waited for.
type itemRecorder struct {
	pacer *Pacer
	mu    sync.Mutex
	gates []*recordedGate
}

func (r *itemRecorder) Name() string { return "delay" }

func (r *itemRecorder) Wait(ctx context.Context, reason string) error {
	return r.pacer.Wait(ctx, reason)
}

func (r *itemRecorder) ForItem() Delay {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := &recordedGate{delay: r.pacer.ForItem()}
	r.gates = append(r.gates, gate)
	return gate
}

type recordedGate struct {
	delay   Delay
	mu      sync.Mutex
	reasons []string
}

func (g *recordedGate) Name() string { return "delay" }

func (g *recordedGate) Wait(ctx context.Context, reason string) error {
	g.mu.Lock()
	g.reasons = append(g.reasons, reason)
	g.mu.Unlock()
	return g.delay.Wait(ctx, reason)
}
