package agent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/chipnews/core/search"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"golang.org/x/sync/errgroup"
)

// Stage is a state of the per item state machine.
type Stage string

const (
	StageStart         Stage = "START"
	StageGraphContext  Stage = "GRAPH_CONTEXT"
	StageMarketContext Stage = "MARKET_CONTEXT"
	StageSummary       Stage = "SUMMARY"
	StageAnalysis      Stage = "ANALYSIS"
	StageMerge         Stage = "MERGE"
	StageDone          Stage = "DONE"
	StageFailed        Stage = "FAILED"
)

const (
	missingSummary  = "Failed to get summary."
	missingAnalysis = "Failed to get impact analysis."
	noMarketData    = "No market data found."
)

// Config tunes the coordinator.
type Config struct {
	RetrieveK         int
	SearchMaxResults  int
	MinRelevance      float64
	MaxQueries        int
	MaxEntities       int
	NeighborhoodHops  int
	SearchConcurrency int
}

// DefaultConfig returns the coordinator defaults.
func DefaultConfig() Config {
	return Config{
		RetrieveK:         3,
		SearchMaxResults:  5,
		MinRelevance:      0.5,
		MaxQueries:        4,
		MaxEntities:       8,
		NeighborhoodHops:  2,
		SearchConcurrency: 2,
	}
}

// Coordinator runs every news item through graph context, market context,
// summary, analysis and merge.
type Coordinator struct {
	caps     Capabilities
	config   Config
	summary  *Worker
	analysis *Worker
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator. Zero config values take the defaults.
// MaxQueries is kept within 2 to 4. Metrics are optional.
func NewCoordinator(caps Capabilities, config Config, metrics *Metrics, logger *slog.Logger) (*Coordinator, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if config.RetrieveK <= 0 {
		config.RetrieveK = defaults.RetrieveK
	}
	if config.SearchMaxResults <= 0 {
		config.SearchMaxResults = defaults.SearchMaxResults
	}
	if config.MaxQueries < 2 {
		config.MaxQueries = defaults.MaxQueries
	}
	config.MaxQueries = min(config.MaxQueries, 4)
	if config.MaxEntities <= 0 {
		config.MaxEntities = defaults.MaxEntities
	}
	if config.NeighborhoodHops <= 0 {
		config.NeighborhoodHops = defaults.NeighborhoodHops
	}
	if config.SearchConcurrency <= 0 {
		config.SearchConcurrency = defaults.SearchConcurrency
	}

	return &Coordinator{
		caps:     caps,
		config:   config,
		summary:  NewWorker(RoleSummary, caps.Worker, caps.Retriever, config.RetrieveK, logger),
		analysis: NewWorker(RoleAnalysis, caps.Worker, caps.Retriever, config.RetrieveK, logger),
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// item carries the state of one news item through the stages.
type item struct {
	article        *model.Article
	report         *model.TaskReport
	stage          Stage
	primary        string
	primaryEntity  string
	mentioned      []string
	degraded       bool
	contextReport  string
	marketBriefing string
	summary        *WorkerResult
	analysis       *WorkerResult
	delay          Delay
	logger         *slog.Logger
}

func (i *item) transition(to Stage) {
	i.logger.Info("Stage transition", slog.String("from", string(i.stage)), slog.String("to", string(to)))
	i.stage = to
}

// Process runs one article through the state machine. Failures are recorded
// in the returned report.
func (c *Coordinator) Process(ctx context.Context, article *model.Article) *model.TaskReport {
	it := &item{
		article: article,
		report: &model.TaskReport{
			ID:       uuid.New(),
			Headline: article.Headline,
			Content:  article.Content,
			Company:  article.Company,
		},
		stage:  StageStart,
		delay:  c.caps.Delay,
		logger: c.logger.With(slog.String("headline", helper.Truncate(article.Headline, 80, "..."))),
	}
	if perItem, ok := c.caps.Delay.(ItemDelay); ok {
		it.delay = perItem.ForItem()
	}

	steps := []struct {
		stage Stage
		run   func(context.Context, *item) error
	}{
		{StageStart, c.start},
		{StageGraphContext, c.graphContext},
		{StageMarketContext, c.marketContext},
		{StageSummary, c.summarize},
		{StageAnalysis, c.analyze},
		{StageMerge, c.merge},
	}

	for _, step := range steps {
		if step.stage != StageStart {
			it.transition(step.stage)
		}
		if err := step.run(ctx, it); err != nil {
			c.fail(it, err)
			return it.report
		}
	}

	it.transition(StageDone)
	it.report.Status = model.ReportStatusOK
	if it.degraded {
		it.report.Status = model.ReportStatusDegraded
	}
	c.countItem(it.report.Status)

	return it.report
}

func (c *Coordinator) fail(it *item, err error) {
	failed := it.stage
	it.logger.Error("Item failed", slog.String("stage", string(failed)), slog.String("error", err.Error()))
	it.transition(StageFailed)

	it.report.Status = model.ReportStatusFailed
	it.report.FailureStage = string(failed)
	it.report.FailureReason = err.Error()

	if c.metrics != nil {
		c.metrics.StageFailures.WithLabelValues(string(failed)).Inc()
	}
	c.countItem(model.ReportStatusFailed)
}

func (c *Coordinator) countItem(status model.ReportStatus) {
	if c.metrics != nil {
		c.metrics.Items.WithLabelValues(string(status)).Inc()
	}
}

// start determines the primary company: the graph chipmaker named first in
// the headline, otherwise the company of the article.
func (c *Coordinator) start(ctx context.Context, it *item) error {
	headline := strings.ToLower(it.article.Headline)
	best := -1
	for _, chipmaker := range c.caps.Graph.Chipmakers() {
		position := strings.Index(headline, strings.ToLower(chipmaker))
		if position >= 0 && (best < 0 || position < best) {
			best = position
			it.primary = chipmaker
		}
	}

	if it.primary == "" && it.article.Company != "" {
		canonical, err := c.caps.Graph.Canonical(it.article.Company)
		if err != nil {
			return err
		}
		it.primary = canonical
	}
	if it.primary == "" {
		return helper.NewError("primary company", fmt.Errorf("%w: no known chipmaker in %q", model.ErrUnknownEntity, it.article.Headline))
	}

	it.report.Company = it.primary
	it.logger.Info("Primary company", slog.String("company", it.primary))
	return nil
}

func (c *Coordinator) graphContext(ctx context.Context, it *item) error {
	if err := it.delay.Wait(ctx, string(StageGraphContext)); err != nil {
		return err
	}

	summary, err := c.caps.Graph.Summary(it.primary)
	if err != nil {
		it.logger.Warn("No 7-day summary", slog.String("error", err.Error()))
		it.degraded = true
		summary = "No 7-day summary available."
	}

	entities, err := c.caps.Graph.Entities(it.primary)
	if err != nil {
		return err
	}

	it.primaryEntity, err = c.caps.Graph.ResolveEntity(it.primary, it.primary)
	if err != nil {
		it.primaryEntity = it.primary
	}

	text := strings.ToLower(it.article.Headline + " " + it.article.Content)
	for _, entity := range entities {
		if len(it.mentioned) >= c.config.MaxEntities {
			break
		}
		if strings.EqualFold(entity, it.primaryEntity) || len(entity) < 2 {
			continue
		}
		if strings.Contains(text, strings.ToLower(entity)) {
			it.mentioned = append(it.mentioned, entity)
		}
	}

	var report strings.Builder
	fmt.Fprintf(&report, "### Graph context for %s\n", it.primary)
	fmt.Fprintf(&report, "7-day summary:\n%s\n\n", strings.TrimSpace(summary))
	fmt.Fprintf(&report, "Known entities (%d): %s\n", len(entities), strings.Join(entities, ", "))

	if len(it.mentioned) > 0 {
		report.WriteString("\nRelations with entities in the article:\n")
		var triplets []string
		for _, entity := range it.mentioned {
			relations, err := c.caps.Graph.RelationsBetween(it.primary, it.primaryEntity, entity)
			if err != nil {
				return err
			}
			if len(relations) == 0 {
				fmt.Fprintf(&report, "- %s: no direct relation\n", entity)
				continue
			}
			fmt.Fprintf(&report, "- %s: %s\n", entity, strings.Join(relations, "; "))

			between, err := c.caps.Graph.TripletsBetween(it.primary, it.primaryEntity, entity)
			if err != nil {
				return err
			}
			for _, triplet := range between {
				triplets = append(triplets, triplet.Arrow())
			}
		}
		if len(triplets) > 0 {
			report.WriteString("\nTriplets:\n")
			for _, triplet := range triplets {
				report.WriteString(triplet + "\n")
			}
		}
	}

	neighborhood, err := c.caps.Graph.Neighborhood(it.primary, it.primaryEntity, c.config.NeighborhoodHops)
	if err != nil {
		it.logger.Debug("No neighbourhood", slog.String("error", err.Error()))
	} else if len(neighborhood) > 1 {
		fmt.Fprintf(&report, "\nEntities within %d hops of %s:\n", c.config.NeighborhoodHops, it.primaryEntity)
		for _, node := range neighborhood[1:] {
			fmt.Fprintf(&report, "- %s (%d hops: %s)\n", node.Name, node.Distance, strings.Join(node.Path, " -> "))
		}
	}

	it.contextReport = strings.TrimSpace(report.String())
	it.report.ContextReport = it.contextReport
	return nil
}

// Queries formulates the strategic search queries of an article. Key terms
// are jargon terms and graph entities mentioned in the article, each combined
// with the primary company. Two fallback queries cover articles without key terms.
func Queries(primary string, article *model.Article, mentioned []string, max int) []string {
	terms := search.MatchJargon(article.Headline + " " + article.Content)
	terms = append(terms, mentioned...)

	queries := []string{}
	seen := map[string]bool{}
	add := func(query string) {
		key := strings.ToLower(query)
		if len(queries) >= max || seen[key] {
			return
		}
		seen[key] = true
		queries = append(queries, query)
	}

	for _, term := range terms {
		if strings.EqualFold(term, primary) {
			continue
		}
		add(primary + " " + term)
	}
	for _, fallback := range []string{"financial guidance", "market competition"} {
		if len(queries) >= 2 {
			break
		}
		add(primary + " " + fallback)
	}

	return queries
}

func (c *Coordinator) marketContext(ctx context.Context, it *item) error {
	if err := it.delay.Wait(ctx, string(StageMarketContext)); err != nil {
		return err
	}

	queries := Queries(it.primary, it.article, it.mentioned, c.config.MaxQueries)
	results := make([][]model.SearchResult, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.SearchConcurrency)
	for i, query := range queries {
		focus := model.FocusBusiness
		if i == 0 {
			focus = model.FocusFinancial
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = c.caps.Search.SearchWithFocus(gCtx, query, c.config.SearchMaxResults, focus, c.config.MinRelevance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	it.marketBriefing = MarketBriefing(queries, results)
	it.report.MarketBriefing = it.marketBriefing
	return nil
}

// MarketBriefing renders search results grouped by query.
func MarketBriefing(queries []string, results [][]model.SearchResult) string {
	var briefing strings.Builder
	briefing.WriteString("### Market context briefing\n")

	found := 0
	for i, query := range queries {
		if len(results[i]) == 0 {
			continue
		}
		fmt.Fprintf(&briefing, "\nQuery: %s\n", query)
		for _, result := range results[i] {
			found++
			fmt.Fprintf(&briefing, "- [%s] %s (%s, %s): %s\n", result.Significance, result.Title, result.SourceTier, result.URL, result.OpinionSummary)
		}
	}
	if found == 0 {
		briefing.WriteString(noMarketData + "\n")
	}

	return strings.TrimSpace(briefing.String())
}

func (c *Coordinator) summarize(ctx context.Context, it *item) error {
	if err := it.delay.Wait(ctx, string(StageSummary)); err != nil {
		return err
	}

	result, err := c.summary.Run(ctx, c.workerTask(it))
	if err != nil {
		return err
	}
	it.summary = result
	return nil
}

func (c *Coordinator) analyze(ctx context.Context, it *item) error {
	if err := it.delay.Wait(ctx, string(StageAnalysis)); err != nil {
		return err
	}

	result, err := c.analysis.Run(ctx, c.workerTask(it))
	if err != nil {
		return err
	}
	it.analysis = result
	return nil
}

func (c *Coordinator) workerTask(it *item) WorkerTask {
	return WorkerTask{
		Headline: it.article.Headline,
		Content:  it.article.Content,
		Guide:    workerGuide(it.primary, it.contextReport, it.marketBriefing),
	}
}

func (c *Coordinator) merge(ctx context.Context, it *item) error {
	raw, err := c.caps.Leader.Generate(ctx, mergePrompt(it.article, it.summary.Text(), it.analysis.Text()))
	if err != nil {
		return helper.NewError("merge", err)
	}

	parsed := ParseStructuredResponse(raw)
	if !parsed.Ok() {
		it.logger.Error("Could not parse leader answer", slog.String("error", parsed.Err().Error()))
		it.report.Summary = model.ParseFailureSummary
		it.report.FinancialImpactTrend = raw
		it.report.ParseFailed = true
		it.degraded = true
		return nil
	}

	it.report.Summary = parsed.String("summary", missingSummary)
	it.report.FinancialImpactTrend = parsed.String("financial_impact_trend", missingAnalysis)
	return nil
}

// Run processes the articles one after another. It stops before the next
// article once ctx is cancelled and returns the reports so far with the
// context error.
func (c *Coordinator) Run(ctx context.Context, articles []*model.Article) (*model.BatchSummary, error) {
	summary := &model.BatchSummary{Reports: []*model.TaskReport{}}
	for i, article := range articles {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("Batch cancelled", slog.Int("processed", i), slog.Int("total", len(articles)))
			return summary, err
		}
		summary.Add(c.Process(ctx, article))
	}

	c.logger.Info("Batch done", slog.Int("succeeded", summary.Succeeded), slog.Int("failed", summary.Failed))
	return summary, nil
}

// RunConcurrent processes up to workers articles at the same time. Reports
// keep the order of the articles. Articles not started before ctx is
// cancelled have no report.
func (c *Coordinator) RunConcurrent(ctx context.Context, articles []*model.Article, workers int) (*model.BatchSummary, error) {
	if workers <= 1 {
		return c.Run(ctx, articles)
	}

	reports := make([]*model.TaskReport, len(articles))
	g := errgroup.Group{}
	g.SetLimit(workers)
	for i, article := range articles {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			reports[i] = c.Process(ctx, article)
			return nil
		})
	}
	_ = g.Wait()

	summary := &model.BatchSummary{Reports: []*model.TaskReport{}}
	for _, report := range slices.DeleteFunc(reports, func(r *model.TaskReport) bool { return r == nil }) {
		summary.Add(report)
	}

	c.logger.Info("Batch done", slog.Int("succeeded", summary.Succeeded), slog.Int("failed", summary.Failed))
	return summary, ctx.Err()
}
