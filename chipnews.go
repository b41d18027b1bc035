package chipnews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/chipnews/core/agent"
	"github.com/siherrmann/chipnews/core/filter"
	"github.com/siherrmann/chipnews/core/graph"
	"github.com/siherrmann/chipnews/core/pipeline"
	"github.com/siherrmann/chipnews/core/retrieval"
	"github.com/siherrmann/chipnews/core/search"
	"github.com/siherrmann/chipnews/database"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/llm"
	"github.com/siherrmann/chipnews/model"
	loadSql "github.com/siherrmann/chipnews/sql"
)

const (
	// EmbeddingDim is the dimension of the default sentence transformer.
	EmbeddingDim = 384

	OutputJSON     = "json"
	OutputMarkdown = "markdown"

	embeddingCacheSize = 4096
	embeddingCacheTTL  = time.Hour
)

// ChipNews wires the stores, the search engine and the language models
// into one coordinator.
type ChipNews struct {
	Config   *helper.Configuration
	Registry *prometheus.Registry

	Filter   *filter.NewsFilter
	Pipeline *pipeline.Pipeline
	Searcher retrieval.Searcher
	Graph    *graph.Graph
	Search   *search.Engine
	Pacer    *agent.Pacer
	Leader   llm.Generator
	Worker   llm.Generator

	// Optional durable storage
	DB       *helper.Database
	Chunks   *database.ChunksDBHandler
	Triplets *database.TripletsDBHandler

	provider     search.Provider
	agentMetrics *agent.Metrics
	coordinator  *agent.Coordinator
	log          *slog.Logger
}

// Option configures a ChipNews instance.
type Option func(*ChipNews) error

// WithLogger replaces the pretty logger built from the configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ChipNews) error {
		c.log = logger
		return nil
	}
}

// WithEmbedder replaces the default sentence transformer.
func WithEmbedder(embedder pipeline.EmbedFunc) Option {
	return func(c *ChipNews) error {
		c.Pipeline = pipeline.NewPipeline(pipeline.DefaultChunker(), embedder)
		return nil
	}
}

// WithSearchProvider replaces the DuckDuckGo provider.
func WithSearchProvider(provider search.Provider) Option {
	return func(c *ChipNews) error {
		c.provider = provider
		return nil
	}
}

// WithGenerators sets the leader and worker models instead of creating them
// from the LLM configuration.
func WithGenerators(leader llm.Generator, worker llm.Generator) Option {
	return func(c *ChipNews) error {
		c.Leader = leader
		c.Worker = worker
		return nil
	}
}

// WithDatabase stores chunks and triplets in Postgres.
func WithDatabase(config *helper.DatabaseConfiguration) Option {
	return func(c *ChipNews) error {
		db := helper.NewDatabase("chipnews", config, c.log)
		if err := loadSql.Init(db.Instance); err != nil {
			db.Close()
			return helper.NewError("initialize database extensions", err)
		}

		chunks, err := database.NewChunksDBHandler(db, EmbeddingDim, false)
		if err != nil {
			db.Close()
			return helper.NewError("create chunks handler", err)
		}

		triplets, err := database.NewTripletsDBHandler(db, false)
		if err != nil {
			db.Close()
			return helper.NewError("create triplets handler", err)
		}

		c.DB = db
		c.Chunks = chunks
		c.Triplets = triplets
		return nil
	}
}

// New creates a ChipNews instance. Language models are created lazily so
// that filtering, indexing and graph queries work without API keys.
func New(config *helper.Configuration, opts ...Option) (*ChipNews, error) {
	if config == nil {
		config = helper.DefaultConfiguration()
	}

	mode, err := filter.ParseMode(config.FilterMode)
	if err != nil {
		return nil, helper.NewError("parse filter mode", err)
	}

	c := &ChipNews{
		Config:   config,
		Registry: prometheus.NewRegistry(),
		log:      helper.NewLogger(os.Stdout, config.SlogLevel()),
	}

	// The logger option has to be applied before the database connects.
	for _, opt := range opts {
		if err := opt(c); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.Filter = filter.New(mode, c.log)
	c.Pacer = agent.NewPacer(config.PacingInterval, c.log)
	c.agentMetrics = agent.NewMetrics(c.Registry)

	if c.provider == nil {
		c.provider = search.NewDuckDuckGo(nil, "")
	}
	c.Search = search.NewEngine(c.provider, c.log, search.WithMetrics(search.NewMetrics(c.Registry)))
	c.Graph = graph.New(graph.NewDirSummaryStore(config.GraphSummaryDir), c.log)

	return c, nil
}

// Close closes the database connection if one is open.
func (c *ChipNews) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Logger returns the logger used by all components.
func (c *ChipNews) Logger() *slog.Logger {
	return c.log
}

// UseDefaultPipeline sets up recursive chunking and the cached
// all-MiniLM-L6-v2 embedder.
func (c *ChipNews) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	c.Pipeline = pipeline.NewPipeline(
		pipeline.DefaultChunker(),
		pipeline.CachedEmbedder(embedder, embeddingCacheSize, embeddingCacheTTL),
	)
	return nil
}

func (c *ChipNews) ensurePipeline() error {
	if c.Pipeline != nil {
		return nil
	}
	return c.UseDefaultPipeline()
}

// LoadArticles reads an ingestion file.
func (c *ChipNews) LoadArticles(path string) ([]*model.Article, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open articles", fmt.Errorf("%w: %v", model.ErrIngestion, err))
	}
	defer file.Close()

	articles, err := model.LoadArticles(file, c.log)
	if err != nil {
		return nil, helper.NewError("load articles", err)
	}

	c.log.Info("Loaded articles", slog.String("path", path), slog.Int("count", len(articles)))

	return articles, nil
}

// FilterArticles keeps the business relevant articles and logs the totals.
func (c *ChipNews) FilterArticles(articles []*model.Article) ([]*model.Article, map[string]filter.Stats) {
	kept, stats := c.Filter.FilterArticles(articles)
	totals := filter.Totals(stats)

	c.log.Info(
		"Filtered articles",
		slog.String("mode", string(c.Filter.Mode())),
		slog.Int("original", totals.Original),
		slog.Int("kept", totals.Kept),
		slog.Float64("percent_kept", totals.PercentKept),
	)

	return kept, stats
}

// BuildIndex chunks and embeds the articles, persists the index to the
// vector folder and, with a database, replaces the stored chunks.
func (c *ChipNews) BuildIndex(ctx context.Context, articles []*model.Article) (*retrieval.Index, error) {
	if err := c.ensurePipeline(); err != nil {
		return nil, err
	}

	index, err := retrieval.BuildIndex(ctx, c.Pipeline, articles, c.log)
	if err != nil {
		return nil, err
	}

	if err := index.Persist(c.Config.VectorDBFolder); err != nil {
		return nil, helper.NewError("persist index", err)
	}

	if c.Chunks != nil {
		if err := index.SaveToDatabase(c.Chunks); err != nil {
			return nil, helper.NewError("save index", err)
		}
	}

	c.Searcher = index
	return index, nil
}

// LoadIndex makes a persisted index searchable. With a database the
// similarity search runs in Postgres.
func (c *ChipNews) LoadIndex() error {
	if err := c.ensurePipeline(); err != nil {
		return err
	}

	if c.Chunks != nil {
		count, err := c.Chunks.CountChunks()
		if err != nil {
			return helper.NewError("count chunks", err)
		}
		if count > 0 {
			c.Searcher = retrieval.NewDatabaseIndex(c.Chunks, c.Pipeline.Embedder)
			c.log.Info("Using database index", slog.Int("chunks", count))
			return nil
		}
	}

	index, err := retrieval.Load(c.Config.VectorDBFolder, c.Pipeline.Embedder, c.log)
	if err != nil {
		return helper.NewError("load index", err)
	}

	c.Searcher = index
	return nil
}

var _ retrieval.Searcher = (*ChipNews)(nil)

// Query returns the k nearest chunks of the current index. The coordinator
// retrieves through it, so a rebuilt index is used from the next item on.
func (c *ChipNews) Query(text string, k int) ([]*model.Chunk, error) {
	if c.Searcher == nil {
		if err := c.LoadIndex(); err != nil {
			return nil, err
		}
	}
	return c.Searcher.Query(text, k)
}

// LoadGraph reads the graph file and, with a database, mirrors the triplets
// into Postgres. Without a graph file the stored triplets are loaded.
func (c *ChipNews) LoadGraph() error {
	if _, err := os.Stat(c.Config.GraphFile); errors.Is(err, os.ErrNotExist) && c.Triplets != nil {
		if err := c.Graph.LoadFromDatabase(c.Triplets); err != nil {
			return helper.NewError("load graph from database", err)
		}
		return nil
	}

	if err := c.Graph.LoadFile(c.Config.GraphFile); err != nil {
		return helper.NewError("load graph", err)
	}

	if c.Triplets != nil {
		if err := c.Graph.SaveToDatabase(c.Triplets); err != nil {
			return helper.NewError("save graph", err)
		}
	}
	return nil
}

// Coordinator returns the coordinator, creating the language models, the
// index and the graph on first use.
func (c *ChipNews) Coordinator() (*agent.Coordinator, error) {
	if c.coordinator != nil {
		return c.coordinator, nil
	}

	if c.Leader == nil || c.Worker == nil {
		if err := c.Config.Validate(); err != nil {
			return nil, err
		}
		leader, err := llm.FromConfiguration(c.Config.LLM, c.Config.LLM.LeaderModelID)
		if err != nil {
			return nil, helper.NewError("create leader", err)
		}
		worker, err := llm.FromConfiguration(c.Config.LLM, c.Config.LLM.WorkerModelID)
		if err != nil {
			return nil, helper.NewError("create worker", err)
		}
		c.Leader = leader
		c.Worker = worker
	}

	if c.Searcher == nil {
		if err := c.LoadIndex(); err != nil {
			return nil, err
		}
	}
	if c.Graph.Len() == 0 {
		if err := c.LoadGraph(); err != nil {
			return nil, err
		}
	}

	config := agent.DefaultConfig()
	config.RetrieveK = c.Config.RetrieveK
	config.SearchMaxResults = c.Config.SearchMaxResults

	coordinator, err := agent.NewCoordinator(agent.Capabilities{
		Retriever: retrieval.NewRetriever(c),
		Graph:     c.Graph,
		Search:    c.Search,
		Leader:    c.Leader,
		Worker:    c.Worker,
		Delay:     c.Pacer,
	}, config, c.agentMetrics, c.log)
	if err != nil {
		return nil, helper.NewError("create coordinator", err)
	}

	c.coordinator = coordinator
	return coordinator, nil
}

// Run processes the articles. More than one worker overlaps items while
// keeping the report order.
func (c *ChipNews) Run(ctx context.Context, articles []*model.Article, workers int) (*model.BatchSummary, error) {
	coordinator, err := c.Coordinator()
	if err != nil {
		return nil, err
	}
	return coordinator.RunConcurrent(ctx, articles, workers)
}

// WriteReport writes the batch as JSON or, in markdown mode, as the
// narrative report of date.
func (c *ChipNews) WriteReport(ctx context.Context, w io.Writer, date string, batch *model.BatchSummary) error {
	switch c.Config.OutputMode {
	case OutputMarkdown:
		coordinator, err := c.Coordinator()
		if err != nil {
			return err
		}
		narrative, err := coordinator.Narrate(ctx, date, batch)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, agent.RenderMarkdown(narrative)); err != nil {
			return helper.NewError("write narrative", err)
		}
		return nil
	case OutputJSON, "":
		return agent.WriteJSON(w, batch.Reports)
	default:
		return helper.NewError("write report", fmt.Errorf("unsupported output mode %q", c.Config.OutputMode))
	}
}
