package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/database"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

const sampleGraph = `{
	"NVIDIA": [
		{"date": "2025-09-12", "triplets": [
			{"subject": "Nvidia", "relation": {"verb": "partners with", "detail": "CoWoS packaging"}, "object": "TSMC"},
			{"subject": "Nvidia", "relation": {"verb": "ships", "detail": "H200 to cloud providers"}, "object": "Microsoft"}
		]},
		{"date": "2025-09-15", "triplets": [
			{"subject": "Nvidia", "relation": {"verb": "invests in", "detail": "$5 billion stake"}, "object": "Intel"}
		]}
	],
	"AMD": [
		{"date": "2025-09-14", "triplets": [
			{"subject": "AMD", "relation": {"verb": "supplies", "detail": "MI350 accelerators"}, "object": "Oracle"}
		]}
	]
}`

const sampleSummary = `Over the last seven days Nvidia deepened its supply ties with TSMC and
expanded H200 shipments to Microsoft before announcing a stake in Intel.`

var sampleArticles = []*model.Article{
	{
		Headline:  "Nvidia to invest $5 billion in Intel",
		Content:   "Nvidia will buy $5 billion of Intel stock and the two companies will co-develop data center and PC chips. Intel shares rose 23% on the news while analysts raised their revenue outlook.",
		Source:    "Reuters",
		Timestamp: "2025-09-18",
		Company:   "NVIDIA",
	},
	{
		Headline:  "AMD wins Oracle order for MI350 accelerators",
		Content:   "Oracle will deploy 50,000 AMD MI350 accelerators in its cloud, a deal analysts value at several billion dollars in revenue for the data center business.",
		Source:    "CNBC",
		Timestamp: "2025-09-18",
		Company:   "AMD",
	},
	{
		Headline:  "Best gaming laptop deals: save $300 on RTX 5080 models",
		Content:   "These gaming laptops hit 240 fps in our benchmark and are on sale this week.",
		Source:    "Slickdeals",
		Timestamp: "2025-09-18",
		Company:   "NVIDIA",
	},
}

func main() {
	// The language models need GEMINI_API_KEY or OPENAI_API_KEY
	config, err := helper.NewConfiguration()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	dir, err := os.MkdirTemp("", "chipnews-advanced")
	if err != nil {
		log.Fatalf("Failed to create working directory: %v", err)
	}
	defer os.RemoveAll(dir)

	config.VectorDBFolder = filepath.Join(dir, "vector_db")
	config.GraphFile = filepath.Join(dir, "graph.json")
	config.GraphSummaryDir = dir
	config.OutputMode = chipnews.OutputMarkdown
	if err := os.WriteFile(config.GraphFile, []byte(sampleGraph), 0644); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nvidia_7day.md"), []byte(sampleSummary), 0644); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}

	c, err := chipnews.New(config, chipnews.WithDatabase(dbConfig))
	if err != nil {
		log.Fatalf("Failed to create chipnews: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	// 1. Relevance filter
	fmt.Println("=== 1. Relevance Filter ===")
	articles, stats := c.FilterArticles(sampleArticles)
	for company, s := range stats {
		fmt.Printf("%s: kept %d of %d\n", company, s.Kept, s.Original)
	}

	// 2. Chunk index in Postgres
	fmt.Println("\n=== 2. Chunk Index ===")
	index, err := c.BuildIndex(ctx, articles)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	fmt.Printf("Indexed %d chunks\n", index.Len())

	fmt.Println("Switching to IVFFlat index...")
	if _, err := c.Chunks.ChangeIndexType(ctx, database.VectorIndexOptions{Type: database.VectorIndexIVFFlat, Lists: 10}); err != nil {
		log.Printf("Warning: Index change failed (this is okay for small datasets): %v", err)
	}
	fmt.Println("Switching back to HNSW index...")
	if _, err := c.Chunks.ChangeIndexType(ctx, database.DefaultVectorIndexOptions()); err != nil {
		log.Printf("Warning: Index change failed: %v", err)
	}

	// 3. Coordinated batch with graph and market context
	fmt.Println("\n=== 3. Coordinated Batch ===")
	batch, err := c.Run(ctx, articles, 2)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
	for _, report := range batch.Reports {
		fmt.Printf("\n[%s] %s\n", report.Status, report.Headline)
		fmt.Printf("Summary: %s\n", report.Summary)
		fmt.Printf("Financial impact: %s\n", report.FinancialImpactTrend)
	}

	// 4. Narrative report for decision makers
	fmt.Println("\n=== 4. Narrative Report ===")
	if err := c.WriteReport(ctx, os.Stdout, "2025-09-18", batch); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	fmt.Printf("\n=== Advanced Example Completed: %d succeeded, %d failed ===\n", batch.Succeeded, batch.Failed)
}
