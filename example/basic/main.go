package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

const sampleGraph = `{
	"NVIDIA": [
		{"date": "2025-09-15", "triplets": [
			{"subject": "Nvidia", "relation": {"verb": "invests in", "detail": "$5 billion stake"}, "object": "Intel"},
			{"subject": "Nvidia", "relation": {"verb": "partners with", "detail": "CoWoS packaging"}, "object": "TSMC"},
			{"subject": "TSMC", "relation": {"verb": "expands", "detail": "second Arizona fab"}, "object": "Arizona"}
		]}
	]
}`

var sampleArticles = []*model.Article{
	{
		Headline:  "Nvidia to invest $5 billion in Intel",
		Content:   "Nvidia will buy $5 billion of Intel stock and the two companies will co-develop data center and PC chips. Intel shares rose 23% on the news.",
		Source:    "Reuters",
		Timestamp: "2025-09-18",
		Company:   "NVIDIA",
	},
	{
		Headline:  "AMD wins Oracle order for MI350 accelerators",
		Content:   "Oracle will deploy 50,000 AMD MI350 accelerators in its cloud, a deal analysts value at several billion dollars in revenue.",
		Source:    "CNBC",
		Timestamp: "2025-09-18",
		Company:   "AMD",
	},
}

func main() {
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

	dir, err := os.MkdirTemp("", "chipnews-basic")
	if err != nil {
		log.Fatalf("Failed to create working directory: %v", err)
	}
	defer os.RemoveAll(dir)

	graphFile := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(graphFile, []byte(sampleGraph), 0644); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}

	config := helper.DefaultConfiguration()
	config.VectorDBFolder = filepath.Join(dir, "vector_db")
	config.GraphFile = graphFile
	config.GraphSummaryDir = dir

	c, err := chipnews.New(config, chipnews.WithDatabase(dbConfig))
	if err != nil {
		log.Fatalf("Failed to create chipnews: %v", err)
	}
	defer c.Close()

	// Chunk and embed the articles into the index and the chunks table
	fmt.Println("Indexing articles...")
	index, err := c.BuildIndex(context.Background(), sampleArticles)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	fmt.Printf("Indexed %d chunks\n", index.Len())

	// Query through pgvector instead of the in-memory index
	if err := c.LoadIndex(); err != nil {
		log.Fatalf("Failed to load index: %v", err)
	}

	queryText := "Which company invests in Intel?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	chunks, err := c.Query(queryText, 2)
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}
	for i, chunk := range chunks {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Headline: %s\n", chunk.Metadata.String("headline"))
		fmt.Printf("Content: %s\n", chunk.Content)
	}

	// Load the graph file and mirror it into the triplets table
	if err := c.LoadGraph(); err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	relations, err := c.Graph.RelationsBetween("NVIDIA", "Intel", "Nvidia")
	if err != nil {
		log.Fatalf("Failed to query relations: %v", err)
	}
	fmt.Printf("\nRelations between Nvidia and Intel: %s\n", strings.Join(relations, "; "))

	nodes, err := c.Graph.Neighborhood("NVIDIA", "Intel", 2)
	if err != nil {
		log.Fatalf("Failed to traverse graph: %v", err)
	}
	fmt.Println("\nEntities within 2 hops of Intel:")
	for _, node := range nodes[1:] {
		fmt.Printf("- %s (%d hops: %s)\n", node.Name, node.Distance, strings.Join(node.Path, " -> "))
	}

	fmt.Println("\nBasic example completed successfully!")
}
