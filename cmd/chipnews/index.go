package main

import (
	"fmt"

	"github.com/siherrmann/chipnews/core/retrieval"
	"github.com/siherrmann/chipnews/database"
	"github.com/spf13/cobra"
)

var (
	indexFilter         bool
	indexK              int
	indexM              int
	indexEfConstruction int
	indexLists          int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query the chunk index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [articles.json]",
	Short: "Chunk, embed and persist the articles",
	Long: `Splits every article into overlapping chunks, embeds them and persists the
index to VECTOR_DB_FOLDER. With --db the chunks also replace the stored
chunks in Postgres.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexBuild,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Print the chunks nearest to a text",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexQuery,
}

var indexTypeCmd = &cobra.Command{
	Use:       "type [hnsw|ivfflat]",
	Short:     "Change the Postgres vector index type",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"hnsw", "ivfflat"},
	RunE:      runIndexType,
}

func init() {
	indexBuildCmd.Flags().BoolVar(&indexFilter, "filter", false, "drop irrelevant articles before indexing")
	indexQueryCmd.Flags().IntVarP(&indexK, "k", "k", 3, "number of chunks")
	indexTypeCmd.Flags().IntVar(&indexM, "m", 0, "HNSW connections per layer (0 uses 16)")
	indexTypeCmd.Flags().IntVar(&indexEfConstruction, "ef-construction", 0, "HNSW candidate list size (0 uses 64)")
	indexTypeCmd.Flags().IntVar(&indexLists, "lists", 0, "IVFFlat lists (0 uses 100)")

	indexCmd.AddCommand(indexBuildCmd, indexQueryCmd, indexTypeCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	articles, err := app.LoadArticles(args[0])
	if err != nil {
		return err
	}
	if indexFilter {
		articles, _ = app.FilterArticles(articles)
	}

	index, err := app.BuildIndex(cmd.Context(), articles)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d articles into %s\n", index.Len(), len(articles), app.Config.VectorDBFolder)
	return nil
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.LoadIndex(); err != nil {
		return err
	}

	chunks, err := retrieval.NewRetriever(app.Searcher).Retrieve(cmd.Context(), args[0], indexK)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), chunks)
	return nil
}

func runIndexType(cmd *cobra.Command, args []string) error {
	indexType, err := database.ParseVectorIndexType(args[0])
	if err != nil {
		return err
	}
	if !useDatabase {
		return fmt.Errorf("changing the index type needs --db")
	}

	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	options, err := app.Chunks.ChangeIndexType(cmd.Context(), database.VectorIndexOptions{
		Type:           indexType,
		M:              indexM,
		EfConstruction: indexEfConstruction,
		Lists:          indexLists,
	})
	if err != nil {
		return err
	}

	if options.Type == database.VectorIndexIVFFlat {
		fmt.Fprintf(cmd.OutOrStdout(), "Vector index changed to ivfflat (lists=%d)\n", options.Lists)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Vector index changed to hnsw (m=%d, ef_construction=%d)\n", options.M, options.EfConstruction)
	}
	return nil
}
