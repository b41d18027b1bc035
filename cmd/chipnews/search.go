package main

import (
	"encoding/json"
	"fmt"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"github.com/spf13/cobra"
)

var (
	searchMax          int
	searchFocus        string
	searchMinRelevance float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the web for ranked market news",
	Long: `Expands the query with chip and financial terms, classifies every hit by
source credibility, content type and business significance and prints the
ranked results as JSON. Results are cached for 30 minutes.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchMax, "max", "n", 0, "maximum number of results (default SEARCH_MAX_RESULTS)")
	searchCmd.Flags().StringVar(&searchFocus, "focus", "", "financial, technical or business")
	searchCmd.Flags().Float64Var(&searchMinRelevance, "min-relevance", 0.5, "drop consumer content above 0.3")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	maxResults := searchMax
	if maxResults <= 0 {
		maxResults = app.Config.SearchMaxResults
	}

	results := app.Search.SearchWithFocus(cmd.Context(), args[0], maxResults, model.Focus(searchFocus), searchMinRelevance)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return helper.NewError("marshal results", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
