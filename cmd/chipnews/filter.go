package main

import (
	"encoding/json"
	"io"
	"os"
	"slices"

	"github.com/siherrmann/chipnews/core/filter"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"github.com/spf13/cobra"
)

var (
	filterMode   string
	filterOutput string
)

var filterCmd = &cobra.Command{
	Use:   "filter [articles.json]",
	Short: "Keep the business relevant articles",
	Long: `Scores every article for business relevance and writes the kept articles
in the ingestion format. Strict mode also drops reviews and comparisons,
lenient mode keeps launches and announcements.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVarP(&filterMode, "mode", "m", "", "strict, moderate or lenient (default FILTER_MODE)")
	filterCmd.Flags().StringVarP(&filterOutput, "out", "o", "", "write the kept articles to a file instead of stdout")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd, func(c *helper.Configuration) {
		if filterMode != "" {
			c.FilterMode = filterMode
		}
	})
	if err != nil {
		return err
	}
	defer app.Close()

	articles, err := app.LoadArticles(args[0])
	if err != nil {
		return err
	}
	kept, stats := app.FilterArticles(articles)

	out := cmd.OutOrStdout()
	if filterOutput != "" {
		file, err := os.Create(filterOutput)
		if err != nil {
			return helper.NewError("create output", err)
		}
		defer file.Close()
		out = file
	}
	if err := writeArticles(out, kept); err != nil {
		return err
	}

	companies := make([]string, 0, len(stats))
	for company := range stats {
		companies = append(companies, company)
	}
	slices.Sort(companies)
	for _, company := range companies {
		s := stats[company]
		cmd.PrintErrf("%s: kept %d of %d (%.1f%%)\n", company, s.Kept, s.Original, s.PercentKept)
	}
	total := filter.Totals(stats)
	cmd.PrintErrf("Total: kept %d of %d (%.1f%%)\n", total.Kept, total.Original, total.PercentKept)

	return nil
}

// writeArticles writes articles grouped by company.
func writeArticles(w io.Writer, articles []*model.Article) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(model.GroupByCompany(articles)); err != nil {
		return helper.NewError("write articles", err)
	}
	return nil
}
