package main

import (
	"context"
	"os"
	"time"

	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
	"github.com/spf13/cobra"
)

// batchOptions are shared by run and schedule.
type batchOptions struct {
	filter     bool
	reuseIndex bool
	workers    int
	output     string
}

var (
	runOpts batchOptions
	runDate string
	runOut  string
)

var runCmd = &cobra.Command{
	Use:   "run [articles.json]",
	Short: "Process a batch of articles into reports",
	Long: `Builds the index from the articles, then runs every article through graph
context, market context, the summary and analysis workers and the leader
merge. Prints a JSON array of reports or, with --output markdown, the
narrative report of the day.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	addBatchFlags(runCmd, &runOpts)
	runCmd.Flags().StringVar(&runDate, "date", "", "report date (default today)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(runCmd)
}

func addBatchFlags(cmd *cobra.Command, opts *batchOptions) {
	cmd.Flags().BoolVar(&opts.filter, "filter", true, "drop irrelevant articles first")
	cmd.Flags().BoolVar(&opts.reuseIndex, "reuse-index", false, "query the persisted index instead of rebuilding it")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "articles processed at the same time")
	cmd.Flags().StringVar(&opts.output, "output", "", "json or markdown (default OUTPUT_MODE)")
}

func (o batchOptions) configure(c *helper.Configuration) {
	if o.output != "" {
		c.OutputMode = o.output
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd, runOpts.configure)
	if err != nil {
		return err
	}
	defer app.Close()

	batch, err := runBatch(cmd.Context(), app, args[0], runOpts)
	if err != nil {
		return err
	}

	date := runDate
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}

	out := cmd.OutOrStdout()
	if runOut != "" {
		file, err := os.Create(runOut)
		if err != nil {
			return helper.NewError("create output", err)
		}
		defer file.Close()
		out = file
	}

	if err := app.WriteReport(cmd.Context(), out, date, batch); err != nil {
		return err
	}
	cmd.PrintErrf("Processed %d articles: %d succeeded, %d failed\n", len(batch.Reports), batch.Succeeded, batch.Failed)
	return nil
}

// runBatch loads, filters and indexes the articles and runs the coordinator.
func runBatch(ctx context.Context, app *chipnews.ChipNews, path string, opts batchOptions) (*model.BatchSummary, error) {
	articles, err := app.LoadArticles(path)
	if err != nil {
		return nil, err
	}
	if opts.filter {
		articles, _ = app.FilterArticles(articles)
	}

	if opts.reuseIndex {
		if err := app.LoadIndex(); err != nil {
			return nil, err
		}
	} else if _, err := app.BuildIndex(ctx, articles); err != nil {
		return nil, err
	}

	return app.Run(ctx, articles, opts.workers)
}
