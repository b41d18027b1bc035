package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/core/schedule"
	"github.com/siherrmann/chipnews/helper"
	"github.com/spf13/cobra"
)

var (
	scheduleOpts   batchOptions
	scheduleSpec   string
	scheduleOutDir string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [articles.json]",
	Short: "Run the batch on a cron schedule",
	Long: `Runs the batch whenever the cron spec is due and writes each report to
the output directory as report_<date>.json or report_<date>.md. The
articles file is read again on every run. Stops on interrupt.`,
	Example: `  chipnews schedule news.json --cron "30 7 * * 1-5"
  chipnews schedule news.json --cron @daily --output markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

func init() {
	addBatchFlags(scheduleCmd, &scheduleOpts)
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "cron spec with five fields or a descriptor like @daily")
	scheduleCmd.Flags().StringVar(&scheduleOutDir, "out-dir", "reports", "directory for the reports")
	_ = scheduleCmd.MarkFlagRequired("cron")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd, scheduleOpts.configure)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := os.MkdirAll(scheduleOutDir, 0755); err != nil {
		return helper.NewError("create report directory", err)
	}

	scheduler := schedule.NewScheduler(app.Logger())
	job := reportJob(app, args[0], scheduleOpts, scheduleOutDir)
	if err := scheduler.AddJob(job, scheduleSpec); err != nil {
		return err
	}

	ctx := cmd.Context()
	scheduler.Start(ctx)
	if next, ok := scheduler.Next(job.Name()); ok {
		app.Logger().Info("Waiting for the next run", slog.Time("next", next))
	}

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

// reportJob runs a batch and writes the report of the day into dir.
func reportJob(app *chipnews.ChipNews, path string, opts batchOptions, dir string) schedule.JobFunc {
	return schedule.JobFunc{
		JobName: "report",
		Fn: func(ctx context.Context) error {
			batch, err := runBatch(ctx, app, path, opts)
			if err != nil {
				return err
			}

			date := time.Now().Format(time.DateOnly)
			ext := "json"
			if app.Config.OutputMode == chipnews.OutputMarkdown {
				ext = "md"
			}

			file, err := os.Create(filepath.Join(dir, fmt.Sprintf("report_%s.%s", date, ext)))
			if err != nil {
				return helper.NewError("create report", err)
			}
			defer file.Close()

			return app.WriteReport(ctx, file, date, batch)
		},
	}
}
