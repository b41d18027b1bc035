package main

import (
	"github.com/siherrmann/chipnews"
	"github.com/siherrmann/chipnews/helper"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	useDatabase bool

	// appOptions are appended to the options of every instance.
	appOptions []chipnews.Option
)

var rootCmd = &cobra.Command{
	Use:   "chipnews",
	Short: "Financial news analysis for chipmakers",
	Long: `chipnews filters and indexes chipmaker news, queries a knowledge graph
of past relations and live market search, and lets a leader model merge the
findings of its workers into one financial impact report per article.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file applied on top of the environment")
	rootCmd.PersistentFlags().BoolVar(&useDatabase, "db", false, "store chunks and triplets in Postgres (CHIPNEWS_DB_* variables)")
}

// newApp loads the configuration, applies the command overrides and
// creates the instance. Logs go to stderr so reports can be piped.
func newApp(cmd *cobra.Command, overrides ...func(*helper.Configuration)) (*chipnews.ChipNews, error) {
	config, err := helper.NewConfiguration()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := config.LoadFile(configPath); err != nil {
			return nil, helper.NewError("load config file", err)
		}
	}
	for _, override := range overrides {
		override(config)
	}

	opts := []chipnews.Option{chipnews.WithLogger(helper.NewLogger(cmd.ErrOrStderr(), config.SlogLevel()))}
	if useDatabase {
		dbConfig, err := helper.NewDatabaseConfiguration()
		if err != nil {
			return nil, helper.NewError("database configuration", err)
		}
		opts = append(opts, chipnews.WithDatabase(dbConfig))
	}
	opts = append(opts, appOptions...)

	return chipnews.New(config, opts...)
}
