package main

import (
	"fmt"
	"strings"

	"github.com/siherrmann/chipnews"
	"github.com/spf13/cobra"
)

var graphHops int

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the knowledge graph of past relations",
	Long: `Loads GRAPH_FILE (or, with --db and no file, the stored triplets) and
answers questions about the relations of one chipmaker.`,
}

var graphSummaryCmd = &cobra.Command{
	Use:   "summary [chipmaker]",
	Short: "Print the 7-day summary of a chipmaker",
	Args:  cobra.ExactArgs(1),
	RunE: withGraph(func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error {
		summary, err := app.Graph.Summary(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	}),
}

var graphEntitiesCmd = &cobra.Command{
	Use:   "entities [chipmaker]",
	Short: "List the entities of a chipmaker",
	Args:  cobra.ExactArgs(1),
	RunE: withGraph(func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error {
		entities, err := app.Graph.Entities(args[0])
		if err != nil {
			return err
		}
		for _, entity := range entities {
			fmt.Fprintln(cmd.OutOrStdout(), entity)
		}
		return nil
	}),
}

var graphRelationsCmd = &cobra.Command{
	Use:   "relations [chipmaker]",
	Short: "List the relation verbs of a chipmaker",
	Args:  cobra.ExactArgs(1),
	RunE: withGraph(func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error {
		relations, err := app.Graph.Relations(args[0])
		if err != nil {
			return err
		}
		for _, relation := range relations {
			fmt.Fprintln(cmd.OutOrStdout(), relation)
		}
		return nil
	}),
}

var graphBetweenCmd = &cobra.Command{
	Use:   "between [chipmaker] [entity] [entity]",
	Short: "Print the relations between two entities in both directions",
	Args:  cobra.ExactArgs(3),
	RunE: withGraph(func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error {
		a, err := app.Graph.ResolveEntity(args[0], args[1])
		if err != nil {
			return err
		}
		b, err := app.Graph.ResolveEntity(args[0], args[2])
		if err != nil {
			return err
		}
		triplets, err := app.Graph.TripletsBetween(args[0], a, b)
		if err != nil {
			return err
		}
		if len(triplets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No relations found.")
			return nil
		}
		for _, triplet := range triplets {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", triplet.Arrow(), triplet.Format())
		}
		return nil
	}),
}

var graphNeighborhoodCmd = &cobra.Command{
	Use:   "neighborhood [chipmaker] [entity]",
	Short: "List the entities within a number of hops",
	Args:  cobra.ExactArgs(2),
	RunE: withGraph(func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error {
		nodes, err := app.Graph.Neighborhood(args[0], args[1], graphHops)
		if err != nil {
			return err
		}
		for _, node := range nodes[1:] {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d hops: %s)\n", node.Name, node.Distance, strings.Join(node.Path, " -> "))
		}
		return nil
	}),
}

func init() {
	graphNeighborhoodCmd.Flags().IntVar(&graphHops, "hops", 2, "maximum number of hops")

	graphCmd.AddCommand(graphSummaryCmd, graphEntitiesCmd, graphRelationsCmd, graphBetweenCmd, graphNeighborhoodCmd)
	rootCmd.AddCommand(graphCmd)
}

// withGraph creates the instance and loads the graph before running fn.
func withGraph(fn func(cmd *cobra.Command, app *chipnews.ChipNews, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.LoadGraph(); err != nil {
			return err
		}
		return fn(cmd, app, args)
	}
}
