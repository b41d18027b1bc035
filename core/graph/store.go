package graph

import (
	"log/slog"

	"github.com/siherrmann/chipnews/database"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// SaveToDatabase stores every edge. Stored edges with the same chipmaker
// and edge key are updated in place.
func (g *Graph) SaveToDatabase(triplets database.TripletsDBHandlerFunctions) error {
	g.mu.RLock()
	edges := make([]model.Triplet, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, *edge)
	}
	g.mu.RUnlock()

	for i := range edges {
		if err := triplets.InsertTriplet(&edges[i]); err != nil {
			return helper.NewError("insert triplet", err)
		}
	}

	g.logger.Info("Saved graph to database", slog.Int("edges", len(edges)))

	return nil
}

// LoadFromDatabase adds the stored edges of the chipmakers, or of all
// chipmakers when none are given.
func (g *Graph) LoadFromDatabase(triplets database.TripletsDBHandlerFunctions, chipmakers ...string) error {
	stored, err := triplets.SelectTripletsByChipmakers(chipmakers)
	if err != nil {
		return helper.NewError("select triplets", err)
	}

	added := 0
	for _, triplet := range stored {
		if g.AddTriplet(triplet) {
			added++
		}
	}

	g.logger.Info("Loaded graph from database", slog.Int("edges", added))

	return nil
}
