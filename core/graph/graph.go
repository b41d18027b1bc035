package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

type edgeKey struct {
	chipmaker string
	key       model.EdgeKey
}

// Graph is a directed multi-edge graph of triplets tagged by chipmaker.
// Nodes are entity names. Parallel edges between the same nodes are told
// apart by verb and date.
type Graph struct {
	mu         sync.RWMutex
	chipmakers map[string]string
	order      []string
	edges      []*model.Triplet
	keys       map[edgeKey]int
	summaries  SummaryStore
	logger     *slog.Logger
}

// New creates an empty graph. The summary store may be nil.
func New(summaries SummaryStore, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		chipmakers: map[string]string{},
		keys:       map[edgeKey]int{},
		summaries:  summaries,
		logger:     logger,
	}
}

// Name returns the capability name.
func (g *Graph) Name() string {
	return "graph"
}

// ReadDataset decodes a graph dataset mapping chipmaker to dated triplets.
func ReadDataset(r io.Reader) (model.GraphDataset, error) {
	dataset := model.GraphDataset{}
	if err := json.NewDecoder(r).Decode(&dataset); err != nil {
		return nil, helper.NewError("decode graph dataset", fmt.Errorf("%w: %v", model.ErrIngestion, err))
	}
	return dataset, nil
}

// LoadFile reads the graph dataset at path into the graph.
func (g *Graph) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return helper.NewError("open graph file", fmt.Errorf("%w: %v", model.ErrIngestion, err))
	}
	defer file.Close()

	dataset, err := ReadDataset(file)
	if err != nil {
		return err
	}

	added := g.LoadTriplets(dataset)
	g.logger.Info("Loaded graph", slog.String("path", path), slog.Int("edges", added), slog.Int("chipmakers", len(dataset)))

	return nil
}

// LoadTriplets adds one edge per triplet of the dataset and returns the
// number of new edges. Loading the same dataset again adds nothing.
// Chipmakers are processed in sorted order so edge order is reproducible.
func (g *Graph) LoadTriplets(dataset model.GraphDataset) int {
	chipmakers := make([]string, 0, len(dataset))
	for chipmaker := range dataset {
		chipmakers = append(chipmakers, chipmaker)
	}
	slices.Sort(chipmakers)

	added := 0
	for _, chipmaker := range chipmakers {
		g.registerChipmaker(chipmaker)
		for _, record := range dataset[chipmaker] {
			for _, raw := range record.Triplets {
				triplet := &model.Triplet{
					Chipmaker: chipmaker,
					Subject:   raw.Subject,
					Object:    raw.Object,
					Verb:      raw.Relation.Verb,
					Detail:    raw.Relation.Detail,
					Date:      record.Date,
				}
				if g.AddTriplet(triplet) {
					added++
				}
			}
		}
	}

	return added
}

// AddTriplet adds the triplet as an edge and registers its chipmaker.
// Triplets without verb or endpoints are skipped with a warning. A triplet
// whose chipmaker and edge key already exist is ignored. It reports whether
// a new edge was added.
func (g *Graph) AddTriplet(triplet *model.Triplet) bool {
	if strings.TrimSpace(triplet.Verb) == "" || triplet.Subject == "" || triplet.Object == "" {
		g.logger.Warn("Skipping incomplete triplet",
			slog.String("chipmaker", triplet.Chipmaker),
			slog.String("subject", triplet.Subject),
			slog.String("object", triplet.Object),
			slog.String("date", triplet.Date),
		)
		return false
	}

	chipmaker := g.registerChipmaker(triplet.Chipmaker)

	g.mu.Lock()
	defer g.mu.Unlock()

	key := edgeKey{chipmaker: chipmaker, key: triplet.Key()}
	if _, ok := g.keys[key]; ok {
		return false
	}

	edge := *triplet
	edge.Chipmaker = chipmaker
	if edge.ID == uuid.Nil {
		edge.ID = uuid.New()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}

	g.keys[key] = len(g.edges)
	g.edges = append(g.edges, &edge)

	return true
}

func (g *Graph) registerChipmaker(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := g.chipmakers[lower]; ok {
		return canonical
	}
	g.chipmakers[lower] = name
	g.order = append(g.order, name)
	return name
}

// Chipmakers returns the canonical chipmaker keys in registration order.
func (g *Graph) Chipmakers() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Canonical maps a chipmaker name to its key, ignoring case.
func (g *Graph) Canonical(name string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	canonical, ok := g.chipmakers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", helper.NewError("canonical chipmaker", fmt.Errorf("%w: %q", model.ErrUnknownEntity, name))
	}
	return canonical, nil
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Edges returns the edges tagged with the chipmaker in insertion order.
func (g *Graph) Edges(chipmaker string) ([]*model.Triplet, error) {
	canonical, err := g.Canonical(chipmaker)
	if err != nil {
		return nil, err
	}
	return g.edgesOf(canonical), nil
}

func (g *Graph) edgesOf(canonical string) []*model.Triplet {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := []*model.Triplet{}
	for _, edge := range g.edges {
		if edge.Chipmaker == canonical {
			edges = append(edges, edge)
		}
	}
	return edges
}

// Summary returns the precomputed 7-day digest of the chipmaker.
func (g *Graph) Summary(chipmaker string) (string, error) {
	canonical, err := g.Canonical(chipmaker)
	if err != nil {
		return "", err
	}
	if g.summaries == nil {
		return "", helper.NewError("summary", fmt.Errorf("no summary store configured"))
	}

	summary, err := g.summaries.Summary(canonical)
	if err != nil {
		return "", helper.NewError("summary", err)
	}
	return summary, nil
}

// AcrossSummary returns the digest spanning all chipmakers.
func (g *Graph) AcrossSummary() (string, error) {
	if g.summaries == nil {
		return "", helper.NewError("across summary", fmt.Errorf("no summary store configured"))
	}

	summary, err := g.summaries.Across()
	if err != nil {
		return "", helper.NewError("across summary", err)
	}
	return summary, nil
}

// Entities returns the sorted names of all nodes touching an edge of the chipmaker.
func (g *Graph) Entities(chipmaker string) ([]string, error) {
	edges, err := g.Edges(chipmaker)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	for _, edge := range edges {
		set[edge.Subject] = true
		set[edge.Object] = true
	}
	return sortedKeys(set), nil
}

// Relations returns the sorted distinct verbs on edges of the chipmaker.
func (g *Graph) Relations(chipmaker string) ([]string, error) {
	edges, err := g.Edges(chipmaker)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	for _, edge := range edges {
		set[edge.Verb] = true
	}
	return sortedKeys(set), nil
}

// TripletsBetween returns the edges of the chipmaker between a and b in
// either direction, in insertion order.
func (g *Graph) TripletsBetween(chipmaker string, a string, b string) ([]*model.Triplet, error) {
	edges, err := g.Edges(chipmaker)
	if err != nil {
		return nil, err
	}

	between := []*model.Triplet{}
	for _, edge := range edges {
		if (edge.Subject == a && edge.Object == b) || (edge.Subject == b && edge.Object == a) {
			between = append(between, edge)
		}
	}
	return between, nil
}

// RelationsBetween formats the edges between a and b as "verb (detail, date)".
// The result does not depend on the order of a and b.
func (g *Graph) RelationsBetween(chipmaker string, a string, b string) ([]string, error) {
	between, err := g.TripletsBetween(chipmaker, a, b)
	if err != nil {
		return nil, err
	}

	relations := make([]string, 0, len(between))
	for _, edge := range between {
		relations = append(relations, edge.Format())
	}
	return relations, nil
}

// ResolveEntity finds the node name of the chipmaker matching name, preferring
// an exact match over a case-insensitive one.
func (g *Graph) ResolveEntity(chipmaker string, name string) (string, error) {
	entities, err := g.Entities(chipmaker)
	if err != nil {
		return "", err
	}
	if slices.Contains(entities, name) {
		return name, nil
	}
	for _, entity := range entities {
		if strings.EqualFold(entity, name) {
			return entity, nil
		}
	}
	return "", helper.NewError("resolve entity", fmt.Errorf("%w: %q has no entity %q", model.ErrUnknownEntity, chipmaker, name))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
