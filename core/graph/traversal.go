package graph

import (
	"slices"

	"github.com/siherrmann/chipnews/model"
)

// Neighborhood performs breadth-first search from an entity over the edges of
// the chipmaker, ignoring edge direction. It returns the entity itself at
// distance 0 followed by every entity within maxHops, each with the path from
// the source. Neighbours are visited in edge insertion order.
func (g *Graph) Neighborhood(chipmaker string, entity string, maxHops int) ([]*model.EntityNode, error) {
	canonical, err := g.Canonical(chipmaker)
	if err != nil {
		return nil, err
	}
	source, err := g.ResolveEntity(canonical, entity)
	if err != nil {
		return nil, err
	}

	adjacency := map[string][]string{}
	for _, edge := range g.edgesOf(canonical) {
		adjacency[edge.Subject] = append(adjacency[edge.Subject], edge.Object)
		adjacency[edge.Object] = append(adjacency[edge.Object], edge.Subject)
	}

	visited := map[string]bool{source: true}
	queue := []*model.EntityNode{{Name: source, Distance: 0, Path: []string{source}}}
	var results []*model.EntityNode

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, current)

		// Nodes at the hop limit are reported, not expanded.
		if current.Distance >= maxHops {
			continue
		}

		for _, target := range adjacency[current.Name] {
			if visited[target] {
				continue
			}
			visited[target] = true

			path := slices.Clone(current.Path)
			queue = append(queue, &model.EntityNode{
				Name:     target,
				Distance: current.Distance + 1,
				Path:     append(path, target),
			})
		}
	}

	return results, nil
}

// Neighbors returns the entities directly connected to entity.
func (g *Graph) Neighbors(chipmaker string, entity string) ([]string, error) {
	nodes, err := g.Neighborhood(chipmaker, entity, 1)
	if err != nil {
		return nil, err
	}

	neighbors := make([]string, 0, len(nodes)-1)
	for _, node := range nodes[1:] {
		neighbors = append(neighbors, node.Name)
	}
	return neighbors, nil
}
