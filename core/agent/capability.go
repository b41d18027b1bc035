package agent

import (
	"context"
	"fmt"

	"github.com/siherrmann/chipnews/helper"
	"github.com/siherrmann/chipnews/model"
)

// Capability is an external collaborator of the coordinator.
type Capability interface {
	Name() string
}

// Retriever returns same-day news chunks rendered as prompt context.
type Retriever interface {
	Capability
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// GraphQuery answers questions about the historical knowledge graph.
type GraphQuery interface {
	Capability
	Chipmakers() []string
	Canonical(name string) (string, error)
	Summary(chipmaker string) (string, error)
	Entities(chipmaker string) ([]string, error)
	ResolveEntity(chipmaker string, name string) (string, error)
	RelationsBetween(chipmaker string, a string, b string) ([]string, error)
	TripletsBetween(chipmaker string, a string, b string) ([]*model.Triplet, error)
	Neighborhood(chipmaker string, entity string, maxHops int) ([]*model.EntityNode, error)
}

// WebSearch finds ranked market news. An empty result means no data.
type WebSearch interface {
	Capability
	SearchWithFocus(ctx context.Context, query string, maxResults int, focus model.Focus, minRelevance float64) []model.SearchResult
}

// TextGeneration turns a prompt into text.
type TextGeneration interface {
	Capability
	Generate(ctx context.Context, prompt string) (string, error)
}

// Delay paces delegated calls against provider rate limits.
type Delay interface {
	Capability
	Wait(ctx context.Context, reason string) error
}

// ItemDelay hands out an independent Delay per news item. The coordinator
// paces every item on its own gate, so one item's pause does not hold back
// the others in a concurrent batch.
type ItemDelay interface {
	Delay
	ForItem() Delay
}

// Capabilities are the collaborators injected into the coordinator.
type Capabilities struct {
	Retriever Retriever
	Graph     GraphQuery
	Search    WebSearch
	Leader    TextGeneration
	Worker    TextGeneration
	Delay     Delay
}

// Validate checks that every required capability is set.
// A missing Delay disables pacing.
func (c *Capabilities) Validate() error {
	missing := []string{}
	if c.Retriever == nil {
		missing = append(missing, "retriever")
	}
	if c.Graph == nil {
		missing = append(missing, "graph")
	}
	if c.Search == nil {
		missing = append(missing, "search")
	}
	if c.Leader == nil {
		missing = append(missing, "leader")
	}
	if c.Worker == nil {
		missing = append(missing, "worker")
	}
	if len(missing) > 0 {
		return helper.NewError("validate capabilities", fmt.Errorf("%w: %v", helper.ErrMissingConfig, missing))
	}
	if c.Delay == nil {
		c.Delay = NewPacer(0, nil)
	}
	return nil
}
