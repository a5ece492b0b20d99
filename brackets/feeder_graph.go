package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/dominikbraun/graph"
)

const edgeSourceAttribute = "source"

var ErrUnknownFeeder = errors.New("slot references a match outside the tournament")

// FeederGraph has all knockout matches of a tournament as its nodes. An edge
// runs from a feeder match to the match whose slot it fills, labelled with
// whether the winner or the loser advances along it.
//
// The graph is built once per request from the stored matches and is not
// updated afterwards.
type FeederGraph struct {
	graph.Graph[string, *models.Match]

	adjacency    map[string]map[string]graph.Edge[string]
	predecessors map[string]map[string]graph.Edge[string]
}

func matchHash(m *models.Match) string {
	return m.ID
}

func NewFeederGraph(matches []*models.Match) (*FeederGraph, error) {
	g := graph.New(matchHash, graph.Directed(), graph.Acyclic())

	for _, m := range matches {
		if err := g.AddVertex(m); err != nil {
			return nil, fmt.Errorf("adding match %s to feeder graph: %w", m.ID, err)
		}
	}

	for _, m := range matches {
		for _, slot := range m.Slots {
			if slot.SourceMatchID == nil {
				continue
			}
			err := g.AddEdge(*slot.SourceMatchID, m.ID, graph.EdgeAttribute(edgeSourceAttribute, string(slot.Source)))
			switch {
			case errors.Is(err, graph.ErrVertexNotFound):
				return nil, fmt.Errorf("%w: match %s slot source %s", ErrUnknownFeeder, m.ID, *slot.SourceMatchID)
			case err != nil:
				return nil, fmt.Errorf("linking %s -> %s: %w", *slot.SourceMatchID, m.ID, err)
			}
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("building adjacency map: %w", err)
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("building predecessor map: %w", err)
	}

	return &FeederGraph{Graph: g, adjacency: adjacency, predecessors: predecessors}, nil
}

// Match returns the match with the given ID.
func (g *FeederGraph) Match(id string) (*models.Match, bool) {
	m, err := g.Vertex(id)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Dependents returns the matches fed by the given match, in bracket order.
func (g *FeederGraph) Dependents(id string) []*models.Match {
	return g.collect(g.adjacency[id])
}

// Feeders returns the matches whose results fill the given match's slots.
func (g *FeederGraph) Feeders(id string) []*models.Match {
	return g.collect(g.predecessors[id])
}

func (g *FeederGraph) collect(edges map[string]graph.Edge[string]) []*models.Match {
	out := make([]*models.Match, 0, len(edges))
	for k := range edges {
		if m, ok := g.Match(k); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].OrderInRound != out[j].OrderInRound {
			return out[i].OrderInRound < out[j].OrderInRound
		}
		return out[i].ID < out[j].ID
	})
	return out
}
