package worldmap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"taximarket/core/model"
)

var (
	// ErrUnknownNode reports a reference to a coordinate outside the
	// service area.
	ErrUnknownNode = errors.New("worldmap: unknown node")
	// ErrUnknownNeighbour reports an edge whose far end is outside the
	// service area.
	ErrUnknownNeighbour = errors.New("worldmap: unknown neighbour node")
)

// Graph is a service-area topology: junctions connected by weighted road
// segments. Weights are travel times. Route queries run Dijkstra over the
// underlying gonum graph.
type Graph struct {
	g      *simple.WeightedUndirectedGraph
	ids    map[model.Coord]int64
	coords map[int64]model.Coord
	next   int64
}

// New returns an empty service area.
func New() *Graph {
	return &Graph{
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		ids:    make(map[model.Coord]int64),
		coords: make(map[int64]model.Coord),
	}
}

// AddNode registers a junction. Adding an existing junction is a no-op.
func (m *Graph) AddNode(c model.Coord) {
	if _, ok := m.ids[c]; ok {
		return
	}
	id := m.next
	m.next++
	m.ids[c] = id
	m.coords[id] = c
	m.g.AddNode(simple.Node(id))
}

// HasNode reports whether the coordinate is a known junction.
func (m *Graph) HasNode(c model.Coord) bool {
	_, ok := m.ids[c]
	return ok
}

// Connect links two junctions with the given travel time. Both ends must
// already be known; a dangling end fails loudly with a distinct error.
func (m *Graph) Connect(a, b model.Coord, travelTime float64) error {
	ida, ok := m.ids[a]
	if !ok {
		return errNode(ErrUnknownNode, a)
	}
	idb, ok := m.ids[b]
	if !ok {
		return errNode(ErrUnknownNeighbour, b)
	}
	if ida == idb {
		return nil
	}
	m.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ida), T: simple.Node(idb), W: travelTime})
	return nil
}

// Nodes returns all junctions in stable coordinate order.
func (m *Graph) Nodes() []model.Coord {
	out := make([]model.Coord, 0, len(m.ids))
	for c := range m.ids {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Neighbours returns the junctions directly connected to c, in stable
// coordinate order. Unknown junctions have no neighbours.
func (m *Graph) Neighbours(c model.Coord) []model.Coord {
	id, ok := m.ids[c]
	if !ok {
		return nil
	}
	var out []model.Coord
	it := m.g.From(id)
	for it.Next() {
		out = append(out, m.coords[it.Node().ID()])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Distance returns the straight-line distance between two junctions,
// regardless of connectivity. Unknown junctions yield the unreachable
// sentinel.
func (m *Graph) Distance(a, b model.Coord) float64 {
	if !m.HasNode(a) || !m.HasNode(b) {
		return model.UnreachableTime
	}
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// TravelTime returns the shortest travel time between two junctions, or the
// unreachable sentinel when no route exists.
func (m *Graph) TravelTime(a, b model.Coord) float64 {
	return m.Route(a, b).Time
}

// Route returns the shortest itinerary between two junctions, tagged
// unreachable when none exists.
func (m *Graph) Route(from, to model.Coord) model.Route {
	ida, ok := m.ids[from]
	if !ok {
		return model.Unreachable()
	}
	idb, ok := m.ids[to]
	if !ok {
		return model.Unreachable()
	}
	if ida == idb {
		return model.Route{Nodes: []model.Coord{from}, Time: 0}
	}
	shortest := path.DijkstraFrom(m.g.Node(ida), m.g)
	nodes, weight := shortest.To(idb)
	if math.IsInf(weight, 1) || len(nodes) == 0 {
		return model.Unreachable()
	}
	return model.Route{Nodes: m.toCoords(nodes), Time: weight}
}

func (m *Graph) toCoords(nodes []graph.Node) []model.Coord {
	out := make([]model.Coord, len(nodes))
	for i, n := range nodes {
		out[i] = m.coords[n.ID()]
	}
	return out
}

func errNode(sentinel error, c model.Coord) error {
	return fmt.Errorf("%w: (%d,%d)", sentinel, c.X, c.Y)
}
