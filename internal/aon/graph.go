// Package aon implements an all-or-nothing shortest-path loader: the
// reference AoN collaborator the equilibrium solver treats as external.
//
// Given a demand matrix and a graph whose link costs reflect the current
// iteration's congested travel times, Load shortest-paths every origin's
// demand onto the minimum-cost tree and accumulates the resulting flows
// onto each traversed link. The package owns no equilibrium-specific state;
// it only knows nodes, directed cost-bearing links, and demand rows.
package aon

import "sort"

// Node identifies a vertex in the network. Node IDs are opaque except for
// their ordering, which is used to keep iteration deterministic.
type Node int64

// Link identifies a directed edge by its position in the solver's
// link-indexed aggregate vectors (flows, costs, derivatives). Two graphs
// built from the same network share the same link numbering.
type Link int

// edge is one directed arc leaving a node, carrying the link index that the
// equilibrium core uses to address this arc's flow and cost.
type edge struct {
	to   Node
	link Link
}

// Graph is a directed, link-indexed adjacency list. Costs live in a
// separate slice indexed by Link so the solver can overwrite them in place
// every iteration without touching topology.
//
// Graph is not safe for concurrent writes; concurrent AoN loads over the
// same Graph must only read costs, never mutate them mid-load.
type Graph struct {
	adj      map[Node][]edge
	nodes    []Node // sorted once at build time for deterministic traversal
	costs    []float64
	numLinks int
}

// NewGraph returns an empty graph ready for AddLink calls.
func NewGraph() *Graph {
	return &Graph{adj: make(map[Node][]edge)}
}

// AddLink appends a directed arc from -> to with the given initial cost,
// returning the Link index assigned to it. Costs are free-flow travel
// times at construction; the solver overwrites them via SetCost once per
// iteration after the VDF update.
func (g *Graph) AddLink(from, to Node, cost float64) Link {
	g.ensureNode(from)
	g.ensureNode(to)

	l := Link(g.numLinks)
	g.numLinks++
	g.costs = append(g.costs, cost)
	g.adj[from] = append(g.adj[from], edge{to: to, link: l})
	return l
}

// ensureNode registers n in the adjacency map and the sorted node list the
// first time it is seen, keeping g.nodes sorted incrementally rather than
// re-sorting on every AddLink call.
func (g *Graph) ensureNode(n Node) {
	if _, ok := g.adj[n]; ok {
		return
	}
	g.adj[n] = nil
	i := sort.Search(len(g.nodes), func(i int) bool { return g.nodes[i] >= n })
	g.nodes = append(g.nodes, 0)
	copy(g.nodes[i+1:], g.nodes[i:])
	g.nodes[i] = n
}

// NumLinks reports the number of directed arcs in the graph, i.e. the
// length every link-indexed aggregate vector must have.
func (g *Graph) NumLinks() int { return g.numLinks }

// SortedNodes returns every node ID in ascending order. Used to seed
// deterministic traversal and to size distance/parent tables.
func (g *Graph) SortedNodes() []Node { return g.nodes }

// Neighbors returns the outgoing arcs of n in insertion order.
func (g *Graph) Neighbors(n Node) []edge { return g.adj[n] }

// SetCost overwrites the travel cost of link, implementing the writable
// cost column the equilibrium core publishes VDF output onto.
func (g *Graph) SetCost(link int, cost float64) {
	g.costs[link] = cost
}

// Cost returns the current travel cost of link.
func (g *Graph) Cost(link Link) float64 { return g.costs[link] }
