package aon

import (
	"container/heap"
	"context"
	"math"
)

// =============================================================================
// Single-source shortest path tree
//
// Traffic link costs are VDF outputs and are never negative, so the AoN
// loader only needs plain Dijkstra — no Bellman-Ford fallback, no Johnson's
// potentials. The priority queue below is a straight port of that shape:
// a binary min-heap keyed on distance with node-ID tie-breaking so that two
// runs over the same graph and costs always produce the same tree.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// shortestPathResult holds a single-source shortest path tree.
type shortestPathResult struct {
	parent   map[Node]Node // predecessor on the shortest path; absent for the source
	linkTo   map[Node]Link // link used to reach each node from its parent
	canceled bool
}

type pqItem struct {
	node     Node
	distance float64
	index    int
}

// priorityQueue is a min-heap on distance with node-ID tie-breaking for
// determinism, mirroring the AoN-adjacent shortest-path code this package
// is adapted from.
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// checkInterval bounds how often the context is polled inside the hot loop;
// checking every iteration would dominate the runtime on dense networks.
const checkInterval = 256

const epsilon = 1e-9

// shortestPathTree runs Dijkstra's algorithm from source over g using its
// current link costs, returning the predecessor tree needed to trace AoN
// paths back to the origin.
func shortestPathTree(ctx context.Context, g *Graph, source Node) *shortestPathResult {
	nodes := g.SortedNodes()

	dist := make(map[Node]float64, len(nodes))
	parent := make(map[Node]Node, len(nodes))
	linkTo := make(map[Node]Link, len(nodes))
	for _, n := range nodes {
		dist[n] = math.Inf(1)
	}
	dist[source] = 0

	pq := make(priorityQueue, 0, len(nodes))
	heap.Push(&pq, &pqItem{node: source, distance: 0})

	iterations := 0
	for pq.Len() > 0 {
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return &shortestPathResult{parent: parent, linkTo: linkTo, canceled: true}
			default:
			}
		}
		iterations++

		current := heap.Pop(&pq).(*pqItem)
		u := current.node

		if current.distance > dist[u]+epsilon {
			continue // stale entry, already settled with a shorter distance
		}

		for _, e := range g.Neighbors(u) {
			newDist := dist[u] + g.Cost(e.link)
			if newDist < dist[e.to]-epsilon {
				dist[e.to] = newDist
				parent[e.to] = u
				linkTo[e.to] = e.link
				heap.Push(&pq, &pqItem{node: e.to, distance: newDist})
			}
		}
	}

	return &shortestPathResult{parent: parent, linkTo: linkTo}
}
