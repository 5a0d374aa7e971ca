package aon

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"equilibrium/equilibrium"
)

// ODPair is one row of demand: a volume travelling from Origin to Dest,
// attributed to Stratum (a user subclass sharing the class's graph, per
// the data model's sub-stratum concept).
type ODPair struct {
	Origin  Node
	Dest    Node
	Stratum int
	Volume  float64
}

// Demand is the concrete demand matrix this loader understands: a flat
// list of OD pairs grouped implicitly by origin. It is the "opaque demand
// matrix" the equilibrium core passes through untouched.
type Demand struct {
	Pairs []ODPair
}

// Loader is the all-or-nothing shortest-path collaborator: for every
// origin with outstanding demand, it builds the shortest-path tree under
// the graph's current costs and accumulates each OD pair's volume onto
// every link on that pair's tree path.
//
// Loader implements equilibrium.AoNLoader.
type Loader struct {
	// Workers bounds how many origins are shortest-pathed concurrently.
	// <= 0 defaults to runtime.NumCPU(), mirroring the core's own
	// worker-parallelism hint.
	Workers int
}

// NewLoader returns a Loader with the given worker fan-out.
func NewLoader(workers int) *Loader {
	return &Loader{Workers: workers}
}

// Load implements equilibrium.AoNLoader. g and demand must be this
// package's concrete *Graph and *Demand — the equilibrium core treats
// both as opaque and only forwards what its own Config was built with.
func (l *Loader) Load(ctx context.Context, demand any, g equilibrium.Graph, out *equilibrium.LinkLoads) error {
	graph, ok := g.(*Graph)
	if !ok {
		return fmt.Errorf("aon: graph handle is %T, want *aon.Graph", g)
	}
	d, ok := demand.(*Demand)
	if !ok {
		return fmt.Errorf("aon: demand is %T, want *aon.Demand", demand)
	}

	byOrigin := groupByOrigin(d.Pairs)
	origins := make([]Node, 0, len(byOrigin))
	for origin := range byOrigin {
		origins = append(origins, origin)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i] < origins[j] })

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(origins) {
		workers = len(origins)
	}
	if workers == 0 {
		return nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	var firstErr error

	for _, origin := range origins {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(origin Node) {
			defer wg.Done()
			defer func() { <-sem }()

			tree := shortestPathTree(ctx, graph, origin)
			if tree.canceled {
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, pair := range byOrigin[origin] {
				loadPair(out, tree, pair)
			}
		}(origin)
	}
	wg.Wait()

	return firstErr
}

func groupByOrigin(pairs []ODPair) map[Node][]ODPair {
	out := make(map[Node][]ODPair)
	for _, p := range pairs {
		out[p.Origin] = append(out[p.Origin], p)
	}
	return out
}

// loadPair walks the shortest-path tree from pair.Dest back to the origin,
// adding pair.Volume onto every traversed link's [link][stratum] cell.
func loadPair(out *equilibrium.LinkLoads, tree *shortestPathResult, pair ODPair) {
	node := pair.Dest
	for {
		link, ok := tree.linkTo[node]
		if !ok {
			return // node is the origin, or unreachable
		}
		out.Values[link][pair.Stratum] += pair.Volume
		node = tree.parent[node]
	}
}
