// Package equilibrium implements the core of a static user-equilibrium
// traffic-assignment engine: an iterative link-based path-averaging solver
// running the Frank-Wolfe family of algorithms (FW, MSA, CFW, BFW) together
// with the line search and convergence test that drive them.
//
// Graph construction, shortest-path (all-or-nothing) loading, the
// volume-delay function library, and persistence are external collaborators
// consumed through the AoNLoader and VDF interfaces; this package never
// constructs a network itself.
package equilibrium

import "context"

// LinkLoads is the per-class flow buffer described by the data model: a
// 2-D array indexed [link][stratum] (sub-strata are user subclasses
// sharing a class's graph), plus optional named skims that follow the same
// linear combinations as the loads themselves.
type LinkLoads struct {
	Values [][]float64 // Values[link][stratum]
	Skims  []Skim
}

// Skim is a per-link, per-stratum summary (e.g. accumulated travel time)
// that rides along with link loads through every linear combination the
// solver applies, so costs experienced by travellers stay consistent with
// assigned flows.
type Skim struct {
	Name   string
	Values [][]float64
}

// NewLinkLoads allocates a zero-initialized buffer for numLinks links and
// numStrata sub-strata, with the named skim fields if any.
func NewLinkLoads(numLinks, numStrata int, skimNames ...string) *LinkLoads {
	ll := &LinkLoads{Values: make([][]float64, numLinks)}
	for i := range ll.Values {
		ll.Values[i] = make([]float64, numStrata)
	}
	if len(skimNames) > 0 {
		ll.Skims = make([]Skim, len(skimNames))
		for i, name := range skimNames {
			ll.Skims[i] = Skim{Name: name, Values: make([][]float64, numLinks)}
			for l := range ll.Skims[i].Values {
				ll.Skims[i].Values[l] = make([]float64, numStrata)
			}
		}
	}
	return ll
}

// TotalLinkLoads row-sums the buffer over sub-strata, producing the
// length-#links vector the direction engine and line search operate on.
func (l *LinkLoads) TotalLinkLoads() []float64 {
	out := make([]float64, len(l.Values))
	for i, row := range l.Values {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		out[i] = sum
	}
	return out
}

// TotalFlow sums every element of the buffer across links and strata.
func (l *LinkLoads) TotalFlow() float64 {
	sum := 0.0
	for _, row := range l.Values {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// Reset zeroes the buffer in place without reallocating, fulfilling the
// "per-iteration AoN buffers are reset at the end of each iteration"
// lifecycle rule.
func (l *LinkLoads) Reset() {
	for _, row := range l.Values {
		for i := range row {
			row[i] = 0
		}
	}
	for _, s := range l.Skims {
		for _, row := range s.Values {
			for i := range row {
				row[i] = 0
			}
		}
	}
}

// CopyFrom overwrites the receiver's contents with src's, used for the
// k=1 "copy aon_results into results" step.
func (l *LinkLoads) CopyFrom(src *LinkLoads) {
	for i, row := range src.Values {
		copy(l.Values[i], row)
	}
	for si, s := range src.Skims {
		for i, row := range s.Values {
			copy(l.Skims[si].Values[i], row)
		}
	}
}

// combine sets dst = a*dst + b*src elementwise, the linear-combination
// kernel every direction and flow update reduces to.
func combine(dst, src [][]float64, a, b float64) {
	for i, row := range dst {
		srow := src[i]
		for j := range row {
			row[j] = a*row[j] + b*srow[j]
		}
	}
}

// Graph is the minimal contract the core needs from an external network
// handle: a writable cost column the solver publishes VDF output onto
// before the next AoN load. Everything else about the graph (topology,
// skim fields) is opaque to the core.
type Graph interface {
	SetCost(link int, cost float64)
}

// AoNLoader is the external all-or-nothing shortest-path collaborator:
// given a demand matrix and a graph whose costs reflect the current
// iteration, it populates out with the shortest-pathed link loads. Load
// must be idempotent given the same inputs and is invoked once per class
// per iteration; the core resets out between calls.
type AoNLoader interface {
	Load(ctx context.Context, demand any, g Graph, out *LinkLoads) error
}

// VDF is the external volume-delay function collaborator: pure,
// elementwise functions of flow, capacity and free-flow time that map
// flow to congested travel time and its derivative. VDF-specific
// parameters (e.g. BPR's alpha/beta) are bound at construction of the
// concrete VDF and are not visible to the core.
type VDF interface {
	Apply(outTime, flow, capacity, freeFlow []float64)
	ApplyDerivative(outTPrime, flow, capacity, freeFlow []float64)
}

// Class is a demand segment tracked by the core across iterations: a PCE
// weight, an opaque demand matrix and graph handle, and the two buffers
// the driver mutates in place during Run — Results (the committed
// solution) and AoNResults (the per-iteration shortest-path load).
//
// Results and AoNResults are owned by the caller but mutated exclusively
// by the core during Run; the caller must not touch them until Run
// returns.
type Class struct {
	Mode       string
	PCE        float64
	Demand     any
	Graph      Graph
	Results    *LinkLoads
	AoNResults *LinkLoads
}
