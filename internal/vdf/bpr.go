// Package vdf implements volume-delay functions: the external collaborator
// that maps link flow to congested travel time and its derivative.
package vdf

import "math"

// BPR implements the Bureau of Public Roads volume-delay function:
//
//	t(v) = t0 * (1 + alpha*(v/c)^beta)
//
// Alpha and Beta are bound once at construction and shared by every link;
// the equilibrium core never sees them, only the Apply/ApplyDerivative
// contract.
type BPR struct {
	Alpha float64
	Beta  float64
}

// NewBPR returns a BPR VDF with the conventional defaults (alpha=0.15,
// beta=4) when alpha or beta is zero.
func NewBPR(alpha, beta float64) *BPR {
	if alpha == 0 {
		alpha = 0.15
	}
	if beta == 0 {
		beta = 4
	}
	return &BPR{Alpha: alpha, Beta: beta}
}

// Apply computes congested time elementwise: outTime[i] =
// freeFlow[i] * (1 + alpha*(flow[i]/capacity[i])^beta). A zero or
// infinite capacity (no congestion possible) yields outTime[i] =
// freeFlow[i].
func (b *BPR) Apply(outTime, flow, capacity, freeFlow []float64) {
	for i := range outTime {
		if capacity[i] <= 0 || math.IsInf(capacity[i], 1) {
			outTime[i] = freeFlow[i]
			continue
		}
		ratio := flow[i] / capacity[i]
		outTime[i] = freeFlow[i] * (1 + b.Alpha*math.Pow(ratio, b.Beta))
	}
}

// ApplyDerivative computes ∂t/∂v elementwise:
//
//	t'(v) = t0 * alpha * beta * v^(beta-1) / c^beta
func (b *BPR) ApplyDerivative(outTPrime, flow, capacity, freeFlow []float64) {
	for i := range outTPrime {
		if capacity[i] <= 0 || math.IsInf(capacity[i], 1) {
			outTPrime[i] = 0
			continue
		}
		outTPrime[i] = freeFlow[i] * b.Alpha * b.Beta *
			math.Pow(flow[i], b.Beta-1) / math.Pow(capacity[i], b.Beta)
	}
}
