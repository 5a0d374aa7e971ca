package equilibrium

import "math"

// betaSentinel marks an invalid BFW step (the direction engine was forced
// back to FW mid-iteration after a line-search failure) in the reported
// beta weights, per the §4.3 failure policy.
const betaSentinel = -1

// IterationRecord is one row of the convergence report: the relative gap,
// step size and warnings recorded for a single iteration, plus the
// bi-conjugate weights when the algorithm is BFW.
type IterationRecord struct {
	Iteration int
	RelGap    float64
	Alpha     float64
	Warnings  []string

	// Beta0, Beta1, Beta2 are populated only for BFW iterations. They hold
	// betaSentinel when the iteration's BFW step was invalidated by a
	// line-search failure (see linesearch.go).
	Beta0, Beta1, Beta2 float64
}

// ConvergenceReport accumulates one IterationRecord per iteration and
// records whether the target relative gap was reached within the
// iteration cap.
type ConvergenceReport struct {
	Algorithm string
	Records   []IterationRecord
	Converged bool

	// TerminatedAt is the 1-based iteration the solver stopped on, whether
	// by convergence or by exhausting MaxIterations.
	TerminatedAt int
}

// FinalRelGap returns the relative gap of the last recorded iteration, or
// +Inf if no iteration ran.
func (r *ConvergenceReport) FinalRelGap() float64 {
	if len(r.Records) == 0 {
		return math.Inf(1)
	}
	return r.Records[len(r.Records)-1].RelGap
}
