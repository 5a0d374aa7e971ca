package equilibrium

import "math"

// relativeGap computes ρ_k = |Σ_links t·x − Σ_links t·y| / Σ_links t·x,
// where t is the congested time vector published by the previous
// iteration's VDF update, x is this iteration's committed total flow, and
// y is this iteration's AoN total flow loaded under t. When Σ t·x is zero
// (e.g. zero demand) it reports ρ=0 rather than dividing by zero.
func (s *Solver) relativeGap() float64 {
	var tx, ty float64
	for i := range s.t {
		tx += s.t[i] * s.x[i]
		ty += s.t[i] * s.y[i]
	}
	if tx == 0 {
		return 0
	}
	return math.Abs(tx-ty) / tx
}

// checkConvergence applies the "N consecutive below target" termination
// rule, returning true once the counter reaches
// Config.StepsBelowNeededToTerminate.
//
// The counter resets to zero whenever ρ_k rises back above target. The
// spec leaves this as an open question and recommends the reset for
// robustness over accumulating cumulative credit from non-consecutive
// iterations; this implementation follows that recommendation.
func (s *Solver) checkConvergence(rho float64) bool {
	if rho <= s.cfg.RelativeGapTarget {
		s.belowCount++
	} else {
		s.belowCount = 0
	}
	return s.belowCount >= s.cfg.StepsBelowNeededToTerminate
}
