package equilibrium

import "math"

// brentTolerance and brentMaxIter bound the root finder used to locate the
// Beckmann-objective-minimising step size.
const (
	brentTolerance = 1e-10
	brentMaxIter   = 100
)

// maxDirectionRetries bounds the "recompute direction and re-run line
// search" fallback in §4.3. The spec describes it as a recursive call;
// per the design note in §9 it is rewritten here as a bounded outer loop
// with a retry flag instead of unbounded recursion, since a forced FW
// step can itself fail to bracket a root only in pathological
// (near-degenerate) objectives and should not retry forever.
const maxDirectionRetries = 4

// phi evaluates the derivative of the Beckmann objective along the current
// direction: Σ_links VDF(x + α(s−x)) · (s−x).
func (s *Solver) phi(alpha float64) float64 {
	flow := s.scratchFlow
	for i := range flow {
		flow[i] = s.x[i] + alpha*(s.sTotal[i]-s.x[i])
	}
	s.vdf.Apply(s.scratchTime, flow, s.cfg.Capacity, s.cfg.FreeFlow)

	total := 0.0
	for i := range flow {
		total += s.scratchTime[i] * (s.sTotal[i] - s.x[i])
	}
	return total
}

// lineSearch finds α_k ∈ [0,1] per §4.3, returning the step size, any
// warnings to attach to the iteration record, and whether the direction
// must be recomputed and the search retried (the forced-FW fallback).
func (s *Solver) lineSearch(k int) (alpha float64, warnings []string, retryDirection bool) {
	if s.cfg.Algorithm == AlgorithmMSA {
		return 1 / float64(k), nil, false
	}

	phi0 := s.phi(0)
	phi1 := s.phi(1)

	if root, ok := s.brentRoot(phi0, phi1); ok && root > 0 && root < 1 {
		s.state.conjugateFailed = false
		return root, nil, false
	}

	// Root finder failed: bracket violation or non-strict-convexity.
	if phi0 < phi1 {
		if s.cfg.Algorithm == AlgorithmFW || s.state.conjugateFailed {
			return 1 / float64(k), []string{"line search failed to bracket a root; applied MSA-style step"}, false
		}

		s.state.doFWStep = true
		s.state.conjugateFailed = true
		if s.cfg.Algorithm == AlgorithmBFW {
			s.state.beta0, s.state.beta1, s.state.beta2 = betaSentinel, betaSentinel, betaSentinel
		}
		return 0, []string{"Found bad conjugate direction step"}, true
	}

	return 1, nil, false
}

// brentRoot finds a root of s.phi on [0,1] using Brent's method, given the
// already-evaluated endpoint values phi0, phi1. It reports ok=false when
// the endpoints do not bracket a root or the method fails to converge
// within brentMaxIter.
func (s *Solver) brentRoot(phi0, phi1 float64) (root float64, ok bool) {
	if phi0 == 0 {
		return 0, true
	}
	if phi1 == 0 {
		return 1, true
	}
	if sameSign(phi0, phi1) {
		return 0, false
	}

	a, b := 0.0, 1.0
	fa, fb := phi0, phi1
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	mflag := true
	var d float64

	for i := 0; i < brentMaxIter; i++ {
		if fb == 0 || math.Abs(b-a) < brentTolerance {
			return b, true
		}

		var candidate float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			candidate = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant method.
			candidate = b - fb*(b-a)/(fb-fa)
		}

		lowBound := (3*a + b) / 4
		needBisect := (candidate < math.Min(lowBound, b) || candidate > math.Max(lowBound, b)) ||
			(mflag && math.Abs(candidate-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(candidate-b) >= math.Abs(c-d)/2)

		if needBisect {
			candidate = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fcand := s.phi(candidate)
		d, c, fc = c, b, fb

		if sameSign(fa, fcand) {
			a, fa = candidate, fcand
		} else {
			b, fb = candidate, fcand
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return b, math.Abs(fb) < 1e-6
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
