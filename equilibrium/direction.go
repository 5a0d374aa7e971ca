package equilibrium

// gammaMax bounds the conjugate scalar γ per the data-model invariant
// γ_k ∈ [0, γ_max].
const gammaMax = 0.99999

// directionState holds the flags and scalars the state machine in §4.2
// carries across iterations: which formula ran last, whether a conjugate
// step is pending, and whether a prior conjugate/bi-conjugate attempt was
// rejected by the line search.
type directionState struct {
	doFWStep        bool
	doConjugateStep bool
	conjugateFailed bool

	gamma               float64
	beta0, beta1, beta2 float64
}

// computeDirection runs the §4.2 state machine for iteration k, writing
// the new direction into s.d (and rotating s.dPrev/s.dPrev2 for CFW/BFW),
// then aggregates s.s = Σ_c PCE_c · Σ_strata d_c.
//
// alphaPrev is α_{k−1} (unused at k=2, since there is no prior step size).
func (s *Solver) computeDirection(k int, alphaPrev float64) {
	switch {
	case k == 2 || alphaPrev == 1 || s.state.doFWStep || s.cfg.Algorithm == AlgorithmFW || s.cfg.Algorithm == AlgorithmMSA:
		s.fwStep()
	case k == 3 || s.state.doConjugateStep || s.cfg.Algorithm == AlgorithmCFW:
		s.cfwStep()
	default:
		s.bfwStep(alphaPrev)
	}

	for i := range s.sTotal {
		s.sTotal[i] = 0
	}
	for i, c := range s.classes {
		for link, row := range s.d[i].Values {
			sum := 0.0
			for _, v := range row {
				sum += v
			}
			s.sTotal[link] += c.PCE * sum
		}
	}
}

// fwStep sets every class's direction to its AoN load outright.
func (s *Solver) fwStep() {
	for i, c := range s.classes {
		s.d[i].CopyFrom(c.AoNResults)
	}
	s.state.doConjugateStep = true
	s.state.doFWStep = false
	s.state.gamma = 0
}

// cfwStep computes the conjugate scalar γ and updates each class's
// direction to (1−γ)·d + γ·aon, preserving the pre-update d in d⁻² (the
// ring-buffer shift named in §4.2; d⁻¹ is left untouched since CFW never
// reads it — only BFW does).
func (s *Solver) cfwStep() {
	gamma := s.conjugateGamma()
	s.state.gamma = gamma
	s.state.doConjugateStep = false

	for i, c := range s.classes {
		s.dPrev2[i].CopyFrom(s.d[i]) // shift d -> d⁻²
		combine(s.d[i].Values, c.AoNResults.Values, 1-gamma, gamma)
		for si := range s.d[i].Skims {
			combine(s.d[i].Skims[si].Values, c.AoNResults.Skims[si].Values, 1-gamma, gamma)
		}
	}
}

// conjugateGamma implements the §4.2 conjugate-scalar formula:
//
//	u = (d − results)·𝟙, v = (aon − results)·𝟙, w = (aon − d)·𝟙
//	γ = (Σ_links t′·Σ_c u·v) / (Σ_links t′·Σ_c u·w), clamped to [0, γ_max].
func (s *Solver) conjugateGamma() float64 {
	results := make([]*LinkLoads, len(s.classes))
	aon := make([]*LinkLoads, len(s.classes))
	for i, c := range s.classes {
		results[i] = c.Results
		aon[i] = c.AoNResults
	}

	u := subtractRowSums(s.d, results)
	v := subtractRowSums(aon, results)
	w := subtractRowSums(aon, s.d)

	num := weightedDot(s.tPrime, u, v)
	den := weightedDot(s.tPrime, u, w)

	return clampGamma(num, den)
}

func clampGamma(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	gamma := num / den
	switch {
	case gamma < 0:
		return 0
	case gamma > gammaMax:
		return gammaMax
	default:
		return gamma
	}
}

// bfwStep computes the bi-conjugate weights (β₀,β₁,β₂) and updates each
// class's direction to β₀·aon + β₁·d + β₂·d⁻¹, rotating the three-deep
// history: the pre-update d moves to d⁻², and d⁻¹ takes on the value d⁻²
// held before this iteration's rotation (per §4.2's literal shift order).
func (s *Solver) bfwStep(alphaPrev float64) {
	beta0, beta1, beta2 := s.biconjugateWeights(alphaPrev)
	s.state.beta0, s.state.beta1, s.state.beta2 = beta0, beta1, beta2

	for i, c := range s.classes {
		oldD := cloneLinkLoads(s.d[i])
		oldDPrev := cloneLinkLoads(s.dPrev[i])
		oldDPrev2 := cloneLinkLoads(s.dPrev2[i])

		s.dPrev2[i].CopyFrom(oldD) // shift d -> d⁻²

		for link := range s.d[i].Values {
			for st := range s.d[i].Values[link] {
				s.d[i].Values[link][st] = beta0*c.AoNResults.Values[link][st] +
					beta1*oldD.Values[link][st] +
					beta2*oldDPrev.Values[link][st]
			}
		}
		for si := range s.d[i].Skims {
			dst := s.d[i].Skims[si].Values
			aonSkim := c.AoNResults.Skims[si].Values
			for link := range dst {
				for st := range dst[link] {
					dst[link][st] = beta0*aonSkim[link][st] +
						beta1*oldD.Skims[si].Values[link][st] +
						beta2*oldDPrev.Skims[si].Values[link][st]
				}
			}
		}
		s.dPrev[i].CopyFrom(oldDPrev2) // shift d⁻¹ <- previous d⁻²
	}
}

func cloneLinkLoads(l *LinkLoads) *LinkLoads {
	clone := &LinkLoads{Values: make([][]float64, len(l.Values))}
	for i, row := range l.Values {
		clone.Values[i] = append([]float64(nil), row...)
	}
	for _, skim := range l.Skims {
		vals := make([][]float64, len(skim.Values))
		for i, row := range skim.Values {
			vals[i] = append([]float64(nil), row...)
		}
		clone.Skims = append(clone.Skims, Skim{Name: skim.Name, Values: vals})
	}
	return clone
}

// biconjugateWeights implements the §4.2 bi-conjugate formula:
//
//	x̂ = α·d + (1−α)·d⁻¹ − results,  y = aon − results,  z = d − results
//	μ = max(0, −(Σt′·Σx̂y) / (Σt′·Σx̂·(d⁻¹−d)))
//	ν = max(0, −(Σt′·Σzy) / (Σt′·Σz²) + μ·α/(1−α))
//	β₀ = 1/(1+ν+μ), β₁ = ν·β₀, β₂ = μ·β₀
//
// alpha is α_{k−1}, the step size committed at the end of the previous
// iteration (direction is always computed before this iteration's own
// step size exists).
func (s *Solver) biconjugateWeights(alpha float64) (beta0, beta1, beta2 float64) {
	n := len(s.classes)
	xhat := make([][]float64, n)
	y := make([][]float64, n)
	z := make([][]float64, n)
	dMinusDPrev := make([][]float64, n)

	for i, c := range s.classes {
		d := rowSum(s.d[i])
		dPrev := rowSum(s.dPrev[i])
		results := rowSum(c.Results)
		aon := rowSum(c.AoNResults)

		xh := make([]float64, len(d))
		zv := make([]float64, len(d))
		diff := make([]float64, len(d))
		for link := range d {
			xh[link] = alpha*d[link] + (1-alpha)*dPrev[link] - results[link]
			zv[link] = d[link] - results[link]
			diff[link] = dPrev[link] - d[link]
		}
		xhat[i] = xh
		z[i] = zv
		dMinusDPrev[i] = diff

		yv := make([]float64, len(d))
		for link := range d {
			yv[link] = aon[link] - results[link]
		}
		y[i] = yv
	}

	muNum := -weightedDot(s.tPrime, xhat, y)
	muDen := weightedDot(s.tPrime, xhat, dMinusDPrev)
	mu := ratioOrZero(muNum, muDen)
	if mu < 0 {
		mu = 0
	}

	nuNum := -weightedDot(s.tPrime, z, y)
	nuDen := weightedDot(s.tPrime, z, z)
	nu := ratioOrZero(nuNum, nuDen)
	if alpha != 1 {
		nu += mu * alpha / (1 - alpha)
	}
	if nu < 0 {
		nu = 0
	}

	beta0 = 1 / (1 + nu + mu)
	beta1 = nu * beta0
	beta2 = mu * beta0
	return beta0, beta1, beta2
}

func ratioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
