package equilibrium

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"equilibrium/pkg/apperror"
	"equilibrium/pkg/metrics"
	"equilibrium/pkg/telemetry"
)

// Algorithm selects which direction formula family the solver runs.
type Algorithm string

const (
	AlgorithmMSA Algorithm = "msa"
	AlgorithmFW  Algorithm = "fw"
	AlgorithmCFW Algorithm = "cfw"
	AlgorithmBFW Algorithm = "bfw"
)

func validAlgorithm(a Algorithm) bool {
	switch a {
	case AlgorithmMSA, AlgorithmFW, AlgorithmCFW, AlgorithmBFW:
		return true
	default:
		return false
	}
}

// ProgressEvent is delivered to Config.Progress at the end of every
// iteration, per the §9 design note recommending a progress-callback
// capability instead of a hardwired transport.
type ProgressEvent struct {
	Iteration int
	RelGap    float64
	Finished  bool
}

// Config bundles everything NewSolver needs to construct a solver: the
// algorithm tag, termination parameters, the traffic classes, and the VDF
// and AoN external collaborators plus the per-link vectors they operate
// on.
type Config struct {
	Algorithm                   Algorithm
	RelativeGapTarget           float64
	MaxIterations               int
	Cores                       int
	StepsBelowNeededToTerminate int

	Classes   []*Class
	VDF       VDF
	AoN       AoNLoader
	Capacity  []float64
	FreeFlow  []float64
	VDFParams any

	// NetworkNodes is informational only (the core never builds or walks
	// a graph); it is surfaced on the Run span and in log lines.
	NetworkNodes int

	Progress func(ProgressEvent)

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Solver is the core driver: it owns the direction buffers and aggregate
// vectors described by the data model and runs the iteration loop in
// §4.1. Construct one with NewSolver; Run is not safe to call
// concurrently on the same Solver, and the caller must not touch any
// Class's Results/AoNResults while Run is executing.
type Solver struct {
	cfg      Config
	classes  []*Class
	numLinks int

	d      []*LinkLoads
	dPrev  []*LinkLoads
	dPrev2 []*LinkLoads

	x, y, sTotal, t, tPrime  []float64
	scratchFlow, scratchTime []float64

	state      directionState
	belowCount int

	pool *workerPool
	log  *slog.Logger
	mx   *metrics.Metrics
	vdf  VDF
	aon  AoNLoader
}

// NewSolver validates cfg and allocates a Solver ready to Run. It fails
// with an error wrapping one *apperror.Error per failed check
// (CodeMissingClasses / CodeMissingVDF / ... / CodeInvalidAlgorithm) when
// any required construction input is absent, per the §4.1 ConfigError
// contract; apperror.Is and apperror.Code see the first failed check.
func NewSolver(cfg Config) (*Solver, error) {
	ve := apperror.NewValidationErrors()
	if len(cfg.Classes) == 0 {
		ve.Add(apperror.ErrMissingClasses)
	}
	if cfg.VDF == nil {
		ve.Add(apperror.ErrMissingVDF)
	}
	if cfg.AoN == nil {
		ve.AddError(apperror.CodeNilInput, "assignment spec must supply an AoN loader")
	}
	if cfg.Capacity == nil {
		ve.Add(apperror.ErrMissingCapacity)
	}
	if cfg.FreeFlow == nil {
		ve.Add(apperror.ErrMissingFreeFlow)
	}
	if len(cfg.Capacity) != len(cfg.FreeFlow) {
		ve.AddError(apperror.CodeInvalidArgument, "capacity and free-flow vectors must have the same length")
	}
	if cfg.VDFParams == nil {
		ve.Add(apperror.ErrMissingVDFParams)
	}
	if !validAlgorithm(cfg.Algorithm) {
		ve.AddError(apperror.CodeInvalidAlgorithm, fmt.Sprintf("unknown algorithm %q", cfg.Algorithm))
	}
	if cfg.MaxIterations < 1 {
		ve.AddError(apperror.CodeInvalidArgument, "max_iter must be >= 1")
	}
	if err := ve.AsError(); err != nil {
		return nil, err
	}

	if cfg.StepsBelowNeededToTerminate <= 0 {
		cfg.StepsBelowNeededToTerminate = 1
	}
	if cfg.RelativeGapTarget <= 0 {
		cfg.RelativeGapTarget = 1e-4
	}

	numLinks := len(cfg.Capacity)
	s := &Solver{
		cfg:         cfg,
		classes:     cfg.Classes,
		numLinks:    numLinks,
		x:           make([]float64, numLinks),
		y:           make([]float64, numLinks),
		sTotal:      make([]float64, numLinks),
		t:           make([]float64, numLinks),
		tPrime:      make([]float64, numLinks),
		scratchFlow: make([]float64, numLinks),
		scratchTime: make([]float64, numLinks),
		pool:        newWorkerPool(cfg.Cores),
		log:         cfg.Logger,
		mx:          cfg.Metrics,
		vdf:         cfg.VDF,
		aon:         cfg.AoN,
	}

	needHistory := cfg.Algorithm == AlgorithmCFW || cfg.Algorithm == AlgorithmBFW
	s.d = make([]*LinkLoads, len(cfg.Classes))
	if needHistory {
		s.dPrev = make([]*LinkLoads, len(cfg.Classes))
		s.dPrev2 = make([]*LinkLoads, len(cfg.Classes))
	}
	for i, c := range cfg.Classes {
		strata := 1
		if len(c.Results.Values) > 0 {
			strata = len(c.Results.Values[0])
		}
		names := skimNames(c.Results)
		s.d[i] = NewLinkLoads(numLinks, strata, names...)
		if needHistory {
			s.dPrev[i] = NewLinkLoads(numLinks, strata, names...)
			s.dPrev2[i] = NewLinkLoads(numLinks, strata, names...)
		}
	}

	return s, nil
}

func skimNames(l *LinkLoads) []string {
	names := make([]string, len(l.Skims))
	for i, sk := range l.Skims {
		names[i] = sk.Name
	}
	return names
}

// Run executes the iteration loop described in §4.1 until the relative
// gap target is reached on StepsBelowNeededToTerminate consecutive
// iterations or MaxIterations is exhausted, whichever comes first. It
// returns the convergence report; the final committed Results live on
// each Class passed in Config.
//
// Run exposes no suspension points beyond ctx cancellation, which is
// checked once per iteration boundary; a canceled context returns
// immediately with the partial report and ctx.Err().
func (s *Solver) Run(ctx context.Context) (*ConvergenceReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "equilibrium.Run",
		telemetry.WithAttributes(telemetry.RunAttributes(string(s.cfg.Algorithm), s.cfg.NetworkNodes, s.numLinks, len(s.classes))...))
	defer span.End()

	copy(s.t, s.cfg.FreeFlow)
	s.publishCosts()

	report := &ConvergenceReport{Algorithm: string(s.cfg.Algorithm)}
	alpha := 0.0

	for k := 1; k <= s.cfg.MaxIterations; k++ {
		select {
		case <-ctx.Done():
			report.TerminatedAt = k - 1
			telemetry.SetError(ctx, ctx.Err())
			return report, ctx.Err()
		default:
		}

		iterStart := time.Now()
		iterCtx, iterSpan := telemetry.StartSpan(ctx, "equilibrium.Iteration")
		if err := s.loadAoN(iterCtx); err != nil {
			telemetry.SetError(iterCtx, err)
			iterSpan.End()
			telemetry.SetError(ctx, err)
			return report, err
		}
		aggregate(s.y, s.classes, func(c *Class) *LinkLoads { return c.AoNResults })

		record := IterationRecord{Iteration: k}

		if k == 1 {
			for _, c := range s.classes {
				c.Results.CopyFrom(c.AoNResults)
			}
			aggregate(s.x, s.classes, func(c *Class) *LinkLoads { return c.Results })
		} else {
			var warnings []string
			alpha, warnings = s.stepDirectionAndLineSearch(k, alpha)
			record.Alpha = alpha
			record.Warnings = warnings
			if s.cfg.Algorithm == AlgorithmBFW {
				record.Beta0, record.Beta1, record.Beta2 = s.state.beta0, s.state.beta1, s.state.beta2
			}
			s.applyFlowUpdate(alpha)
		}

		var rho float64
		var converged bool
		if k > 1 {
			rho = s.relativeGap()
			record.RelGap = rho
			converged = s.checkConvergence(rho)
		}
		report.Records = append(report.Records, record)

		if s.mx != nil {
			s.mx.ObserveIteration(string(s.cfg.Algorithm), rho, record.Alpha, time.Since(iterStart).Seconds())
			for range record.Warnings {
				s.mx.ObserveWarning(string(s.cfg.Algorithm), "line_search_fallback")
			}
		}
		if s.log != nil {
			s.log.Info("iteration", "algorithm", s.cfg.Algorithm, "iteration", k, "rgap", rho, "alpha", record.Alpha)
			for _, w := range record.Warnings {
				s.log.Warn("numeric warning", "iteration", k, "warning", w)
			}
		}
		telemetry.SetAttributes(iterCtx, telemetry.IterationAttributes(k, rho, record.Alpha)...)
		iterSpan.End()
		s.emitProgress(k, rho, converged)

		if converged {
			report.Converged = true
			report.TerminatedAt = k
			if s.mx != nil {
				s.mx.ObserveRun(string(s.cfg.Algorithm), "converged")
			}
			return report, nil
		}

		s.updateCosts()
		for _, c := range s.classes {
			c.AoNResults.Reset()
		}
	}

	report.TerminatedAt = s.cfg.MaxIterations
	if s.log != nil {
		s.log.Error("relative gap target not reached within iteration cap",
			"algorithm", s.cfg.Algorithm,
			"target", s.cfg.RelativeGapTarget,
			"final_rgap", report.FinalRelGap(),
			"max_iter", s.cfg.MaxIterations)
	}
	if s.mx != nil {
		s.mx.ObserveRun(string(s.cfg.Algorithm), "non_convergence")
	}
	s.emitProgress(s.cfg.MaxIterations, report.FinalRelGap(), true)
	return report, nil
}

// stepDirectionAndLineSearch runs computeDirection/lineSearch, retrying
// with a forced FW direction (per §4.3's failure policy) up to
// maxDirectionRetries times before accepting whatever step the last
// attempt produced.
func (s *Solver) stepDirectionAndLineSearch(k int, alphaPrev float64) (alpha float64, warnings []string) {
	for retries := 0; ; retries++ {
		s.computeDirection(k, alphaPrev)
		a, w, retry := s.lineSearch(k)
		warnings = append(warnings, w...)
		alpha = a
		if !retry {
			return alpha, warnings
		}
		if retries >= maxDirectionRetries {
			warnings = append(warnings, "direction retry budget exhausted; accepted forced step")
			return alpha, warnings
		}
	}
}

// applyFlowUpdate commits results ← (1−α)·results + α·d for every class,
// then refreshes the aggregate total flow x.
func (s *Solver) applyFlowUpdate(alpha float64) {
	for i, c := range s.classes {
		combine(c.Results.Values, s.d[i].Values, 1-alpha, alpha)
		for si := range c.Results.Skims {
			combine(c.Results.Skims[si].Values, s.d[i].Skims[si].Values, 1-alpha, alpha)
		}
	}
	aggregate(s.x, s.classes, func(c *Class) *LinkLoads { return c.Results })
}

// updateCosts applies the VDF to the current total flow, producing the
// congested time and derivative vectors, then publishes the new times
// onto every class's graph cost column.
func (s *Solver) updateCosts() {
	s.vdf.Apply(s.t, s.x, s.cfg.Capacity, s.cfg.FreeFlow)
	s.vdf.ApplyDerivative(s.tPrime, s.x, s.cfg.Capacity, s.cfg.FreeFlow)
	s.publishCosts()
}

func (s *Solver) publishCosts() {
	for _, c := range s.classes {
		for link := 0; link < s.numLinks; link++ {
			c.Graph.SetCost(link, s.t[link])
		}
	}
}

// loadAoN fans the AoN load out across classes using the configured
// worker-parallelism hint, per §5's "parallelism confined to the external
// AoN loader" scheduling model.
func (s *Solver) loadAoN(ctx context.Context) error {
	errs := make([]error, len(s.classes))
	s.pool.runEach(ctx, len(s.classes), func(i int) {
		c := s.classes[i]
		errs[i] = s.aon.Load(ctx, c.Demand, c.Graph, c.AoNResults)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) emitProgress(iteration int, rgap float64, finished bool) {
	if s.cfg.Progress == nil {
		return
	}
	s.cfg.Progress(ProgressEvent{Iteration: iteration, RelGap: rgap, Finished: finished})
}
