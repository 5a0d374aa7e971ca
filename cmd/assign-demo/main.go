// Command assign-demo is the one I/O entry point in this repository: it
// wires configuration, logging, metrics and tracing around the equilibrium
// solver and runs a small two-parallel-link BPR network (the network used
// throughout the spec's scenario 2) to completion, logging a one-line
// summary of the convergence report.
//
// Configuration is layered defaults -> config.yaml -> EQUILIBRIUM_* env
// vars; see pkg/config. Logging follows pkg/logger's lumberjack-backed
// slog setup. Prometheus instruments are registered into a private
// registry (never the default one) and exposed on :9090/metrics so an
// operator can scrape a single run. Tracing is OTLP/gRPC, off unless
// tracing.enabled is set.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equilibrium/equilibrium"
	"equilibrium/internal/aon"
	"equilibrium/internal/vdf"
	"equilibrium/pkg/apperror"
	"equilibrium/pkg/config"
	"equilibrium/pkg/logger"
	"equilibrium/pkg/metrics"
	"equilibrium/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	runID := uuid.NewString()
	log := logger.WithRequestID(runID)

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer tp.Shutdown(ctx)

	reg := prometheus.NewRegistry()
	var mx *metrics.Metrics
	if cfg.Metrics.Enabled {
		mx = metrics.New(reg, cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		go serveMetrics(reg, log)
	}

	if err := run(ctx, cfg, mx, log, runID); err != nil {
		if apperror.Is(err, apperror.CodeInvalidAlgorithm) {
			log.Error("run aborted: invalid configuration", "error", err)
		} else {
			log.Error("run failed", "error", err)
		}
		os.Exit(1)
	}
}

func serveMetrics(reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(":9090", mux); err != nil {
		log.Warn("metrics server stopped", "error", err)
	}
}

// run builds the spec's scenario 2 network (two parallel BPR links,
// demand=4000, capacities {2000, 2000}, free-flow {10, 10}) and assigns it
// to convergence using the algorithm named in configuration.
func run(ctx context.Context, cfg *config.Config, mx *metrics.Metrics, log *slog.Logger, runID string) error {
	g := aon.NewGraph()
	g.AddLink(1, 2, 10)
	g.AddLink(1, 2, 10)

	demand := &aon.Demand{Pairs: []aon.ODPair{
		{Origin: 1, Dest: 2, Stratum: 0, Volume: 4000},
	}}

	solverCfg := equilibrium.Config{
		Algorithm:                   equilibrium.Algorithm(cfg.Solver.Algorithm),
		RelativeGapTarget:           cfg.Solver.RelativeGapTarget,
		MaxIterations:               cfg.Solver.MaxIterations,
		Cores:                       cfg.Solver.Cores,
		StepsBelowNeededToTerminate: cfg.Solver.StepsBelowNeededToTerminate,
		VDF:                         vdf.NewBPR(0.15, 4),
		AoN:                         aon.NewLoader(cfg.Solver.Cores),
		Capacity:                    []float64{2000, 2000},
		FreeFlow:                    []float64{10, 10},
		VDFParams:                   struct{ Alpha, Beta float64 }{0.15, 4},
		NetworkNodes:                2,
		Progress: func(ev equilibrium.ProgressEvent) {
			log.Info("iteration", "iteration", ev.Iteration, "rel_gap", ev.RelGap, "finished", ev.Finished)
		},
		Classes: []*equilibrium.Class{{
			Mode:       "car",
			PCE:        1.0,
			Demand:     demand,
			Graph:      g,
			Results:    equilibrium.NewLinkLoads(2, 1),
			AoNResults: equilibrium.NewLinkLoads(2, 1),
		}},
		Logger:  log,
		Metrics: mx,
	}

	solver, err := equilibrium.NewSolver(solverCfg)
	if err != nil {
		return fmt.Errorf("building solver: %w", err)
	}

	report, err := solver.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	flows := solverCfg.Classes[0].Results.TotalLinkLoads()
	log.Info("assignment complete",
		"run_id", runID,
		"algorithm", report.Algorithm,
		"converged", report.Converged,
		"terminated_at", report.TerminatedAt,
		"final_rel_gap", report.FinalRelGap(),
		"link_0_flow", flows[0],
		"link_1_flow", flows[1])

	return nil
}
