package scenarios

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/vrptw/core/vrptw"
	"github.com/kilianp07/vrptw/infra/gonumlp"
	"github.com/kilianp07/vrptw/infra/logger"
	"github.com/kilianp07/vrptw/infra/metrics"
)

// RunScenario solves sc on the gonum engine and checks the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorderWithRegistry(metrics.PromConfig{}, reg)
	if err != nil {
		t.Fatalf("prom recorder: %v", err)
	}
	opts, err := sc.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	solver := vrptw.New(
		gonumlp.New(gonumlp.WithLogger(logger.NopLogger{})),
		vrptw.WithFormulation(opts),
		vrptw.WithTimeLimit(time.Minute),
		vrptw.WithRecorder(rec),
		vrptw.WithLogger(logger.NopLogger{}),
	)
	res, err := solver.Solve(context.Background(), sc.Problem())

	if n, gerr := testutil.GatherAndCount(reg, "vrptw_solves_total"); gerr != nil || n != 1 {
		t.Errorf("vrptw_solves_total series = %d (%v), want 1", n, gerr)
	}

	if sc.Expected.Status == "infeasible" {
		if !errors.Is(err, vrptw.ErrInfeasible) {
			t.Fatalf("expected infeasible, got %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if got := res.Status.String(); got != sc.Expected.Status {
		t.Errorf("status = %s, want %s", got, sc.Expected.Status)
	}
	if want := sc.Expected.Objective; want != nil && math.Abs(res.Objective-*want) > 1e-6 {
		t.Errorf("objective = %v, want %v", res.Objective, *want)
	}
	if sc.Expected.Routes > 0 && len(res.Routes) != sc.Expected.Routes {
		t.Errorf("routes = %d, want %d", len(res.Routes), sc.Expected.Routes)
	}
	penalty := 0.0
	for _, r := range res.Routes {
		penalty += r.Penalty
	}
	if math.Abs(penalty-sc.Expected.Penalty) > 1e-6 {
		t.Errorf("penalty = %v, want %v", penalty, sc.Expected.Penalty)
	}
}
