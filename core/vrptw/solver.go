package vrptw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/vrptw/core/formulation"
	"github.com/kilianp07/vrptw/core/logger"
	"github.com/kilianp07/vrptw/core/metrics"
	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/core/model"
	"github.com/kilianp07/vrptw/core/subtour"
)

var (
	// ErrInfeasible is returned when the engine proves that no routing
	// satisfies the constraints.
	ErrInfeasible = errors.New("vrptw: problem is infeasible")
	// ErrNoIncumbent is returned when the engine stopped on a limit before
	// finding any feasible routing.
	ErrNoIncumbent = errors.New("vrptw: no feasible solution found before stopping")
	// ErrUnbounded is returned when the engine reports an unbounded objective.
	ErrUnbounded = errors.New("vrptw: objective is unbounded")
	// ErrUnexpectedStatus is returned for engine statuses with no solution
	// semantics.
	ErrUnexpectedStatus = errors.New("vrptw: unexpected engine status")
)

// Solver builds and solves VRPTW models on an engine.
type Solver struct {
	engine    milp.Engine
	gen       subtour.Generator
	opts      formulation.Options
	timeLimit time.Duration
	verbose   bool
	params    map[string]any
	log       logger.Logger
	rec       metrics.Recorder
	export    io.Writer
	modelName string
}

// New returns a Solver for the full formulation with exhaustive sub-tour
// elimination and a ten minute time limit.
func New(engine milp.Engine, opts ...Option) *Solver {
	s := &Solver{
		engine:    engine,
		gen:       subtour.Exhaustive{},
		opts:      formulation.DefaultOptions(),
		timeLimit: DefaultTimeLimit,
		log:       nopLogger{},
		rec:       metrics.NopRecorder{},
		modelName: "vrptw",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Solve validates p, builds the model, runs the engine and decodes the
// routes. The session and model opened for the call are released on every
// path.
func (s *Solver) Solve(ctx context.Context, p *model.Problem) (res *Result, err error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	variant := s.opts.Variant()
	ids := p.CustomerIDs()

	subsets, err := s.gen.Subsets(ids)
	if err != nil {
		return nil, fmt.Errorf("generate subsets: %w", err)
	}
	s.log.Infof("run %s: %d customers, %d vehicles, %d sub-tour subsets, %s formulation",
		runID, len(ids), p.VehicleCount, len(subsets), variant)

	sess, err := s.engine.NewSession(milp.SessionOptions{Verbose: s.verbose, Params: s.params})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("release session: %w", cerr)
		}
	}()

	m, err := sess.NewModel(s.modelName)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("release model: %w", cerr)
		}
	}()

	start := time.Now()
	f, err := formulation.Build(m, p, subsets, s.opts)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	stats := BuildStats{
		Subsets:     len(subsets),
		Variables:   f.NumVariables(),
		Constraints: f.NumConstraints(),
		Duration:    time.Since(start),
	}
	s.log.Debugw("model built", map[string]any{
		"run_id":      runID,
		"variables":   stats.Variables,
		"constraints": stats.Constraints,
		"duration_ms": stats.Duration.Milliseconds(),
	})
	s.record(s.rec.RecordBuild(metrics.BuildEvent{
		RunID: runID, Variant: variant, Customers: len(ids), Vehicles: p.VehicleCount,
		Subsets: stats.Subsets, Variables: stats.Variables, Constraints: stats.Constraints,
		Duration: stats.Duration, Time: time.Now(),
	}))

	if s.export != nil {
		if err := s.exportModel(m); err != nil {
			return nil, err
		}
	}
	if err := m.SetTimeLimit(s.timeLimit); err != nil {
		return nil, fmt.Errorf("set time limit: %w", err)
	}

	status, err := m.Solve(ctx)
	defer func() {
		ev := metrics.SolveEvent{
			RunID: runID, Variant: variant, Status: status.String(),
			Runtime: m.Runtime(), Time: time.Now(),
		}
		if res != nil {
			ev.HasSolution, ev.Objective, ev.Routes = true, res.Objective, len(res.Routes)
		}
		if err != nil {
			ev.Err = err.Error()
		}
		s.record(s.rec.RecordSolve(ev))
	}()
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if err := checkStatus(ctx, status, m); err != nil {
		s.log.Warnf("run %s: %v", runID, err)
		return nil, err
	}

	obj, err := m.ObjectiveValue()
	if err != nil {
		return nil, fmt.Errorf("read objective: %w", err)
	}
	routes, err := decodeRoutes(f, m.Value)
	if err != nil {
		return nil, err
	}
	res = &Result{
		RunID:     runID,
		Variant:   variant,
		Objective: obj,
		Runtime:   m.Runtime(),
		Optimal:   status == milp.StatusOptimal,
		Status:    status,
		Routes:    routes,
		Build:     stats,
	}
	s.log.Infof("run %s: %s, objective %.3f in %s, %d routes", runID, status, obj, res.Runtime, len(routes))
	return res, nil
}

// checkStatus maps engine statuses without a usable solution to errors.
func checkStatus(ctx context.Context, status milp.Status, m milp.Model) error {
	switch status {
	case milp.StatusOptimal:
		return nil
	case milp.StatusInfeasible:
		return ErrInfeasible
	case milp.StatusUnbounded:
		return ErrUnbounded
	case milp.StatusTimeLimit, milp.StatusInterrupted:
		_, err := m.ObjectiveValue()
		if err == nil {
			return nil
		}
		if !errors.Is(err, milp.ErrNoSolution) {
			return fmt.Errorf("read objective: %w", err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("%w (%s): %w", ErrNoIncumbent, status, cerr)
		}
		return fmt.Errorf("%w (%s)", ErrNoIncumbent, status)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, status)
	}
}

func (s *Solver) exportModel(m milp.Model) error {
	ex, ok := m.(milp.Exporter)
	if !ok {
		s.log.Warnf("engine model %T cannot be exported", m)
		return nil
	}
	if err := ex.WriteLP(s.export); err != nil {
		return fmt.Errorf("export model: %w", err)
	}
	return nil
}

func (s *Solver) record(err error) {
	if err != nil {
		s.log.Warnf("record metrics: %v", err)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
