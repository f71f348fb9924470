package gonumlp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/vrptw/core/logger"
	"github.com/kilianp07/vrptw/core/milp"
)

// progressEvery spaces the progress lines of a verbose search.
const progressEvery = time.Second

// node is a subproblem of the search tree, described by tightened bounds.
type node struct {
	lo, hi []float64
	depth  int
}

// search runs a depth first branch-and-bound. The relaxation is always a
// minimization; maximization objectives are negated.
type search struct {
	m        *Model
	params   Params
	verbose  bool
	log      logger.Logger
	progress *rate.Limiter

	c        []float64
	integral bool

	nodes     int
	incumbent []float64
	incObj    float64
}

func newSearch(m *Model, p Params, verbose bool, log logger.Logger) *search {
	s := &search{m: m, params: p, verbose: verbose, log: log}
	if verbose {
		s.progress = rate.NewLimiter(rate.Every(progressEvery), 1)
	}
	s.c = make([]float64, len(m.vars))
	for _, e := range m.obj {
		s.c[e.col] = e.coef
	}
	if m.sense == milp.Maximize {
		floats.Scale(-1, s.c)
	}
	s.integral = true
	for j, c := range s.c {
		if c == 0 {
			continue
		}
		if m.vars[j].kind == milp.Continuous || c != math.Trunc(c) {
			s.integral = false
			break
		}
	}
	return s
}

// run explores the tree until it is exhausted or a limit is reached.
func (s *search) run(ctx context.Context, start time.Time) (milp.Status, error) {
	if len(s.m.vars) == 0 {
		return s.solveEmpty(), nil
	}
	var deadline time.Time
	if s.m.limit > 0 {
		deadline = start.Add(s.m.limit)
	}

	root := node{lo: make([]float64, len(s.m.vars)), hi: make([]float64, len(s.m.vars))}
	for j, v := range s.m.vars {
		root.lo[j], root.hi[j] = v.lb, v.ub
		if v.lb > v.ub {
			return milp.StatusInfeasible, nil
		}
	}

	stack := []node{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			s.logf("search interrupted after %d nodes", s.nodes)
			return milp.StatusInterrupted, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			s.logf("time limit reached after %d nodes", s.nodes)
			return milp.StatusTimeLimit, nil
		}
		if s.params.NodeLimit > 0 && s.nodes >= s.params.NodeLimit {
			s.logf("node limit reached after %d nodes", s.nodes)
			return milp.StatusTimeLimit, nil
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.nodes++
		if s.progress != nil && s.progress.Allow() {
			s.log.Debugw("branch-and-bound progress", map[string]any{
				"nodes":         s.nodes,
				"open":          len(stack),
				"depth":         nd.depth,
				"incumbent":     s.incObj,
				"has_incumbent": s.incumbent != nil,
			})
		}

		obj, x, err := s.relax(ctx, deadline, nd)
		switch {
		case errors.Is(err, errInterrupted):
			s.logf("search interrupted after %d nodes", s.nodes)
			return milp.StatusInterrupted, nil
		case errors.Is(err, errTimeLimit):
			s.logf("time limit reached after %d nodes", s.nodes)
			return milp.StatusTimeLimit, nil
		case errors.Is(err, errInfeasible):
			continue
		case errors.Is(err, errUnbounded):
			if s.nodes == 1 {
				return milp.StatusUnbounded, nil
			}
			continue
		case err != nil:
			if s.nodes == 1 {
				return milp.StatusUnknown, fmt.Errorf("gonumlp: root relaxation: %w", err)
			}
			s.log.Warnf("pruning node at depth %d: %v", nd.depth, err)
			continue
		}
		if s.incumbent != nil && !s.improves(obj) {
			continue
		}

		j := s.branchVar(x)
		if j < 0 {
			s.accept(x, nd.depth)
			continue
		}
		stack = append(stack, s.children(nd, j, x[j])...)
	}
	if s.verbose {
		s.log.Infof("search finished: %d nodes, incumbent=%t", s.nodes, s.incumbent != nil)
	}
	if s.incumbent == nil {
		return milp.StatusInfeasible, nil
	}
	return milp.StatusOptimal, nil
}

// improves reports whether a relaxation bound can still beat the incumbent.
// With an integral objective any better solution is at least one unit lower.
func (s *search) improves(bound float64) bool {
	if s.integral {
		return bound < s.incObj-1+1e-6
	}
	return bound < s.incObj-1e-9*math.Max(1, math.Abs(s.incObj))
}

// branchVar returns the most fractional integer variable, or -1.
func (s *search) branchVar(x []float64) int {
	best, bestFrac := -1, s.params.IntegralityTol
	for j, v := range s.m.vars {
		if v.kind == milp.Continuous {
			continue
		}
		f := math.Abs(x[j] - math.Round(x[j]))
		if f > bestFrac {
			best, bestFrac = j, f
		}
	}
	return best
}

// children splits nd on x_j. The side nearest to the relaxed value is pushed
// last so that it is explored first.
func (s *search) children(nd node, j int, v float64) []node {
	down := node{lo: clone(nd.lo), hi: clone(nd.hi), depth: nd.depth + 1}
	down.hi[j] = math.Floor(v)
	up := node{lo: clone(nd.lo), hi: clone(nd.hi), depth: nd.depth + 1}
	up.lo[j] = math.Ceil(v)
	if v-math.Floor(v) >= 0.5 {
		return []node{down, up}
	}
	return []node{up, down}
}

func (s *search) accept(x []float64, depth int) {
	for j, v := range s.m.vars {
		if v.kind != milp.Continuous {
			x[j] = math.Round(x[j])
		}
	}
	s.incumbent = x
	s.incObj = floats.Dot(s.c, x)
	if s.verbose {
		s.log.Debugw("new incumbent", map[string]any{
			"model":     s.m.name,
			"objective": s.m.evalObjective(x),
			"node":      s.nodes,
			"depth":     depth,
		})
	}
}

// relax solves the LP relaxation of nd. The deadline and ctx are checked on
// every simplex iteration so a single large relaxation cannot overrun them.
func (s *search) relax(ctx context.Context, deadline time.Time, nd node) (float64, []float64, error) {
	tb := newTableau(s.m.rows, nd.lo, nd.hi, s.params.Tolerance)
	x, err := tb.solve(ctx, deadline, s.c)
	if err != nil {
		return 0, nil, err
	}
	return floats.Dot(s.c, x), x, nil
}

// solveEmpty checks the rows of a model without variables.
func (s *search) solveEmpty() milp.Status {
	tol := s.params.IntegralityTol
	for _, r := range s.m.rows {
		lo, hi := slackBounds(r.rel)
		if r.rhs < lo-tol || r.rhs > hi+tol {
			return milp.StatusInfeasible
		}
	}
	s.incumbent = []float64{}
	return milp.StatusOptimal
}

func (s *search) logf(format string, args ...any) {
	if s.verbose {
		s.log.Infof(format, args...)
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
