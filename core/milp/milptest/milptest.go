// Package milptest provides an in-memory milp engine that records models
// instead of solving them. Tests use it to inspect built formulations and to
// script solver outcomes.
package milptest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/kilianp07/vrptw/core/milp"
)

// VarInfo describes a recorded variable.
type VarInfo struct {
	Name   string
	LB, UB float64
	Kind   milp.VarKind
}

// Constraint is a recorded row.
type Constraint struct {
	Name string
	Expr milp.LinExpr
	Rel  milp.Relation
	RHS  float64
}

// Outcome scripts the result of Model.Solve.
type Outcome struct {
	Status    milp.Status
	Err       error
	Values    map[string]float64
	Objective *float64
	Runtime   time.Duration
}

// Engine hands out recording sessions and tracks their lifecycle.
type Engine struct {
	Outcome Outcome

	mu       sync.Mutex
	Opened   int
	Closed   int
	Options  []milp.SessionOptions
	Models   []*Model
	FailOpen error
}

// NewSession implements milp.Engine.
func (e *Engine) NewSession(opts milp.SessionOptions) (milp.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailOpen != nil {
		return nil, e.FailOpen
	}
	e.Opened++
	e.Options = append(e.Options, opts)
	return &Session{engine: e}, nil
}

// Session records models.
type Session struct {
	engine *Engine
	closed bool
	models []*Model
}

// NewModel implements milp.Session.
func (s *Session) NewModel(name string) (milp.Model, error) {
	if s.closed {
		return nil, milp.ErrDisposed
	}
	m := NewModel(name)
	m.session = s
	if s.engine != nil {
		m.outcome = s.engine.Outcome
		s.engine.mu.Lock()
		s.engine.Models = append(s.engine.Models, m)
		s.engine.mu.Unlock()
	}
	s.models = append(s.models, m)
	return m, nil
}

// Close implements milp.Session.
func (s *Session) Close() error {
	if s.closed {
		return milp.ErrDisposed
	}
	s.closed = true
	for _, m := range s.models {
		m.closed = true
	}
	if s.engine != nil {
		s.engine.mu.Lock()
		s.engine.Closed++
		s.engine.mu.Unlock()
	}
	return nil
}

// Model records everything added to it.
type Model struct {
	Name        string
	Vars        []VarInfo
	Constraints []Constraint
	Objective   milp.LinExpr
	Sense       milp.Sense
	TimeLimit   time.Duration

	session *Session
	outcome Outcome
	solved  bool
	closed  bool
	names   map[string]int
	cnames  map[string]struct{}
}

// NewModel returns a standalone recording model.
func NewModel(name string) *Model {
	return &Model{Name: name, names: map[string]int{}, cnames: map[string]struct{}{}}
}

func (m *Model) disposed() bool {
	return m.closed || (m.session != nil && m.session.closed)
}

// AddVar implements milp.Model.
func (m *Model) AddVar(lb, ub float64, kind milp.VarKind, name string) (milp.Var, error) {
	if m.disposed() {
		return milp.Var{}, milp.ErrDisposed
	}
	if _, dup := m.names[name]; dup && name != "" {
		return milp.Var{}, fmt.Errorf("%w: %s", milp.ErrDuplicateName, name)
	}
	id := len(m.Vars)
	m.Vars = append(m.Vars, VarInfo{Name: name, LB: lb, UB: ub, Kind: kind})
	m.names[name] = id
	return milp.Var{ID: id}, nil
}

// AddConstraint implements milp.Model.
func (m *Model) AddConstraint(expr milp.LinExpr, rel milp.Relation, rhs float64, name string) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	if _, dup := m.cnames[name]; dup && name != "" {
		return fmt.Errorf("%w: %s", milp.ErrDuplicateName, name)
	}
	for _, t := range expr.Terms {
		if t.Var.ID < 0 || t.Var.ID >= len(m.Vars) {
			return fmt.Errorf("%w: %d", milp.ErrUnknownVar, t.Var.ID)
		}
	}
	m.cnames[name] = struct{}{}
	m.Constraints = append(m.Constraints, Constraint{Name: name, Expr: expr, Rel: rel, RHS: rhs})
	return nil
}

// SetObjective implements milp.Model.
func (m *Model) SetObjective(expr milp.LinExpr, sense milp.Sense) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	m.Objective = expr
	m.Sense = sense
	return nil
}

// SetTimeLimit implements milp.Model.
func (m *Model) SetTimeLimit(d time.Duration) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	m.TimeLimit = d
	return nil
}

// Solve returns the scripted outcome.
func (m *Model) Solve(context.Context) (milp.Status, error) {
	if m.disposed() {
		return milp.StatusUnknown, milp.ErrDisposed
	}
	m.solved = true
	return m.outcome.Status, m.outcome.Err
}

// ObjectiveValue returns the scripted objective, or evaluates the objective
// on the scripted values.
func (m *Model) ObjectiveValue() (float64, error) {
	if m.disposed() {
		return 0, milp.ErrDisposed
	}
	if !m.solved || m.outcome.Values == nil {
		return 0, milp.ErrNoSolution
	}
	if m.outcome.Objective != nil {
		return *m.outcome.Objective, nil
	}
	return m.Objective.Eval(m.value), nil
}

// Runtime implements milp.Model.
func (m *Model) Runtime() time.Duration { return m.outcome.Runtime }

// Value returns the scripted value of v, zero when unscripted.
func (m *Model) Value(v milp.Var) (float64, error) {
	if m.disposed() {
		return 0, milp.ErrDisposed
	}
	if v.ID < 0 || v.ID >= len(m.Vars) {
		return 0, milp.ErrUnknownVar
	}
	if !m.solved || m.outcome.Values == nil {
		return 0, milp.ErrNoSolution
	}
	return m.value(v), nil
}

func (m *Model) value(v milp.Var) float64 {
	return m.outcome.Values[m.Vars[v.ID].Name]
}

// NumVars implements milp.Model.
func (m *Model) NumVars() int { return len(m.Vars) }

// NumConstraints implements milp.Model.
func (m *Model) NumConstraints() int { return len(m.Constraints) }

// Close implements milp.Model.
func (m *Model) Close() error {
	if m.closed {
		return milp.ErrDisposed
	}
	m.closed = true
	return nil
}

// Closed reports whether the model was disposed.
func (m *Model) Closed() bool { return m.disposed() }

// Lookup returns the variable with the given name.
func (m *Model) Lookup(name string) (milp.Var, bool) {
	id, ok := m.names[name]
	return milp.Var{ID: id}, ok
}

// Violations returns the names of the rows and variable bounds that values
// violate. Unlisted variables are zero.
func (m *Model) Violations(values map[string]float64) []string {
	const tol = 1e-6
	val := func(v milp.Var) float64 { return values[m.Vars[v.ID].Name] }
	var out []string
	for _, c := range m.Constraints {
		lhs := c.Expr.Eval(val)
		ok := true
		switch c.Rel {
		case milp.LessEqual:
			ok = lhs <= c.RHS+tol
		case milp.GreaterEqual:
			ok = lhs >= c.RHS-tol
		case milp.Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		}
		if !ok {
			out = append(out, c.Name)
		}
	}
	for _, v := range m.Vars {
		x := values[v.Name]
		if x < v.LB-tol || x > v.UB+tol {
			out = append(out, "bound:"+v.Name)
		}
	}
	return out
}
