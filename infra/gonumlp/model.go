package gonumlp

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/kilianp07/vrptw/core/milp"
)

type variable struct {
	name   string
	lb, ub float64
	kind   milp.VarKind
}

type entry struct {
	col  int
	coef float64
}

type row struct {
	name    string
	entries []entry
	rel     milp.Relation
	rhs     float64
}

// Model implements milp.Model and milp.Exporter. It is not safe for
// concurrent use.
type Model struct {
	name    string
	session *Session
	closed  atomic.Bool

	vars     []variable
	rows     []row
	varNames map[string]struct{}
	rowNames map[string]struct{}
	obj      []entry
	objConst float64
	sense    milp.Sense
	limit    time.Duration

	status   milp.Status
	solution []float64
	objValue float64
	runtime  time.Duration
}

func newModel(name string, s *Session) *Model {
	return &Model{
		name:     name,
		session:  s,
		varNames: make(map[string]struct{}),
		rowNames: make(map[string]struct{}),
	}
}

func (m *Model) release() {
	m.closed.Store(true)
	m.solution = nil
}

func (m *Model) disposed() bool {
	return m.closed.Load() || (m.session != nil && m.session.isClosed())
}

// AddVar implements milp.Model. Lower bounds must be finite; upper bounds may
// be +Inf. Integer bounds are rounded inwards.
func (m *Model) AddVar(lb, ub float64, kind milp.VarKind, name string) (milp.Var, error) {
	if m.disposed() {
		return milp.Var{}, milp.ErrDisposed
	}
	if math.IsNaN(lb) || math.IsNaN(ub) || math.IsInf(lb, 0) || math.IsInf(ub, -1) || lb > ub {
		return milp.Var{}, fmt.Errorf("%w: %s [%v, %v]", milp.ErrInvalidBounds, name, lb, ub)
	}
	if name == "" {
		name = fmt.Sprintf("_x%d", len(m.vars))
	}
	if _, dup := m.varNames[name]; dup {
		return milp.Var{}, fmt.Errorf("%w: variable %s", milp.ErrDuplicateName, name)
	}
	switch kind {
	case milp.Binary:
		lb, ub = math.Max(lb, 0), math.Min(ub, 1)
		fallthrough
	case milp.Integer:
		lb = noNegZero(math.Ceil(lb - DefaultIntegralityTol))
		if !math.IsInf(ub, 1) {
			ub = noNegZero(math.Floor(ub + DefaultIntegralityTol))
		}
	}
	m.varNames[name] = struct{}{}
	m.vars = append(m.vars, variable{name: name, lb: lb, ub: ub, kind: kind})
	m.invalidate()
	return milp.Var{ID: len(m.vars) - 1}, nil
}

// noNegZero maps -0, which Ceil returns for bounds in (-1, 0], to 0.
func noNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// AddConstraint implements milp.Model. The expression constant is moved to
// the right hand side.
func (m *Model) AddConstraint(expr milp.LinExpr, rel milp.Relation, rhs float64, name string) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	if name == "" {
		name = fmt.Sprintf("_c%d", len(m.rows))
	}
	if _, dup := m.rowNames[name]; dup {
		return fmt.Errorf("%w: constraint %s", milp.ErrDuplicateName, name)
	}
	entries, err := m.entries(expr)
	if err != nil {
		return err
	}
	m.rowNames[name] = struct{}{}
	m.rows = append(m.rows, row{name: name, entries: entries, rel: rel, rhs: rhs - expr.Constant})
	m.invalidate()
	return nil
}

// SetObjective implements milp.Model.
func (m *Model) SetObjective(expr milp.LinExpr, sense milp.Sense) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	entries, err := m.entries(expr)
	if err != nil {
		return err
	}
	m.obj, m.objConst, m.sense = entries, expr.Constant, sense
	m.invalidate()
	return nil
}

// SetTimeLimit implements milp.Model. A non-positive duration removes the
// limit.
func (m *Model) SetTimeLimit(d time.Duration) error {
	if m.disposed() {
		return milp.ErrDisposed
	}
	m.limit = d
	return nil
}

// Solve implements milp.Model.
func (m *Model) Solve(ctx context.Context) (milp.Status, error) {
	if m.disposed() {
		return milp.StatusUnknown, milp.ErrDisposed
	}
	start := time.Now()
	s := newSearch(m, m.session.params, m.session.verbose, m.session.log)
	status, err := s.run(ctx, start)
	m.runtime = time.Since(start)
	m.status = status
	m.solution = s.incumbent
	if s.incumbent != nil {
		m.objValue = m.evalObjective(s.incumbent)
	}
	return status, err
}

// ObjectiveValue implements milp.Model.
func (m *Model) ObjectiveValue() (float64, error) {
	if m.disposed() {
		return 0, milp.ErrDisposed
	}
	if m.solution == nil {
		return 0, milp.ErrNoSolution
	}
	return m.objValue, nil
}

// Runtime returns the wall time of the last Solve.
func (m *Model) Runtime() time.Duration { return m.runtime }

// Value implements milp.Model.
func (m *Model) Value(v milp.Var) (float64, error) {
	if m.disposed() {
		return 0, milp.ErrDisposed
	}
	if v.ID < 0 || v.ID >= len(m.vars) {
		return 0, fmt.Errorf("%w: %d", milp.ErrUnknownVar, v.ID)
	}
	if m.solution == nil {
		return 0, milp.ErrNoSolution
	}
	return m.solution[v.ID], nil
}

// NumVars implements milp.Model.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints implements milp.Model.
func (m *Model) NumConstraints() int { return len(m.rows) }

// Status returns the status of the last Solve.
func (m *Model) Status() milp.Status { return m.status }

// Close implements milp.Model.
func (m *Model) Close() error {
	if m.closed.Swap(true) {
		return milp.ErrDisposed
	}
	m.solution = nil
	return nil
}

// invalidate drops a previous solution once the model changes.
func (m *Model) invalidate() {
	m.solution = nil
	m.status = milp.StatusUnknown
}

func (m *Model) entries(expr milp.LinExpr) ([]entry, error) {
	coefs := expr.Coefficients()
	out := make([]entry, 0, len(coefs))
	for id, c := range coefs {
		if id < 0 || id >= len(m.vars) {
			return nil, fmt.Errorf("%w: %d", milp.ErrUnknownVar, id)
		}
		if c != 0 {
			out = append(out, entry{col: id, coef: c})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].col < out[b].col })
	return out, nil
}

func (m *Model) evalObjective(x []float64) float64 {
	v := m.objConst
	for _, e := range m.obj {
		v += e.coef * x[e.col]
	}
	return v
}
