// Package formulation turns a VRPTW problem into a mixed-integer linear
// program.
//
// Variables, per vehicle v and locations i, j:
//
//	x[v,i,j]  binary   vehicle v drives from i to j
//	y[v,i]    binary   vehicle v serves i
//	t[v,i]    integer  arrival time of v at i
//	penB[v,i] integer  early arrival penalty, capped at the service time
//	penD[v,i] integer  late arrival penalty, capped at the service time
//	wait[v,i] integer  idle time implied by arc slack
//
// Conditional timing rows use a big-M linearization.
package formulation

import (
	"errors"
	"fmt"

	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/core/model"
)

// ErrInvalidSubset is returned when a sub-tour candidate references the depot
// or an unknown customer.
var ErrInvalidSubset = errors.New("invalid sub-tour subset")

// Family identifies a constraint family. It prefixes constraint names.
type Family string

const (
	Budget             Family = "budget"
	Assignment         Family = "assign"
	AssignmentLink     Family = "link"
	DepotDeparture     Family = "depart"
	SingleReturn       Family = "return"
	NoSelfLoop         Family = "noloop"
	FlowConservation   Family = "flow"
	SubtourElimination Family = "subtour"
	ArrivalPropagation Family = "arrive"
	EarlyPenalty       Family = "early"
	LatePenalty        Family = "late"
	WaitBound          Family = "wait"
)

// Families lists every family in build order.
var Families = []Family{
	Budget, Assignment, AssignmentLink, DepotDeparture, SingleReturn, NoSelfLoop,
	FlowConservation, SubtourElimination, ArrivalPropagation, EarlyPenalty, LatePenalty, WaitBound,
}

// Formulation holds the variable handles of a built model.
type Formulation struct {
	problem *model.Problem
	opts    Options
	nv, n   int

	x        [][][]milp.Var
	y        [][]milp.Var
	t        [][]milp.Var
	penEarly [][]milp.Var
	penLate  [][]milp.Var
	wait     [][]milp.Var

	numVars int
	// Counts is the number of rows added per family.
	Counts map[Family]int
	// Objective is the expression handed to the model.
	Objective milp.LinExpr
}

type builder struct {
	m       milp.Model
	p       *model.Problem
	opts    Options
	subsets [][]int
	f       *Formulation
}

// Build adds the variables, objective and constraints of p to m. The problem
// and options are validated before the model is touched. subsets holds the
// customer ids of every sub-tour to forbid; it may be empty.
func Build(m milp.Model, p *model.Problem, subsets [][]int, opts Options) (*Formulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sets, err := resolveSubsets(p, subsets)
	if err != nil {
		return nil, err
	}
	b := &builder{
		m:       m,
		p:       p,
		opts:    opts,
		subsets: sets,
		f: &Formulation{
			problem: p,
			opts:    opts,
			nv:      p.VehicleCount,
			n:       p.NumLocations(),
			Counts:  make(map[Family]int, len(Families)),
		},
	}
	steps := []func() error{
		b.addVariables,
		b.setObjective,
		b.addBudget,
		b.addAssignment,
		b.addAssignmentLink,
		b.addDepotDeparture,
		b.addSingleReturn,
		b.addNoSelfLoop,
		b.addFlowConservation,
		b.addSubtourElimination,
		b.addArrivalPropagation,
		b.addEarlyPenalty,
		b.addLatePenalty,
		b.addWaitBound,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return b.f, nil
}

// resolveSubsets maps customer ids to sequence indices.
func resolveSubsets(p *model.Problem, subsets [][]int) ([][]int, error) {
	index := make(map[int]int, p.NumLocations())
	for i, c := range p.Customers {
		index[c.ID] = i
	}
	out := make([][]int, len(subsets))
	for k, set := range subsets {
		idx := make([]int, len(set))
		for n, id := range set {
			i, ok := index[id]
			if !ok || i == 0 {
				return nil, fmt.Errorf("%w: subset %d contains id %d", ErrInvalidSubset, k, id)
			}
			idx[n] = i
		}
		out[k] = idx
	}
	return out, nil
}

func (b *builder) newVar(lb, ub float64, kind milp.VarKind, name string) (milp.Var, error) {
	v, err := b.m.AddVar(lb, ub, kind, name)
	if err != nil {
		return milp.Var{}, fmt.Errorf("add variable %s: %w", name, err)
	}
	b.f.numVars++
	return v, nil
}

func (b *builder) add(fam Family, expr *milp.LinExpr, rel milp.Relation, rhs float64, idx ...int) error {
	name := string(fam)
	for _, i := range idx {
		name += fmt.Sprintf("_%d", i)
	}
	if err := b.m.AddConstraint(*expr, rel, rhs, name); err != nil {
		return fmt.Errorf("add constraint %s: %w", name, err)
	}
	b.f.Counts[fam]++
	return nil
}

// noVar fills the cells of a grid that have no variable.
var noVar = milp.Var{ID: -1}

// grid allocates a vehicles x locations matrix of variables. Cells below from
// hold noVar.
func (b *builder) grid(prefix string, from int, bounds func(i int) (float64, float64), kind milp.VarKind) ([][]milp.Var, error) {
	out := make([][]milp.Var, b.f.nv)
	for v := range out {
		out[v] = make([]milp.Var, b.f.n)
		for i := 0; i < from; i++ {
			out[v][i] = noVar
		}
		for i := from; i < b.f.n; i++ {
			lb, ub := bounds(i)
			vr, err := b.newVar(lb, ub, kind, fmt.Sprintf("%s_%d_%d", prefix, v, i))
			if err != nil {
				return nil, err
			}
			out[v][i] = vr
		}
	}
	return out, nil
}

func (b *builder) addVariables() error {
	f := b.f
	f.x = make([][][]milp.Var, f.nv)
	for v := 0; v < f.nv; v++ {
		f.x[v] = make([][]milp.Var, f.n)
		for i := 0; i < f.n; i++ {
			f.x[v][i] = make([]milp.Var, f.n)
			for j := 0; j < f.n; j++ {
				vr, err := b.newVar(0, 1, milp.Binary, fmt.Sprintf("x_%d_%d_%d", v, i, j))
				if err != nil {
					return err
				}
				f.x[v][i][j] = vr
			}
		}
	}

	var err error
	binary := func(int) (float64, float64) { return 0, 1 }
	if f.y, err = b.grid("y", b.firstServed(), binary, milp.Binary); err != nil {
		return err
	}

	horizon := b.opts.Horizon
	if b.opts.Timed() {
		horizon = b.p.Horizon()
	}
	if f.t, err = b.grid("t", 0, func(int) (float64, float64) { return 0, horizon }, milp.Integer); err != nil {
		return err
	}

	if b.opts.EnableTimeWindowPenalties {
		capped := func(i int) (float64, float64) { return 0, b.p.Customers[i].ServiceTime }
		if f.penEarly, err = b.grid("penB", 0, capped, milp.Integer); err != nil {
			return err
		}
		if f.penLate, err = b.grid("penD", 0, capped, milp.Integer); err != nil {
			return err
		}
	}
	if b.opts.EnableWaitTime {
		bound := func(int) (float64, float64) { return 0, b.opts.WaitUpperBound }
		if f.wait, err = b.grid("wait", 0, bound, milp.Integer); err != nil {
			return err
		}
	}
	return nil
}

// firstServed is the first location with an assignment variable. The timed
// formulation leaves the depot out.
func (b *builder) firstServed() int {
	if b.opts.Timed() {
		return 1
	}
	return 0
}

// routeCost is the working time consumed by vehicle v.
func (b *builder) routeCost(v int) *milp.LinExpr {
	f := b.f
	e := milp.NewExpr()
	for i := 0; i < f.n; i++ {
		for j := 0; j < f.n; j++ {
			e.Add(f.x[v][i][j], b.p.Distance[i][j])
		}
	}
	for i := b.firstServed(); i < f.n; i++ {
		e.Add(f.y[v][i], b.p.Customers[i].ServiceTime)
	}
	for i := 0; i < f.n; i++ {
		if f.penEarly != nil {
			rate := b.p.Customers[i].PenaltyRate
			e.Add(f.penEarly[v][i], rate).Add(f.penLate[v][i], rate)
		}
		if f.wait != nil {
			e.Add(f.wait[v][i], 1)
		}
	}
	return e
}

func (b *builder) setObjective() error {
	obj := milp.NewExpr()
	for v := 0; v < b.f.nv; v++ {
		obj.AddExpr(*b.routeCost(v), 1)
	}
	b.f.Objective = *obj
	if err := b.m.SetObjective(*obj, milp.Minimize); err != nil {
		return fmt.Errorf("set objective: %w", err)
	}
	return nil
}

func (b *builder) addBudget() error {
	budget := b.p.Budget()
	for v := 0; v < b.f.nv; v++ {
		if err := b.add(Budget, b.routeCost(v), milp.LessEqual, budget, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addAssignment() error {
	for i := 1; i < b.f.n; i++ {
		e := milp.NewExpr()
		for v := 0; v < b.f.nv; v++ {
			e.Add(b.f.y[v][i], 1)
		}
		if err := b.add(Assignment, e, milp.Equal, 1, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addAssignmentLink() error {
	rel := milp.LessEqual
	if b.opts.Timed() {
		rel = milp.Equal
	}
	for v := 0; v < b.f.nv; v++ {
		for i := 1; i < b.f.n; i++ {
			e := milp.NewExpr().Add(b.f.y[v][i], 1)
			for j := 0; j < b.f.n; j++ {
				e.Add(b.f.x[v][j][i], -1)
			}
			if err := b.add(AssignmentLink, e, rel, 0, v, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) addDepotDeparture() error {
	for v := 0; v < b.f.nv; v++ {
		for i := 1; i < b.f.n; i++ {
			e := milp.NewExpr().Add(b.f.y[v][i], 1)
			for j := 0; j < b.f.n; j++ {
				e.Add(b.f.x[v][0][j], -1)
			}
			if err := b.add(DepotDeparture, e, milp.LessEqual, 0, v, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) addSingleReturn() error {
	if !b.opts.Timed() {
		return nil
	}
	for v := 0; v < b.f.nv; v++ {
		e := milp.NewExpr()
		for i := 0; i < b.f.n; i++ {
			e.Add(b.f.x[v][i][0], 1)
		}
		if err := b.add(SingleReturn, e, milp.LessEqual, 1, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addNoSelfLoop() error {
	for v := 0; v < b.f.nv; v++ {
		e := milp.NewExpr()
		for i := 0; i < b.f.n; i++ {
			e.Add(b.f.x[v][i][i], 1)
		}
		if err := b.add(NoSelfLoop, e, milp.Equal, 0, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addFlowConservation() error {
	for v := 0; v < b.f.nv; v++ {
		for i := 0; i < b.f.n; i++ {
			e := milp.NewExpr()
			for j := 0; j < b.f.n; j++ {
				e.Add(b.f.x[v][i][j], 1).Add(b.f.x[v][j][i], -1)
			}
			if err := b.add(FlowConservation, e, milp.Equal, 0, v, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) addSubtourElimination() error {
	for v := 0; v < b.f.nv; v++ {
		for k, set := range b.subsets {
			e := milp.NewExpr()
			for _, i := range set {
				for _, j := range set {
					if i != j {
						e.Add(b.f.x[v][i][j], 1)
					}
				}
			}
			if err := b.add(SubtourElimination, e, milp.LessEqual, float64(len(set)-1), v, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// addArrivalPropagation encodes x[v,i,j] = 1 => t[v,j] >= t[v,i] + d[i][j] + s[i].
// The depot is never a target so routes may close. Only timed formulations
// carry these rows; the basic variant leaves arrival times free.
func (b *builder) addArrivalPropagation() error {
	if !b.opts.Timed() {
		return nil
	}
	bigM := b.opts.BigM
	for v := 0; v < b.f.nv; v++ {
		for i := 0; i < b.f.n; i++ {
			for j := 1; j < b.f.n; j++ {
				e := milp.NewExpr().
					Add(b.f.t[v][i], 1).
					Add(b.f.t[v][j], -1).
					Add(b.f.x[v][i][j], bigM)
				rhs := bigM - b.p.Distance[i][j] - b.p.Customers[i].ServiceTime
				if err := b.add(ArrivalPropagation, e, milp.LessEqual, rhs, v, i, j); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addEarlyPenalty encodes penB[v,i] >= bv[i] - t[v,i] - M(1 - y[v,i]).
func (b *builder) addEarlyPenalty() error {
	if !b.opts.EnableTimeWindowPenalties {
		return nil
	}
	bigM := b.opts.BigM
	for v := 0; v < b.f.nv; v++ {
		for i := 1; i < b.f.n; i++ {
			e := milp.NewExpr().
				Add(b.f.penEarly[v][i], 1).
				Add(b.f.t[v][i], 1).
				Add(b.f.y[v][i], -bigM)
			rhs := b.p.Customers[i].WindowEarliest - bigM
			if err := b.add(EarlyPenalty, e, milp.GreaterEqual, rhs, v, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// addLatePenalty encodes penD[v,i] >= t[v,i] + s[i] - dv[i] - M(1 - y[v,i]).
func (b *builder) addLatePenalty() error {
	if !b.opts.EnableTimeWindowPenalties {
		return nil
	}
	bigM := b.opts.BigM
	for v := 0; v < b.f.nv; v++ {
		for i := 1; i < b.f.n; i++ {
			c := b.p.Customers[i]
			e := milp.NewExpr().
				Add(b.f.penLate[v][i], 1).
				Add(b.f.t[v][i], -1).
				Add(b.f.y[v][i], -bigM)
			rhs := c.ServiceTime - c.WindowLatest - bigM
			if err := b.add(LatePenalty, e, milp.GreaterEqual, rhs, v, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// addWaitBound encodes wait[v,i] >= t[v,j] - s[i] - d[i][j] - t[v,i] - M(1 - x[v,i,j]).
func (b *builder) addWaitBound() error {
	if !b.opts.EnableWaitTime {
		return nil
	}
	bigM := b.opts.BigM
	for v := 0; v < b.f.nv; v++ {
		for i := 0; i < b.f.n; i++ {
			for j := 0; j < b.f.n; j++ {
				e := milp.NewExpr().
					Add(b.f.wait[v][i], 1).
					Add(b.f.t[v][j], -1).
					Add(b.f.t[v][i], 1).
					Add(b.f.x[v][i][j], -bigM)
				rhs := -b.p.Customers[i].ServiceTime - b.p.Distance[i][j] - bigM
				if err := b.add(WaitBound, e, milp.GreaterEqual, rhs, v, i, j); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
