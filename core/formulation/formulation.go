package formulation

import (
	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/core/model"
)

// Problem returns the problem the formulation was built from.
func (f *Formulation) Problem() *model.Problem { return f.problem }

// Options returns the options used to build the formulation.
func (f *Formulation) Options() Options { return f.opts }

// Vehicles returns the number of vehicles.
func (f *Formulation) Vehicles() int { return f.nv }

// Locations returns the number of locations including the depot.
func (f *Formulation) Locations() int { return f.n }

// NumVariables returns the number of variables added to the model.
func (f *Formulation) NumVariables() int { return f.numVars }

// NumConstraints returns the number of rows added to the model.
func (f *Formulation) NumConstraints() int {
	total := 0
	for _, c := range f.Counts {
		total += c
	}
	return total
}

// Arc returns x[v,i,j].
func (f *Formulation) Arc(v, i, j int) milp.Var { return f.x[v][i][j] }

// Arrival returns t[v,i].
func (f *Formulation) Arrival(v, i int) milp.Var { return f.t[v][i] }

// Served returns y[v,i]. The depot has no assignment variable in timed
// formulations.
func (f *Formulation) Served(v, i int) (milp.Var, bool) {
	if i == 0 && f.opts.Timed() {
		return milp.Var{}, false
	}
	return f.y[v][i], true
}

// EarlyPenalty returns penB[v,i] when penalties are modeled.
func (f *Formulation) EarlyPenalty(v, i int) (milp.Var, bool) {
	if f.penEarly == nil {
		return milp.Var{}, false
	}
	return f.penEarly[v][i], true
}

// LatePenalty returns penD[v,i] when penalties are modeled.
func (f *Formulation) LatePenalty(v, i int) (milp.Var, bool) {
	if f.penLate == nil {
		return milp.Var{}, false
	}
	return f.penLate[v][i], true
}

// Wait returns wait[v,i] when wait time is modeled.
func (f *Formulation) Wait(v, i int) (milp.Var, bool) {
	if f.wait == nil {
		return milp.Var{}, false
	}
	return f.wait[v][i], true
}
