package gonumlp

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/vrptw/core/milp"
)

var (
	errInfeasible  = errors.New("gonumlp: relaxation is infeasible")
	errUnbounded   = errors.New("gonumlp: relaxation is unbounded")
	errTimeLimit   = errors.New("gonumlp: time limit reached")
	errInterrupted = errors.New("gonumlp: solve interrupted")
	errStalled     = errors.New("gonumlp: simplex iteration limit reached")
)

const (
	// pivotTol is the smallest tableau entry accepted as a pivot.
	pivotTol = 1e-9
	// ratioTol is how far the ratio test lets basic variables pass their
	// bounds in exchange for a larger pivot.
	ratioTol = 1e-9
	// feasTol is the phase one residual, relative to the largest initial
	// residual, under which the rows count as satisfied.
	feasTol = 1e-9
	// blandAfter switches pricing to Bland's rule after that many degenerate
	// steps in a row.
	blandAfter = 50
)

type colState uint8

const (
	atLower colState = iota
	atUpper
	inBasis
)

// tableau is a dense bounded-variable simplex over the rows of a model.
//
// Every row i reads a_i·x + s_i = rhs_i where the slack bounds encode the
// relation: [0, +Inf) for <=, (-Inf, 0] for >= and [0, 0] for =. Rows whose
// starting point violates the slack bounds get an artificial column. Nonbasic
// columns sit at one of their bounds, so no bound row is ever added and
// equality rows need not be linearly independent.
type tableau struct {
	rows   [][]float64 // B⁻¹ [A I E]
	basis  []int       // basic column of each row
	state  []colState
	lo, hi []float64
	x      []float64 // current value of every column
	d      []float64 // reduced costs

	structural int
	arts       []int
	scale      float64
	optTol     float64
}

func slackBounds(rel milp.Relation) (float64, float64) {
	switch rel {
	case milp.LessEqual:
		return 0, math.Inf(1)
	case milp.GreaterEqual:
		return math.Inf(-1), 0
	default:
		return 0, 0
	}
}

// newTableau starts every structural column at its lower bound. lo must be
// finite.
func newTableau(rows []row, lo, hi []float64, optTol float64) *tableau {
	m, n := len(rows), len(lo)
	resid := make([]float64, m)
	sign := make([]float64, m)
	nArt := 0
	scale := 1.0
	for i, r := range rows {
		v := r.rhs
		for _, e := range r.entries {
			v -= e.coef * lo[e.col]
		}
		resid[i] = v
		scale = math.Max(scale, math.Abs(v))
		sl, sh := slackBounds(r.rel)
		switch {
		case v < sl:
			sign[i], nArt = -1, nArt+1
		case v > sh:
			sign[i], nArt = 1, nArt+1
		}
	}

	cols := n + m + nArt
	tb := &tableau{
		rows:       make([][]float64, m),
		basis:      make([]int, m),
		state:      make([]colState, cols),
		lo:         make([]float64, cols),
		hi:         make([]float64, cols),
		x:          make([]float64, cols),
		structural: n,
		arts:       make([]int, 0, nArt),
		scale:      scale,
		optTol:     optTol,
	}
	copy(tb.lo, lo)
	copy(tb.hi, hi)
	copy(tb.x, lo)

	data := make([]float64, m*cols)
	next := n + m
	for i, r := range rows {
		tr := data[i*cols : (i+1)*cols]
		tb.rows[i] = tr
		for _, e := range r.entries {
			tr[e.col] = e.coef
		}
		s := n + i
		tr[s] = 1
		tb.lo[s], tb.hi[s] = slackBounds(r.rel)
		if sign[i] == 0 {
			tb.basis[i], tb.state[s], tb.x[s] = s, inBasis, resid[i]
			continue
		}
		// the slack rests at the bound nearest to the residual
		tb.x[s] = 0
		if tb.lo[s] == 0 {
			tb.state[s] = atLower
		} else {
			tb.state[s] = atUpper
		}
		a := next
		next++
		tr[a] = sign[i]
		tb.lo[a], tb.hi[a] = 0, math.Inf(1)
		tb.x[a] = math.Abs(resid[i])
		tb.basis[i], tb.state[a] = a, inBasis
		tb.arts = append(tb.arts, a)
		if sign[i] < 0 {
			floats.Scale(-1, tr)
		}
	}
	return tb
}

// solve minimizes c over the rows and returns the structural values.
func (tb *tableau) solve(ctx context.Context, deadline time.Time, c []float64) ([]float64, error) {
	cost := make([]float64, len(tb.x))
	if len(tb.arts) > 0 {
		for _, a := range tb.arts {
			cost[a] = 1
		}
		if err := tb.iterate(ctx, deadline, cost); err != nil {
			return nil, err
		}
		infeas := 0.0
		for _, a := range tb.arts {
			infeas += tb.x[a]
		}
		if infeas > feasTol*tb.scale {
			return nil, errInfeasible
		}
		for _, a := range tb.arts {
			tb.hi[a] = 0
			cost[a] = 0
			if tb.state[a] != inBasis {
				tb.x[a] = 0
			}
		}
	}
	copy(cost, c)
	if err := tb.iterate(ctx, deadline, cost); err != nil {
		return nil, err
	}
	x := make([]float64, tb.structural)
	for j := range x {
		x[j] = math.Min(math.Max(tb.x[j], tb.lo[j]), tb.hi[j])
	}
	return x, nil
}

// price recomputes the reduced costs of cost for the current basis.
func (tb *tableau) price(cost []float64) {
	tb.d = make([]float64, len(cost))
	copy(tb.d, cost)
	for i, r := range tb.rows {
		if cb := cost[tb.basis[i]]; cb != 0 {
			floats.AddScaled(tb.d, -cb, r)
		}
	}
	for _, k := range tb.basis {
		tb.d[k] = 0
	}
}

func (tb *tableau) iterate(ctx context.Context, deadline time.Time, cost []float64) error {
	tb.price(cost)
	limit := 50*(len(tb.rows)+len(tb.x)) + 1000
	degenerate := 0
	for it := 0; it < limit; it++ {
		if ctx.Err() != nil {
			return errInterrupted
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return errTimeLimit
		}
		bland := degenerate >= blandAfter
		j, dir := tb.entering(bland)
		if j < 0 {
			return nil
		}
		r, theta := tb.ratio(j, dir, bland)
		if math.IsInf(theta, 1) {
			return errUnbounded
		}
		tb.step(j, dir, r, theta)
		if theta > pivotTol {
			degenerate = 0
		} else {
			degenerate++
		}
	}
	return errStalled
}

// entering picks the nonbasic column with the most attractive reduced cost, or
// the lowest eligible index under Bland's rule. dir is +1 when the column
// leaves its lower bound and -1 when it leaves its upper bound.
func (tb *tableau) entering(bland bool) (int, float64) {
	best, bestDir, bestScore := -1, 0.0, tb.optTol
	for j, st := range tb.state {
		if st == inBasis || tb.lo[j] == tb.hi[j] {
			continue
		}
		score, dir := -tb.d[j], 1.0
		if st == atUpper {
			score, dir = tb.d[j], -1
		}
		if score <= tb.optTol {
			continue
		}
		if bland {
			return j, dir
		}
		if score > bestScore {
			best, bestDir, bestScore = j, dir, score
		}
	}
	return best, bestDir
}

// ratio returns the row whose basic variable blocks column j and the step
// length. r is -1 when j reaches its own opposite bound first. The first pass
// finds the longest step with every basic bound relaxed by ratioTol; the
// second pivots on the largest entry among the rows blocking within it.
func (tb *tableau) ratio(j int, dir float64, bland bool) (int, float64) {
	flip := math.Inf(1)
	if !math.IsInf(tb.hi[j], 1) && !math.IsInf(tb.lo[j], -1) {
		flip = tb.hi[j] - tb.lo[j]
	}
	bound := flip
	for i, row := range tb.rows {
		alpha := dir * row[j]
		if math.Abs(alpha) <= pivotTol {
			continue
		}
		if lim, ok := tb.limit(i, alpha, ratioTol); ok && lim < bound {
			bound = lim
		}
	}
	if flip <= bound {
		return -1, flip
	}
	r, theta, best := -1, bound, 0.0
	for i, row := range tb.rows {
		alpha := dir * row[j]
		if math.Abs(alpha) <= pivotTol {
			continue
		}
		lim, ok := tb.limit(i, alpha, 0)
		if !ok || lim > bound {
			continue
		}
		better := math.Abs(alpha) > best
		if bland && r >= 0 {
			better = tb.basis[i] < tb.basis[r]
		}
		if better {
			r, theta, best = i, lim, math.Abs(alpha)
		}
	}
	return r, theta
}

// limit is the step after which the basic variable of row i, moving by
// -alpha per unit, reaches its bound widened by slack. ok is false when that
// bound is infinite.
func (tb *tableau) limit(i int, alpha, slack float64) (float64, bool) {
	k := tb.basis[i]
	if alpha > 0 {
		if math.IsInf(tb.lo[k], -1) {
			return 0, false
		}
		return math.Max((tb.x[k]-tb.lo[k]+slack)/alpha, 0), true
	}
	if math.IsInf(tb.hi[k], 1) {
		return 0, false
	}
	return math.Max((tb.hi[k]-tb.x[k]+slack)/-alpha, 0), true
}

// step moves column j by theta in direction dir and pivots it into row r.
func (tb *tableau) step(j int, dir float64, r int, theta float64) {
	if theta > 0 {
		for i, row := range tb.rows {
			if a := row[j]; a != 0 {
				tb.x[tb.basis[i]] -= dir * theta * a
			}
		}
		tb.x[j] += dir * theta
	}
	if r < 0 {
		if dir > 0 {
			tb.x[j], tb.state[j] = tb.hi[j], atUpper
		} else {
			tb.x[j], tb.state[j] = tb.lo[j], atLower
		}
		return
	}
	k := tb.basis[r]
	if dir*tb.rows[r][j] > 0 {
		tb.x[k], tb.state[k] = tb.lo[k], atLower
	} else {
		tb.x[k], tb.state[k] = tb.hi[k], atUpper
	}
	tb.pivot(r, j)
}

func (tb *tableau) pivot(r, j int) {
	pr := tb.rows[r]
	floats.Scale(1/pr[j], pr)
	pr[j] = 1
	for i, row := range tb.rows {
		if i == r {
			continue
		}
		if f := row[j]; f != 0 {
			floats.AddScaled(row, -f, pr)
			row[j] = 0
		}
	}
	if f := tb.d[j]; f != 0 {
		floats.AddScaled(tb.d, -f, pr)
		tb.d[j] = 0
	}
	tb.basis[r] = j
	tb.state[j] = inBasis
}
