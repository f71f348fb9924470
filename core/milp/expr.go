package milp

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// LinExpr is a linear expression sum(Coef*Var) + Constant. The zero value is
// the empty expression.
type LinExpr struct {
	Terms    []Term
	Constant float64
}

// NewExpr returns an empty expression.
func NewExpr() *LinExpr { return &LinExpr{} }

// Add appends coef*v and returns the expression for chaining.
func (e *LinExpr) Add(v Var, coef float64) *LinExpr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

// AddConstant adds c to the constant part.
func (e *LinExpr) AddConstant(c float64) *LinExpr {
	e.Constant += c
	return e
}

// AddExpr appends scale*other.
func (e *LinExpr) AddExpr(other LinExpr, scale float64) *LinExpr {
	for _, t := range other.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: scale * t.Coef})
	}
	e.Constant += scale * other.Constant
	return e
}

// Coefficients merges duplicated variables and returns the coefficient of
// each variable ID. Zero coefficients are kept so callers can tell a
// referenced variable from an absent one.
func (e LinExpr) Coefficients() map[int]float64 {
	out := make(map[int]float64, len(e.Terms))
	for _, t := range e.Terms {
		out[t.Var.ID] += t.Coef
	}
	return out
}

// Eval computes the expression for the given variable values.
func (e LinExpr) Eval(value func(Var) float64) float64 {
	s := e.Constant
	for _, t := range e.Terms {
		s += t.Coef * value(t.Var)
	}
	return s
}
