package milp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinExprBuild(t *testing.T) {
	x, y := Var{ID: 0}, Var{ID: 1}
	e := NewExpr().Add(x, 2).Add(y, -1).Add(x, 3).AddConstant(4)

	coefs := e.Coefficients()
	assert.Equal(t, 5.0, coefs[0])
	assert.Equal(t, -1.0, coefs[1])
	assert.Equal(t, 4.0, e.Constant)

	other := NewExpr().Add(y, 1).AddConstant(1)
	e.AddExpr(*other, -2)
	assert.Equal(t, -3.0, e.Coefficients()[1])
	assert.Equal(t, 2.0, e.Constant)

	vals := map[int]float64{0: 1, 1: 2}
	assert.Equal(t, 5.0+(-3.0*2)+2.0, e.Eval(func(v Var) float64 { return vals[v.ID] }))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "binary", Binary.String())
	assert.Equal(t, "integer", Integer.String())
	assert.Equal(t, "continuous", Continuous.String())
	assert.Equal(t, "<=", LessEqual.String())
	assert.Equal(t, "=", Equal.String())
	assert.Equal(t, ">=", GreaterEqual.String())
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "time_limit", StatusTimeLimit.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unknown", Status(99).String())
}
