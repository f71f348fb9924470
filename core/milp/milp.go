// Package milp defines the contract between model builders and MILP engines.
//
// An Engine opens Sessions; a Session owns Models. A model collects variables,
// linear constraints and an objective, then solves them as a blocking call.
// Sessions and models are scoped resources: once closed, every call on them
// returns ErrDisposed.
package milp

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDisposed is returned when a closed session or model is used.
	ErrDisposed = errors.New("milp: use of disposed resource")
	// ErrDuplicateName is returned when a variable or constraint name is reused.
	ErrDuplicateName = errors.New("milp: duplicate name")
	// ErrUnknownVar is returned when a variable does not belong to the model.
	ErrUnknownVar = errors.New("milp: unknown variable")
	// ErrNoSolution is returned when values are requested but no feasible
	// solution is available.
	ErrNoSolution = errors.New("milp: no solution available")
	// ErrInvalidBounds is returned for a variable whose bounds are empty or
	// not finite where the engine requires it.
	ErrInvalidBounds = errors.New("milp: invalid bounds")
)

// VarKind is the domain of a variable.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Relation compares a linear expression with a right hand side.
type Relation int

const (
	LessEqual Relation = iota
	Equal
	GreaterEqual
)

func (r Relation) String() string {
	switch r {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means an optimal solution was proven.
	StatusOptimal
	// StatusTimeLimit means the time limit elapsed before optimality was
	// proven. A solution may or may not be available.
	StatusTimeLimit
	// StatusInterrupted means the context was cancelled during the solve.
	StatusInterrupted
	// StatusInfeasible means no feasible assignment exists.
	StatusInfeasible
	// StatusUnbounded means the objective is unbounded.
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusTimeLimit:
		return "time_limit"
	case StatusInterrupted:
		return "interrupted"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Var references a variable inside the model that created it.
type Var struct {
	ID int
}

// SessionOptions configures a session.
type SessionOptions struct {
	// Verbose enables engine progress output.
	Verbose bool
	// Params carries engine specific settings.
	Params map[string]any
}

// Engine creates solving sessions.
type Engine interface {
	NewSession(opts SessionOptions) (Session, error)
}

// Session is an execution environment for models. Closing it disposes every
// model created from it.
type Session interface {
	NewModel(name string) (Model, error)
	Close() error
}

// Model is a single MILP instance.
type Model interface {
	AddVar(lb, ub float64, kind VarKind, name string) (Var, error)
	AddConstraint(expr LinExpr, rel Relation, rhs float64, name string) error
	SetObjective(expr LinExpr, sense Sense) error
	SetTimeLimit(d time.Duration) error
	// Solve blocks until optimality is proven, the time limit elapses, the
	// context is cancelled or infeasibility is detected.
	Solve(ctx context.Context) (Status, error)
	ObjectiveValue() (float64, error)
	Runtime() time.Duration
	Value(v Var) (float64, error)
	NumVars() int
	NumConstraints() int
	Close() error
}

// Exporter is implemented by models that can be written in LP file format.
type Exporter interface {
	WriteLP(w io.Writer) error
}
