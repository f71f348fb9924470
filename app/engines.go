package app

import (
	"github.com/kilianp07/vrptw/core/factory"
	"github.com/kilianp07/vrptw/core/milp"
	"github.com/kilianp07/vrptw/infra/gonumlp"
)

var engines = factory.NewRegistry[milp.Engine]()

func init() {
	engines.MustRegister("gonum", gonumlp.NewFromConfig)
}

// RegisterEngine adds an engine factory selectable by solver.engine.type.
func RegisterEngine(name string, f factory.Factory[milp.Engine]) error {
	return engines.Register(name, f)
}

// Engines lists the registered engine types.
func Engines() []string { return engines.Names() }
