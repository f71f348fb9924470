// Package factory selects module implementations from configuration. A module
// is named by a type string and carries a map of raw settings that its factory
// decodes into a typed struct.
//
// The solver engine and the metrics recorders are both selected this way:
//
//	engines := factory.NewRegistry[milp.Engine]()
//	engines.MustRegister("gonum", factory.Typed(func(p gonumlp.Params) (milp.Engine, error) {
//	    return gonumlp.New(gonumlp.WithParams(p)), nil
//	}))
//	eng, err := engines.Create(factory.ModuleConfig{Type: "gonum"})
package factory
