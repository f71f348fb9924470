package metrics

import "github.com/kilianp07/vrptw/core/factory"

var registry = factory.NewRegistry[Recorder]()

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return registry.Register(name, f)
}

// NewRecorder creates a Recorder from the provided configuration.
func NewRecorder(cfgs []factory.ModuleConfig) (Recorder, error) {
	if len(cfgs) == 0 {
		return NopRecorder{}, nil
	}
	if len(cfgs) == 1 {
		return registry.Create(cfgs[0])
	}
	recs := make([]Recorder, len(cfgs))
	for i, c := range cfgs {
		r, err := registry.Create(c)
		if err != nil {
			return nil, err
		}
		recs[i] = r
	}
	return NewMultiRecorder(recs...), nil
}

// RegisteredRecorders lists the known recorder types.
func RegisteredRecorders() []string { return registry.Names() }
