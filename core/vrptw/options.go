package vrptw

import (
	"io"
	"time"

	"github.com/kilianp07/vrptw/core/formulation"
	"github.com/kilianp07/vrptw/core/logger"
	"github.com/kilianp07/vrptw/core/metrics"
	"github.com/kilianp07/vrptw/core/subtour"
)

// DefaultTimeLimit bounds a solve when no limit is configured.
const DefaultTimeLimit = 10 * time.Minute

// Option configures a Solver.
type Option func(*Solver)

// WithGenerator replaces the exhaustive sub-tour generator.
func WithGenerator(g subtour.Generator) Option {
	return func(s *Solver) {
		if g != nil {
			s.gen = g
		}
	}
}

// WithFormulation selects the constraint families and constants.
func WithFormulation(o formulation.Options) Option {
	return func(s *Solver) { s.opts = o }
}

// WithTimeLimit sets the engine time limit. Non-positive values keep the
// default.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Solver) {
		if d > 0 {
			s.timeLimit = d
		}
	}
}

// WithVerbose enables engine progress output.
func WithVerbose(v bool) Option {
	return func(s *Solver) { s.verbose = v }
}

// WithEngineParams passes engine specific settings to every session.
func WithEngineParams(p map[string]any) Option {
	return func(s *Solver) { s.params = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Solver) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithModelExport writes each built model in LP format to w before it is
// solved. The engine must implement milp.Exporter.
func WithModelExport(w io.Writer) Option {
	return func(s *Solver) { s.export = w }
}

// WithModelName names the models created by the solver.
func WithModelName(name string) Option {
	return func(s *Solver) {
		if name != "" {
			s.modelName = name
		}
	}
}
