package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/vrptw/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// BuildEvent describes a finished model build.
type BuildEvent struct {
	RunID       string
	Variant     string
	Customers   int
	Vehicles    int
	Subsets     int
	Variables   int
	Constraints int
	Duration    time.Duration
	Time        time.Time
}

// SolveEvent describes the outcome of a solve.
type SolveEvent struct {
	RunID       string
	Variant     string
	Status      string
	Objective   float64
	HasSolution bool
	Runtime     time.Duration
	Routes      int
	Err         string
	Time        time.Time
}

// Recorder records solver events for observability purposes.
type Recorder interface {
	RecordBuild(ev BuildEvent) error
	RecordSolve(ev SolveEvent) error
}

// Flusher is implemented by recorders that buffer or push their data.
type Flusher interface {
	Flush() error
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordBuild(BuildEvent) error { return nil }
func (NopRecorder) RecordSolve(SolveEvent) error { return nil }

// MultiRecorder fans events out to several recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordBuild forwards the event to every recorder. All recorders are tried;
// their errors are joined.
func (m *MultiRecorder) RecordBuild(ev BuildEvent) error {
	var errs []error
	for _, r := range m.Recorders {
		errs = append(errs, r.RecordBuild(ev))
	}
	return errors.Join(errs...)
}

// RecordSolve forwards the event to every recorder.
func (m *MultiRecorder) RecordSolve(ev SolveEvent) error {
	var errs []error
	for _, r := range m.Recorders {
		errs = append(errs, r.RecordSolve(ev))
	}
	return errors.Join(errs...)
}

// Flush flushes the recorders that support it.
func (m *MultiRecorder) Flush() error {
	var errs []error
	for _, r := range m.Recorders {
		if f, ok := r.(Flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}
