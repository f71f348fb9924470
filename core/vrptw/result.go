package vrptw

import (
	"time"

	"github.com/kilianp07/vrptw/core/milp"
)

// Result is the outcome of a successful solve. Optimal is false when the
// engine stopped on its time limit or on cancellation with a feasible
// solution at hand.
type Result struct {
	RunID     string        `json:"run_id"`
	Variant   string        `json:"variant"`
	Objective float64       `json:"objective"`
	Runtime   time.Duration `json:"runtime_ns"`
	Optimal   bool          `json:"optimal"`
	Status    milp.Status   `json:"status"`
	Routes    []Route       `json:"routes"`
	Build     BuildStats    `json:"build"`
}

// Pair returns the objective value and the engine runtime.
func (r *Result) Pair() (float64, time.Duration) {
	return r.Objective, r.Runtime
}

// Route is the tour of one vehicle. Stops and Arrivals hold customer IDs and
// arrival times in visiting order; the depot is implied at both ends.
type Route struct {
	Vehicle  int       `json:"vehicle"`
	Stops    []int     `json:"stops"`
	Arrivals []float64 `json:"arrivals"`
	// Detached lists customers assigned to the vehicle that the arcs leaving
	// the depot never reach.
	Detached []int   `json:"detached,omitempty"`
	Distance float64 `json:"distance"`
	Service  float64 `json:"service"`
	Penalty  float64 `json:"penalty"`
	Wait     float64 `json:"wait"`
}

// BuildStats describes the model handed to the engine.
type BuildStats struct {
	Subsets     int           `json:"subsets"`
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
	Duration    time.Duration `json:"duration_ns"`
}
