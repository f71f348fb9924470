package model

import (
	"errors"
	"fmt"
	"math"
)

// DepotID identifies the depot in the customer sequence.
const DepotID = 0

// ErrInvalidProblem is returned when a problem description cannot be turned
// into a model.
var ErrInvalidProblem = errors.New("invalid problem")

// Customer is a location to visit. The customer with ID 0 is the depot.
type Customer struct {
	ID             int     `json:"id"`
	ServiceTime    float64 `json:"service_time"`    // time spent at the location
	WindowEarliest float64 `json:"window_earliest"` // bv
	WindowLatest   float64 `json:"window_latest"`   // dv, horizon for the depot
	PenaltyRate    float64 `json:"penalty_rate"`    // cost per unit of window violation
}

// IsDepot reports whether the customer is the depot.
func (c Customer) IsDepot() bool { return c.ID == DepotID }

// Vehicle holds the working time a vehicle may spend on its route.
type Vehicle struct {
	WorkingTimeBudget float64 `json:"working_time_budget"` // wv
}

// Problem describes a VRPTW instance. Customers[0] is the depot and customer
// indices match the rows and columns of Distance. The fleet is homogeneous:
// only Vehicles[0] is consulted for the budget.
type Problem struct {
	Customers    []Customer  `json:"customers"`
	VehicleCount int         `json:"vehicle_count"`
	Vehicles     []Vehicle   `json:"vehicles"`
	Distance     [][]float64 `json:"distance"`
}

// NumLocations returns the number of locations including the depot.
func (p *Problem) NumLocations() int { return len(p.Customers) }

// Depot returns the depot customer. It must only be called on a validated problem.
func (p *Problem) Depot() Customer { return p.Customers[0] }

// Budget returns the shared working time budget of the fleet.
func (p *Problem) Budget() float64 { return p.Vehicles[0].WorkingTimeBudget }

// Horizon returns the latest time of the depot window.
func (p *Problem) Horizon() float64 { return p.Depot().WindowLatest }

// CustomerIDs returns the identifiers of every non-depot customer in
// sequence order.
func (p *Problem) CustomerIDs() []int {
	ids := make([]int, 0, len(p.Customers))
	for _, c := range p.Customers {
		if !c.IsDepot() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// IndexOf returns the sequence index of the customer with the given id.
func (p *Problem) IndexOf(id int) (int, bool) {
	for i, c := range p.Customers {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the structural invariants of the problem. Every error
// wraps ErrInvalidProblem.
//
//nolint:gocyclo
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil problem", ErrInvalidProblem)
	}
	n := len(p.Customers)
	if n == 0 {
		return fmt.Errorf("%w: no customers", ErrInvalidProblem)
	}
	if p.VehicleCount < 1 {
		return fmt.Errorf("%w: vehicle count %d, need at least 1", ErrInvalidProblem, p.VehicleCount)
	}
	if len(p.Vehicles) == 0 {
		return fmt.Errorf("%w: no vehicle description", ErrInvalidProblem)
	}
	if b := p.Vehicles[0].WorkingTimeBudget; b < 0 || math.IsNaN(b) {
		return fmt.Errorf("%w: negative working time budget %v", ErrInvalidProblem, b)
	}
	if !p.Customers[0].IsDepot() {
		return fmt.Errorf("%w: first customer has id %d, want depot id %d", ErrInvalidProblem, p.Customers[0].ID, DepotID)
	}
	seen := make(map[int]struct{}, n)
	for i, c := range p.Customers {
		if i > 0 && c.IsDepot() {
			return fmt.Errorf("%w: customer at index %d uses reserved depot id", ErrInvalidProblem, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate customer id %d", ErrInvalidProblem, c.ID)
		}
		seen[c.ID] = struct{}{}
		if err := c.validate(); err != nil {
			return fmt.Errorf("%w: customer %d: %v", ErrInvalidProblem, c.ID, err)
		}
	}
	if len(p.Distance) != n {
		return fmt.Errorf("%w: distance matrix has %d rows, want %d", ErrInvalidProblem, len(p.Distance), n)
	}
	for i, row := range p.Distance {
		if len(row) != n {
			return fmt.Errorf("%w: distance row %d has %d columns, want %d", ErrInvalidProblem, i, len(row), n)
		}
		for j, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
				return fmt.Errorf("%w: distance[%d][%d] = %v", ErrInvalidProblem, i, j, d)
			}
		}
	}
	return nil
}

func (c Customer) validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"service time", c.ServiceTime},
		{"penalty rate", c.PenaltyRate},
		{"window earliest", c.WindowEarliest},
		{"window latest", c.WindowLatest},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %v", f.name, f.v)
		}
	}
	if c.WindowEarliest > c.WindowLatest {
		return fmt.Errorf("window [%v, %v] is empty", c.WindowEarliest, c.WindowLatest)
	}
	return nil
}
