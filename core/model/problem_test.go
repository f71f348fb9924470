package model

import (
	"errors"
	"math"
	"testing"
)

func triangle() *Problem {
	return &Problem{
		Customers: []Customer{
			{ID: 0, WindowLatest: 100},
			{ID: 1, WindowLatest: 100},
			{ID: 2, WindowLatest: 100},
		},
		VehicleCount: 1,
		Vehicles:     []Vehicle{{WorkingTimeBudget: 1000}},
		Distance:     [][]float64{{0, 5, 5}, {5, 0, 5}, {5, 5, 0}},
	}
}

func TestProblemValidateOK(t *testing.T) {
	if err := triangle().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProblemValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Problem)
	}{
		{"no customers", func(p *Problem) { p.Customers = nil }},
		{"zero vehicles", func(p *Problem) { p.VehicleCount = 0 }},
		{"no vehicle description", func(p *Problem) { p.Vehicles = nil }},
		{"negative budget", func(p *Problem) { p.Vehicles[0].WorkingTimeBudget = -1 }},
		{"depot not first", func(p *Problem) { p.Customers[0].ID = 7 }},
		{"reserved id", func(p *Problem) { p.Customers[2].ID = 0 }},
		{"duplicate id", func(p *Problem) { p.Customers[2].ID = 1 }},
		{"negative service time", func(p *Problem) { p.Customers[1].ServiceTime = -2 }},
		{"negative penalty", func(p *Problem) { p.Customers[1].PenaltyRate = -1 }},
		{"empty window", func(p *Problem) { p.Customers[1].WindowEarliest = 200 }},
		{"short matrix", func(p *Problem) { p.Distance = p.Distance[:2] }},
		{"ragged matrix", func(p *Problem) { p.Distance[1] = []float64{5, 0} }},
		{"nan distance", func(p *Problem) { p.Distance[0][1] = math.NaN() }},
		{"negative distance", func(p *Problem) { p.Distance[2][1] = -5 }},
	}
	for _, c := range cases {
		p := triangle()
		c.mutate(p)
		err := p.Validate()
		if !errors.Is(err, ErrInvalidProblem) {
			t.Errorf("%s: expected ErrInvalidProblem got %v", c.name, err)
		}
	}
}

func TestProblemValidateNil(t *testing.T) {
	var p *Problem
	if err := p.Validate(); !errors.Is(err, ErrInvalidProblem) {
		t.Fatalf("expected ErrInvalidProblem got %v", err)
	}
}

func TestProblemHelpers(t *testing.T) {
	p := triangle()
	p.Customers[1].ID = 10
	p.Customers[2].ID = 20
	p.Vehicles = append(p.Vehicles, Vehicle{WorkingTimeBudget: 1})

	ids := p.CustomerIDs()
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 20 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if idx, ok := p.IndexOf(20); !ok || idx != 2 {
		t.Fatalf("IndexOf(20) = %d, %v", idx, ok)
	}
	if _, ok := p.IndexOf(3); ok {
		t.Fatalf("IndexOf(3) should not be found")
	}
	if p.Budget() != 1000 {
		t.Fatalf("budget must come from the first vehicle, got %v", p.Budget())
	}
	if p.Horizon() != 100 || p.NumLocations() != 3 {
		t.Fatalf("unexpected horizon %v or locations %d", p.Horizon(), p.NumLocations())
	}
}
