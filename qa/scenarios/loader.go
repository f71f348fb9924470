package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vrptw/core/formulation"
	"github.com/kilianp07/vrptw/core/model"
)

type CustomerDef struct {
	ID             int     `yaml:"id"`
	ServiceTime    float64 `yaml:"service_time"`
	WindowEarliest float64 `yaml:"window_earliest"`
	WindowLatest   float64 `yaml:"window_latest"`
	PenaltyRate    float64 `yaml:"penalty_rate"`
}

func (c CustomerDef) ToModel() model.Customer {
	return model.Customer{
		ID:             c.ID,
		ServiceTime:    c.ServiceTime,
		WindowEarliest: c.WindowEarliest,
		WindowLatest:   c.WindowLatest,
		PenaltyRate:    c.PenaltyRate,
	}
}

type Expected struct {
	// Status is the engine status name, or "infeasible" for runs that fail
	// with vrptw.ErrInfeasible.
	Status    string   `yaml:"status"`
	Objective *float64 `yaml:"objective,omitempty"`
	Routes    int      `yaml:"routes,omitempty"`
	Penalty   float64  `yaml:"penalty,omitempty"`
}

type Scenario struct {
	Name              string        `yaml:"name"`
	Description       string        `yaml:"description,omitempty"`
	Variant           string        `yaml:"variant"`
	Vehicles          int           `yaml:"vehicles"`
	WorkingTimeBudget float64       `yaml:"working_time_budget"`
	Customers         []CustomerDef `yaml:"customers"`
	Distance          [][]float64   `yaml:"distance"`
	Expected          Expected      `yaml:"expected"`
}

// Problem builds a homogeneous fleet problem.
func (s *Scenario) Problem() *model.Problem {
	p := &model.Problem{
		VehicleCount: s.Vehicles,
		Distance:     s.Distance,
	}
	for _, c := range s.Customers {
		p.Customers = append(p.Customers, c.ToModel())
	}
	for i := 0; i < s.Vehicles; i++ {
		p.Vehicles = append(p.Vehicles, model.Vehicle{WorkingTimeBudget: s.WorkingTimeBudget})
	}
	return p
}

// Options maps the variant name to formulation options. An empty variant
// is the full formulation.
func (s *Scenario) Options() (formulation.Options, error) {
	o := formulation.DefaultOptions()
	switch s.Variant {
	case "", "full":
	case "basic":
		o = formulation.BasicOptions()
	case "penalties":
		o.EnableWaitTime = false
	case "wait":
		o.EnableTimeWindowPenalties = false
	default:
		return o, fmt.Errorf("unknown variant %q", s.Variant)
	}
	return o, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
