// Package gonumlp is a pure Go MILP engine. LP relaxations are solved by a
// dense bounded-variable simplex on gonum floats, and integer and binary
// variables are handled by a depth first branch-and-bound over them. It
// targets small models: every relaxation is solved densely.
package gonumlp

import (
	"errors"
	"sync"

	"github.com/kilianp07/vrptw/core/factory"
	"github.com/kilianp07/vrptw/core/logger"
	"github.com/kilianp07/vrptw/core/milp"
	infralogger "github.com/kilianp07/vrptw/infra/logger"
)

// Default numerical settings.
const (
	DefaultTolerance      = 1e-7
	DefaultIntegralityTol = 1e-6
)

// Params tunes the engine. Zero values select the defaults.
type Params struct {
	// Tolerance is the reduced cost under which the simplex stops pricing.
	Tolerance float64 `json:"tolerance"`
	// IntegralityTol is the distance to the nearest integer under which a
	// relaxed value counts as integral.
	IntegralityTol float64 `json:"integrality_tol"`
	// NodeLimit stops the search after that many explored nodes. Zero means
	// unlimited.
	NodeLimit int `json:"node_limit"`
}

// SetDefaults fills zero values.
func (p *Params) SetDefaults() {
	if p.Tolerance == 0 {
		p.Tolerance = DefaultTolerance
	}
	if p.IntegralityTol == 0 {
		p.IntegralityTol = DefaultIntegralityTol
	}
}

// Validate rejects negative settings.
func (p Params) Validate() error {
	if p.Tolerance < 0 || p.IntegralityTol < 0 || p.IntegralityTol >= 0.5 {
		return errors.New("gonumlp: tolerances must be in [0, 0.5)")
	}
	if p.NodeLimit < 0 {
		return errors.New("gonumlp: node_limit must not be negative")
	}
	return nil
}

// Engine implements milp.Engine.
type Engine struct {
	params Params
	log    logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithParams overrides the numerical settings.
func WithParams(p Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithLogger sets the logger used by sessions.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an engine with default parameters.
func New(opts ...Option) *Engine {
	e := &Engine{log: infralogger.New("gonumlp")}
	for _, o := range opts {
		o(e)
	}
	e.params.SetDefaults()
	return e
}

// NewFromConfig builds an engine from a raw module configuration.
func NewFromConfig(conf map[string]any) (milp.Engine, error) {
	return factory.Typed(fromParams)(conf)
}

func fromParams(p Params) (milp.Engine, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return New(WithParams(p)), nil
}

// NewSession implements milp.Engine. Session options may override Params
// through the same keys.
func (e *Engine) NewSession(opts milp.SessionOptions) (milp.Session, error) {
	p := e.params
	if len(opts.Params) > 0 {
		if err := factory.Decode(opts.Params, &p); err != nil {
			return nil, err
		}
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Session{params: p, verbose: opts.Verbose, log: e.log}, nil
}

// Session owns models. Closing it disposes them.
type Session struct {
	params  Params
	verbose bool
	log     logger.Logger

	mu     sync.Mutex
	closed bool
	models []*Model
}

// NewModel implements milp.Session.
func (s *Session) NewModel(name string) (milp.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, milp.ErrDisposed
	}
	m := newModel(name, s)
	s.models = append(s.models, m)
	return m, nil
}

// Close implements milp.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return milp.ErrDisposed
	}
	s.closed = true
	for _, m := range s.models {
		m.release()
	}
	s.models = nil
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
