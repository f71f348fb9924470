package formulation

import (
	"errors"
	"fmt"
)

// DefaultBigM neutralizes conditional timing rows when the controlling
// binary is zero. It must dominate every feasible timing gap without being so
// large that the relaxation becomes ill-conditioned.
const DefaultBigM = 10000

// ErrInvalidOptions is returned for unusable formulation settings.
var ErrInvalidOptions = errors.New("invalid formulation options")

// Options selects the constraint families of the formulation.
//
// With both toggles enabled the builder produces the full time window model.
// With both disabled it produces the basic assignment routing model, which
// is a strict subset of the full one.
type Options struct {
	EnableTimeWindowPenalties bool `json:"enable_time_window_penalties"`
	EnableWaitTime            bool `json:"enable_wait_time"`
	// BigM is the constant used by every big-M linearization.
	BigM float64 `json:"big_m"`
	// Horizon bounds arrival times when the formulation is not timed. Timed
	// formulations use the depot window instead.
	Horizon float64 `json:"horizon"`
	// WaitUpperBound bounds the wait variables.
	WaitUpperBound float64 `json:"wait_upper_bound"`
}

// DefaultOptions returns the full variant.
func DefaultOptions() Options {
	return Options{
		EnableTimeWindowPenalties: true,
		EnableWaitTime:            true,
		BigM:                      DefaultBigM,
		Horizon:                   DefaultBigM,
		WaitUpperBound:            DefaultBigM,
	}
}

// BasicOptions returns the basic variant: no penalty or wait families.
func BasicOptions() Options {
	o := DefaultOptions()
	o.EnableTimeWindowPenalties = false
	o.EnableWaitTime = false
	return o
}

// Timed reports whether the strict structural families of the full variant
// apply: depot excluded from assignment variables, equality linking, a single
// return to the depot and the depot window as time horizon.
func (o Options) Timed() bool {
	return o.EnableTimeWindowPenalties || o.EnableWaitTime
}

// Variant names the formulation for logs and metrics.
func (o Options) Variant() string {
	switch {
	case o.EnableTimeWindowPenalties && o.EnableWaitTime:
		return "full"
	case o.EnableTimeWindowPenalties:
		return "penalties"
	case o.EnableWaitTime:
		return "wait"
	default:
		return "basic"
	}
}

// SetDefaults fills zero valued constants.
func (o *Options) SetDefaults() {
	if o.BigM == 0 {
		o.BigM = DefaultBigM
	}
	if o.Horizon == 0 {
		o.Horizon = DefaultBigM
	}
	if o.WaitUpperBound == 0 {
		o.WaitUpperBound = DefaultBigM
	}
}

// Validate checks that every constant is positive.
func (o Options) Validate() error {
	if !(o.BigM > 0) {
		return fmt.Errorf("%w: big_m must be positive, got %v", ErrInvalidOptions, o.BigM)
	}
	if !(o.Horizon > 0) {
		return fmt.Errorf("%w: horizon must be positive, got %v", ErrInvalidOptions, o.Horizon)
	}
	if !(o.WaitUpperBound > 0) {
		return fmt.Errorf("%w: wait_upper_bound must be positive, got %v", ErrInvalidOptions, o.WaitUpperBound)
	}
	return nil
}
