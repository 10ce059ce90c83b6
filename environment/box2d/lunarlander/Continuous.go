package lunarlander

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

// Continuous implements the lunar lander environment with continuous
// actions.
//
// Actions are 2-dimensional. The first coordinate is the throttle of
// the main engine: the sub-interval [-1, 0] keeps the main engine off
// and (0, 1] throttles it from 50% to 100% power. The second
// coordinate controls the side engines: [-1, -0.5) fires the left
// engine from 100% to 50% power, [-0.5, 0.5] keeps both side engines
// off, and (0.5, 1] fires the right engine from 50% to 100% power.
// Actions outside of [-1, 1] are clipped.
//
// Continuous implements the environment.Environment interface.
type Continuous struct {
	*lunarLander
}

// NewContinuous returns a new lunar lander environment with continuous
// actions. The environment must be Reset before it is stepped.
func NewContinuous(seed uint64, opts ...Option) (*Continuous, error) {
	l, err := newLunarLander(seed, opts...)
	if err != nil {
		return nil, err
	}
	return &Continuous{l}, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, []float64{MinContinuousAction,
		MinContinuousAction})
	upperBound := mat.NewVecDense(2, []float64{MaxContinuousAction,
		MaxContinuousAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}

// Step takes one environmental step given action a and returns the
// next TimeStep and whether the episode ended. Invalid actions are
// rejected with an *InvalidActionError before the simulation changes.
func (c *Continuous) Step(a mat.Vector) (timestep.TimeStep, bool, error) {
	if !c.ready {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w", ErrNotReset)
	}

	if a.Len() != 2 {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w",
			&InvalidActionError{actionData(a), "expected 2 dimensions"})
	}
	if math.IsNaN(a.AtVec(0)) || math.IsNaN(a.AtVec(1)) {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w",
			&InvalidActionError{actionData(a), "action is NaN"})
	}

	return c.step(ContinuousThrottle(a.AtVec(0), a.AtVec(1)))
}
