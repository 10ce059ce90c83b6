package lunarlander

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

// DiscreteAction is an action of the Discrete environment
type DiscreteAction int

const (
	Noop  DiscreteAction = iota // Do nothing
	Left                        // Fire left engine
	Main                        // Fire main engine
	Right                       // Fire right engine
)

func (d DiscreteAction) String() string {
	switch d {
	case Noop:
		return "noop"
	case Left:
		return "left"
	case Main:
		return "main"
	case Right:
		return "right"
	}
	return fmt.Sprintf("DiscreteAction(%d)", int(d))
}

// Discrete implements the lunar lander environment with discrete
// actions. Actions are 1-dimensional vectors holding one of:
//
//	Action	Meaning
//	  0		Do nothing
//	  1		Fire left engine
//	  2		Fire main engine
//	  3		Fire right engine
//
// Engines always fire at full power.
//
// Discrete implements the environment.Environment interface.
type Discrete struct {
	*lunarLander
	actionSpec environment.Spec
}

// NewDiscrete returns a new lunar lander environment with discrete
// actions. The environment must be Reset before it is stepped.
func NewDiscrete(seed uint64, opts ...Option) (*Discrete, error) {
	l, err := newLunarLander(seed, opts...)
	if err != nil {
		return nil, err
	}
	return &Discrete{l, discreteActionSpec()}, nil
}

func discreteActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() environment.Spec {
	return d.actionSpec
}

// Step takes one environmental step given action a and returns the
// next TimeStep and whether the episode ended. Actions outside of the
// action space are rejected with an *InvalidActionError before the
// simulation changes.
func (d *Discrete) Step(a mat.Vector) (timestep.TimeStep, bool, error) {
	if !d.ready {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w", ErrNotReset)
	}

	if !d.actionSpec.Contains(a) {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w",
			&InvalidActionError{actionData(a),
				"expected action ϵ {0, 1, 2, 3}"})
	}

	return d.step(DiscreteThrottle(DiscreteAction(a.AtVec(0))))
}
