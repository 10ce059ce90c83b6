// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Environment implements a simulated environment. An Environment must
// be Reset before it can be stepped.
//
// Step returns the next TimeStep and whether the episode ended on that
// TimeStep. Environments are not safe for concurrent use; independent
// Environments may be stepped from different goroutines.
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action mat.Vector) (timestep.TimeStep, bool, error)
	CurrentTimeStep() timestep.TimeStep
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
