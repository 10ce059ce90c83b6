package experiment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	ts "github.com/samuelfneumann/golander/timestep"
)

// Policy selects actions in an environment
type Policy interface {
	SelectAction(t ts.TimeStep) (mat.Vector, error)
}

// Heuristic is the hand-designed lunar lander controller
type Heuristic struct {
	continuous bool
}

// NewHeuristic returns a new Heuristic policy selecting continuous or
// discrete actions
func NewHeuristic(continuous bool) Heuristic {
	return Heuristic{continuous}
}

// SelectAction implements the Policy interface
func (h Heuristic) SelectAction(t ts.TimeStep) (mat.Vector, error) {
	obs, err := lunarlander.ObservationFromVec(t.Observation)
	if err != nil {
		return nil, err
	}
	return lunarlander.Heuristic(obs, h.continuous), nil
}

// Random selects actions uniformly at random from an action Spec
type Random struct {
	spec environment.Spec
	dims []distuv.Uniform
}

// NewRandom returns a new Random policy for the action specification
// spec
func NewRandom(spec environment.Spec, seed uint64) *Random {
	src := rand.NewSource(seed)

	dims := make([]distuv.Uniform, spec.Shape.Len())
	for i := range dims {
		min, max := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)

		// Discrete actions are drawn from [min, max+1) and truncated
		if spec.Cardinality == environment.Discrete {
			max++
		}
		dims[i] = distuv.Uniform{Min: min, Max: max, Src: src}
	}
	return &Random{spec, dims}
}

// SelectAction implements the Policy interface
func (r *Random) SelectAction(ts.TimeStep) (mat.Vector, error) {
	action := mat.NewVecDense(len(r.dims), nil)
	for i, dim := range r.dims {
		a := dim.Rand()
		if r.spec.Cardinality == environment.Discrete {
			a = float64(int(a))
		}
		action.SetVec(i, a)
	}
	return action, nil
}
