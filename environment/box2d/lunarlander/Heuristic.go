package lunarlander

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/utils/floatutils"
)

// Heuristic returns the action of a hand-designed controller for
// observation obs. The controller steers towards the helipad while
// holding the lander level and hovers down at a height proportional to
// its horizontal distance from the helipad. If continuous is true, the
// action is a 2-dimensional continuous action, otherwise it is a
// 1-dimensional discrete action.
func Heuristic(obs Observation, continuous bool) *mat.VecDense {
	// Angle should point towards the centre
	angleTarget := floatutils.Clip(obs[0]*0.5+obs[2]*1.0, -0.4, 0.4)
	hoverTarget := 0.55 * math.Abs(obs[0])

	angleTodo := (angleTarget-obs[4])*0.5 - obs[5]*1.0
	hoverTodo := (hoverTarget-obs[1])*0.5 - obs[3]*0.5

	// Once touching down, only cut vertical speed
	if obs[6] == 1.0 || obs[7] == 1.0 {
		angleTodo = 0
		hoverTodo = -obs[3] * 0.5
	}

	if continuous {
		return mat.NewVecDense(2, []float64{
			floatutils.Clip(hoverTodo*20-1, -1, 1),
			floatutils.Clip(-angleTodo*20, -1, 1),
		})
	}

	a := Noop
	switch {
	case hoverTodo > math.Abs(angleTodo) && hoverTodo > 0.05:
		a = Main
	case angleTodo < -0.05:
		a = Right
	case angleTodo > 0.05:
		a = Left
	}
	return mat.NewVecDense(1, []float64{float64(a)})
}
