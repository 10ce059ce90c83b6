package lunarlander

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Observation is a state observation of the lander. Features are in
// the following order:
//
//  0. x position relative to the centre of the viewport, in units of
//     half the viewport width
//  1. y position of the bottom of the legs relative to the helipad, in
//     units of half the viewport height
//  2. x velocity
//  3. y velocity
//  4. angle in radians, not normalized
//  5. angular velocity
//  6. 1 if the left leg touches the ground, else 0
//  7. 1 if the right leg touches the ground, else 0
//
// Features 0-5 are unbounded but lie near [-1, 1] in nominal flight.
type Observation [StateObservations]float64

// Encode computes the Observation of state s over terrain t
func Encode(s State, t Terrain) Observation {
	W := worldWidth()
	H := worldHeight()

	var leg0, leg1 float64
	if s.LegContact[0] {
		leg0 = 1.0
	}
	if s.LegContact[1] {
		leg1 = 1.0
	}

	return Observation{
		(s.Position.X - W/2) / (W / 2),
		(s.Position.Y - (t.HelipadY + LegDown/Scale)) / (H / 2),
		s.Velocity.X * (W / 2) / FPS,
		s.Velocity.Y * (H / 2) / FPS,
		s.Angle,
		20.0 * s.AngularVelocity / FPS,
		leg0,
		leg1,
	}
}

// Vec returns the Observation as a new vector
func (o Observation) Vec() *mat.VecDense {
	data := make([]float64, StateObservations)
	copy(data, o[:])
	return mat.NewVecDense(StateObservations, data)
}

// ObservationFromVec converts a vector back into an Observation
func ObservationFromVec(v mat.Vector) (Observation, error) {
	var o Observation
	if v.Len() != StateObservations {
		return o, fmt.Errorf("observationFromVec: expected %v features "+
			"but got %v", StateObservations, v.Len())
	}
	for i := range o {
		o[i] = v.AtVec(i)
	}
	return o, nil
}

// LegsDown returns whether both legs touch the ground
func (o Observation) LegsDown() bool {
	return o[6] == 1.0 && o[7] == 1.0
}
