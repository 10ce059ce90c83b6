package lunarlander

import (
	"math"

	"golang.org/x/exp/rand"
)

// Magnitude returns the disturbance magnitude at index i:
//
//	tanh(sin(2ki) + sin(πki)) * power,	k = 0.01
//
// The two sinusoids have incommensurate frequencies, so the sequence
// Magnitude(0), Magnitude(1), ... never repeats, and it is bounded in
// (-power, power).
func Magnitude(i int, power float64) float64 {
	x := float64(i)
	return math.Tanh(math.Sin(0.02*x)+math.Sin(math.Pi*0.01*x)) * power
}

// Wind generates the wind force and turbulence torque applied to the
// lander on each step. Wind and turbulence each have their own index
// into Magnitude. Both indices advance by one on every step where the
// wind blows, which is every step while wind is enabled and neither
// leg touches the ground.
type Wind struct {
	enabled         bool
	windPower       float64
	turbulencePower float64

	windIdx   int
	torqueIdx int
}

// NewWind returns a new Wind. If enabled is false, Next never produces
// a disturbance.
func NewWind(enabled bool, windPower, turbulencePower float64) *Wind {
	return &Wind{
		enabled:         enabled,
		windPower:       windPower,
		turbulencePower: turbulencePower,
	}
}

// Reset starts both indices at independent random offsets in
// [-9999, 9999), drawn from rng. A disabled Wind does not draw from
// rng.
func (w *Wind) Reset(rng *rand.Rand) {
	w.windIdx, w.torqueIdx = 0, 0
	if !w.enabled {
		return
	}
	w.windIdx = rng.Intn(2*9999) - 9999
	w.torqueIdx = rng.Intn(2*9999) - 9999
}

// Next returns the wind force along the world x axis and the
// turbulence torque for the current step and advances both indices.
// If the wind does not blow on this step, ok is false and the indices
// are left unchanged.
func (w *Wind) Next(legContact [2]bool) (force, torque float64, ok bool) {
	if !w.enabled || legContact[0] || legContact[1] {
		return 0, 0, false
	}

	force = Magnitude(w.windIdx, w.windPower)
	w.windIdx++

	torque = Magnitude(w.torqueIdx, w.turbulencePower)
	w.torqueIdx++

	return force, torque, true
}

// Indices returns the current wind and torque indices
func (w *Wind) Indices() (wind, torque int) {
	return w.windIdx, w.torqueIdx
}

// Enabled returns whether the wind is enabled
func (w *Wind) Enabled() bool {
	return w.enabled
}
