package lunarlander

import "math"

// Cause is the reason an episode terminated
type Cause int

const (
	NotTerminated Cause = iota
	Crashed             // The hull touched the ground
	OutOfBounds         // The lander left the viewport horizontally
	AtRest              // Box2D put the lander to sleep
)

func (c Cause) String() string {
	switch c {
	case Crashed:
		return "crashed"
	case OutOfBounds:
		return "out of bounds"
	case AtRest:
		return "at rest"
	}
	return "not terminated"
}

// Terminated returns whether an episode ends at observation obs. The
// episode ends if the game is over, if |x| >= 1 so that the lander has
// drifted out of the viewport, or if the lander is no longer awake.
// Time limits are not considered here.
func Terminated(gameOver bool, obs Observation, awake bool) (bool, Cause) {
	switch {
	case gameOver:
		return true, Crashed
	case math.Abs(obs[0]) >= 1.0:
		return true, OutOfBounds
	case !awake:
		return true, AtRest
	}
	return false, NotTerminated
}
