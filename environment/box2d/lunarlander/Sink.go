package lunarlander

import "github.com/ByteArena/box2d"

// Exhaust is a puff of exhaust emitted when an engine fires. Impulse
// points away from the lander, opposite to the impulse the lander
// receives.
type Exhaust struct {
	Engine  Engine
	Point   box2d.B2Vec2
	Impulse box2d.B2Vec2
	Power   float64
	Mass    float64
}

// Scene is the drawable state of an environment after a step.
// Polygons are in Box2D world units.
type Scene struct {
	Number     int
	Terrain    Terrain
	Lander     [][][2]float64
	Legs       [][][2]float64
	LegContact [2]bool
}

// ParticleSink consumes the visual side effects of an environment.
// A ParticleSink never influences the simulation: the environment
// produces the same TimeSteps whatever sink is attached.
type ParticleSink interface {
	// Reset is called when a new episode begins
	Reset(t Terrain)

	// Emit is called for each engine firing
	Emit(e Exhaust)

	// Frame is called at the end of each step
	Frame(s Scene) error
}

// NopSink is a ParticleSink that discards everything, it is used when
// running headless
type NopSink struct{}

func (NopSink) Reset(Terrain)     {}
func (NopSink) Emit(Exhaust)      {}
func (NopSink) Frame(Scene) error { return nil }
