package lunarlander

import "math"

const (
	FPS float64 = 50

	// Speed of the game, forces are adjusted by Scale as well
	Scale float64 = 30.0

	MainEnginePower float64 = 13.0
	SideEnginePower float64 = 0.6

	// Bound on the random force applied to the lander at reset
	InitialRandom float64 = 1000.0

	LegAway         float64 = 20.0
	LegDown         float64 = 18.0
	LegW            float64 = 2.0
	LegH            float64 = 8.0
	LegSpringTorque float64 = 40.0

	SideEngineHeight    float64 = 14.0
	SideEngineAway      float64 = 12.0
	MainEngineYLocation float64 = 4.0

	// Particle masses for exhaust of the main and side engines, these
	// only make the particle speed look adequate
	MainParticleMass float64 = 3.5
	SideParticleMass float64 = 0.7

	Chunks int = 11

	ViewportW float64 = 600
	ViewportH float64 = 400

	// Box2D solver iterations used for each step of the world. These
	// are high so that the simulation stays stable under the large
	// impulses of the engines.
	VelocityIterations int = 6 * 30
	PositionIterations int = 2 * 30

	// Actions
	MaxContinuousAction float64 = 1.0
	MinContinuousAction float64 = -MaxContinuousAction
	MinDiscreteAction   int     = 0
	MaxDiscreteAction   int     = 3

	// State observations
	StateObservations int = 8

	// Default physical parameters
	DefaultGravity         float64 = -10.0
	DefaultWindPower       float64 = 15.0
	DefaultTurbulencePower float64 = 1.5

	// Default starting position of the lander in Box2D units
	InitialX float64 = ViewportW / Scale / 2
	InitialY float64 = ViewportH / Scale

	// Box2D body types
	staticBody  = 0
	dynamicBody = 2
)

// Collision filtering. The lander, its legs, and exhaust particles
// only collide with the ground.
const (
	groundCategory   uint16 = 0x0001
	landerCategory   uint16 = 0x0010
	legCategory      uint16 = 0x0020
	particleCategory uint16 = 0x0100
)

var (
	// LanderPoly is the hull of the lander in pixels, relative to the
	// centre of the lander body
	LanderPoly = [][2]float64{
		{-14, 17},
		{-17, 0},
		{-17, -10},
		{17, -10},
		{17, 0},
		{14, 17},
	}

	// Observation bounds. These are not hard limits, features lie
	// near [-1, 1] in nominal flight.
	obsLow = []float64{
		-2.5, -2.5, -10.0, -10.0, -2 * math.Pi, -10.0, 0.0, 0.0,
	}
	obsHigh = []float64{
		2.5, 2.5, 10.0, 10.0, 2 * math.Pi, 10.0, 1.0, 1.0,
	}
)

// worldWidth and worldHeight return the size of the viewport in Box2D
// units
func worldWidth() float64  { return ViewportW / Scale }
func worldHeight() float64 { return ViewportH / Scale }
