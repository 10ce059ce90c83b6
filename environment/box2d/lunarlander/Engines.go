package lunarlander

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/golander/utils/floatutils"
)

// Engine identifies one of the lander's engines
type Engine int

const (
	MainEngine Engine = iota
	SideEngine
)

func (e Engine) String() string {
	if e == MainEngine {
		return "main"
	}
	return "side"
}

// Throttle is an engine command decoded from an action. MPower is 0
// when the main engine is off and otherwise lies in [0.5, 1]. SPower
// is the same for the side engines, with Direction -1 firing the left
// engine and +1 firing the right engine.
type Throttle struct {
	MPower    float64
	SPower    float64
	Direction float64
}

// ContinuousThrottle decodes a continuous action. The main engine
// fires for main > 0, throttled from 50% to 100% over (0, 1]. A side
// engine fires for |lateral| > 0.5, throttled from 50% to 100% over
// (0.5, 1]. Both coordinates are clipped to [-1, 1] first.
func ContinuousThrottle(main, lateral float64) Throttle {
	main = floatutils.Clip(main, MinContinuousAction, MaxContinuousAction)
	lateral = floatutils.Clip(lateral, MinContinuousAction,
		MaxContinuousAction)

	var t Throttle
	if main > 0.0 {
		t.MPower = (floatutils.Clip(main, 0.0, 1.0) + 1.0) * 0.5
	}
	if math.Abs(lateral) > 0.5 {
		t.Direction = floatutils.Sign(lateral)
		t.SPower = floatutils.Clip(math.Abs(lateral), 0.5, 1.0)
	}
	return t
}

// DiscreteThrottle decodes a discrete action, firing engines at full
// power. The action must be valid.
func DiscreteThrottle(a DiscreteAction) Throttle {
	switch a {
	case Main:
		return Throttle{MPower: 1.0}
	case Left, Right:
		return Throttle{SPower: 1.0, Direction: float64(a) - 2}
	}
	return Throttle{}
}

// Impulse is a linear impulse applied to the lander by one engine
type Impulse struct {
	Engine  Engine
	Impulse box2d.B2Vec2 // Applied to the lander
	Point   box2d.B2Vec2 // World point of application
	Power   float64
}

// Exhaust returns the exhaust emitted by the engine firing, which is
// pushed in the direction opposite to the lander
func (i Impulse) Exhaust() Exhaust {
	mass := MainParticleMass
	if i.Engine == SideEngine {
		mass = SideParticleMass
	}
	return Exhaust{
		Engine:  i.Engine,
		Point:   i.Point,
		Impulse: box2d.MakeB2Vec2(-i.Impulse.X, -i.Impulse.Y),
		Power:   i.Power,
		Mass:    mass,
	}
}

// Thrust is the result of firing the engines for one step
type Thrust struct {
	MPower   float64
	SPower   float64
	Impulses []Impulse
}

// Sampler samples a random number
type Sampler interface {
	Rand() float64
}

// Engines converts Throttles into impulses on the lander. Each firing
// is perturbed by dispersion: two random numbers in [-1/Scale, 1/Scale]
// that model imperfect thrust alignment.
//
// Exactly two dispersion values are drawn every time Fire is called,
// whether or not any engine fires, so the random stream consumed by an
// episode does not depend on the actions taken.
type Engines struct {
	dispersion Sampler
	draws      uint64
}

// NewEngines returns new Engines drawing dispersion from src
func NewEngines(src rand.Source) *Engines {
	return newEngines(distuv.Uniform{Min: -1.0, Max: 1.0, Src: src})
}

// newEngines returns new Engines drawing dispersion from s, which must
// sample from [-1, 1]
func newEngines(s Sampler) *Engines {
	return &Engines{dispersion: s}
}

// Draws returns the total number of dispersion values drawn
func (e *Engines) Draws() uint64 {
	return e.draws
}

// Fire computes the impulses of all engines that t fires for a lander
// at position pos with the given angle.
func (e *Engines) Fire(t Throttle, angle float64, pos box2d.B2Vec2) Thrust {
	// Orientation of the lander and its perpendicular
	tip := [2]float64{math.Sin(angle), math.Cos(angle)}
	side := [2]float64{-tip[1], tip[0]}

	var dispersion [2]float64
	for i := range dispersion {
		dispersion[i] = e.dispersion.Rand() / Scale
		e.draws++
	}

	thrust := Thrust{MPower: t.MPower, SPower: t.SPower}

	if t.MPower > 0.0 {
		// MainEngineYLocation moves the engine a bit downwards, the
		// dispersion adds randomness to the direction
		ox := tip[0]*(MainEngineYLocation/Scale+2.0*dispersion[0]) +
			side[0]*dispersion[1]
		oy := -tip[1]*(MainEngineYLocation/Scale+2.0*dispersion[0]) -
			side[1]*dispersion[1]

		thrust.Impulses = append(thrust.Impulses, Impulse{
			Engine:  MainEngine,
			Point:   box2d.MakeB2Vec2(pos.X+ox, pos.Y+oy),
			Impulse: box2d.MakeB2Vec2(-ox*MainEnginePower*t.MPower, -oy*MainEnginePower*t.MPower),
			Power:   t.MPower,
		})
	}

	if t.SPower > 0.0 {
		ox := tip[0]*dispersion[0] + side[0]*(3.0*dispersion[1]+
			t.Direction*SideEngineAway/Scale)
		oy := -tip[1]*dispersion[0] - side[1]*(3.0*dispersion[1]+
			t.Direction*SideEngineAway/Scale)

		// The x offset uses 17 while the y offset uses SideEngineHeight
		// (14), which adds an orientation dependent torque
		point := box2d.MakeB2Vec2(
			pos.X+ox-tip[0]*17.0/Scale,
			pos.Y+oy+tip[1]*SideEngineHeight/Scale,
		)

		thrust.Impulses = append(thrust.Impulses, Impulse{
			Engine:  SideEngine,
			Point:   point,
			Impulse: box2d.MakeB2Vec2(-ox*SideEnginePower*t.SPower, -oy*SideEnginePower*t.SPower),
			Power:   t.SPower,
		})
	}

	return thrust
}
