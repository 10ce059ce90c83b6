package lunarlander

import (
	"math"
	"testing"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-12

// constSampler always samples the same value
type constSampler float64

func (c constSampler) Rand() float64 { return float64(c) }

func TestContinuousThrottle(t *testing.T) {
	tests := []struct {
		name   string
		action [2]float64
		want   Throttle
	}{
		{"off", [2]float64{0, 0}, Throttle{}},
		{"full", [2]float64{1, 1}, Throttle{MPower: 1, SPower: 1, Direction: 1}},
		{"clipped", [2]float64{2, -3}, Throttle{MPower: 1, SPower: 1, Direction: -1}},
		{"main negative", [2]float64{-0.5, 0}, Throttle{}},
		{"half main", [2]float64{0.5, 0}, Throttle{MPower: 0.75}},
		{"side dead zone", [2]float64{0, 0.5}, Throttle{}},
		{"left", [2]float64{0, -0.75}, Throttle{SPower: 0.75, Direction: -1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ContinuousThrottle(test.action[0], test.action[1])
			if got != test.want {
				t.Errorf("want(%+v) have(%+v)", test.want, got)
			}
			if got.MPower != 0 && (got.MPower < 0.5 || got.MPower > 1) {
				t.Errorf("illegal main engine power %v", got.MPower)
			}
			if got.SPower != 0 && (got.SPower < 0.5 || got.SPower > 1) {
				t.Errorf("illegal side engine power %v", got.SPower)
			}
		})
	}
}

func TestDiscreteThrottle(t *testing.T) {
	tests := []struct {
		action DiscreteAction
		want   Throttle
	}{
		{Noop, Throttle{}},
		{Left, Throttle{SPower: 1, Direction: -1}},
		{Main, Throttle{MPower: 1}},
		{Right, Throttle{SPower: 1, Direction: 1}},
	}

	for _, test := range tests {
		if got := DiscreteThrottle(test.action); got != test.want {
			t.Errorf("%v: want(%+v) have(%+v)", test.action, test.want, got)
		}
	}
}

func TestFireAlwaysDrawsTwice(t *testing.T) {
	e := newEngines(constSampler(0.5))
	throttles := []Throttle{
		{},
		{MPower: 1},
		{SPower: 1, Direction: -1},
		{MPower: 0.5, SPower: 0.5, Direction: 1},
	}

	for i, throttle := range throttles {
		before := e.Draws()
		thrust := e.Fire(throttle, 0.3, box2d.MakeB2Vec2(10, 10))
		if drawn := e.Draws() - before; drawn != 2 {
			t.Errorf("throttle %+v: want(2) draws have(%v)", throttle, drawn)
		}

		wantImpulses := 0
		if throttle.MPower > 0 {
			wantImpulses++
		}
		if throttle.SPower > 0 {
			wantImpulses++
		}
		if len(thrust.Impulses) != wantImpulses {
			t.Errorf("throttle %v: want(%v) impulses have(%v)", i,
				wantImpulses, len(thrust.Impulses))
		}
	}
}

func TestMainEngineImpulse(t *testing.T) {
	e := newEngines(constSampler(0))
	pos := box2d.MakeB2Vec2(10, 5)
	thrust := e.Fire(Throttle{MPower: 1}, 0, pos)

	if len(thrust.Impulses) != 1 {
		t.Fatalf("want(1) impulse have(%v)", len(thrust.Impulses))
	}
	imp := thrust.Impulses[0]

	// Upright lander: the engine sits below the centre and pushes up
	offset := MainEngineYLocation / Scale
	checkVec(t, "point", imp.Point, 10, 5-offset)
	checkVec(t, "impulse", imp.Impulse, 0, offset*MainEnginePower)

	exhaust := imp.Exhaust()
	checkVec(t, "exhaust", exhaust.Impulse, 0, -offset*MainEnginePower)
	if exhaust.Mass != MainParticleMass || exhaust.Power != 1 {
		t.Errorf("exhaust: want mass %v power 1, have %v, %v",
			MainParticleMass, exhaust.Mass, exhaust.Power)
	}
}

func TestSideEngineOffsetAsymmetry(t *testing.T) {
	e := newEngines(constSampler(0))
	away := SideEngineAway / Scale

	// Upright: the y displacement of the thrust uses SideEngineHeight
	upright := e.Fire(Throttle{SPower: 1, Direction: 1}, 0,
		box2d.MakeB2Vec2(0, 0)).Impulses[0]
	checkVec(t, "upright point", upright.Point, -away,
		SideEngineHeight/Scale)
	checkVec(t, "upright impulse", upright.Impulse, away*SideEnginePower, 0)

	// Rotated by 90 degrees: the x displacement uses 17, not
	// SideEngineHeight
	rotated := e.Fire(Throttle{SPower: 1, Direction: 1}, math.Pi/2,
		box2d.MakeB2Vec2(0, 0)).Impulses[0]
	checkVec(t, "rotated point", rotated.Point, -17.0/Scale, -away)
}

func checkVec(t *testing.T, name string, v box2d.B2Vec2, x, y float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(v.X, x, tol) ||
		!scalar.EqualWithinAbs(v.Y, y, tol) {
		t.Errorf("%v: want(%v, %v) have(%v, %v)", name, x, y, v.X, v.Y)
	}
}
