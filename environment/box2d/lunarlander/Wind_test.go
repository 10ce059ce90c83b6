package lunarlander

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestMagnitude(t *testing.T) {
	const power = 15.0
	for i := -10000; i <= 10000; i++ {
		x := float64(i)
		want := math.Tanh(math.Sin(0.02*x)+math.Sin(math.Pi*0.01*x)) * power
		got := Magnitude(i, power)
		if got != want {
			t.Fatalf("magnitude(%v): want(%v) have(%v)", i, want, got)
		}
		if math.Abs(got) >= power {
			t.Fatalf("magnitude(%v) = %v is not bounded by %v", i, got, power)
		}
	}
}

func TestWindAdvancesInLockStep(t *testing.T) {
	w := NewWind(true, DefaultWindPower, DefaultTurbulencePower)
	w.Reset(rand.New(rand.NewSource(1)))
	wind0, torque0 := w.Indices()

	const n = 50
	for i := 0; i < n; i++ {
		wantForce := Magnitude(wind0+i, DefaultWindPower)
		wantTorque := Magnitude(torque0+i, DefaultTurbulencePower)

		force, torque, ok := w.Next([2]bool{false, false})
		if !ok {
			t.Fatalf("step %v: wind should blow without ground contact", i)
		}
		if force != wantForce || torque != wantTorque {
			t.Errorf("step %v: want(%v, %v) have(%v, %v)", i, wantForce,
				wantTorque, force, torque)
		}
	}

	wind, torque := w.Indices()
	if wind != wind0+n || torque != torque0+n {
		t.Errorf("indices: want(%v, %v) have(%v, %v)", wind0+n, torque0+n,
			wind, torque)
	}
}

func TestWindFreezesOnContact(t *testing.T) {
	w := NewWind(true, DefaultWindPower, DefaultTurbulencePower)
	w.Reset(rand.New(rand.NewSource(2)))
	wind0, torque0 := w.Indices()

	for _, contact := range [][2]bool{{true, false}, {false, true}, {true, true}} {
		if _, _, ok := w.Next(contact); ok {
			t.Errorf("contact %v: wind should not blow", contact)
		}
	}

	wind, torque := w.Indices()
	if wind != wind0 || torque != torque0 {
		t.Errorf("indices changed with ground contact: (%v, %v) -> (%v, %v)",
			wind0, torque0, wind, torque)
	}
}

func TestWindDisabled(t *testing.T) {
	src := rand.NewSource(3)
	rng := rand.New(src)
	w := NewWind(false, DefaultWindPower, DefaultTurbulencePower)
	w.Reset(rng)

	// A disabled wind must not consume randomness
	want := rand.New(rand.NewSource(3)).Uint64()
	if got := rng.Uint64(); got != want {
		t.Errorf("disabled wind consumed random numbers on reset")
	}

	for i := 0; i < 10; i++ {
		if _, _, ok := w.Next([2]bool{}); ok {
			t.Fatalf("disabled wind should never blow")
		}
	}
	if wind, torque := w.Indices(); wind != 0 || torque != 0 {
		t.Errorf("indices: want(0, 0) have(%v, %v)", wind, torque)
	}
}

func TestWindResetRange(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	w := NewWind(true, DefaultWindPower, DefaultTurbulencePower)
	for i := 0; i < 1000; i++ {
		w.Reset(rng)
		wind, torque := w.Indices()
		if wind < -9999 || wind >= 9999 || torque < -9999 || torque >= 9999 {
			t.Fatalf("indices out of range: (%v, %v)", wind, torque)
		}
	}
}
