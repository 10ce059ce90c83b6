package lunarlander

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

func newTestDiscrete(t testing.TB, seed uint64, opts ...Option) *Discrete {
	t.Helper()
	env, err := NewDiscrete(seed, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	return env
}

func newTestContinuous(t testing.TB, seed uint64,
	opts ...Option) *Continuous {
	t.Helper()
	env, err := NewContinuous(seed, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestStepBeforeReset(t *testing.T) {
	env, err := NewDiscrete(1)
	if err != nil {
		t.Fatal(err)
	}

	noop := mat.NewVecDense(1, []float64{0})
	if _, _, err := env.Step(noop); !errors.Is(err, ErrNotReset) {
		t.Errorf("step before reset: want ErrNotReset have %v", err)
	}
	if _, err := env.State(); !errors.Is(err, ErrNotReset) {
		t.Errorf("state before reset: want ErrNotReset have %v", err)
	}

	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.Step(noop); err != nil {
		t.Errorf("step after reset: %v", err)
	}

	env.Close()
	if _, _, err := env.Step(noop); !errors.Is(err, ErrNotReset) {
		t.Errorf("step after close: want ErrNotReset have %v", err)
	}
}

func TestResetTimeStep(t *testing.T) {
	env, err := NewContinuous(3)
	if err != nil {
		t.Fatal(err)
	}

	step, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() || step.Number != 0 || step.Reward != 0 {
		t.Errorf("reset: want first step 0 with no reward have %v", step)
	}
	if step.Observation.Len() != StateObservations {
		t.Errorf("observation length: want(%v) have(%v)", StateObservations,
			step.Observation.Len())
	}

	// Reset takes one step with all engines off
	if draws := env.engines.Draws(); draws != 2 {
		t.Errorf("dispersion draws after reset: want(2) have(%v)", draws)
	}

	first := env.EpisodeID()
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	if env.EpisodeID() == first {
		t.Error("episode IDs should differ between episodes")
	}
}

func TestInvalidActionLeavesStateUnchanged(t *testing.T) {
	env := newTestDiscrete(t, 7)
	cont := newTestContinuous(t, 7)

	tests := []struct {
		name string
		env  environment.Environment
		a    mat.Vector
	}{
		{"above range", env, mat.NewVecDense(1, []float64{4})},
		{"below range", env, mat.NewVecDense(1, []float64{-1})},
		{"fractional", env, mat.NewVecDense(1, []float64{1.5})},
		{"too long", env, mat.NewVecDense(2, []float64{1, 2})},
		{"nan", env, mat.NewVecDense(1, []float64{math.NaN()})},
		{"continuous too long", cont, mat.NewVecDense(3, nil)},
		{"continuous too short", cont, mat.NewVecDense(1, []float64{1})},
		{"continuous nan", cont, mat.NewVecDense(2,
			[]float64{math.NaN(), 0})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := lander(test.env)
			before, err := l.State()
			if err != nil {
				t.Fatal(err)
			}
			wind, torque := l.WindIndices()
			draws := l.engines.Draws()
			number := l.CurrentTimeStep().Number

			_, _, err = test.env.Step(test.a)
			var actionErr *InvalidActionError
			if !errors.As(err, &actionErr) {
				t.Fatalf("want InvalidActionError have %v", err)
			}

			after, err := l.State()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("state changed (-before +after):\n%v", diff)
			}
			if w, tq := l.WindIndices(); w != wind || tq != torque {
				t.Errorf("wind indices changed: (%v, %v) -> (%v, %v)", wind,
					torque, w, tq)
			}
			if l.engines.Draws() != draws {
				t.Errorf("dispersion drawn on invalid action")
			}
			if l.CurrentTimeStep().Number != number {
				t.Errorf("current timestep changed on invalid action")
			}
		})
	}
}

func TestObservations(t *testing.T) {
	env := newTestDiscrete(t, 11)
	rng := rand.New(rand.NewSource(11))

	episodes := 0
	for i := 0; i < 2000; i++ {
		a := mat.NewVecDense(1, []float64{float64(rng.Intn(4))})
		step, done, err := env.Step(a)
		if err != nil {
			t.Fatal(err)
		}

		if step.Observation.Len() != StateObservations {
			t.Fatalf("observation length: want(%v) have(%v)",
				StateObservations, step.Observation.Len())
		}
		for j := 6; j < StateObservations; j++ {
			if leg := step.Observation.AtVec(j); leg != 0 && leg != 1 {
				t.Errorf("leg contact should be 0 or 1 but got %v", leg)
			}
		}
		if _, ok := step.Info[FitnessKey]; !ok {
			t.Errorf("step %v: info missing %q", step.Number, FitnessKey)
		}

		if done != step.Last() || done != step.Terminated() {
			t.Fatalf("step %v: done(%v) last(%v) terminated(%v)",
				step.Number, done, step.Last(), step.Terminated())
		}
		if done {
			episodes++
			if _, err := env.Reset(); err != nil {
				t.Fatal(err)
			}
		}
	}

	if episodes == 0 {
		t.Error("no episode terminated under random actions")
	}
}

func TestDispersionDraws(t *testing.T) {
	env := newTestContinuous(t, 5)
	noop := mat.NewVecDense(2, []float64{0, 0})

	before := env.engines.Draws()
	for i := 0; i < 1000; i++ {
		if _, _, err := env.Step(noop); err != nil {
			t.Fatal(err)
		}
	}

	if got := env.engines.Draws() - before; got != 2000 {
		t.Errorf("dispersion draws: want(2000) have(%v)", got)
	}
}

func TestWindFollowsLegContact(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableWind = true
	env := newTestContinuous(t, 13, WithConfig(cfg))

	advanced, frozen := 0, 0
	for i := 0; i < 1000; i++ {
		left, right := env.GroundContact()
		wind, torque := env.WindIndices()

		obs, err := ObservationFromVec(env.CurrentTimeStep().Observation)
		if err != nil {
			t.Fatal(err)
		}
		_, done, err := env.Step(Heuristic(obs, true))
		if err != nil {
			t.Fatal(err)
		}

		w, tq := env.WindIndices()
		if left || right {
			frozen++
			if w != wind || tq != torque {
				t.Fatalf("wind advanced with a leg in contact")
			}
		} else {
			advanced++
			if w != wind+1 || tq != torque+1 {
				t.Fatalf("wind indices: want(%v, %v) have(%v, %v)", wind+1,
					torque+1, w, tq)
			}
		}

		if done {
			if _, err := env.Reset(); err != nil {
				t.Fatal(err)
			}
		}
	}

	if advanced == 0 {
		t.Error("wind never advanced")
	}
}

func TestDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableWind = true

	run := func() ([][]float64, []float64) {
		env := newTestDiscrete(t, 42, WithConfig(cfg))
		var obs [][]float64
		var rewards []float64
		for i := 0; i < 300; i++ {
			o, err := ObservationFromVec(env.CurrentTimeStep().Observation)
			if err != nil {
				t.Fatal(err)
			}
			step, done, err := env.Step(Heuristic(o, false))
			if err != nil {
				t.Fatal(err)
			}
			obs = append(obs, mat.Col(nil, 0, step.Observation))
			rewards = append(rewards, step.Reward)
			if done {
				if _, err := env.Reset(); err != nil {
					t.Fatal(err)
				}
			}
		}
		return obs, rewards
	}

	obs1, rewards1 := run()
	obs2, rewards2 := run()
	if diff := cmp.Diff(obs1, obs2); diff != "" {
		t.Errorf("observations differ (-first +second):\n%v", diff)
	}
	if diff := cmp.Diff(rewards1, rewards2); diff != "" {
		t.Errorf("rewards differ (-first +second):\n%v", diff)
	}
}

func TestContinuousPowers(t *testing.T) {
	env := newTestContinuous(t, 2)

	tests := []struct {
		a              []float64
		mPower, sPower float64
	}{
		{[]float64{1, 1}, 1, 1},
		{[]float64{0, 0}, 0, 0},
		{[]float64{-1, -1}, 0, 1},
		{[]float64{5, 0.2}, 1, 0},
	}

	for _, test := range tests {
		if _, _, err := env.Step(mat.NewVecDense(2, test.a)); err != nil {
			t.Fatal(err)
		}
		if env.MPower() != test.mPower || env.SPower() != test.sPower {
			t.Errorf("action %v: want(%v, %v) have(%v, %v)", test.a,
				test.mPower, test.sPower, env.MPower(), env.SPower())
		}
	}
}

type recordingSink struct {
	resets  int
	exhaust []Exhaust
	frames  []int
}

func (r *recordingSink) Reset(Terrain)  { r.resets++ }
func (r *recordingSink) Emit(e Exhaust) { r.exhaust = append(r.exhaust, e) }
func (r *recordingSink) Frame(s Scene) error {
	r.frames = append(r.frames, s.Number)
	return nil
}

func TestSinkDoesNotChangeSimulation(t *testing.T) {
	sink := &recordingSink{}
	headless := newTestContinuous(t, 9)
	rendered := newTestContinuous(t, 9, WithSink(sink))

	main := mat.NewVecDense(2, []float64{1, 0})
	for i := 0; i < 50; i++ {
		s1, _, err := headless.Step(main)
		if err != nil {
			t.Fatal(err)
		}
		s2, _, err := rendered.Step(main)
		if err != nil {
			t.Fatal(err)
		}

		if !mat.Equal(s1.Observation, s2.Observation) || s1.Reward != s2.Reward {
			t.Fatalf("step %v: headless and rendered runs differ", i)
		}
	}

	if sink.resets != 1 {
		t.Errorf("sink resets: want(1) have(%v)", sink.resets)
	}
	// One frame for the step taken on reset
	if len(sink.frames) != 51 {
		t.Errorf("frames: want(51) have(%v)", len(sink.frames))
	}
	if len(sink.exhaust) != 50 {
		t.Errorf("exhaust: want(50) have(%v)", len(sink.exhaust))
	}
	for _, e := range sink.exhaust {
		if e.Engine != MainEngine || e.Mass != MainParticleMass {
			t.Errorf("unexpected exhaust %v", e)
		}
	}
}

func TestRewardContractBreaksReset(t *testing.T) {
	nan := RewardFunc(func(Observation, float64, float64,
		bool) (float64, map[string]float64, error) {
		return math.NaN(), nil, nil
	})

	env, err := NewDiscrete(1, WithReward(nan))
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.Reset()
	var contractErr *StrategyContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("want StrategyContractError have %v", err)
	}

	_, _, err = env.Step(mat.NewVecDense(1, []float64{0}))
	if !errors.Is(err, ErrNotReset) {
		t.Errorf("step after failed reset: want ErrNotReset have %v", err)
	}
}

func TestInvalidConstruction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 1
	if _, err := NewContinuous(1, WithConfig(cfg)); err == nil {
		t.Error("want error for positive gravity")
	}

	if _, err := NewContinuous(1, WithReward(nil)); err == nil {
		t.Error("want error for nil reward")
	}

	outside := environment.NewUniformStarter([]r1.Interval{
		{Min: 0, Max: 0},
		{Min: InitialY, Max: InitialY},
	}, 1)
	env, err := NewContinuous(1, WithStarter(outside))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err == nil {
		t.Error("want error for starting position outside the viewport")
	}
}

func TestTerminalStep(t *testing.T) {
	var crashes, rests int

	// Even seeds fly with the heuristic controller, odd seeds free fall
	for seed := uint64(1); seed <= 20; seed++ {
		env := newTestDiscrete(t, seed)
		a := mat.NewVecDense(1, []float64{float64(Noop)})

		for i := 0; i < 3000; i++ {
			if seed%2 == 0 {
				obs, err := ObservationFromVec(env.CurrentTimeStep().Observation)
				if err != nil {
					t.Fatal(err)
				}
				a = Heuristic(obs, false)
			}

			step, done, err := env.Step(a)
			if err != nil {
				t.Fatal(err)
			}
			if !done {
				if CauseOf(step) != NotTerminated {
					t.Errorf("seed %v: cause of mid-episode step: want(%v) "+
						"have(%v)", seed, NotTerminated, CauseOf(step))
				}
				continue
			}

			if !step.Last() || step.EndType() != timestep.Terminated {
				t.Errorf("seed %v: want last and terminated have %v", seed,
					step)
			}

			cause := CauseOf(step)
			fitness := step.Info[FitnessKey]
			switch {
			case env.IsGameOver():
				crashes++
				if cause != Crashed {
					t.Errorf("seed %v: cause: want(%v) have(%v)", seed,
						Crashed, cause)
				}
				if step.Reward != -100 || fitness != -100 {
					t.Errorf("seed %v: crash: want(-100, -100) have(%v, %v)",
						seed, step.Reward, fitness)
				}
			case cause == AtRest:
				rests++
				if step.Reward != 100 || fitness != 100 {
					t.Errorf("seed %v: at rest: want(100, 100) have(%v, %v)",
						seed, step.Reward, fitness)
				}
			default:
				if step.Reward != -100 || fitness != -100 {
					t.Errorf("seed %v: %v: want(-100, -100) have(%v, %v)",
						seed, cause, step.Reward, fitness)
				}
			}
			break
		}
	}

	if crashes == 0 {
		t.Error("no episode ended with a crash")
	}
	if rests == 0 {
		t.Error("no episode ended at rest")
	}
}

func TestRewardErrorEndsEpisode(t *testing.T) {
	var calls int
	failing := RewardFunc(func(Observation, float64, float64,
		bool) (float64, map[string]float64, error) {
		calls++
		if calls == 5 {
			return 0, nil, errBroken
		}
		return 0, nil, nil
	})

	cfg := DefaultConfig()
	cfg.EnableWind = true
	env := newTestDiscrete(t, 4, WithConfig(cfg), WithReward(failing))
	noop := mat.NewVecDense(1, []float64{float64(Noop)})

	// The reset took the first call
	for i := 0; i < 3; i++ {
		if _, _, err := env.Step(noop); err != nil {
			t.Fatal(err)
		}
	}

	_, _, err := env.Step(noop)
	var contractErr *StrategyContractError
	if !errors.As(err, &contractErr) || !errors.Is(err, errBroken) {
		t.Fatalf("want StrategyContractError wrapping errBroken have %v",
			err)
	}

	if _, _, err := env.Step(noop); !errors.Is(err, ErrNotReset) {
		t.Errorf("step after failure: want ErrNotReset have %v", err)
	}
	if _, err := env.State(); !errors.Is(err, ErrNotReset) {
		t.Errorf("state after failure: want ErrNotReset have %v", err)
	}

	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	step, _, err := env.Step(noop)
	if err != nil {
		t.Errorf("step after reset: %v", err)
	}
	if step.Number != 1 {
		t.Errorf("step number after reset: want(1) have(%v)", step.Number)
	}
}

// lander returns the shared dynamics of a lunar lander environment
func lander(env environment.Environment) *lunarLander {
	switch e := env.(type) {
	case *Discrete:
		return e.lunarLander
	case *Continuous:
		return e.lunarLander
	}
	panic("lander: not a lunar lander environment")
}

func BenchmarkStep(b *testing.B) {
	env := newTestContinuous(b, 1)
	noop := mat.NewVecDense(2, []float64{0, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, done, err := env.Step(noop); err != nil {
			b.Fatal(err)
		} else if done {
			if _, err := env.Reset(); err != nil {
				b.Fatal(err)
			}
		}
	}
}
