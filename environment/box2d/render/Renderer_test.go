package render_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/google/go-cmp/cmp"

	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	"github.com/samuelfneumann/golander/environment/box2d/render"
)

func rollout(t *testing.T, sink lunarlander.ParticleSink,
	steps int) ([][]float64, []float64) {
	t.Helper()

	opts := []lunarlander.Option{}
	if sink != nil {
		opts = append(opts, lunarlander.WithSink(sink))
	}
	env, err := lunarlander.NewContinuous(17, opts...)
	if err != nil {
		t.Fatal(err)
	}
	step, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}

	var obs [][]float64
	var rewards []float64
	for i := 0; i < steps; i++ {
		o, err := lunarlander.ObservationFromVec(step.Observation)
		if err != nil {
			t.Fatal(err)
		}

		var done bool
		step, done, err = env.Step(lunarlander.Heuristic(o, true))
		if err != nil {
			t.Fatal(err)
		}
		obs = append(obs, mat.Col(nil, 0, step.Observation))
		rewards = append(rewards, step.Reward)

		if done {
			if step, err = env.Reset(); err != nil {
				t.Fatal(err)
			}
		}
	}
	return obs, rewards
}

func TestRenderingDoesNotChangeSimulation(t *testing.T) {
	r, err := render.New("", lunarlander.DefaultGravity)
	if err != nil {
		t.Fatal(err)
	}

	headlessObs, headlessRewards := rollout(t, nil, 200)
	renderedObs, renderedRewards := rollout(t, r, 200)

	if diff := cmp.Diff(headlessObs, renderedObs); diff != "" {
		t.Errorf("observations differ (-headless +rendered):\n%v", diff)
	}
	if diff := cmp.Diff(headlessRewards, renderedRewards); diff != "" {
		t.Errorf("rewards differ (-headless +rendered):\n%v", diff)
	}
	if r.Frames() == 0 {
		t.Error("no frames drawn")
	}
}

func TestFramesSaved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := render.New(dir, lunarlander.DefaultGravity)
	if err != nil {
		t.Fatal(err)
	}

	rollout(t, r, 3)

	// One frame for the step taken on reset
	for i := 0; i < 4; i++ {
		file := filepath.Join(dir, fmt.Sprintf("frame%06d.png", i))
		if _, err := os.Stat(file); err != nil {
			t.Errorf("frame %v: %v", i, err)
		}
	}

	bounds := r.Image().Bounds()
	if bounds.Dx() != int(lunarlander.ViewportW) ||
		bounds.Dy() != int(lunarlander.ViewportH) {
		t.Errorf("image size: want(%vx%v) have(%vx%v)", lunarlander.ViewportW,
			lunarlander.ViewportH, bounds.Dx(), bounds.Dy())
	}
}

func TestParticlesDecay(t *testing.T) {
	r, err := render.New("", lunarlander.DefaultGravity)
	if err != nil {
		t.Fatal(err)
	}

	env, err := lunarlander.NewDiscrete(3, lunarlander.WithSink(r))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}

	main := mat.NewVecDense(1, []float64{float64(lunarlander.Main)})
	if _, _, err := env.Step(main); err != nil {
		t.Fatal(err)
	}
	if r.Particles() != 1 {
		t.Fatalf("particles: want(1) have(%v)", r.Particles())
	}

	// A full power particle lives for 1/0.15 frames
	noop := mat.NewVecDense(1, []float64{float64(lunarlander.Noop)})
	for i := 0; i < 7; i++ {
		if _, _, err := env.Step(noop); err != nil {
			t.Fatal(err)
		}
	}
	if r.Particles() != 0 {
		t.Errorf("particles: want(0) have(%v)", r.Particles())
	}
}
