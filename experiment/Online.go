package experiment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	"github.com/samuelfneumann/golander/experiment/trackers"
	ts "github.com/samuelfneumann/golander/timestep"
)

// Online is an Experiment that runs a policy online in an environment
// for a fixed number of steps
type Online struct {
	env          environment.Environment
	policy       Policy
	maxSteps     uint
	currentSteps uint
	episodes     int
	trackers     []trackers.Tracker
	logger       *zap.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given policy. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter is a
// slice of trackers.Tracker which determine what data is saved. The
// logger may be nil.
func NewOnline(e environment.Environment, p Policy, steps uint,
	logger *zap.Logger, t ...trackers.Tracker) *Online {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Online{
		env:      e,
		policy:   p,
		maxSteps: steps,
		trackers: t,
		logger:   logger,
	}
}

// Register registers a Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment and returns
// whether the step limit of the experiment has been reached
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.env.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)

	var ret, fitness float64
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action, err := o.policy.SelectAction(step)
		if err != nil {
			return false, fmt.Errorf("runEpisode: could not select "+
				"action: %w", err)
		}

		step, _, err = o.env.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		o.track(step)

		ret += step.Reward
		fitness += step.Info[lunarlander.FitnessKey]
	}

	if step.Last() {
		o.episodes++
		o.logger.Info("episode finished",
			zap.Int("episode", o.episodes),
			zap.Int("steps", step.Number),
			zap.Float64("return", ret),
			zap.Float64("fitness", fitness),
			zap.Stringer("end", step.EndType()),
		)
	}

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if ended {
			break
		}
	}

	o.logger.Info("experiment finished",
		zap.Uint("steps", o.currentSteps),
		zap.Int("episodes", o.episodes),
	)
	return nil
}

// Episodes returns the number of episodes finished so far
func (o *Online) Episodes() int {
	return o.episodes
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, tracker := range o.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}
