package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

// TimeLimit wraps an environment and truncates episodes which run for
// more than a fixed number of steps. An episode that reaches the limit
// ends with EndType timestep.Truncated. Episodes that the wrapped
// environment terminates on or before the limit keep their
// timestep.Terminated EndType.
//
// TimeLimit itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type TimeLimit struct {
	environment.Environment
	episodeSteps int
	current      timestep.TimeStep
}

// NewTimeLimit returns a new TimeLimit which truncates episodes after
// episodeSteps steps
func NewTimeLimit(env environment.Environment,
	episodeSteps int) (*TimeLimit, error) {
	if episodeSteps <= 0 {
		return nil, fmt.Errorf("newTimeLimit: episode steps must be "+
			"positive but got %v", episodeSteps)
	}
	return &TimeLimit{Environment: env, episodeSteps: episodeSteps}, nil
}

// Reset resets the wrapped environment
func (t *TimeLimit) Reset() (timestep.TimeStep, error) {
	step, err := t.Environment.Reset()
	if err != nil {
		return step, err
	}
	t.current = step
	return step, nil
}

// Step takes one environmental step given action a and returns the
// next TimeStep and whether the episode ended
func (t *TimeLimit) Step(a mat.Vector) (timestep.TimeStep, bool, error) {
	step, done, err := t.Environment.Step(a)
	if err != nil {
		return step, done, err
	}

	if !done && step.Number >= t.episodeSteps {
		step.SetEnd(timestep.Truncated)
		done = true
	}

	t.current = step
	return step, done, nil
}

// CurrentTimeStep returns the last TimeStep generated, which reports
// truncation
func (t *TimeLimit) CurrentTimeStep() timestep.TimeStep {
	return t.current
}

// EpisodeSteps returns the maximum number of steps in an episode
func (t *TimeLimit) EpisodeSteps() int {
	return t.episodeSteps
}
