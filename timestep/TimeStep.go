// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. A terminated episode reached
// a terminal state of the environment, a truncated episode was cut off
// from outside the environment (e.g. by a time limit).
type EndType int

const (
	NotEnded EndType = iota
	Terminated
	Truncated
)

func (e EndType) String() string {
	switch e {
	case Terminated:
		return "Terminated"
	case Truncated:
		return "Truncated"
	default:
		return "NotEnded"
	}
}

// TimeStep packages together a single timestep in an environment.
//
// Info holds named diagnostics produced when the step was generated,
// for example the individual reward components and fitness score of
// the step. It may be nil.
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	Info        map[string]float64

	endType EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd marks the TimeStep as the last step of its episode, ended for
// the reason e.
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.endType = e
}

// EndType returns why the episode ended on this TimeStep. NotEnded is
// returned for any TimeStep that is not the last in its episode.
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminated returns whether the episode reached a terminal state on
// this TimeStep
func (t *TimeStep) Terminated() bool {
	return t.endType == Terminated
}

// Truncated returns whether the episode was cut off on this TimeStep
func (t *TimeStep) Truncated() bool {
	return t.endType == Truncated
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
