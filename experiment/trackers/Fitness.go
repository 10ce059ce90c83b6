package trackers

import (
	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	ts "github.com/samuelfneumann/golander/timestep"
)

// Info tracks the per-episode sum of a value stored in the Info of
// each TimeStep, such as a single component of the reward. Steps whose
// Info is missing the key count as 0.
type Info struct {
	key      string
	current  float64
	episodes []float64
	filename string
}

// NewInfo returns a new Info Tracker summing the values stored under
// key
func NewInfo(key, filename string) *Info {
	return &Info{key: key, filename: filename}
}

// NewFitness returns a new Info Tracker which tracks the fitness score
// of each episode
func NewFitness(filename string) *Info {
	return NewInfo(lunarlander.FitnessKey, filename)
}

// Track tracks the value stored in the Info of a timestep
func (i *Info) Track(step ts.TimeStep) {
	if step.First() {
		i.current = 0.0
	}
	i.current += step.Info[i.key]

	if step.Last() {
		i.episodes = append(i.episodes, i.current)
		i.current = 0.0
	}
}

// Data returns the sum of each finished episode
func (i *Info) Data() []float64 {
	return i.episodes
}

// Save saves the data tracked by the Info Tracker to disk
func (i *Info) Save() error {
	return save(i.filename, i.episodes)
}
