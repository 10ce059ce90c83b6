// Package experiment implements functionality for running an experiment
package experiment

import (
	"github.com/samuelfneumann/golander/experiment/trackers"
	ts "github.com/samuelfneumann/golander/timestep"
)

// Experiment outlines structs that can run experiments. Experiments
// track environment TimeSteps, caching the data of each TimeStep in
// RAM to be later saved to disk. The Save() function will then take
// all cached data and save it to disk. This is usually performed after
// an experiment has been run. The Run() method will run all episodes
// until the maximum timestep limit is reached. The RunEpisode()
// function will run a single episode.
//
// In order to save data, Experiments use Trackers. Experiments send
// each TimeStep to Trackers using the Tracker's Track() method. The
// Tracker then determines which data from the TimeStep it caches and
// saves.
type Experiment interface {
	Run() error

	// Returns whether the step limit of the experiment was reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new Tracker to the (possibly already running) experiment
	Register(t trackers.Tracker)

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep)
}
