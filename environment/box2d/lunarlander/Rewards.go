package lunarlander

import (
	"fmt"
	"math"
	"sort"
)

// Shaped is the classic lunar lander reward. Moving closer to the
// helipad, slowing down, staying level, and touching the ground with
// the legs increases a shaping potential; each step is rewarded with
// the change in potential. Firing the main engine costs 0.3 per step
// at full power and firing a side engine costs 0.03. On the terminal
// step the reward is only the outcome: +100 if the lander came to
// rest, -100 if it crashed or left the viewport. The shaping and fuel
// components are reported as 0 on that step.
type Shaped struct {
	prevShaping float64
	started     bool
}

// NewShaped returns a new Shaped reward
func NewShaped() *Shaped {
	return &Shaped{}
}

// Reset forgets the shaping potential of the previous episode
func (s *Shaped) Reset() {
	s.prevShaping = 0.0
	s.started = false
}

// Reward implements the RewardFunction interface. The cause of a
// terminal step is inferred from obs.
func (s *Shaped) Reward(obs Observation, mPower, sPower float64,
	terminal bool) (float64, map[string]float64, error) {
	return s.RewardCause(obs, mPower, sPower, inferCause(obs, terminal))
}

// RewardCause implements the CausalReward interface
func (s *Shaped) RewardCause(obs Observation, mPower, sPower float64,
	cause Cause) (float64, map[string]float64, error) {
	shaping := -100*math.Sqrt(obs[0]*obs[0]+obs[1]*obs[1]) -
		100*math.Sqrt(obs[2]*obs[2]+obs[3]*obs[3]) -
		100*math.Abs(obs[4]) +
		10*obs[6] +
		10*obs[7]

	var delta float64
	if s.started {
		delta = shaping - s.prevShaping
	}
	s.prevShaping = shaping
	s.started = true

	if cause != NotTerminated {
		end := outcome(cause)
		return end, map[string]float64{
			"shaping": 0.0,
			"fuel":    0.0,
			"outcome": end,
		}, nil
	}

	// Less fuel spent is better
	fuel := -(mPower*0.30 + sPower*0.03)

	return delta + fuel, map[string]float64{
		"shaping": delta,
		"fuel":    fuel,
		"outcome": 0.0,
	}, nil
}

// Sparse rewards only the end of an episode: +100 for coming to rest,
// -100 for crashing or leaving the viewport
type Sparse struct{}

// Reward implements the RewardFunction interface
func (sp Sparse) Reward(obs Observation, mPower, sPower float64,
	terminal bool) (float64, map[string]float64, error) {
	return sp.RewardCause(obs, mPower, sPower, inferCause(obs, terminal))
}

// RewardCause implements the CausalReward interface
func (Sparse) RewardCause(_ Observation, _, _ float64,
	cause Cause) (float64, map[string]float64, error) {
	reward := outcome(cause)
	return reward, map[string]float64{"outcome": reward}, nil
}

// GroundTruth scores steps with the Shaped reward, so that candidate
// reward functions are ranked by the return they would earn under the
// original task
type GroundTruth struct {
	shaped Shaped
}

// NewGroundTruth returns a new GroundTruth fitness function
func NewGroundTruth() *GroundTruth {
	return &GroundTruth{}
}

// Reset implements the Resetter interface
func (g *GroundTruth) Reset() {
	g.shaped.Reset()
}

// Fitness implements the FitnessFunction interface
func (g *GroundTruth) Fitness(obs Observation, mPower, sPower float64,
	terminal bool) (float64, error) {
	return g.FitnessCause(obs, mPower, sPower, inferCause(obs, terminal))
}

// FitnessCause implements the CausalFitness interface
func (g *GroundTruth) FitnessCause(obs Observation, mPower, sPower float64,
	cause Cause) (float64, error) {
	r, _, err := g.shaped.RewardCause(obs, mPower, sPower, cause)
	return r, err
}

// Landed scores 1 on the step a lander comes to rest and 0 on every
// other step. The sum of Landed over many episodes is the number of
// successful landings.
type Landed struct{}

// Fitness implements the FitnessFunction interface
func (l Landed) Fitness(obs Observation, mPower, sPower float64,
	terminal bool) (float64, error) {
	return l.FitnessCause(obs, mPower, sPower, inferCause(obs, terminal))
}

// FitnessCause implements the CausalFitness interface
func (Landed) FitnessCause(_ Observation, _, _ float64,
	cause Cause) (float64, error) {
	if cause == AtRest {
		return 1.0, nil
	}
	return 0.0, nil
}

// outcome returns the terminal bonus of an episode that ended with
// cause
func outcome(cause Cause) float64 {
	switch cause {
	case Crashed, OutOfBounds:
		return -100.0
	case AtRest:
		return 100.0
	}
	return 0.0
}

// inferCause guesses the cause of termination from a terminal
// observation alone. Whether the hull touched the ground cannot be
// seen in an observation, so a terminal step inside the viewport with
// both legs down is taken to be AtRest.
func inferCause(obs Observation, terminal bool) Cause {
	switch {
	case !terminal:
		return NotTerminated
	case math.Abs(obs[0]) >= 1.0:
		return OutOfBounds
	case obs.LegsDown():
		return AtRest
	}
	return Crashed
}

var (
	rewards = map[string]func() RewardFunction{
		"shaped": func() RewardFunction { return NewShaped() },
		"sparse": func() RewardFunction { return Sparse{} },
	}

	fitnesses = map[string]func() FitnessFunction{
		"ground_truth": func() FitnessFunction { return NewGroundTruth() },
		"landed":       func() FitnessFunction { return Landed{} },
	}
)

// RewardByName returns a new instance of the registered reward
// function with the given name
func RewardByName(name string) (RewardFunction, error) {
	f, ok := rewards[name]
	if !ok {
		return nil, fmt.Errorf("rewardByName: no such reward function %q, "+
			"expected one of %v", name, RewardNames())
	}
	return f(), nil
}

// FitnessByName returns a new instance of the registered fitness
// function with the given name
func FitnessByName(name string) (FitnessFunction, error) {
	f, ok := fitnesses[name]
	if !ok {
		return nil, fmt.Errorf("fitnessByName: no such fitness function "+
			"%q, expected one of %v", name, FitnessNames())
	}
	return f(), nil
}

// RewardNames returns the names of all registered reward functions
func RewardNames() []string {
	return sortedKeys(rewards)
}

// FitnessNames returns the names of all registered fitness functions
func FitnessNames() []string {
	return sortedKeys(fitnesses)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
