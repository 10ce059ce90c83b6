package lunarlander

import (
	"fmt"

	"github.com/samuelfneumann/golander/utils/floatutils"
)

const (
	// FitnessKey is the key under which the fitness score of a step is
	// stored in the TimeStep's Info
	FitnessKey = "fitness_score"

	// CauseKey is the key under which the Cause of termination of a
	// step is stored in the TimeStep's Info. It is NotTerminated for
	// steps that do not end the episode.
	CauseKey = "termination_cause"
)

// reserved Info keys that reward functions may not use
var reserved = map[string]bool{FitnessKey: true, CauseKey: true}

// RewardFunction computes the reward of a step from the observation
// after the step, the main and side engine powers used during the
// step, and whether the step ended the episode. Along with the reward,
// it returns the named components that make up the reward.
type RewardFunction interface {
	Reward(obs Observation, mPower, sPower float64,
		terminal bool) (float64, map[string]float64, error)
}

// FitnessFunction scores a step with the same inputs as a
// RewardFunction. Fitness is never given to the agent; it is used to
// rank different RewardFunctions against each other.
type FitnessFunction interface {
	Fitness(obs Observation, mPower, sPower float64,
		terminal bool) (float64, error)
}

// Resetter is implemented by reward and fitness functions that keep
// state within an episode. Reset is called whenever the environment
// is reset.
type Resetter interface {
	Reset()
}

// CausalReward is implemented by reward functions that score the end
// of an episode by its Cause. The Router calls RewardCause in place of
// Reward for them, with cause NotTerminated on non-terminal steps.
type CausalReward interface {
	RewardFunction
	RewardCause(obs Observation, mPower, sPower float64,
		cause Cause) (float64, map[string]float64, error)
}

// CausalFitness is the FitnessFunction counterpart of CausalReward
type CausalFitness interface {
	FitnessFunction
	FitnessCause(obs Observation, mPower, sPower float64,
		cause Cause) (float64, error)
}

// RewardFunc adapts an ordinary function to a RewardFunction
type RewardFunc func(obs Observation, mPower, sPower float64,
	terminal bool) (float64, map[string]float64, error)

// Reward calls f
func (f RewardFunc) Reward(obs Observation, mPower, sPower float64,
	terminal bool) (float64, map[string]float64, error) {
	return f(obs, mPower, sPower, terminal)
}

// FitnessFunc adapts an ordinary function to a FitnessFunction
type FitnessFunc func(obs Observation, mPower, sPower float64,
	terminal bool) (float64, error)

// Fitness calls f
func (f FitnessFunc) Fitness(obs Observation, mPower, sPower float64,
	terminal bool) (float64, error) {
	return f(obs, mPower, sPower, terminal)
}

// Router passes each step to a RewardFunction and a FitnessFunction
// and merges their outputs. The Router never changes the physical
// state of an environment.
type Router struct {
	reward  RewardFunction
	fitness FitnessFunction
}

// NewRouter returns a new Router
func NewRouter(r RewardFunction, f FitnessFunction) (*Router, error) {
	if r == nil {
		return nil, fmt.Errorf("newRouter: reward function cannot be nil")
	}
	if f == nil {
		return nil, fmt.Errorf("newRouter: fitness function cannot be nil")
	}
	return &Router{reward: r, fitness: f}, nil
}

// Reset resets the reward and fitness functions if they are Resetters
func (r *Router) Reset() {
	if s, ok := r.reward.(Resetter); ok {
		s.Reset()
	}
	if s, ok := r.fitness.(Resetter); ok {
		s.Reset()
	}
}

// Route computes the reward of a step and the info of the step: the
// reward components along with the fitness score under FitnessKey.
// The step terminated the episode iff cause is not NotTerminated.
// Errors are of type *StrategyContractError.
func (r *Router) Route(obs Observation, mPower, sPower float64,
	cause Cause) (float64, map[string]float64, error) {
	terminal := cause != NotTerminated

	var reward float64
	var components map[string]float64
	var err error
	if c, ok := r.reward.(CausalReward); ok {
		reward, components, err = c.RewardCause(obs, mPower, sPower, cause)
	} else {
		reward, components, err = r.reward.Reward(obs, mPower, sPower, terminal)
	}
	if err != nil {
		return 0, nil, &StrategyContractError{"reward", err}
	}
	if !floatutils.IsFinite(reward) {
		return 0, nil, &StrategyContractError{"reward",
			fmt.Errorf("reward must be finite but got %v", reward)}
	}

	info := make(map[string]float64, len(components)+1)
	for name, value := range components {
		if reserved[name] {
			return 0, nil, &StrategyContractError{"reward",
				fmt.Errorf("component name %q is reserved", name)}
		}
		info[name] = value
	}

	var fitness float64
	if c, ok := r.fitness.(CausalFitness); ok {
		fitness, err = c.FitnessCause(obs, mPower, sPower, cause)
	} else {
		fitness, err = r.fitness.Fitness(obs, mPower, sPower, terminal)
	}
	if err != nil {
		return 0, nil, &StrategyContractError{"fitness", err}
	}
	if !floatutils.IsFinite(fitness) {
		return 0, nil, &StrategyContractError{"fitness",
			fmt.Errorf("fitness must be finite but got %v", fitness)}
	}
	info[FitnessKey] = fitness

	return reward, info, nil
}
