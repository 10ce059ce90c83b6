package lunarlander

import (
	"errors"
	"fmt"
)

// ErrNotReset is returned when an environment is stepped before it was
// reset, or after it was closed
var ErrNotReset = errors.New("environment must be reset before stepping")

// InvalidActionError is returned when an action lies outside the
// action space of the environment. The environment is left unchanged.
type InvalidActionError struct {
	Action []float64
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %v: %v", e.Action, e.Reason)
}

// StrategyContractError is returned when a reward or fitness function
// fails or returns a value that breaks its contract
type StrategyContractError struct {
	Strategy string
	Err      error
}

func (e *StrategyContractError) Error() string {
	return fmt.Sprintf("%v function: %v", e.Strategy, e.Err)
}

func (e *StrategyContractError) Unwrap() error {
	return e.Err
}
