// Package vecenv steps many independent environments in parallel.
package vecenv

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

// Factory creates the i-th environment of a Pool
type Factory func(i int) (environment.Environment, error)

// Pool holds a number of independent environments, called replicas,
// and steps them in parallel. Each replica is only ever used by one
// goroutine at a time. Replicas whose episode ends are reset
// automatically.
type Pool struct {
	envs    []environment.Environment
	current []timestep.TimeStep
	workers int
	logger  *zap.Logger
}

// New returns a new Pool of n replicas created by f. At most workers
// replicas are stepped at the same time; if workers < 1 all replicas
// may be stepped at once. The logger may be nil.
func New(n, workers int, f Factory, logger *zap.Logger) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("new: pool must have at least one replica")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	envs := make([]environment.Environment, n)
	for i := range envs {
		env, err := f(i)
		if err != nil {
			return nil, fmt.Errorf("new: could not create replica %v: %w", i,
				err)
		}
		envs[i] = env
	}

	return &Pool{
		envs:    envs,
		current: make([]timestep.TimeStep, n),
		workers: workers,
		logger:  logger,
	}, nil
}

// Len returns the number of replicas
func (p *Pool) Len() int {
	return len(p.envs)
}

// Env returns the i-th replica
func (p *Pool) Env(i int) environment.Environment {
	return p.envs[i]
}

// Current returns the current TimeStep of each replica. After an
// episode ends, this is the first TimeStep of the next episode.
func (p *Pool) Current() []timestep.TimeStep {
	return append([]timestep.TimeStep(nil), p.current...)
}

// Reset resets all replicas
func (p *Pool) Reset(ctx context.Context) ([]timestep.TimeStep, error) {
	err := p.each(ctx, func(i int) error {
		step, err := p.envs[i].Reset()
		if err != nil {
			return fmt.Errorf("replica %v: %w", i, err)
		}
		p.current[i] = step
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return p.Current(), nil
}

// Step steps replica i with actions[i]. It returns the TimeStep
// produced by each replica and whether its episode ended. Replicas
// whose episode ended are reset before Step returns.
func (p *Pool) Step(ctx context.Context,
	actions []mat.Vector) ([]timestep.TimeStep, []bool, error) {
	if len(actions) != len(p.envs) {
		return nil, nil, fmt.Errorf("step: expected %v actions but got %v",
			len(p.envs), len(actions))
	}

	steps := make([]timestep.TimeStep, len(p.envs))
	done := make([]bool, len(p.envs))

	err := p.each(ctx, func(i int) error {
		step, last, err := p.envs[i].Step(actions[i])
		if err != nil {
			return fmt.Errorf("replica %v: %w", i, err)
		}
		steps[i] = step
		done[i] = last
		p.current[i] = step

		if !last {
			return nil
		}

		p.logger.Debug("replica episode ended",
			zap.Int("replica", i),
			zap.Int("steps", step.Number),
			zap.Stringer("end", step.EndType()),
		)
		first, err := p.envs[i].Reset()
		if err != nil {
			return fmt.Errorf("replica %v: %w", i, err)
		}
		p.current[i] = first
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("step: %w", err)
	}

	return steps, done, nil
}

// each calls f for every replica, from a separate goroutine per
// replica, and returns the first error
func (p *Pool) each(ctx context.Context, f func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if p.workers > 0 {
		g.SetLimit(p.workers)
	}

	for i := range p.envs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	return g.Wait()
}
