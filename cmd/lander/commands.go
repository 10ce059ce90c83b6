package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	"github.com/samuelfneumann/golander/experiment"
	"github.com/samuelfneumann/golander/experiment/trackers"
	"github.com/samuelfneumann/golander/timestep"
)

func newRunCmd() *cobra.Command {
	var (
		steps  uint
		policy string
		out    string
		plot   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a policy online and save the return, fitness and length of each episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := loadConfig(logger)
			if err != nil {
				return err
			}
			env, err := c.Create(logger)
			if err != nil {
				return err
			}
			p, err := newPolicy(policy, env, c.Continuous, c.Seed)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}
			ret := trackers.NewReturn(filepath.Join(out, "return.bin"))
			fitness := trackers.NewFitness(filepath.Join(out, "fitness.bin"))
			length := trackers.NewEpisodeLength(filepath.Join(out, "length.bin"))

			exp := experiment.NewOnline(env, p, steps, logger, ret, fitness,
				length)
			if err := exp.Run(); err != nil {
				return err
			}
			if err := exp.Save(); err != nil {
				return err
			}
			logger.Info("saved episode data", zap.String("dir", out))

			if !plot || exp.Episodes() == 0 {
				return nil
			}
			plots := []struct {
				name string
				data []float64
			}{
				{"return", ret.Data()},
				{"fitness", fitness.Data()},
				{"length", length.Data()},
			}
			for _, p := range plots {
				file := filepath.Join(out, p.name+".png")
				if err := trackers.Plot(p.data, p.name, p.name, 10,
					file); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().UintVarP(&steps, "steps", "n", 10_000, "number of environment steps")
	cmd.Flags().StringVarP(&policy, "policy", "p", "heuristic", "policy to run (heuristic, random)")
	cmd.Flags().StringVarP(&out, "out", "o", "results", "output directory")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the saved data")
	return cmd
}

func newRolloutCmd() *cobra.Command {
	var (
		replicas int
		workers  int
		steps    int
	)

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Run the heuristic controller in many replicas in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := loadConfig(logger)
			if err != nil {
				return err
			}
			pool, err := c.CreatePool(replicas, workers, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := pool.Reset(ctx); err != nil {
				return err
			}

			returns := make([]float64, pool.Len())
			fitness := make([]float64, pool.Len())
			var episodes, landed int
			var total, totalFitness float64

			for s := 0; s < steps; s++ {
				actions, err := heuristicActions(pool.Current(), c.Continuous)
				if err != nil {
					return err
				}

				next, done, err := pool.Step(ctx, actions)
				if err != nil {
					return err
				}
				for i, step := range next {
					returns[i] += step.Reward
					fitness[i] += step.Info[lunarlander.FitnessKey]
					if !done[i] {
						continue
					}

					episodes++
					total += returns[i]
					totalFitness += fitness[i]
					if isLanding(step) {
						landed++
					}
					returns[i], fitness[i] = 0, 0
				}
			}

			if episodes == 0 {
				logger.Warn("no episode finished, increase --steps")
				return nil
			}
			logger.Info("rollout finished",
				zap.Int("replicas", pool.Len()),
				zap.Int("episodes", episodes),
				zap.Int("landed", landed),
				zap.Float64("meanReturn", total/float64(episodes)),
				zap.Float64("meanFitness", totalFitness/float64(episodes)),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&replicas, "replicas", "r", 8, "number of replicas")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "maximum replicas stepped at once, 0 for no limit")
	cmd.Flags().IntVarP(&steps, "steps", "n", 1000, "number of steps per replica")
	return cmd
}

func newPlotCmd() *cobra.Command {
	var (
		title  string
		ylabel string
		window int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "plot DATA",
		Short: "Plot data saved by the run command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := trackers.LoadData(args[0])
			if err != nil {
				return err
			}

			if out == "" {
				out = args[0] + ".png"
			}
			if title == "" {
				title = filepath.Base(args[0])
			}
			return trackers.Plot(data, title, ylabel, window, out)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "plot title, defaults to the file name")
	cmd.Flags().StringVar(&ylabel, "ylabel", "", "label of the y axis")
	cmd.Flags().IntVarP(&window, "window", "w", 10, "moving average window, 0 to disable")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image, defaults to DATA.png")
	return cmd
}

func newRewardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewards",
		Short: "List the registered reward and fitness functions",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "reward functions:")
			for _, name := range lunarlander.RewardNames() {
				fmt.Fprintf(w, "  %v\n", name)
			}
			fmt.Fprintln(w, "fitness functions:")
			for _, name := range lunarlander.FitnessNames() {
				fmt.Fprintf(w, "  %v\n", name)
			}
		},
	}
}

// newPolicy returns the policy with the given name
func newPolicy(name string, env environment.Environment, continuous bool,
	seed uint64) (experiment.Policy, error) {
	switch name {
	case "heuristic":
		return experiment.NewHeuristic(continuous), nil
	case "random":
		return experiment.NewRandom(env.ActionSpec(), seed), nil
	}
	return nil, fmt.Errorf("no such policy %q, expected heuristic or random",
		name)
}

// heuristicActions returns the heuristic controller's action for each
// TimeStep
func heuristicActions(steps []timestep.TimeStep,
	continuous bool) ([]mat.Vector, error) {
	actions := make([]mat.Vector, len(steps))
	for i, step := range steps {
		obs, err := lunarlander.ObservationFromVec(step.Observation)
		if err != nil {
			return nil, err
		}
		actions[i] = lunarlander.Heuristic(obs, continuous)
	}
	return actions, nil
}

// isLanding returns whether a final TimeStep ends an episode with the
// lander at rest
func isLanding(step timestep.TimeStep) bool {
	return step.Terminated() && lunarlander.CauseOf(step) == lunarlander.AtRest
}
