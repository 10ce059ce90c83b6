// Package envconfig provides configuration structs for configuring
// lunar lander environments with physical parameters, reward and
// fitness functions, and episode cutoffs. Configurations are YAML
// and JSON serializable.
package envconfig

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	"github.com/samuelfneumann/golander/environment/box2d/render"
	"github.com/samuelfneumann/golander/environment/vecenv"
	"github.com/samuelfneumann/golander/environment/wrappers"
)

// Config implements a specific configuration of a lunar lander
// environment
type Config struct {
	Continuous bool    `yaml:"continuous" json:"continuous"`
	Seed       uint64  `yaml:"seed" json:"seed"`
	Discount   float64 `yaml:"discount" json:"discount"`

	Gravity         float64 `yaml:"gravity" json:"gravity"`
	EnableWind      bool    `yaml:"enable_wind" json:"enable_wind"`
	WindPower       float64 `yaml:"wind_power" json:"wind_power"`
	TurbulencePower float64 `yaml:"turbulence_power" json:"turbulence_power"`

	// MaxEpisodeSteps truncates episodes, 0 means episodes are only
	// ended by the environment
	MaxEpisodeSteps int `yaml:"max_episode_steps" json:"max_episode_steps"`

	// Names of registered reward and fitness functions
	Reward  string `yaml:"reward" json:"reward"`
	Fitness string `yaml:"fitness" json:"fitness"`

	// RenderDir is the directory frames are saved to, no frames are
	// rendered if empty
	RenderDir string `yaml:"render_dir" json:"render_dir"`
}

// Default returns the default configuration
func Default() Config {
	physics := lunarlander.DefaultConfig()

	return Config{
		Continuous:      false,
		Seed:            0,
		Discount:        0.99,
		Gravity:         physics.Gravity,
		EnableWind:      physics.EnableWind,
		WindPower:       physics.WindPower,
		TurbulencePower: physics.TurbulencePower,
		MaxEpisodeSteps: 1000,
		Reward:          "shaped",
		Fitness:         "ground_truth",
	}
}

// Load reads a YAML configuration from path. Fields missing from the
// file keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not read config file "+
			"%s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: could not parse config file "+
			"%s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: invalid config in %s: %w", path,
			err)
	}
	return c, nil
}

// Save writes the configuration to path as YAML
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Validate returns an error if the configuration cannot be used to
// create an environment
func (c Config) Validate() error {
	if err := c.Physics().Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] but got %v",
			c.Discount)
	}
	if c.MaxEpisodeSteps < 0 {
		return fmt.Errorf("validate: max episode steps cannot be negative")
	}
	if _, err := lunarlander.RewardByName(c.Reward); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := lunarlander.FitnessByName(c.Fitness); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Physics returns the physical parameters of the configuration
func (c Config) Physics() lunarlander.Config {
	return lunarlander.Config{
		Gravity:         c.Gravity,
		EnableWind:      c.EnableWind,
		WindPower:       c.WindPower,
		TurbulencePower: c.TurbulencePower,
	}
}

// Create returns the environment described by the Config. The
// environment must be reset before it is stepped. The logger may be
// nil.
func (c Config) Create(logger *zap.Logger) (environment.Environment, error) {
	return c.create(c.Seed, c.RenderDir, logger)
}

// CreatePool returns a Pool of replicas of the environment described
// by the Config. Replica i is seeded with Seed + i. Replicas are never
// rendered.
func (c Config) CreatePool(replicas, workers int,
	logger *zap.Logger) (*vecenv.Pool, error) {
	return vecenv.New(replicas, workers, func(i int) (environment.Environment,
		error) {
		var replicaLogger *zap.Logger
		if logger != nil {
			replicaLogger = logger.With(zap.Int("replica", i))
		}
		return c.create(c.Seed+uint64(i), "", replicaLogger)
	}, logger)
}

func (c Config) create(seed uint64, renderDir string,
	logger *zap.Logger) (environment.Environment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reward, err := lunarlander.RewardByName(c.Reward)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	fitness, err := lunarlander.FitnessByName(c.Fitness)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	opts := []lunarlander.Option{
		lunarlander.WithConfig(c.Physics()),
		lunarlander.WithDiscount(c.Discount),
		lunarlander.WithReward(reward),
		lunarlander.WithFitness(fitness),
		lunarlander.WithLogger(logger),
	}
	if renderDir != "" {
		r, err := render.New(renderDir, c.Gravity)
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		opts = append(opts, lunarlander.WithSink(r))
	}

	var env environment.Environment
	if c.Continuous {
		env, err = lunarlander.NewContinuous(seed, opts...)
	} else {
		env, err = lunarlander.NewDiscrete(seed, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	if c.MaxEpisodeSteps == 0 {
		return env, nil
	}
	return wrappers.NewTimeLimit(env, c.MaxEpisodeSteps)
}
