// Package lunarlander provides an implementation of the Lunar Lander
// environment.
//
// In this environment, an agent flies a lander within a viewport. At
// the bottom of the viewport is the moon, with a flat helipad in its
// centre on which the agent should land. The lander has a main engine
// and two side engines whose thrust is randomly dispersed on every
// step. Optionally, a non-periodic wind and turbulence push the lander
// around while it is in flight.
//
// The reward of each step is computed by a pluggable RewardFunction,
// and every step is also scored by a FitnessFunction which is used to
// rank reward functions against each other. The fitness score is
// returned in the Info of each TimeStep under FitnessKey, and the
// Cause of termination under CauseKey.
//
// Episodes terminate when the lander's hull touches the ground, when
// the lander leaves the viewport horizontally, or when it comes to
// rest. Episodes are never truncated by the environment; use
// wrappers.TimeLimit for that.
//
// The simulation is deterministic given the seed of the environment
// and the sequence of actions.
package lunarlander

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/golander/environment"
	"github.com/samuelfneumann/golander/timestep"
)

// Config holds the physical parameters of the environment
type Config struct {
	Gravity         float64
	EnableWind      bool
	WindPower       float64
	TurbulencePower float64
}

// DefaultConfig returns the default physical parameters. Wind is
// disabled by default.
func DefaultConfig() Config {
	return Config{
		Gravity:         DefaultGravity,
		EnableWind:      false,
		WindPower:       DefaultWindPower,
		TurbulencePower: DefaultTurbulencePower,
	}
}

// Validate returns an error if the physical parameters are outside the
// ranges the environment was designed for
func (c Config) Validate() error {
	if c.Gravity <= -12.0 || c.Gravity >= 0.0 {
		return fmt.Errorf("gravity must be in (-12, 0) but got %v", c.Gravity)
	}
	if c.WindPower < 0.0 || c.WindPower > 20.0 {
		return fmt.Errorf("wind power must be in [0, 20] but got %v",
			c.WindPower)
	}
	if c.TurbulencePower < 0.0 || c.TurbulencePower > 2.0 {
		return fmt.Errorf("turbulence power must be in [0, 2] but got %v",
			c.TurbulencePower)
	}
	return nil
}

// Option configures a lunar lander environment
type Option func(*lunarLander)

// WithConfig sets the physical parameters of the environment
func WithConfig(c Config) Option {
	return func(l *lunarLander) { l.cfg = c }
}

// WithDiscount sets the discount of the environment, 0.99 by default
func WithDiscount(discount float64) Option {
	return func(l *lunarLander) { l.discount = discount }
}

// WithStarter sets the distribution of starting positions. The Starter
// must return 2-dimensional vectors holding the x and y position of the
// lander in Box2D units. By default the lander starts at
// (InitialX, InitialY).
func WithStarter(s environment.Starter) Option {
	return func(l *lunarLander) { l.starter = s }
}

// WithReward sets the reward function, Shaped by default
func WithReward(r RewardFunction) Option {
	return func(l *lunarLander) { l.reward = r }
}

// WithFitness sets the fitness function, GroundTruth by default
func WithFitness(f FitnessFunction) Option {
	return func(l *lunarLander) { l.fitness = f }
}

// WithSink attaches a ParticleSink, e.g. a renderer
func WithSink(s ParticleSink) Option {
	return func(l *lunarLander) { l.sink = s }
}

// WithLogger sets the logger of the environment
func WithLogger(logger *zap.Logger) Option {
	return func(l *lunarLander) { l.logger = logger }
}

// lunarLander implements the dynamics shared by the Continuous and
// Discrete environments. Each step runs:
//
//	wind -> engines -> Box2D step -> observation -> termination -> reward
type lunarLander struct {
	cfg      Config
	discount float64
	starter  environment.Starter
	reward   RewardFunction
	fitness  FitnessFunction
	sink     ParticleSink
	logger   *zap.Logger

	seed    uint64
	src     rand.Source
	rng     *rand.Rand
	physics *physics
	wind    *Wind
	engines *Engines
	router  *Router

	ready   bool
	episode uuid.UUID
	number  int
	mPower  float64
	sPower  float64
	current timestep.TimeStep
}

func newLunarLander(seed uint64, opts ...Option) (*lunarLander, error) {
	l := &lunarLander{
		cfg:      DefaultConfig(),
		discount: 0.99,
		starter: environment.NewUniformStarter([]r1.Interval{
			{Min: InitialX, Max: InitialX},
			{Min: InitialY, Max: InitialY},
		}, seed),
		reward:  NewShaped(),
		fitness: NewGroundTruth(),
		sink:    NopSink{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if l.starter == nil {
		return nil, fmt.Errorf("new: starter cannot be nil")
	}
	if l.sink == nil {
		l.sink = NopSink{}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}

	router, err := NewRouter(l.reward, l.fitness)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	l.router = router

	l.physics = newPhysics(l.cfg.Gravity)
	l.wind = NewWind(l.cfg.EnableWind, l.cfg.WindPower, l.cfg.TurbulencePower)
	l.Seed(seed)

	return l, nil
}

// Seed reseeds the random stream of the environment. The environment
// must be reset afterwards.
func (l *lunarLander) Seed(seed uint64) {
	l.seed = seed
	l.src = rand.NewSource(seed)
	l.rng = rand.New(l.src)
	l.engines = NewEngines(l.src)
	l.ready = false
}

// Reset starts a new episode: it generates new terrain, places the
// lander at a starting position drawn from the Starter, applies a
// random force to it, and takes a single step with all engines off.
func (l *lunarLander) Reset() (timestep.TimeStep, error) {
	x, y, err := validateStart(l.starter.Start())
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	l.physics.reset(x, y, l.src)
	l.wind.Reset(l.rng)
	l.router.Reset()
	l.sink.Reset(l.physics.terrain)

	l.episode = uuid.New()
	l.number = 0
	l.ready = true

	step, _, err := l.step(Throttle{})
	if err != nil {
		l.ready = false
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	l.number = 0
	first := timestep.New(timestep.First, 0.0, l.discount, step.Observation, 0)
	l.current = first

	l.logger.Debug("episode reset",
		zap.Stringer("episode", l.episode),
		zap.Uint64("seed", l.seed),
		zap.Float64("helipadY", l.physics.terrain.HelipadY),
		zap.Bool("wind", l.wind.Enabled()),
	)

	return first, nil
}

// step runs one tick of the simulation with the engines commanded by t.
// The action must already have been validated.
func (l *lunarLander) step(t Throttle) (timestep.TimeStep, bool, error) {
	state := l.physics.state()

	if force, torque, ok := l.wind.Next(state.LegContact); ok {
		l.physics.disturb(force, torque)
	}

	thrust := l.engines.Fire(t, state.Angle, state.Position)
	for _, impulse := range thrust.Impulses {
		l.physics.apply(impulse)
		l.sink.Emit(impulse.Exhaust())
	}
	l.mPower = thrust.MPower
	l.sPower = thrust.SPower

	l.physics.advance()

	next := l.physics.state()
	obs := Encode(next, l.physics.terrain)
	terminal, cause := Terminated(l.physics.gameOver, obs, next.Awake)

	reward, info, err := l.router.Route(obs, thrust.MPower, thrust.SPower,
		cause)
	if err != nil {
		// The world has already moved on, so the episode cannot continue
		l.ready = false
		return timestep.TimeStep{}, terminal, fmt.Errorf("step: %w", err)
	}
	info[CauseKey] = float64(cause)

	l.number++
	step := timestep.New(timestep.Mid, reward, l.discount, obs.Vec(), l.number)
	step.Info = info
	if terminal {
		step.SetEnd(timestep.Terminated)
		l.logger.Debug("episode terminated",
			zap.Stringer("episode", l.episode),
			zap.Int("steps", l.number),
			zap.Stringer("cause", cause),
		)
	}

	if _, headless := l.sink.(NopSink); !headless {
		if err := l.sink.Frame(l.physics.scene(l.number)); err != nil {
			l.logger.Warn("could not render frame", zap.Error(err))
		}
	}

	l.current = step
	return step, terminal, nil
}

// Close ends the current episode. The environment must be reset before
// it can be stepped again.
func (l *lunarLander) Close() {
	l.ready = false
}

// CurrentTimeStep returns the last TimeStep generated
func (l *lunarLander) CurrentTimeStep() timestep.TimeStep {
	return l.current
}

// MPower returns the main engine power used on the last step
func (l *lunarLander) MPower() float64 {
	return l.mPower
}

// SPower returns the side engine power used on the last step
func (l *lunarLander) SPower() float64 {
	return l.sPower
}

// IsAwake returns whether Box2D considers the lander to be moving
func (l *lunarLander) IsAwake() bool {
	return l.physics.lander != nil && l.physics.lander.IsAwake()
}

// GroundContact returns whether each leg touches the ground
func (l *lunarLander) GroundContact() (bool, bool) {
	return l.physics.legContact[0], l.physics.legContact[1]
}

// IsGameOver returns whether the hull of the lander touched the ground
func (l *lunarLander) IsGameOver() bool {
	return l.physics.gameOver
}

// State returns the current physical state of the lander
func (l *lunarLander) State() (State, error) {
	if !l.ready {
		return State{}, fmt.Errorf("state: %w", ErrNotReset)
	}
	return l.physics.state(), nil
}

// WindIndices returns the current indices of the wind and turbulence
func (l *lunarLander) WindIndices() (wind, torque int) {
	return l.wind.Indices()
}

// Terrain returns the terrain of the current episode
func (l *lunarLander) Terrain() Terrain {
	return l.physics.terrain
}

// EpisodeID returns the unique ID of the current episode
func (l *lunarLander) EpisodeID() uuid.UUID {
	return l.episode
}

// DiscountSpec returns the discount specification of the environment
func (l *lunarLander) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{l.discount})

	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (l *lunarLander) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(StateObservations, nil)
	lowerBound := mat.NewVecDense(StateObservations, append([]float64(nil), obsLow...))
	upperBound := mat.NewVecDense(StateObservations, append([]float64(nil), obsHigh...))

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// CauseOf returns the Cause of termination recorded in the Info of a
// TimeStep generated by a lunar lander environment
func CauseOf(step timestep.TimeStep) Cause {
	return Cause(step.Info[CauseKey])
}

// validateStart checks that a starting position is within the viewport
func validateStart(start mat.Vector) (x, y float64, err error) {
	if start.Len() != 2 {
		return 0, 0, fmt.Errorf("starting state should be 2-dimensional "+
			"but got %v dimensions", start.Len())
	}

	W := worldWidth()
	H := worldHeight()
	x, y = start.AtVec(0), start.AtVec(1)

	if x < 0.05*W || x > 0.95*W {
		return 0, 0, fmt.Errorf("x position out of bounds, expected x ϵ "+
			"[%v, %v] but got x = %v", 0.05*W, 0.95*W, x)
	}
	if y < H/2 || y > H {
		return 0, 0, fmt.Errorf("y position out of bounds, expected y ϵ "+
			"[%v, %v] but got y = %v", H/2, H, y)
	}
	return x, y, nil
}

// actionData returns the elements of an action for error reporting
func actionData(a mat.Vector) []float64 {
	data := make([]float64, a.Len())
	for i := range data {
		data[i] = a.AtVec(i)
	}
	return data
}
