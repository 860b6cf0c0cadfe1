// Package flux implements the self-tuning oscillating parameter used by the
// reinforcement-adaptive CTRNN. Each Fluctuator is a scalar performing a
// gradient-free local search over its own value: it oscillates around a center,
// and an externally supplied reward both anneals the oscillation amplitude and
// drifts the center towards reward-correlated phases.
package flux

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid fluctuator config")

// Range is a closed numeric interval [Min, Max].
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp saturates value into the range.
func (r Range) Clamp(value float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, value))
}

type Config struct {
	// ValueRange is the declared legal range for Center. It is configuration
	// only: Update does not clamp Center against it.
	ValueRange      Range   `json:"value_range"`
	PeriodRange     Range   `json:"period_range"`
	AmplitudeRange  Range   `json:"amplitude_range"`
	ConvergenceRate float64 `json:"convergence_rate"`
	LearningRate    float64 `json:"learning_rate"`
	// InitialAmplitude seeds the exploration oscillation. With the default of
	// zero the amplitude is only ever moved by reward-scaled decrements, so a
	// caller that wants exploration from the first tick sets this nonzero.
	InitialAmplitude float64 `json:"initial_amplitude"`
}

func DefaultConfig() Config {
	return Config{
		ValueRange:      Range{Min: -16.0, Max: 16.0},
		PeriodRange:     Range{Min: 3.0, Max: 12.0},
		AmplitudeRange:  Range{Min: 0.001, Max: 10.0},
		ConvergenceRate: 0.1,
		LearningRate:    0.1,
	}
}

func (c Config) Validate() error {
	if c.ValueRange.Min > c.ValueRange.Max {
		return fmt.Errorf("%w: value range min %v > max %v", ErrInvalidConfig, c.ValueRange.Min, c.ValueRange.Max)
	}
	if c.PeriodRange.Min > c.PeriodRange.Max {
		return fmt.Errorf("%w: period range min %v > max %v", ErrInvalidConfig, c.PeriodRange.Min, c.PeriodRange.Max)
	}
	if c.PeriodRange.Min <= 0 {
		return fmt.Errorf("%w: period range must be positive, got min %v", ErrInvalidConfig, c.PeriodRange.Min)
	}
	if c.AmplitudeRange.Min > c.AmplitudeRange.Max {
		return fmt.Errorf("%w: amplitude range min %v > max %v", ErrInvalidConfig, c.AmplitudeRange.Min, c.AmplitudeRange.Max)
	}
	if c.ConvergenceRate < 0 {
		return fmt.Errorf("%w: convergence rate must be >= 0, got %v", ErrInvalidConfig, c.ConvergenceRate)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("%w: learning rate must be >= 0, got %v", ErrInvalidConfig, c.LearningRate)
	}
	if c.InitialAmplitude < 0 {
		return fmt.Errorf("%w: initial amplitude must be >= 0, got %v", ErrInvalidConfig, c.InitialAmplitude)
	}
	return nil
}

// Fluctuator is one adaptive scalar parameter. Value is the only reader and is
// side-effect free; Update is the only mutator.
type Fluctuator struct {
	Center    float64
	Amplitude float64
	Period    float64
	Time      float64

	cfg Config
}

// New constructs a Fluctuator around the given center with the default
// configuration: zero amplitude, resampled period, zero phase.
func New(center float64) *Fluctuator {
	f, err := NewWithConfig(center, DefaultConfig())
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	return f
}

func NewWithConfig(center float64, cfg Config) (*Fluctuator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Fluctuator{
		Center:    center,
		Amplitude: cfg.InitialAmplitude,
		cfg:       cfg,
	}
	f.resamplePeriod()
	return f, nil
}

func (f *Fluctuator) Config() Config {
	return f.cfg
}

// Value returns the instantaneous oscillated value center + amplitude*sin(theta).
// Pure: calling it any number of times between updates yields the same result.
func (f *Fluctuator) Value() float64 {
	return f.Center + f.Amplitude*math.Sin(f.theta())
}

// Update advances the search by one step of duration dt under the given
// reward and returns the perturbation that was active this step. Positive
// reward shrinks the exploration amplitude (exploitation), negative reward
// grows it back towards the bound, and the center drifts in the direction of
// the phase that correlated with the reward.
func (f *Fluctuator) Update(dt, reward float64) float64 {
	f.Amplitude -= f.cfg.ConvergenceRate * f.cfg.AmplitudeRange.Max * reward
	f.Amplitude = f.cfg.AmplitudeRange.Clamp(f.Amplitude)

	// Perturbation at the phase before time advances: this is the value the
	// caller observed acting during the step the reward measures.
	d := f.Amplitude * math.Sin(f.theta())
	f.Center += f.cfg.LearningRate * d * reward

	f.Time += dt
	if f.Time > f.Period {
		f.resamplePeriod()
	}
	return d
}

func (f *Fluctuator) theta() float64 {
	return f.Time * 2 * math.Pi / f.Period
}

// resamplePeriod picks the next oscillation period and resets the phase.
// The selection is deliberately degenerate: it always lands on the lower
// bound of the period range, truncated to one decimal, which keeps
// adaptation runs deterministic. Drawing from the full range would be a
// behavior change, not a fix.
func (f *Fluctuator) resamplePeriod() {
	diff := f.cfg.PeriodRange.Max - f.cfg.PeriodRange.Min
	p := f.cfg.PeriodRange.Min + diff*0.0
	f.Period = math.Floor(p*10.0) / 10.0
	f.Time = 0.0
}
