package cpuusage

import (
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sampler turns consecutive source readings into a utilization percentage.
// It is safe for concurrent use.
type Sampler struct {
	source      Source
	clock       Clock
	state       *State
	cores       int
	normalize   bool
	baseline    Baseline
	minInterval time.Duration
	logger      *logrus.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock replaces the monotonic clock.
func WithClock(c Clock) Option {
	return func(s *Sampler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithState makes the sampler use an externally owned state.
func WithState(st *State) Option {
	return func(s *Sampler) {
		if st != nil {
			s.state = st
		}
	}
}

// WithCores sets the core count used for normalization and the upper clamp.
func WithCores(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.cores = n
		}
	}
}

// WithNormalize divides results by the core count, bounding them to [0, 100].
func WithNormalize(normalize bool) Option {
	return func(s *Sampler) {
		s.normalize = normalize
	}
}

// WithBaseline selects the first-measurement policy.
func WithBaseline(b Baseline) Option {
	return func(s *Sampler) {
		if b != "" {
			s.baseline = b
		}
	}
}

// WithMinInterval makes measurements closer than d to the previous sample
// return the last known-good value without consuming the window.
func WithMinInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.minInterval = d
		}
	}
}

// WithLogger sets the logger used for failed or anomalous measurements.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a sampler over source.
func New(source Source, opts ...Option) *Sampler {
	s := &Sampler{
		source:   source,
		clock:    MonotonicClock(),
		state:    NewState(),
		cores:    runtime.NumCPU(),
		baseline: BaselineZero,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cores <= 0 {
		s.cores = 1
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetLevel(logrus.WarnLevel)
	}
	return s
}

// Result is the outcome of one measurement. Err is informational: Percent
// is always usable.
type Result struct {
	Percent float64 `json:"percent"`
	Sample  Sample  `json:"sample"`
	// Baseline is set on a first measurement that was computed against the
	// scope's uptime rather than defaulting to 0.
	Baseline Baseline `json:"baseline,omitempty"`
	Err      error    `json:"-"`
}

// Sample measures utilization since the previous call. The value is always
// finite and non-negative.
func (s *Sampler) Sample() float64 {
	return s.Measure().Percent
}

// Measure is Sample with the observed sample and any anomaly attached.
func (s *Sampler) Measure() Result {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{
		"source": s.source.Name(),
		"scope":  s.source.Scope(),
	})

	reading, err := s.source.Read()
	now := s.clock()
	if err == nil && reading.TicksPerSecond == 0 {
		err = errors.New("reading has zero ticks per second")
	}
	if err != nil {
		qerr := &QueryError{Source: s.source.Name(), Err: err}
		log.WithError(err).Debug("Busy time query failed")
		return Result{Percent: st.lastPercent, Sample: st.last, Err: qerr}
	}

	cur := Sample{
		Timestamp:      now,
		Busy:           reading.Busy,
		TicksPerSecond: reading.TicksPerSecond,
		Scope:          s.source.Scope(),
	}

	if !st.valid {
		res := Result{Sample: cur}
		if percent, ok := s.firstPercent(cur, log); ok {
			res.Percent = percent
			res.Baseline = BaselineUptime
		}
		st.last = cur
		st.valid = true
		st.lastPercent = res.Percent
		return res
	}

	prev := st.last
	if s.minInterval > 0 {
		if elapsed := cur.Timestamp - prev.Timestamp; elapsed >= 0 && elapsed < s.minInterval {
			return Result{Percent: st.lastPercent, Sample: prev}
		}
	}

	st.last = cur
	percent, err := Percent(prev, cur)
	if err != nil {
		log.WithError(err).Debug("Discarding sample window")
		return Result{Percent: 0, Sample: cur, Err: err}
	}
	percent = s.bound(percent)
	st.lastPercent = percent
	return Result{Percent: percent, Sample: cur}
}

// firstPercent measures cur against the scope's start. It reports false when
// the zero baseline applies.
func (s *Sampler) firstPercent(cur Sample, log *logrus.Entry) (float64, bool) {
	if s.baseline != BaselineUptime {
		return 0, false
	}
	us, ok := s.source.(UptimeSource)
	if !ok {
		log.Debug("Source has no uptime, using zero baseline")
		return 0, false
	}
	uptime, err := us.Uptime()
	if err != nil || uptime <= 0 {
		log.WithError(err).Debug("Uptime unavailable, using zero baseline")
		return 0, false
	}
	origin := Sample{
		Timestamp:      cur.Timestamp - uptime,
		TicksPerSecond: cur.TicksPerSecond,
		Scope:          cur.Scope,
	}
	percent, err := Percent(origin, cur)
	if err != nil {
		return 0, false
	}
	return s.bound(percent), true
}

// bound normalizes and clamps a raw percentage.
func (s *Sampler) bound(percent float64) float64 {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 {
		return 0
	}
	if s.normalize {
		percent /= float64(s.cores)
	}
	return math.Min(percent, s.Ceiling())
}

// Reset clears the sampler state. The next measurement behaves as the first.
func (s *Sampler) Reset() {
	s.state.Reset()
}

// IsInitialized reports whether at least one sample has been taken.
func (s *Sampler) IsInitialized() bool {
	_, ok := s.state.Last()
	return ok
}

// Source returns the underlying source.
func (s *Sampler) Source() Source {
	return s.source
}

// State returns the sampler's state.
func (s *Sampler) State() *State {
	return s.state
}

// Cores returns the core count used for normalization.
func (s *Sampler) Cores() int {
	return s.cores
}

// Ceiling returns the largest value the sampler reports: 100 when
// normalized, 100 × cores otherwise.
func (s *Sampler) Ceiling() float64 {
	if s.normalize {
		return 100
	}
	return 100 * float64(s.cores)
}

// Normalized reports whether results are divided by the core count.
func (s *Sampler) Normalized() bool {
	return s.normalize
}

// Percent computes 100 × busy seconds / wall seconds between two samples.
// The result is not clamped.
func Percent(prev, cur Sample) (float64, error) {
	if cur.Scope != prev.Scope || cur.TicksPerSecond != prev.TicksPerSecond || cur.TicksPerSecond == 0 {
		return 0, ErrScopeMismatch
	}
	wall := cur.Timestamp - prev.Timestamp
	if wall <= 0 {
		return 0, ErrClockAnomaly
	}
	if cur.Busy < prev.Busy {
		return 0, ErrCounterRegression
	}
	busy := float64(cur.Busy-prev.Busy) / float64(cur.TicksPerSecond)
	return 100 * busy / wall.Seconds(), nil
}
