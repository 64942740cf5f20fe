package resilience

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Phase string

const (
	PhaseClosed   Phase = "closed"
	PhaseOpen     Phase = "open"
	PhaseHalfOpen Phase = "half_open"
)

type BreakerConfig struct {
	Enabled          bool          `validate:"-"`
	FailureThreshold int           `validate:"gte=1"`
	OpenTimeout      time.Duration `validate:"gt=0"`
	HalfOpenProbes   int           `validate:"gte=1"`
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenProbes:   1,
	}
}

// Normalize fills unset fields with defaults.
func (c BreakerConfig) Normalize() BreakerConfig {
	defaults := DefaultBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenProbes < 1 {
		c.HalfOpenProbes = defaults.HalfOpenProbes
	}
	return c
}

// Breaker stops calling a dependency after consecutive failures and lets a
// limited number of probes through once the open timeout has elapsed.
type Breaker struct {
	mu  sync.Mutex
	cfg BreakerConfig

	phase     Phase
	failures  int
	openedAt  time.Time
	inFlight  int
	succeeded int

	now      func() time.Time
	onChange func(from, to Phase)
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{
		cfg:   cfg.Normalize(),
		phase: PhaseClosed,
		now:   time.Now,
	}
}

// OnChange registers a callback run under the breaker lock on every transition.
func (b *Breaker) OnChange(fn func(from, to Phase)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Breaker) Allow() error {
	if b == nil || !b.cfg.Enabled {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase == PhaseOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.transition(PhaseHalfOpen)
	}
	if b.phase == PhaseHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenProbes {
			return ErrCircuitOpen
		}
		b.inFlight++
	}
	return nil
}

func (b *Breaker) Success() {
	if b == nil || !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.phase {
	case PhaseClosed:
		b.failures = 0
	case PhaseHalfOpen:
		b.release()
		b.succeeded++
		if b.succeeded >= b.cfg.HalfOpenProbes && b.inFlight == 0 {
			b.transition(PhaseClosed)
		}
	}
}

func (b *Breaker) Failure() {
	if b == nil || !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.phase {
	case PhaseClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(PhaseOpen)
		}
	case PhaseHalfOpen:
		b.release()
		b.transition(PhaseOpen)
	case PhaseOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) Phase() Phase {
	if b == nil {
		return PhaseClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase == PhaseOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return PhaseHalfOpen
	}
	return b.phase
}

func (b *Breaker) release() {
	if b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) transition(to Phase) {
	from := b.phase
	b.phase = to
	b.inFlight = 0
	b.succeeded = 0
	switch to {
	case PhaseClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case PhaseOpen:
		b.openedAt = b.now()
	}
	if b.onChange != nil && from != to {
		b.onChange(from, to)
	}
}
