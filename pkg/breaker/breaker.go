package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrOpen is returned when a call is short circuited without being attempted
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}

	return "unknown"
}

type Config struct {
	// FailMax is the consecutive failure count that trips the breaker open
	FailMax int `yaml:"fail_max" validate:"gt=0"`
	// ResetTimeout is how long the breaker stays open before allowing one
	// trial call
	ResetTimeout time.Duration `yaml:"reset_timeout" validate:"gt=0"`
}

// CircuitBreaker isolates one external adapter. Every adapter owns its own
// instance, state is never shared across adapters. Safe for concurrent use by
// the fan out pool
type CircuitBreaker struct {
	name   string
	config Config

	mutex sync.Mutex

	state       State
	failures    int
	openedAt    time.Time
	trialActive bool
}

func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	if config.FailMax == 0 {
		config.FailMax = 5
	}
	if config.ResetTimeout == 0 {
		config.ResetTimeout = 60 * time.Second
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return cb.state
}

// Allow reports whether the next call may go out. In the open state it flips
// to half-open once the reset timeout has elapsed and admits a single trial
// call
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.ResetTimeout {
			cb.transition(StateHalfOpen)
			cb.trialActive = true
			return true
		}
		return false
	case StateHalfOpen:
		if cb.trialActive {
			return false
		}
		cb.trialActive = true
		return true
	}

	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.trialActive = false

	if cb.state != StateClosed {
		cb.transition(StateClosed)
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.trialActive = false

	if cb.state == StateHalfOpen {
		cb.open()
		return
	}

	cb.failures += 1
	if cb.failures >= cb.config.FailMax && cb.state == StateClosed {
		cb.open()
	}
}

// Execute runs the call through the breaker. When open it returns ErrOpen
// immediately without attempting the call. failureFilter decides whether an
// error counts against the breaker - a well formed no result reply must not
func (cb *CircuitBreaker) Execute(call func() error, failureFilter func(error) bool) error {
	if !cb.Allow() {
		return ErrOpen
	}

	err := call()

	if err != nil && failureFilter(err) {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}

	return err
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = time.Now()
	cb.failures = 0
	cb.transition(StateOpen)
}

func (cb *CircuitBreaker) transition(to State) {
	log.Debug().
		Str("breaker", cb.name).
		Str("from", cb.state.String()).
		Str("to", to.String()).
		Msg("Circuit breaker state change")

	cb.state = to
}
