package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func failingCall() error {
	return errBoom
}

func succeedingCall() error {
	return nil
}

func countFailure(err error) bool {
	return err != nil
}

func TestCircuitBreakerTripsAfterFailMax(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailMax: 2, ResetTimeout: time.Minute})

	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(failingCall, countFailure), errBoom)
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(failingCall, countFailure), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	// Open means the call is never attempted
	attempted := false
	err := cb.Execute(func() error {
		attempted = true
		return nil
	}, countFailure)

	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, attempted)
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailMax: 2, ResetTimeout: time.Minute})

	assert.Error(t, cb.Execute(failingCall, countFailure))
	assert.NoError(t, cb.Execute(succeedingCall, countFailure))
	assert.Error(t, cb.Execute(failingCall, countFailure))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenTrial(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailMax: 1, ResetTimeout: 10 * time.Millisecond})

	assert.Error(t, cb.Execute(failingCall, countFailure))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// First call after the reset timeout is the trial
	assert.NoError(t, cb.Execute(succeedingCall, countFailure))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailMax: 1, ResetTimeout: 10 * time.Millisecond})

	assert.Error(t, cb.Execute(failingCall, countFailure))
	time.Sleep(20 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(failingCall, countFailure), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(succeedingCall, countFailure), ErrOpen)
}

func TestCircuitBreakerFailureFilter(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailMax: 1, ResetTimeout: time.Minute})

	// A well formed no solution reply never counts against the breaker
	err := cb.Execute(func() error {
		return tmdf.ErrNoSolution
	}, tmdf.IsAdapterFailure)

	assert.ErrorIs(t, err, tmdf.ErrNoSolution)
	assert.Equal(t, StateClosed, cb.State())

	err = cb.Execute(func() error {
		return tmdf.ErrAdapterUnavailable
	}, tmdf.IsAdapterFailure)

	assert.ErrorIs(t, err, tmdf.ErrAdapterUnavailable)
	assert.Equal(t, StateOpen, cb.State())
}
