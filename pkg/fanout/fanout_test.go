package fanout

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itinera/itinera/pkg/breaker"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchFailuresDoNotAbortOthers(t *testing.T) {
	batch := NewBatch[string, int](config.FanOutConfig{MaxWorkers: 5})

	tasks := map[string]func(context.Context) (int, error){
		"ok-1":   func(context.Context) (int, error) { return 1, nil },
		"ok-2":   func(context.Context) (int, error) { return 2, nil },
		"ok-3":   func(context.Context) (int, error) { return 3, nil },
		"open-1": func(context.Context) (int, error) { return 0, breaker.ErrOpen },
		"open-2": func(context.Context) (int, error) { return 0, breaker.ErrOpen },
	}

	results := batch.Execute(context.Background(), tasks)
	require.Len(t, results, 5)

	succeeded := 0
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed += 1
		} else {
			succeeded += 1
			assert.Greater(t, result.Value, 0)
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 2, failed)
}

func TestBatchPerCallTimeout(t *testing.T) {
	batch := NewBatch[string, string](config.FanOutConfig{
		MaxWorkers:  2,
		CallTimeout: config.Duration(20 * time.Millisecond),
	})

	tasks := map[string]func(context.Context) (string, error){
		"fast": func(context.Context) (string, error) { return "done", nil },
		"slow": func(ctx context.Context) (string, error) {
			select {
			case <-time.After(time.Second):
				return "late", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}

	results := batch.Execute(context.Background(), tasks)
	require.Len(t, results, 2)

	for _, result := range results {
		switch result.Key {
		case "fast":
			assert.NoError(t, result.Err)
			assert.Equal(t, "done", result.Value)
		case "slow":
			assert.ErrorIs(t, result.Err, tmdf.ErrAdapterTimeout)
		}
	}
}

func TestBatchBoundsConcurrency(t *testing.T) {
	batch := NewBatch[int, bool](config.FanOutConfig{MaxWorkers: 2})

	var active atomic.Int32
	var peak atomic.Int32

	tasks := map[int]func(context.Context) (bool, error){}
	for index := 0; index < 8; index++ {
		tasks[index] = func(context.Context) (bool, error) {
			current := active.Add(1)
			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return true, nil
		}
	}

	results := batch.Execute(context.Background(), tasks)

	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBatchResultsCarryKeys(t *testing.T) {
	batch := NewBatch[tmdf.Mode, tmdf.Mode](config.FanOutConfig{MaxWorkers: 4})

	tasks := map[tmdf.Mode]func(context.Context) (tmdf.Mode, error){}
	for _, mode := range []tmdf.Mode{tmdf.ModeWalking, tmdf.ModeBike, tmdf.ModeCar} {
		mode := mode
		tasks[mode] = func(context.Context) (tmdf.Mode, error) {
			return mode, nil
		}
	}

	results := batch.Execute(context.Background(), tasks)
	require.Len(t, results, 3)

	for _, result := range results {
		assert.Equal(t, result.Key, result.Value)
	}
}
