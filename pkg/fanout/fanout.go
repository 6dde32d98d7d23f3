package fanout

import (
	"context"
	"errors"
	"time"

	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Result carries one completed lookup back with the key it was submitted
// under, since completion order carries no meaning
type Result[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// Batch executes independent external lookups concurrently over a bounded
// worker pool. No individual failure aborts the batch - a failed call simply
// comes back with its error so the caller can apply its contract's fallback
type Batch[K comparable, V any] struct {
	maxWorkers  int
	callTimeout time.Duration
}

func NewBatch[K comparable, V any](fanoutConfig config.FanOutConfig) *Batch[K, V] {
	maxWorkers := fanoutConfig.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	return &Batch[K, V]{
		maxWorkers:  maxWorkers,
		callTimeout: fanoutConfig.CallTimeout.AsDuration(),
	}
}

// Execute runs every task and returns once all have completed or timed out.
// Results come back in arbitrary order
func (b *Batch[K, V]) Execute(ctx context.Context, tasks map[K]func(context.Context) (V, error)) []Result[K, V] {
	p := pool.NewWithResults[Result[K, V]]()
	p.WithMaxGoroutines(b.maxWorkers)

	for key, task := range tasks {
		key, task := key, task
		p.Go(func() Result[K, V] {
			callCtx := ctx
			if b.callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, b.callTimeout)
				defer cancel()
			}

			value, err := task(callCtx)

			if errors.Is(err, context.DeadlineExceeded) {
				err = tmdf.ErrAdapterTimeout
			}

			if err != nil && tmdf.IsAdapterFailure(err) {
				log.Debug().Err(err).Any("key", key).Msg("Fan out call failed")
			}

			return Result[K, V]{Key: key, Value: value, Err: err}
		})
	}

	return p.Wait()
}
