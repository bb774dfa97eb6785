package tx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycreview/pkg/domain-errors"
)

func TestShardedRunner(t *testing.T) {
	t.Run("propagates fn error", func(t *testing.T) {
		r := NewShardedRunner()
		boom := errors.New("boom")
		err := r.RunInTx(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects cancelled context", func(t *testing.T) {
		r := NewShardedRunner()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := r.RunInTx(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("serializes calls on the same key", func(t *testing.T) {
		r := NewShardedRunner()
		ctx := WithShardKey(context.Background(), "submission-1")

		var inside, maxInside atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.RunInTx(ctx, func(context.Context) error {
					n := inside.Add(1)
					if n > maxInside.Load() {
						maxInside.Store(n)
					}
					time.Sleep(time.Millisecond)
					inside.Add(-1)
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside.Load())
	})

	t.Run("applies default deadline", func(t *testing.T) {
		r := NewShardedRunner()
		err := r.RunInTx(context.Background(), func(txCtx context.Context) error {
			_, ok := txCtx.Deadline()
			assert.True(t, ok)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestFromWithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
}
