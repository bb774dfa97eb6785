package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one recorded call outcome and the state expected after it.
type step struct {
	fail     bool
	wantOpen bool
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name:  "opens on the third consecutive failure",
			opts:  []Option{WithFailureThreshold(3)},
			steps: []step{{true, false}, {true, false}, {true, true}},
		},
		{
			name:  "a success between failures restarts the count",
			opts:  []Option{WithFailureThreshold(2)},
			steps: []step{{true, false}, {false, false}, {true, false}, {true, true}},
		},
		{
			name:  "needs consecutive successes to close",
			opts:  []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{{true, true}, {false, true}, {true, true}, {false, true}, {false, false}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := New("core-system", tc.opts...)
			require.Equal(t, StateClosed, b.State())
			for i, s := range tc.steps {
				if s.fail {
					b.RecordFailure()
				} else {
					b.RecordSuccess()
				}
				assert.Equal(t, s.wantOpen, b.IsOpen(), "after step %d", i)
			}
		})
	}
}

func TestBreakerReportsChanges(t *testing.T) {
	b := New("core-system", WithFailureThreshold(1))

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
}

func TestBreakerCooldownAdmitsProbe(t *testing.T) {
	b := New("core-system", WithFailureThreshold(1), WithCooldown(time.Minute))
	now := time.Now()

	b.RecordFailure()
	assert.False(t, b.Allow(now))
	assert.True(t, b.Allow(now.Add(2*time.Minute)))

	b.Reset()
	assert.True(t, b.Allow(now))
	assert.Equal(t, "core-system", b.Name())
}

func TestBreakerConcurrentUse(t *testing.T) {
	b := New("core-system", WithFailureThreshold(50))

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
			b.Allow(time.Now())
		}()
	}
	wg.Wait()
	assert.True(t, b.IsOpen())
}
