package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("not a cron spec", false, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestStart_RunAtStartup(t *testing.T) {
	var runs int64
	s, err := New("@every 1h", true, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, int64(1), atomic.LoadInt64(&runs))
}

func TestStart_NoStartupRun(t *testing.T) {
	var runs int64
	s, err := New("@every 1h", false, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, int64(0), atomic.LoadInt64(&runs))
}

func TestScheduledFiring(t *testing.T) {
	var runs int64
	s, err := New("@every 10ms", false, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	var runs int64
	block := make(chan struct{})
	s, err := New("@every 1h", false, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		<-block
		return nil
	})
	require.NoError(t, err)
	s.ctx = context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.trigger()
	}()

	// Wait until the first run holds the slot, then trigger again.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) == 1
	}, time.Second, 5*time.Millisecond)

	s.trigger() // must be skipped
	assert.Equal(t, int64(1), atomic.LoadInt64(&runs))

	close(block)
	wg.Wait()

	s.trigger()
	assert.Equal(t, int64(2), atomic.LoadInt64(&runs))
}
