package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoWorkRunsTasksConcurrentlyWithinBound(t *testing.T) {
	p := New(2, nil)
	var inFlight int32
	var maxSeen int32
	var wg sync.WaitGroup

	for i := 0; i < 6; i++ {
		wg.Add(1)
		err := p.DoWork(func() {
			defer wg.Done()
			n := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxSeen)
				if n <= max || atomic.CompareAndSwapInt32(&maxSeen, max, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})
		require.NoError(t, err)
	}
	wg.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(2))
}

func TestHasRunningWorkReflectsInFlightTasks(t *testing.T) {
	p := New(1, nil)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.DoWork(func() {
		close(started)
		<-release
	}))

	<-started
	require.True(t, p.HasRunningWork())
	close(release)
	p.Shutdown()
	require.False(t, p.HasRunningWork())
}

func TestDoWorkRecoversPanic(t *testing.T) {
	p := New(1, nil)
	require.NoError(t, p.DoWork(func() {
		panic("boom")
	}))
	p.Shutdown()
}

func TestDoWorkAfterShutdownIsRejected(t *testing.T) {
	p := New(1, nil)
	p.Shutdown()
	err := p.DoWork(func() {})
	require.ErrorIs(t, err, ErrShutdown)
}
