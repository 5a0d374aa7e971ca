package equilibrium

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsAllIndices(t *testing.T) {
	p := newWorkerPool(4)
	var count int32
	seen := make([]int32, 10)

	p.runEach(context.Background(), 10, func(i int) {
		atomic.AddInt32(&count, 1)
		atomic.StoreInt32(&seen[i], 1)
	})

	assert.Equal(t, int32(10), count)
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d not run", i)
	}
}

func TestWorkerPool_ZeroWorkIsNoop(t *testing.T) {
	p := newWorkerPool(2)
	called := false
	p.runEach(context.Background(), 0, func(int) { called = true })
	assert.False(t, called)
}

func TestWorkerPool_RespectsConcurrencyCeiling(t *testing.T) {
	p := newWorkerPool(2)
	var inFlight, maxInFlight int32

	p.runEach(context.Background(), 8, func(int) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&maxInFlight)
			if cur <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	})

	assert.LessOrEqual(t, int(atomic.LoadInt32(&maxInFlight)), 2)
}

func TestWorkerPool_CanceledContextStopsLaunchingNewWork(t *testing.T) {
	p := newWorkerPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var count int32
	p.runEach(ctx, 100, func(int) { atomic.AddInt32(&count, 1) })

	assert.LessOrEqual(t, int(atomic.LoadInt32(&count)), 1)
}
