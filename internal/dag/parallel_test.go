package dag

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunConcurrently_PreservesUnitOrder(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{30 * time.Millisecond, 0, 15 * time.Millisecond}
	units := make([]func(context.Context) int, len(delays))
	for i, d := range delays {
		units[i] = func(context.Context) int {
			time.Sleep(d)
			return i
		}
	}

	assert.Equal(t, []int{0, 1, 2}, RunConcurrently(context.Background(), units))
}

func TestRunConcurrently_RunsInParallel(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	unit := func(context.Context) bool {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		running.Add(-1)
		return true
	}

	start := time.Now()
	results := RunConcurrently(context.Background(), []func(context.Context) bool{unit, unit, unit})
	elapsed := time.Since(start)

	assert.Equal(t, []bool{true, true, true}, results)
	assert.Equal(t, int32(3), peak.Load())
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestRunConcurrently_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, RunConcurrently[int](context.Background(), nil))
}
