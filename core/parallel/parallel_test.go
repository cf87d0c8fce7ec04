package parallel

import (
	"sync/atomic"
	"testing"
)

func countCovered(items, workers int) int32 {
	covered := make([]int32, items)
	ParallelizeWorkers(items, workers, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
	})

	var total int32
	for _, c := range covered {
		if c != 1 {
			return -1
		}
		total += c
	}
	return total
}

func TestParallelizeWorkersCoversAllItemsExactlyOnce(t *testing.T) {
	for _, tc := range []struct{ items, workers int }{
		{10, 1},
		{10, 3},
		{10, 10},
		{3, 8}, // more workers than items
		{1, 4},
	} {
		if got := countCovered(tc.items, tc.workers); got != int32(tc.items) {
			t.Errorf("items=%d workers=%d: coverage broken", tc.items, tc.workers)
		}
	}
}

func TestParallelizeWorkersZeroItems(t *testing.T) {
	called := false
	ParallelizeWorkers(0, 4, func(start, end int) { called = true })
	if called {
		t.Error("fn called for zero items")
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	// Below the threshold the whole range arrives in one call.
	var calls int32
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 5 {
			t.Errorf("sequential range = [%d, %d), want [0, 5)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	if got := func() int32 {
		covered := make([]int32, 100)
		ParallelizeWithThreshold(100, 10, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&covered[i], 1)
			}
		})
		var total int32
		for _, c := range covered {
			total += c
		}
		return total
	}(); got != 100 {
		t.Errorf("parallel coverage = %d, want 100", got)
	}
}
