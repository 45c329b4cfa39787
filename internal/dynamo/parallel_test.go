package dynamo

import (
	"sync/atomic"
	"testing"
)

func TestParallelFor_CoversRange(t *testing.T) {
	tests := []struct {
		n, workers, minChunk int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{7, 4, 1},
		{100, 4, 8},
		{1000, 16, 1},
		{10, 1, 1},
	}

	for _, tt := range tests {
		hits := make([]int32, tt.n)
		ParallelFor(tt.n, tt.workers, tt.minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("n=%d workers=%d: index %d visited %d times", tt.n, tt.workers, i, h)
			}
		}
	}
}
