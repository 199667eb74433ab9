package worker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIdx(t *testing.T) {
	data := make([]int, 1000)
	for i := range data {
		data[i] = i
	}
	out := make([]int, len(data))
	PIdx(16, data, func(i int, d int) {
		out[i] = d * 2
	})
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestPSmall(t *testing.T) {
	var sum int64
	P([]int64{1, 2, 3}, func(d int64) {
		atomic.AddInt64(&sum, d)
	})
	assert.Equal(t, int64(6), sum)
}

func TestGo(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	Go(func(params []any) {
		got = params[0].(int)
		wg.Done()
	}, 7)
	wg.Wait()
	assert.Equal(t, 7, got)
}

func BenchmarkPIdx(b *testing.B) {
	data := make([]float32, 4096)
	for i := 0; i < b.N; i++ {
		PIdx(256, data, func(i int, d float32) {
			data[i] = d + 1
		})
	}
}
