package worker

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	_Parallel      *parallel
	_ParallelOnce  sync.Once
	_ParallelNum   int
	_ParallelNum32 uint32
	_WorkerIdx     uint32
)

func init() {
	n := runtime.NumCPU()
	if n < 8 {
		n = 8
	}
	_ParallelNum = n
	_ParallelNum32 = uint32(n)
}

const (
	_JobUnit = 64
)

type parallel struct {
	workers []*parallelWorker
}

// InitParallel 按 cpu 数启动常驻协程,重复调用无效
func InitParallel() {
	_ParallelOnce.Do(func() {
		_Parallel = &parallel{
			workers: make([]*parallelWorker, _ParallelNum),
		}
		for i := 0; i < _ParallelNum; i++ {
			w := newParallelWorker()
			_Parallel.workers[i] = w
			go w.start()
		}
	})
}

func pushPJob(job iJob) {
	idx := atomic.AddUint32(&_WorkerIdx, 1)
	_Parallel.workers[idx%_ParallelNum32].jobCh <- job
}

func getAvgCount(l, min int) int {
	count := l / _ParallelNum
	if l%_ParallelNum != 0 {
		count++
	}
	if count < min {
		return min
	}
	return count
}

// P 并行遍历
func P[DT any](data []DT, fn func(DT)) {
	PIdx(_JobUnit, data, func(_ int, d DT) {
		fn(d)
	})
}

// PIdx 数量小于 min 时在当前协程执行,否则分段并行,返回时全部完成
func PIdx[DT any](min int, data []DT, fn func(int, DT)) {
	if min < 1 {
		min = 1
	}
	l := len(data)
	if l < min || l < 2 {
		for i, d := range data {
			fn(i, d)
		}
		return
	}
	InitParallel()
	var wg sync.WaitGroup
	avg := getAvgCount(l, min)
	for start := avg; start < l; start += avg {
		end := start + avg
		if end > l {
			end = l
		}
		wg.Add(1)
		pushPJob(&slcJob[DT]{
			data:  data,
			start: start,
			end:   end,
			fn:    fn,
			wg:    &wg,
		})
	}
	first := avg
	if first > l {
		first = l
	}
	for idx := 0; idx < first; idx++ {
		fn(idx, data[idx])
	}
	wg.Wait()
}

func newParallelWorker() *parallelWorker {
	return &parallelWorker{
		jobCh: make(chan iJob, 32),
	}
}

type parallelWorker struct {
	jobCh chan iJob
}

func (w *parallelWorker) start() {
	for j := range w.jobCh {
		j.Do()
	}
}

type iJob interface {
	Do()
}

type slcJob[DT any] struct {
	data       []DT
	start, end int
	fn         func(int, DT)
	wg         *sync.WaitGroup
}

func (j *slcJob[DT]) Do() {
	defer j.wg.Done()
	for i := j.start; i < j.end; i++ {
		j.fn(i, j.data[i])
	}
}
