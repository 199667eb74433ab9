package headless

import (
	"sync"

	"github.com/15mga/kite"
	"github.com/15mga/kite/render"
	"github.com/15mga/kite/util"
)

type (
	// Update 修改日志间隔,小于 1 不输出
	Update struct {
		LogEvery int64
	}
	Status struct {
		Frames   int64
		Entities int
		LogEvery int64
	}
)

type IDriver = render.IDriver[Update, Status, string, int64]

var _ IDriver = (*Backend)(nil)

func New(logEvery int64) *Backend {
	return &Backend{
		logEvery: logEvery,
	}
}

// Backend 无显示的服务端后端,只统计并定期打印日志,实体数据为 id
type Backend struct {
	mtx      sync.Mutex
	logEvery int64
	nowMs    int64
	frames   int64
	entities int
}

func (b *Backend) Clone() render.IBackend[Update, Status, string, int64] {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return &Backend{
		logEvery: b.logEvery,
		nowMs:    b.nowMs,
		frames:   b.frames,
		entities: b.entities,
	}
}

// PreTick data 为当前毫秒时间戳
func (b *Backend) PreTick(nowMs int64) *util.Err {
	b.mtx.Lock()
	b.nowMs = nowMs
	b.mtx.Unlock()
	return nil
}

func (b *Backend) Update(update Update) *util.Err {
	b.mtx.Lock()
	b.logEvery = update.LogEvery
	b.mtx.Unlock()
	return nil
}

func (b *Backend) Status() Status {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return Status{
		Frames:   b.frames,
		Entities: b.entities,
		LogEvery: b.logEvery,
	}
}

func (b *Backend) Draw(frame int64, data []string) *util.Err {
	b.mtx.Lock()
	b.frames++
	b.entities = len(data)
	every, nowMs := b.logEvery, b.nowMs
	b.mtx.Unlock()
	if every > 0 && frame%every == 0 {
		kite.Info("headless frame", util.M{
			"frame":    frame,
			"now":      nowMs,
			"entities": len(data),
		})
	}
	return nil
}
