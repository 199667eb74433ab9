package stream

import (
	"sync"

	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/render"
	"github.com/15mga/kite/util"
)

type (
	EntityData = codec.Entity
	Tick       struct {
		Frame int64
		NowMs int64
	}
	// Tune Every 每 N 次绘制发送一帧,小于 1 按 1 处理;Binary 使用 protobuf 线格式,否则 json
	Tune struct {
		Every  int
		Binary bool
	}
	Stats struct {
		Frames      int64
		Sent        int64
		Dropped     int64
		Subscribers int
		Every       int
		Binary      bool
	}
)

type IDriver = render.IDriver[Tune, Stats, EntityData, Tick]

var _ IDriver = (*Backend)(nil)

func New(hub *Hub, tune Tune) *Backend {
	b := &Backend{
		hub: hub,
	}
	b.tune(tune)
	return b
}

// Backend 把每帧实体广播给 Hub 中的连接
type Backend struct {
	hub     *Hub
	mtx     sync.Mutex
	every   int
	binary  bool
	nowMs   int64
	frames  int64
	sent    int64
	dropped int64
}

func (b *Backend) Hub() *Hub {
	return b.hub
}

func (b *Backend) Clone() render.IBackend[Tune, Stats, EntityData, Tick] {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return &Backend{
		hub:     b.hub,
		every:   b.every,
		binary:  b.binary,
		nowMs:   b.nowMs,
		frames:  b.frames,
		sent:    b.sent,
		dropped: b.dropped,
	}
}

func (b *Backend) tune(tune Tune) {
	if tune.Every < 1 {
		tune.Every = 1
	}
	b.every = tune.Every
	b.binary = tune.Binary
}

func (b *Backend) PreTick(tick Tick) *util.Err {
	b.mtx.Lock()
	b.nowMs = tick.NowMs
	b.mtx.Unlock()
	return nil
}

func (b *Backend) Update(tune Tune) *util.Err {
	b.mtx.Lock()
	b.tune(tune)
	b.mtx.Unlock()
	return nil
}

func (b *Backend) Status() Stats {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return Stats{
		Frames:      b.frames,
		Sent:        b.sent,
		Dropped:     b.dropped,
		Subscribers: b.hub.Count(),
		Every:       b.every,
		Binary:      b.binary,
	}
}

func (b *Backend) Draw(frame int64, data []EntityData) *util.Err {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.frames++
	if (b.frames-1)%int64(b.every) != 0 {
		return nil
	}
	if b.hub.Count() == 0 {
		return nil
	}
	f := &codec.Frame{
		Num:      frame,
		NowMs:    b.nowMs,
		Entities: data,
	}
	var bytes []byte
	if b.binary {
		bytes = codec.MarshalFrame(f)
	} else {
		var err *util.Err
		bytes, err = codec.JsonFrame(f)
		if err != nil {
			return util.NewErr(util.EcRenderErr, util.M{
				"frame": frame,
				"error": err.Error(),
			})
		}
	}
	sent, dropped := b.hub.Broadcast(bytes)
	b.sent += int64(sent)
	b.dropped += int64(dropped)
	return nil
}
