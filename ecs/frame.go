package ecs

import (
	"context"
	"sync"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
)

type (
	frameOption[ID Identify] struct {
		maxFrame      int64
		tickDur       time.Duration
		systems       []ISystem[ID]
		beforeDispose FnFrame[ID]
	}
	FrameOption[ID Identify] func(o *frameOption[ID])
)

// FrameMax 运行指定帧数后停止,0 不限制
func FrameMax[ID Identify](frames int64) FrameOption[ID] {
	return func(o *frameOption[ID]) {
		o.maxFrame = frames
	}
}

func FrameTickDur[ID Identify](dur time.Duration) FrameOption[ID] {
	return func(o *frameOption[ID]) {
		o.tickDur = dur
	}
}

func FrameSystems[ID Identify](systems ...ISystem[ID]) FrameOption[ID] {
	return func(o *frameOption[ID]) {
		o.systems = systems
	}
}

func FrameBeforeDispose[ID Identify](fn FnFrame[ID]) FrameOption[ID] {
	return func(o *frameOption[ID]) {
		o.beforeDispose = fn
	}
}

func NewFrame[ID Identify](scene *Scene[ID], opts ...FrameOption[ID]) *Frame[ID] {
	o := &frameOption[ID]{
		tickDur: time.Millisecond * 100,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tickDur <= 0 {
		o.tickDur = time.Millisecond * 100
	}
	ctx, ccl := context.WithCancel(util.Ctx())
	now := time.Now().UnixMilli()
	f := &Frame[ID]{
		option:       o,
		startTime:    now,
		nowMillSecs:  now,
		scene:        scene,
		systems:      o.systems,
		typeToSystem: make(map[TSystem]ISystem[ID], len(o.systems)),
		jobToSystem:  make(map[JobName]iJobSystem, len(o.systems)),
		ctx:          ctx,
		ccl:          ccl,
		sign:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		buffer:       make([]bufferData, 0, 256),
		swap:         make([]bufferData, 0, 256),
		preTick:      ds.NewFnLink(),
		before:       ds.NewFnLink(),
		after:        ds.NewFnLink(),
	}
	for _, system := range o.systems {
		f.typeToSystem[system.Type()] = system
	}
	return f
}

type Frame[ID Identify] struct {
	option       *frameOption[ID]
	currFrame    int64
	totalFrameMs int64
	maxMs        int64
	deltaMs      int64
	startTime    int64
	nowMillSecs  int64
	scene        *Scene[ID]
	systems      []ISystem[ID]
	typeToSystem map[TSystem]ISystem[ID]
	jobToSystem  map[JobName]iJobSystem
	preTick      *ds.FnLink
	before       *ds.FnLink
	after        *ds.FnLink
	ctx          context.Context
	ccl          context.CancelFunc
	mtx          sync.Mutex
	buffer       []bufferData
	swap         []bufferData
	sign         chan struct{}
	done         chan struct{}
	startOnce    sync.Once
}

type bufferData struct {
	name JobName
	data any
}

func (f *Frame[ID]) Num() int64 {
	return f.currFrame
}

func (f *Frame[ID]) DeltaMillSec() int64 {
	return f.deltaMs
}

func (f *Frame[ID]) StartTime() int64 {
	return f.startTime
}

func (f *Frame[ID]) NowMillSecs() int64 {
	return f.nowMillSecs
}

func (f *Frame[ID]) Scene() *Scene[ID] {
	return f.scene
}

// PreTick 每帧最先调用,不清空
func (f *Frame[ID]) PreTick() *ds.FnLink {
	return f.preTick
}

// Before 当帧系统更新前调用一次
func (f *Frame[ID]) Before() *ds.FnLink {
	return f.before
}

// After 当帧系统更新后调用一次
func (f *Frame[ID]) After() *ds.FnLink {
	return f.after
}

// GetSystem 注意协程安全
func (f *Frame[ID]) GetSystem(typ TSystem) (ISystem[ID], bool) {
	sys, ok := f.typeToSystem[typ]
	return sys, ok
}

// Done 停止并清理完成后关闭
func (f *Frame[ID]) Done() <-chan struct{} {
	return f.done
}

func (f *Frame[ID]) startSystems() {
	f.startOnce.Do(func() {
		for _, system := range f.systems {
			system.OnStart(f)
			kite.Info("start system", util.M{
				"type": system.Type(),
			})
		}
	})
}

// Step 在调用方协程执行一帧,不能与 Start 同时使用
func (f *Frame[ID]) Step() {
	f.startSystems()
	f.drain()
	f.tick()
}

func (f *Frame[ID]) Start() {
	completeCh := kite.BeforeExitCh("stop frame " + f.scene.id)
	go func() {
		defer func() {
			f.dispose()
			close(completeCh)
		}()

		f.startSystems()
		ticker := time.NewTicker(f.option.tickDur)
		defer ticker.Stop()
		for {
			select {
			case <-f.ctx.Done():
				kite.Debug("frame ctx done", util.M{
					"scene id": f.scene.id,
				})
				return
			case <-ticker.C:
				f.drain()
				f.tick()
				if f.option.maxFrame > 0 && f.currFrame >= f.option.maxFrame {
					return
				}
			case <-f.sign:
				f.drain()
			}
		}
	}()
}

func (f *Frame[ID]) Stop() {
	f.ccl()
}

func (f *Frame[ID]) dispose() {
	f.ccl()
	if f.option.beforeDispose != nil {
		f.option.beforeDispose(f)
	}
	for _, system := range f.systems {
		kite.Info("stop system", util.M{
			"type": system.Type(),
		})
		system.OnStop()
	}
	kite.Info("dispose scene", util.M{
		"scene type": f.scene.typ,
		"scene id":   f.scene.id,
	})
	f.scene.Dispose()
	if f.currFrame > 0 {
		kite.Info("frames", util.M{
			"total":   f.totalFrameMs,
			"average": f.totalFrameMs / f.currFrame,
			"max":     f.maxMs,
			"frames":  f.currFrame,
		})
	}
	close(f.done)
}

func (f *Frame[ID]) tick() {
	f.currFrame++
	now := time.Now().UnixMilli()
	ms := now - f.nowMillSecs
	f.nowMillSecs = now
	f.deltaMs = ms
	f.preTick.Invoke()
	f.before.InvokeAndReset()
	for _, s := range f.systems {
		s.OnUpdate()
	}
	f.after.InvokeAndReset()
	frameDur := time.Now().UnixMilli() - now
	f.totalFrameMs += frameDur
	if frameDur > f.maxMs {
		f.maxMs = frameDur
	}
}

// PushJob frame 外部使用，协程安全的
func (f *Frame[ID]) PushJob(name JobName, data any) {
	f.mtx.Lock()
	f.buffer = append(f.buffer, bufferData{
		name: name,
		data: data,
	})
	f.mtx.Unlock()

	select {
	case f.sign <- struct{}{}:
	default:
	}
}

// PutJob system内部使用，需要在 frame 协程调用
func (f *Frame[ID]) PutJob(name JobName, data ...any) {
	system, ok := f.jobToSystem[name]
	if !ok {
		kite.Error2(util.EcNotExist, util.M{
			"job": name,
		})
		return
	}
	system.PutJob(name, data...)
}

func (f *Frame[ID]) AfterClearTags(tags ...string) {
	f.after.Push(func() {
		f.scene.ClearTags(tags...)
	})
}

func (f *Frame[ID]) bindJob(name JobName, system iJobSystem) {
	f.jobToSystem[name] = system
}

func (f *Frame[ID]) drain() {
	f.mtx.Lock()
	if len(f.buffer) == 0 {
		f.mtx.Unlock()
		return
	}
	f.swap, f.buffer = f.buffer, f.swap[:0]
	f.mtx.Unlock()

	for i := range f.swap {
		item := &f.swap[i]
		f.PutJob(item.name, item.data)
		item.data = nil
	}
}
