package render

import (
	"sync"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/worker"
)

type (
	pipelineOption[ID ecs.Identify, ED, PT any] struct {
		tag        string
		extract    func(ecs.IComponent[ID]) (ED, bool)
		preTick    func(*ecs.Frame[ID]) PT
		statusType ecs.TComponent
		parallel   int
	}
	PipelineOption[ID ecs.Identify, ED, PT any] func(o *pipelineOption[ID, ED, PT])
)

// PipelineTag 绘制带此标签的组件,必填
func PipelineTag[ID ecs.Identify, ED, PT any](tag string) PipelineOption[ID, ED, PT] {
	return func(o *pipelineOption[ID, ED, PT]) {
		o.tag = tag
	}
}

// PipelineExtract 组件转绘制数据,返回 false 跳过,必填
func PipelineExtract[ID ecs.Identify, ED, PT any](fn func(ecs.IComponent[ID]) (ED, bool)) PipelineOption[ID, ED, PT] {
	return func(o *pipelineOption[ID, ED, PT]) {
		o.extract = fn
	}
}

func PipelinePreTick[ID ecs.Identify, ED, PT any](fn func(*ecs.Frame[ID]) PT) PipelineOption[ID, ED, PT] {
	return func(o *pipelineOption[ID, ED, PT]) {
		o.preTick = fn
	}
}

// PipelineStatus 实体此类型的 IStatus 不存活时不绘制,没有该组件的实体照常绘制
func PipelineStatus[ID ecs.Identify, ED, PT any](t ecs.TComponent) PipelineOption[ID, ED, PT] {
	return func(o *pipelineOption[ID, ED, PT]) {
		o.statusType = t
	}
}

// PipelineParallel 组件数不少于 min 时并行提取
func PipelineParallel[ID ecs.Identify, ED, PT any](min int) PipelineOption[ID, ED, PT] {
	return func(o *pipelineOption[ID, ED, PT]) {
		o.parallel = min
	}
}

func NewPipeline[ID ecs.Identify, SU, S, ED, PT any](t ecs.TSystem, driver IDriver[SU, S, ED, PT],
	opts ...PipelineOption[ID, ED, PT]) (*Pipeline[ID, SU, S, ED, PT], *util.Err) {
	o := &pipelineOption[ID, ED, PT]{}
	for _, opt := range opts {
		opt(o)
	}
	if driver == nil || o.tag == "" || o.extract == nil {
		return nil, util.NewErr(util.EcParamsErr, util.M{
			"system": t,
			"tag":    o.tag,
		})
	}
	return &Pipeline[ID, SU, S, ED, PT]{
		System: ecs.NewSystem[ID](t),
		option: o,
		driver: driver,
		status: driver.Status(),
	}, nil
}

// Pipeline 作为 ecs 系统每帧驱动后端绘制
type Pipeline[ID ecs.Identify, SU, S, ED, PT any] struct {
	ecs.System[ID]
	option    *pipelineOption[ID, ED, PT]
	driver    IDriver[SU, S, ED, PT]
	updateMtx sync.Mutex
	updates   []SU
	swap      []SU
	statusMtx sync.RWMutex
	status    S
	data      []ED
	ok        []bool
}

func (p *Pipeline[ID, SU, S, ED, PT]) Driver() IDriver[SU, S, ED, PT] {
	return p.driver
}

// PushUpdate 协程安全,下一帧绘制前按顺序应用
func (p *Pipeline[ID, SU, S, ED, PT]) PushUpdate(update SU) {
	p.updateMtx.Lock()
	p.updates = append(p.updates, update)
	p.updateMtx.Unlock()
}

// Status 协程安全,返回最近一帧结束时的快照
func (p *Pipeline[ID, SU, S, ED, PT]) Status() S {
	p.statusMtx.RLock()
	defer p.statusMtx.RUnlock()
	return p.status
}

func (p *Pipeline[ID, SU, S, ED, PT]) OnUpdate() {
	frame := p.Frame()
	p.applyUpdates()
	if p.option.preTick != nil {
		if err := p.driver.PreTick(p.option.preTick(frame)); err != nil {
			kite.Error(err)
		}
	}
	data := p.extract()
	if err := p.driver.Draw(frame.Num(), data); err != nil {
		err.AddParam("frame", frame.Num())
		kite.Error(err)
	}
	status := p.driver.Status()
	p.statusMtx.Lock()
	p.status = status
	p.statusMtx.Unlock()
}

func (p *Pipeline[ID, SU, S, ED, PT]) applyUpdates() {
	p.updateMtx.Lock()
	if len(p.updates) == 0 {
		p.updateMtx.Unlock()
		return
	}
	p.swap, p.updates = p.updates, p.swap[:0]
	p.updateMtx.Unlock()
	for i, update := range p.swap {
		if err := p.driver.Update(update); err != nil {
			kite.Error(err)
		}
		p.swap[i] = util.Default[SU]()
	}
}

func (p *Pipeline[ID, SU, S, ED, PT]) visible(c ecs.IComponent[ID]) bool {
	if p.option.statusType == "" {
		return true
	}
	alive, ok := p.Scene().EntityAlive(c.Entity(), p.option.statusType)
	return !ok || alive
}

func (p *Pipeline[ID, SU, S, ED, PT]) extract() []ED {
	p.data = p.data[:0]
	components, ok := p.Scene().GetTagComponents(p.option.tag)
	if !ok {
		return p.data
	}
	min := p.option.parallel
	if min <= 0 || len(components) < min {
		for _, c := range components {
			if !p.visible(c) {
				continue
			}
			if d, ok := p.option.extract(c); ok {
				p.data = append(p.data, d)
			}
		}
		return p.data
	}

	l := len(components)
	if cap(p.data) < l {
		p.data = make([]ED, l)
	}
	if cap(p.ok) < l {
		p.ok = make([]bool, l)
	}
	p.data = p.data[:l]
	p.ok = p.ok[:l]
	worker.PIdx(min, components, func(i int, c ecs.IComponent[ID]) {
		if !p.visible(c) {
			p.ok[i] = false
			return
		}
		p.data[i], p.ok[i] = p.option.extract(c)
	})
	n := 0
	for i := 0; i < l; i++ {
		if p.ok[i] {
			p.data[n] = p.data[i]
			n++
		}
	}
	p.data = p.data[:n]
	return p.data
}
