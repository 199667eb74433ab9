package ecs

import (
	"github.com/15mga/kite"
	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/worker"
)

type ISystem[ID Identify] interface {
	Type() TSystem
	OnStart(frame *Frame[ID])
	OnUpdate()
	OnStop()
}

// iJobSystem 由嵌入 System 的系统实现,frame 用来投递任务
type iJobSystem interface {
	PutJob(name JobName, data ...any)
}

func NewSystem[ID Identify](t TSystem) System[ID] {
	return System[ID]{
		typ:           t,
		jobNameToData: make(map[JobName]*jobData),
	}
}

type jobData struct {
	jobs *ds.Link[[]any]
	fn   util.FnAnySlc
	min  int
}

type System[ID Identify] struct {
	typ           TSystem
	frame         *Frame[ID]
	scene         *Scene[ID]
	jobNameToData map[JobName]*jobData
}

func (s *System[ID]) Type() TSystem {
	return s.typ
}

func (s *System[ID]) Frame() *Frame[ID] {
	return s.frame
}

func (s *System[ID]) Scene() *Scene[ID] {
	return s.scene
}

func (s *System[ID]) OnStart(frame *Frame[ID]) {
	s.frame = frame
	s.scene = frame.scene
	for name := range s.jobNameToData {
		frame.bindJob(name, s)
	}
}

func (s *System[ID]) OnStop() {

}

func (s *System[ID]) OnUpdate() {

}

func (s *System[ID]) Jobs() []JobName {
	jobs := make([]JobName, 0, len(s.jobNameToData))
	for name := range s.jobNameToData {
		jobs = append(jobs, name)
	}
	return jobs
}

// BindJob 任务在 DoJob 时按投递顺序执行
func (s *System[ID]) BindJob(name JobName, fn util.FnAnySlc) {
	s.bindJob(name, 0, fn)
}

// BindPJob 任务数不少于 min 时并行执行
func (s *System[ID]) BindPJob(name JobName, min int, fn util.FnAnySlc) {
	s.bindJob(name, min, fn)
}

func (s *System[ID]) bindJob(name JobName, min int, fn util.FnAnySlc) {
	if s.jobNameToData == nil {
		s.jobNameToData = make(map[JobName]*jobData)
	}
	s.jobNameToData[name] = &jobData{
		jobs: ds.NewLink[[]any](),
		fn:   fn,
		min:  min,
	}
	if s.frame != nil {
		s.frame.bindJob(name, s)
	}
}

// PutJob 需要在 frame 协程调用
func (s *System[ID]) PutJob(name JobName, data ...any) {
	d, ok := s.jobNameToData[name]
	if !ok {
		kite.Error2(util.EcNotExist, util.M{
			"system": s.typ,
			"job":    name,
		})
		return
	}
	d.jobs.Push(data)
}

func (s *System[ID]) DoJob(name JobName) {
	d, ok := s.jobNameToData[name]
	if !ok {
		kite.Error2(util.EcNotExist, util.M{
			"system": s.typ,
			"job":    name,
		})
		return
	}
	if d.jobs.Count() == 0 {
		return
	}
	if d.min > 0 && int(d.jobs.Count()) >= d.min {
		slc := make([][]any, 0, d.jobs.Count())
		d.jobs.Values(&slc)
		d.jobs.Dispose()
		worker.PIdx(d.min, slc, func(_ int, data []any) {
			d.fn(data)
		})
		return
	}
	for {
		data, ok := d.jobs.Pop()
		if !ok {
			return
		}
		d.fn(data)
	}
}
