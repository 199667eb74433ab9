package ecs

import (
	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
)

func NewEntity[ID Identify](id ID) *Entity[ID] {
	e := &Entity[ID]{
		id: id,
		comps: ds.NewKSet[TComponent, IComponent[ID]](2, func(component IComponent[ID]) TComponent {
			return component.Type()
		}),
	}
	return e
}

type Entity[ID Identify] struct {
	scene *Scene[ID]
	id    ID
	comps *ds.KSet[TComponent, IComponent[ID]]
}

func (e *Entity[ID]) Scene() *Scene[ID] {
	return e.scene
}

func (e *Entity[ID]) setScene(scene *Scene[ID]) {
	e.scene = scene
}

func (e *Entity[ID]) Id() ID {
	return e.id
}

func (e *Entity[ID]) AddComponent(c IComponent[ID]) *util.Err {
	err := e.comps.Add(c)
	if err != nil {
		err.AddParam("entity", e.id.String())
		return err
	}
	e.attach(c)
	return nil
}

// AddComponents 已存在的类型直接跳过
func (e *Entity[ID]) AddComponents(components ...IComponent[ID]) {
	for _, c := range components {
		if !e.comps.AddNX(c) {
			continue
		}
		e.attach(c)
	}
}

func (e *Entity[ID]) attach(c IComponent[ID]) {
	c.setEntity(e)
	c.Init()
	if e.scene == nil {
		return
	}
	c.Start()
	e.scene.onAddComponent(e, c)
}

func (e *Entity[ID]) DelComponent(t TComponent) bool {
	c, ok := e.comps.Get(t)
	if !ok {
		return false
	}
	if e.scene != nil {
		e.scene.onDelComponent(e, c)
	}
	e.comps.Del(t)
	c.Dispose()
	return true
}

func (e *Entity[ID]) GetComponent(t TComponent) (IComponent[ID], bool) {
	return e.comps.Get(t)
}

func (e *Entity[ID]) HasComponent(t TComponent) bool {
	return e.comps.Has(t)
}

func (e *Entity[ID]) Components() []IComponent[ID] {
	return e.comps.Values()
}

func (e *Entity[ID]) IterComponent(fn func(IComponent[ID])) {
	e.comps.Iter(fn)
}

func (e *Entity[ID]) start() {
	for _, c := range e.comps.Values() {
		c.Start()
	}
}

func (e *Entity[ID]) Dispose() {
	for _, c := range e.comps.Values() {
		c.Dispose()
	}
	e.comps.Reset()
	e.scene = nil
}

// GetComponentAs 按类型取组件并转换
func GetComponentAs[ID Identify, T any](e *Entity[ID], t TComponent) (T, bool) {
	c, ok := e.comps.Get(t)
	if !ok {
		return util.Default[T](), false
	}
	v, ok := c.(T)
	return v, ok
}
