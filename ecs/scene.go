package ecs

import (
	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
)

func NewScene[ID Identify](id string, typ TScene) *Scene[ID] {
	return &Scene[ID]{
		id:   id,
		typ:  typ,
		data: util.M{},
		idToEntity: ds.NewKSet[ID, *Entity[ID]](512,
			func(entity *Entity[ID]) ID {
				return entity.Id()
			}),
		tagToComponents: ds.NewKSet[string, *tagSet[ID]](16,
			func(set *tagSet[ID]) string {
				return set.tag
			}),
		componentTags:             make(map[IComponent[ID]]map[string]struct{}, 32),
		onBeforeAddEntityLink:     ds.NewFnErrLink1[*Entity[ID]](),
		onAfterAddEntityLink:      ds.NewFnLink1[*Entity[ID]](),
		onBeforeDisposeEntityLink: ds.NewFnErrLink1[*Entity[ID]](),
		onAfterDisposeEntityLink:  ds.NewFnLink1[*Entity[ID]](),
		onAddEntityComponentLink:  ds.NewFnLink2[*Entity[ID], IComponent[ID]](),
		onDelEntityComponentLink:  ds.NewFnLink2[*Entity[ID], TComponent](),
	}
}

// tagSet 同一标签下的组件,同一实体的多个组件可共用标签
type tagSet[ID Identify] struct {
	tag string
	*ds.KSet[IComponent[ID], IComponent[ID]]
}

func newTagSet[ID Identify](tag string) *tagSet[ID] {
	return &tagSet[ID]{
		tag: tag,
		KSet: ds.NewKSet[IComponent[ID], IComponent[ID]](32, func(component IComponent[ID]) IComponent[ID] {
			return component
		}),
	}
}

type Scene[ID Identify] struct {
	id                        string
	typ                       TScene
	data                      util.M
	idToEntity                *ds.KSet[ID, *Entity[ID]]
	tagToComponents           *ds.KSet[string, *tagSet[ID]]
	componentTags             map[IComponent[ID]]map[string]struct{}
	onBeforeAddEntityLink     *ds.FnErrLink1[*Entity[ID]]
	onAfterAddEntityLink      *ds.FnLink1[*Entity[ID]]
	onBeforeDisposeEntityLink *ds.FnErrLink1[*Entity[ID]]
	onAfterDisposeEntityLink  *ds.FnLink1[*Entity[ID]]
	onAddEntityComponentLink  *ds.FnLink2[*Entity[ID], IComponent[ID]]
	onDelEntityComponentLink  *ds.FnLink2[*Entity[ID], TComponent]
}

func (s *Scene[ID]) Id() string {
	return s.id
}

func (s *Scene[ID]) Type() TScene {
	return s.typ
}

func (s *Scene[ID]) Data() util.M {
	return s.data
}

func (s *Scene[ID]) AddEntity(e *Entity[ID]) *util.Err {
	err := s.onBeforeAddEntityLink.Invoke(e)
	if err != nil {
		return err
	}

	id := e.Id()
	if s.idToEntity.Has(id) {
		return util.NewErr(util.EcExist, util.M{
			"entity id": id.String(),
		})
	}

	_ = s.idToEntity.Add(e)
	e.setScene(s)
	e.start()
	for _, component := range e.Components() {
		s.TagComponent(component, string(component.Type()))
	}
	s.onAfterAddEntityLink.Invoke(e)
	return nil
}

func (s *Scene[ID]) DelEntity(id ID) *util.Err {
	e, ok := s.idToEntity.Get(id)
	if !ok {
		return util.NewErr(util.EcNotExist, util.M{
			"entity id": id.String(),
		})
	}
	err := s.onBeforeDisposeEntityLink.Invoke(e)
	if err != nil {
		return err
	}
	for _, component := range e.Components() {
		s.ClearComponentTags(component)
	}
	s.idToEntity.Del(id)
	s.onAfterDisposeEntityLink.Invoke(e)
	e.Dispose()
	return nil
}

func (s *Scene[ID]) GetEntity(id ID) (*Entity[ID], bool) {
	return s.idToEntity.Get(id)
}

func (s *Scene[ID]) IterEntities(fn FnEntity[ID]) {
	s.idToEntity.Iter(fn)
}

func (s *Scene[ID]) Entities() []*Entity[ID] {
	return s.idToEntity.Values()
}

func (s *Scene[ID]) EntityCount() int {
	return s.idToEntity.Count()
}

func (s *Scene[ID]) EntityIds(ids *[]ID) {
	s.idToEntity.CopyKeys(ids)
}

func (s *Scene[ID]) IsEmpty() bool {
	return s.idToEntity.Count() == 0
}

func (s *Scene[ID]) HasTagComponent(component IComponent[ID], tag string) bool {
	a, ok := s.componentTags[component]
	if !ok {
		return false
	}
	_, ok = a[tag]
	return ok
}

func (s *Scene[ID]) TagComponent(component IComponent[ID], tags ...string) {
	a, ok := s.componentTags[component]
	if !ok {
		a = make(map[string]struct{}, 4)
		s.componentTags[component] = a
	}
	for _, tag := range tags {
		if _, ok := a[tag]; ok {
			continue
		}
		a[tag] = struct{}{}
		set, ok := s.tagToComponents.Get(tag)
		if !ok {
			set = newTagSet[ID](tag)
			_ = s.tagToComponents.AddNX(set)
		}
		_ = set.AddNX(component)
	}
}

func (s *Scene[ID]) TagEntityComponent(entityId ID, t TComponent, tags ...string) {
	e, ok := s.idToEntity.Get(entityId)
	if !ok {
		return
	}
	component, ok := e.GetComponent(t)
	if !ok {
		return
	}
	s.TagComponent(component, tags...)
}

func (s *Scene[ID]) UntagComponent(component IComponent[ID], tags ...string) {
	ca, ok := s.componentTags[component]
	if !ok {
		return
	}
	for _, tag := range tags {
		delete(ca, tag)
		s.delFromTag(tag, component)
	}
}

func (s *Scene[ID]) delFromTag(tag string, component IComponent[ID]) {
	set, ok := s.tagToComponents.Get(tag)
	if !ok {
		return
	}
	set.Del(component)
	if set.Count() == 0 {
		s.tagToComponents.Del(tag)
	}
}

// GetTagComponents 返回内部切片,遍历中不要增删
func (s *Scene[ID]) GetTagComponents(tag string) ([]IComponent[ID], bool) {
	set, ok := s.tagToComponents.Get(tag)
	if !ok {
		return nil, false
	}
	return set.Values(), true
}

func (s *Scene[ID]) TagCount(tag string) int {
	set, ok := s.tagToComponents.Get(tag)
	if !ok {
		return 0
	}
	return set.Count()
}

func (s *Scene[ID]) ClearComponentTags(component IComponent[ID]) {
	a, ok := s.componentTags[component]
	if !ok {
		return
	}
	for tag := range a {
		s.delFromTag(tag, component)
	}
	delete(s.componentTags, component)
}

func (s *Scene[ID]) ClearTag(tag string) bool {
	set, ok := s.tagToComponents.Del(tag)
	if !ok {
		return false
	}
	for _, c := range set.Values() {
		delete(s.componentTags[c], tag)
	}
	return true
}

func (s *Scene[ID]) ClearTags(tags ...string) {
	for _, tag := range tags {
		s.ClearTag(tag)
	}
}

// IterAlive 只遍历 t 类型组件为 IStatus 且存活的实体
func (s *Scene[ID]) IterAlive(t TComponent, fn func(IStatus[ID])) {
	components, ok := s.GetTagComponents(string(t))
	if !ok {
		return
	}
	for _, c := range components {
		status, ok := AsStatus[ID](c)
		if !ok || !status.IsAlive() {
			continue
		}
		fn(status)
	}
}

// EntityAlive 实体没有 t 类型的 IStatus 组件时 ok 为 false
func (s *Scene[ID]) EntityAlive(e *Entity[ID], t TComponent) (alive, ok bool) {
	c, exist := e.GetComponent(t)
	if !exist {
		return false, false
	}
	status, ok := AsStatus[ID](c)
	if !ok {
		return false, false
	}
	return status.IsAlive(), true
}

func (s *Scene[ID]) BindBeforeAddEntity(fn EntityToErr[ID]) {
	s.onBeforeAddEntityLink.Push(fn)
}

func (s *Scene[ID]) BindAfterAddEntity(fn FnEntity[ID]) {
	s.onAfterAddEntityLink.Push(fn)
}

func (s *Scene[ID]) BindBeforeDisposeEntity(fn EntityToErr[ID]) {
	s.onBeforeDisposeEntityLink.Push(fn)
}

func (s *Scene[ID]) BindAfterDisposeEntity(fn FnEntity[ID]) {
	s.onAfterDisposeEntityLink.Push(fn)
}

func (s *Scene[ID]) BindAddComponent(fn FnEntityCom[ID]) {
	s.onAddEntityComponentLink.Push(fn)
}

func (s *Scene[ID]) BindDelComponent(fn FnEntityTCom[ID]) {
	s.onDelEntityComponentLink.Push(fn)
}

func (s *Scene[ID]) onAddComponent(e *Entity[ID], c IComponent[ID]) {
	s.TagComponent(c, string(c.Type()))
	s.onAddEntityComponentLink.Invoke(e, c)
}

func (s *Scene[ID]) onDelComponent(e *Entity[ID], c IComponent[ID]) {
	s.ClearComponentTags(c)
	s.onDelEntityComponentLink.Invoke(e, c.Type())
}

func (s *Scene[ID]) Dispose() {
	for _, entity := range s.idToEntity.Values() {
		entity.Dispose()
	}
	s.idToEntity.Reset()
	s.componentTags = make(map[IComponent[ID]]map[string]struct{})
	s.tagToComponents.Reset()
}
