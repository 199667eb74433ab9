package ecs

// IComponent 挂在 Entity 上的组件,实现需嵌入 Component
type IComponent[ID Identify] interface {
	Entity() *Entity[ID]
	setEntity(entity *Entity[ID])
	Type() TComponent
	// Init 添加到Entity时调用
	Init()
	// Start Entity添加到Scene时调用
	Start()
	Dispose()
}

func NewComponent[ID Identify](t TComponent) Component[ID] {
	return Component[ID]{
		typ: t,
	}
}

type Component[ID Identify] struct {
	typ    TComponent
	entity *Entity[ID]
}

func (c *Component[ID]) Type() TComponent {
	return c.typ
}

func (c *Component[ID]) Init() {

}

func (c *Component[ID]) Start() {
}

func (c *Component[ID]) Dispose() {
}

func (c *Component[ID]) Entity() *Entity[ID] {
	return c.entity
}

func (c *Component[ID]) setEntity(entity *Entity[ID]) {
	c.entity = entity
}
