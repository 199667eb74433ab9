package ecs

// IStatus 带存活判断的组件,存活的含义由实现定义
type IStatus[ID Identify] interface {
	IComponent[ID]
	IsAlive() bool
}

// AsStatus 组件不是 IStatus 时返回 false
func AsStatus[ID Identify](c IComponent[ID]) (IStatus[ID], bool) {
	s, ok := c.(IStatus[ID])
	return s, ok
}
