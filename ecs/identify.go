package ecs

import "fmt"

// Identify 实体标识,可作 map key,String 用于日志和标签
type Identify interface {
	comparable
	fmt.Stringer
}

type StrId string

func (id StrId) String() string {
	return string(id)
}
