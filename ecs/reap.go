package ecs

import (
	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
)

const (
	SReap TSystem = "reap"
)

// NewReapSystem 每帧结束后移除 statusType 组件不再存活的实体
func NewReapSystem[ID Identify](statusType TComponent) *ReapSystem[ID] {
	return &ReapSystem[ID]{
		System:     NewSystem[ID](SReap),
		statusType: statusType,
	}
}

type ReapSystem[ID Identify] struct {
	System[ID]
	statusType TComponent
	dead       []ID
	reaped     int64
}

func (s *ReapSystem[ID]) OnUpdate() {
	s.Frame().After().Push(s.reap)
}

// Reaped 累计移除数量
func (s *ReapSystem[ID]) Reaped() int64 {
	return s.reaped
}

func (s *ReapSystem[ID]) reap() {
	scene := s.Scene()
	components, ok := scene.GetTagComponents(string(s.statusType))
	if !ok {
		return
	}
	s.dead = s.dead[:0]
	for _, c := range components {
		status, ok := AsStatus[ID](c)
		if !ok || status.IsAlive() {
			continue
		}
		s.dead = append(s.dead, c.Entity().Id())
	}
	for _, id := range s.dead {
		err := scene.DelEntity(id)
		if err != nil {
			kite.Warn(err)
			continue
		}
		s.reaped++
		kite.Debug("reap entity", util.M{
			"entity id": id.String(),
			"frame":     s.Frame().Num(),
		})
	}
}
