package ds

import (
	"github.com/15mga/kite/util"
)

func NewKSet[KT comparable, VT any](defCap int, getKey func(VT) KT) *KSet[KT, VT] {
	if defCap < 1 {
		defCap = 1
	}
	return &KSet[KT, VT]{
		items:    make([]VT, 0, defCap),
		keyToIdx: make(map[KT]int, defCap),
		getKey:   getKey,
	}
}

// KSet 按 key 索引的紧凑切片,删除时用尾元素填补空位,遍历顺序不稳定
type KSet[KT comparable, VT any] struct {
	items    []VT
	keyToIdx map[KT]int
	getKey   func(VT) KT
}

func (s *KSet[KT, VT]) Count() int {
	return len(s.items)
}

func (s *KSet[KT, VT]) Add(item VT) *util.Err {
	key := s.getKey(item)
	if _, ok := s.keyToIdx[key]; ok {
		return util.NewErr(util.EcExist, util.M{
			"key": key,
		})
	}
	s.add(key, item)
	return nil
}

func (s *KSet[KT, VT]) AddNX(item VT) bool {
	key := s.getKey(item)
	if _, ok := s.keyToIdx[key]; ok {
		return false
	}
	s.add(key, item)
	return true
}

func (s *KSet[KT, VT]) add(key KT, item VT) {
	s.keyToIdx[key] = len(s.items)
	s.items = append(s.items, item)
}

func (s *KSet[KT, VT]) Set(item VT) (old VT, exist bool) {
	key := s.getKey(item)
	idx, ok := s.keyToIdx[key]
	if ok {
		old = s.items[idx]
		s.items[idx] = item
		return old, true
	}
	s.add(key, item)
	return
}

func (s *KSet[KT, VT]) Del(k KT) (val VT, exist bool) {
	idx, ok := s.keyToIdx[k]
	if !ok {
		return
	}
	val = s.items[idx]
	delete(s.keyToIdx, k)
	last := len(s.items) - 1
	if idx != last {
		tail := s.items[last]
		s.items[idx] = tail
		s.keyToIdx[s.getKey(tail)] = idx
	}
	s.items[last] = util.Default[VT]()
	s.items = s.items[:last]
	return val, true
}

func (s *KSet[KT, VT]) Get(key KT) (VT, bool) {
	idx, ok := s.keyToIdx[key]
	if !ok {
		return util.Default[VT](), false
	}
	return s.items[idx], true
}

func (s *KSet[KT, VT]) Has(key KT) bool {
	_, ok := s.keyToIdx[key]
	return ok
}

func (s *KSet[KT, VT]) Iter(fn func(VT)) {
	for _, item := range s.items {
		fn(item)
	}
}

// Values 返回内部切片,调用方不要持有或修改
func (s *KSet[KT, VT]) Values() []VT {
	return s.items
}

func (s *KSet[KT, VT]) CopyValues(values *[]VT) {
	*values = append(*values, s.items...)
}

func (s *KSet[KT, VT]) CopyKeys(keys *[]KT) {
	for k := range s.keyToIdx {
		*keys = append(*keys, k)
	}
}

func (s *KSet[KT, VT]) Reset() {
	for i := range s.items {
		s.items[i] = util.Default[VT]()
	}
	s.items = s.items[:0]
	s.keyToIdx = make(map[KT]int, cap(s.items))
}
