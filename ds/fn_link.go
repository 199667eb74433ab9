package ds

import (
	"reflect"

	"github.com/15mga/kite/util"
)

func NewFnLink() *FnLink {
	return &FnLink{
		Link: NewLink[util.Fn](),
	}
}

type FnLink struct {
	*Link[util.Fn]
}

func (l *FnLink) Invoke() bool {
	if l.count == 0 {
		return false
	}
	for e := l.head; e != nil; e = e.Next {
		e.Value()
	}
	return true
}

// InvokeAndReset 调用后清空,回调中追加的函数同批执行
func (l *FnLink) InvokeAndReset() bool {
	if l.count == 0 {
		return false
	}
	for e := l.head; e != nil; e = e.Next {
		e.Value()
	}
	l.Dispose()
	return true
}

func (l *FnLink) Del(fn util.Fn) {
	pointer := reflect.ValueOf(fn).Pointer()
	_ = l.Link.Del(func(f util.Fn) bool {
		return reflect.ValueOf(f).Pointer() == pointer
	})
}

func NewFnLink1[T any]() *FnLink1[T] {
	return &FnLink1[T]{
		Link: NewLink[func(T)](),
	}
}

type FnLink1[T any] struct {
	*Link[func(T)]
}

func (l *FnLink1[T]) Invoke(obj T) {
	for e := l.head; e != nil; e = e.Next {
		e.Value(obj)
	}
}

func NewFnLink2[T0, T1 any]() *FnLink2[T0, T1] {
	return &FnLink2[T0, T1]{
		Link: NewLink[func(T0, T1)](),
	}
}

type FnLink2[T0, T1 any] struct {
	*Link[func(T0, T1)]
}

func (l *FnLink2[T0, T1]) Invoke(v0 T0, v1 T1) {
	for e := l.head; e != nil; e = e.Next {
		e.Value(v0, v1)
	}
}
