package ds

import (
	"github.com/15mga/kite/util"
)

func NewFnErrLink1[T any]() *FnErrLink1[T] {
	return &FnErrLink1[T]{
		Link: NewLink[func(T) *util.Err](),
	}
}

// FnErrLink1 依次调用,遇到第一个错误即返回
type FnErrLink1[T any] struct {
	*Link[func(T) *util.Err]
}

func (l *FnErrLink1[T]) Invoke(obj T) *util.Err {
	for e := l.head; e != nil; e = e.Next {
		err := e.Value(obj)
		if err != nil {
			return err
		}
	}
	return nil
}
