package util

import (
	"sync"
)

// Enable 开关状态,关闭状态下动作返回 EcClosed
type Enable struct {
	Mtx      sync.RWMutex
	disabled bool
}

func NewEnable() *Enable {
	return &Enable{
		disabled: true,
	}
}

func (e *Enable) Disabled() bool {
	return e.disabled
}

func (e *Enable) WAction(fn FnAnySlc, params ...any) *Err {
	if fn == nil {
		return nil
	}
	e.Mtx.Lock()
	if e.disabled {
		e.Mtx.Unlock()
		return NewErr(EcClosed, nil)
	}
	fn(params)
	e.Mtx.Unlock()
	return nil
}

func (e *Enable) Disable(fn FnAnySlc, params ...any) bool {
	e.Mtx.Lock()
	if e.disabled {
		e.Mtx.Unlock()
		return false
	}
	e.disabled = true
	if fn != nil {
		fn(params)
	}
	e.Mtx.Unlock()
	return true
}

func (e *Enable) Enable(fn FnAnySlc, params ...any) bool {
	e.Mtx.Lock()
	if !e.disabled {
		e.Mtx.Unlock()
		return false
	}
	e.disabled = false
	if fn != nil {
		fn(params)
	}
	e.Mtx.Unlock()
	return true
}
