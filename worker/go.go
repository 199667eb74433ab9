package worker

import (
	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/panjf2000/ants/v2"
)

// Go 投递到 ants 默认协程池
func Go(fn util.FnAnySlc, params ...any) {
	e := ants.Submit(func() {
		fn(params)
	})
	if e != nil {
		kite.Warn3(util.EcBusy, e)
	}
}

// NewPool 独立协程池,size<=0 使用 ants 默认容量
func NewPool(size int) (*ants.Pool, *util.Err) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	pool, e := ants.NewPool(size, ants.WithNonblocking(false))
	if e != nil {
		return nil, util.WrapErr(util.EcParamsErr, e)
	}
	return pool, nil
}
