package render

import (
	"github.com/15mga/kite/util"
)

// IDriver Pipeline 每帧调用的后端操作
type IDriver[SU, S, ED, PT any] interface {
	IBackend[SU, S, ED, PT]
	PreTick(data PT) *util.Err
	Update(update SU) *util.Err
	Status() S
	// Draw data 只在调用期间有效,不要持有
	Draw(frame int64, data []ED) *util.Err
}

// Fork 复制驱动,副本不是 IDriver 时返回 EcWrongType
func Fork[SU, S, ED, PT any](d IDriver[SU, S, ED, PT]) (IDriver[SU, S, ED, PT], *util.Err) {
	b := d.Clone()
	nd, ok := b.(IDriver[SU, S, ED, PT])
	if !ok {
		return nil, util.NewErr(util.EcWrongType, util.M{
			"error": "clone is not a driver",
		})
	}
	return nd, nil
}
