package util

import "context"

var (
	_Ctx, _Cancel = context.WithCancel(context.Background())
)

// Ctx 进程级上下文,WaitExit 收到信号后取消
func Ctx() context.Context {
	return _Ctx
}

func Cancel() {
	_Cancel()
}
