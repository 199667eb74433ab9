package kite

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/15mga/kite/util"
)

type waitInfo struct {
	name string
	fn   util.Fn
}

var (
	_WaitExitMtx   sync.Mutex
	_WaitExitInfos = make([]*waitInfo, 0, 4)
	_ExitTimeout   = time.Second * 30
)

func SetExitTimeout(dur time.Duration) {
	_ExitTimeout = dur
}

// BeforeExitFn 退出前按名称并发执行,WaitExit 等待全部完成或超时
func BeforeExitFn(name string, fn util.Fn) {
	_WaitExitMtx.Lock()
	_WaitExitInfos = append(_WaitExitInfos, &waitInfo{
		name: name,
		fn:   fn,
	})
	_WaitExitMtx.Unlock()
}

// BeforeExitCh 返回的通道关闭即视为完成
func BeforeExitCh(name string) chan<- struct{} {
	ch := make(chan struct{})
	BeforeExitFn(name, func() {
		<-ch
	})
	return ch
}

func WaitExit() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case <-util.Ctx().Done():
		Info("context done", nil)
	case s := <-signalCh:
		Info("signal notify", util.M{
			"signal": s.String(),
		})
		util.Cancel()
	}

	_WaitExitMtx.Lock()
	infos := _WaitExitInfos
	_WaitExitMtx.Unlock()

	waitCh := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(len(infos))
		for _, info := range infos {
			go func(info *waitInfo) {
				defer wg.Done()
				Info("wait exit", util.M{
					"name": info.name,
				})
				info.fn()
				Info("exit", util.M{
					"name": info.name,
				})
			}(info)
		}
		wg.Wait()
		close(waitCh)
	}()

	timeout := time.NewTimer(_ExitTimeout)
	select {
	case <-timeout.C:
		Info("exit timeout", nil)
	case <-waitCh:
		timeout.Stop()
		Info("exit complete", nil)
	}
}
