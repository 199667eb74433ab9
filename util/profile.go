package util

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	Cpu       = "cpu"
	Memory    = "mem"
	Goroutine = "goroutine"
)

func GetCpuPercent(interval time.Duration) (float64, *Err) {
	percent, e := cpu.Percent(interval, false)
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	if len(percent) == 0 {
		return 0, NewErr(EcEmpty, nil)
	}
	return percent[0], nil
}

func GetMemPercent() (float64, *Err) {
	memInfo, e := mem.VirtualMemory()
	if e != nil {
		return 0, WrapErr(EcServiceErr, e)
	}
	return memInfo.UsedPercent, nil
}

// StartProfile 按 dur 周期采样主机状态,Ctx 取消后停止
func StartProfile(dur time.Duration, receiver chan<- M) {
	go func() {
		ticker := time.NewTicker(dur)
		defer ticker.Stop()
		for {
			select {
			case <-_Ctx.Done():
				return
			case <-ticker.C:
				select {
				case receiver <- Sampling():
				default:
				}
			}
		}
	}()
}

func Sampling() M {
	status := M{
		Goroutine: runtime.NumGoroutine(),
	}
	if p, err := GetMemPercent(); err == nil {
		status[Memory] = float32(p)
	}
	if runtime.GOOS != "darwin" {
		if p, err := GetCpuPercent(0); err == nil {
			status[Cpu] = float32(p)
		}
	}
	return status
}
