package main

import (
	"context"
	"fmt"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/log"
	"github.com/15mga/kite/mock"
	"github.com/15mga/kite/util"
	"github.com/15mga/kite/worker"
)

func main() {
	kite.AddVar("addr", "ws://127.0.0.1:7737/ws", "server url for ws, host:port for kcp")
	kite.AddVar("transport", "ws", "ws or kcp")
	kite.AddVar("bots", 10, "bot count")
	kite.AddVar("binary", false, "binary frames")
	kite.AddVar("move_ms", 500, "move interval, 0 disable")
	kite.AddLogger(log.NewStd(log.StdLogStrLvl("info", "warn", "error", "fatal")))
	kite.ParseVar()

	addr, _ := kite.GetVar[string]("addr")
	transport, _ := kite.GetVar[string]("transport")
	bots, _ := kite.GetVar[int]("bots")
	binary, _ := kite.GetVar[bool]("binary")
	moveMs, _ := kite.GetVar[int]("move_ms")

	for i := 0; i < bots; i++ {
		client, err := mock.NewClient(util.Ctx(), mock.Option{
			Name:      fmt.Sprintf("bot_%d", i),
			Transport: mock.TTransport(transport),
			Addr:      addr,
			Binary:    binary,
			Kind:      string(rune('a' + i%26)),
			MoveDur:   time.Duration(moveMs) * time.Millisecond,
		})
		if err != nil {
			kite.Error(err)
			continue
		}
		ctx, cancel := context.WithTimeout(util.Ctx(), time.Second*5)
		id, err := client.Join(ctx, "")
		cancel()
		if err != nil {
			kite.Error(err)
			client.Close()
			continue
		}
		kite.Info("bot joined", util.M{
			"bot": i,
			"id":  id,
		})
		worker.Go(func(params []any) {
			c := params[0].(*mock.Client)
			c.Run(util.Ctx())
			c.Close()
		}, client)
	}
	kite.WaitExit()
}
