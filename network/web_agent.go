package network

import (
	"context"
	"fmt"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
)

// NewWebAgent msgType 为 websocket.TextMessage 或 websocket.BinaryMessage
func NewWebAgent(addr string, msgType int, receiver kite.FnAgentBytes, options ...kite.AgentOption) *webAgent {
	return &webAgent{
		agent:   newAgent(addr, receiver, options...),
		msgType: msgType,
	}
}

type webAgent struct {
	agent
	msgType int
	conn    *websocket.Conn
}

func (a *webAgent) Start(ctx context.Context, conn *websocket.Conn) {
	a.conn = conn
	a.onClose = a.conn.Close
	a.start(ctx, a)
	switch a.option.AgentMode {
	case kite.AgentRW:
		go a.read()
		go a.write()
	case kite.AgentR:
		go a.read()
	case kite.AgentW:
		go a.write()
	}
}

func (a *webAgent) Dispose() {
	a.close(a, nil)
}

func (a *webAgent) read() {
	var err *util.Err
	defer func() {
		if r := recover(); r != nil {
			err = util.NewErr(util.EcRecover, util.M{
				"remote addr": a.addr,
				"recover":     fmt.Sprintf("%v", r),
			})
			kite.Error(err)
		}
		a.close(a, err)
	}()

	dur := time.Duration(a.option.DeadlineSecs) * time.Second
	c := a.conn
	c.SetReadLimit(int64(a.option.PacketMaxCap))
	for {
		if a.ctx.Err() != nil {
			return
		}
		if dur > 0 {
			_ = c.SetReadDeadline(time.Now().Add(dur))
		}
		mt, bytes, e := c.ReadMessage()
		if e != nil {
			if !websocket.IsCloseError(e, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = util.WrapErr(util.EcIo, e)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if len(bytes) == 0 {
			continue
		}
		a.receiver(a, bytes)
	}
}

func (a *webAgent) write() {
	var err *util.Err
	defer func() {
		a.close(a, err)
	}()

	c := a.conn
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.writeSignCh:
			elem, ok := a.popAll()
			if !ok {
				return
			}
			for ; elem != nil; elem = elem.Next {
				if e := c.WriteMessage(a.msgType, elem.Value); e != nil {
					err = util.WrapErr(util.EcIo, e)
					return
				}
			}
		}
	}
}
