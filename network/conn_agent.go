package network

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
)

// NewConnAgent 流式连接(tcp/kcp)代理,包头为 4 字节大端长度
func NewConnAgent(addr string, receiver kite.FnAgentBytes, options ...kite.AgentOption) *connAgent {
	return &connAgent{
		agent: newAgent(addr, receiver, options...),
	}
}

type connAgent struct {
	agent
	conn net.Conn
}

func (a *connAgent) Start(ctx context.Context, conn net.Conn) {
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

func (a *connAgent) Dispose() {
	a.close(a, nil)
}

func (a *connAgent) read() {
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

	head := make([]byte, _HeadLen)
	dur := time.Duration(a.option.DeadlineSecs) * time.Second
	for {
		if a.ctx.Err() != nil {
			return
		}
		if dur > 0 {
			_ = a.conn.SetReadDeadline(time.Now().Add(dur))
		}
		if _, e := io.ReadFull(a.conn, head); e != nil {
			if e != io.EOF {
				err = util.WrapErr(util.EcIo, e)
			}
			return
		}
		l := int(binary.BigEndian.Uint32(head))
		if l > a.option.PacketMaxCap {
			err = util.NewErr(util.EcTooLong, util.M{
				"length": l,
			})
			return
		}
		if l == 0 {
			continue
		}
		body := make([]byte, l)
		if _, e := io.ReadFull(a.conn, body); e != nil {
			err = util.WrapErr(util.EcIo, e)
			return
		}
		a.receiver(a, body)
	}
}

func (a *connAgent) write() {
	var err *util.Err
	defer func() {
		a.close(a, err)
	}()

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
				bytes := elem.Value
				pkt := make([]byte, _HeadLen+len(bytes))
				binary.BigEndian.PutUint32(pkt, uint32(len(bytes)))
				copy(pkt[_HeadLen:], bytes)
				if _, e := a.conn.Write(pkt); e != nil {
					err = util.WrapErr(util.EcIo, e)
					return
				}
			}
		}
	}
}
