package network

import (
	"context"
	"net"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
)

type tcpDialer struct {
	name  string
	agent *connAgent
}

func NewTcpDialer(name, addr string, receiver kite.FnAgentBytes, options ...kite.AgentOption) kite.IDialer {
	return &tcpDialer{
		name:  name,
		agent: NewConnAgent(addr, receiver, options...),
	}
}

func (d *tcpDialer) Name() string {
	return d.name
}

func (d *tcpDialer) Connect(ctx context.Context) *util.Err {
	addr := d.agent.Addr()
	var dialer net.Dialer
	conn, e := dialer.DialContext(ctx, "tcp", addr)
	if e != nil {
		return util.NewErr(util.EcConnectErr, util.M{
			"addr":  addr,
			"error": e.Error(),
		})
	}
	d.agent.Start(ctx, conn)
	return nil
}

func (d *tcpDialer) Agent() kite.IAgent {
	return d.agent
}
