package network

import (
	"context"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/xtaci/kcp-go/v5"
)

type kcpDialer struct {
	name   string
	option *kcpOption
	agent  *connAgent
}

func NewKcpDialer(name, addr string, receiver kite.FnAgentBytes, opts []KcpOption, options ...kite.AgentOption) kite.IDialer {
	return &kcpDialer{
		name:   name,
		option: newKcpOption(opts),
		agent:  NewConnAgent(addr, receiver, options...),
	}
}

func (d *kcpDialer) Name() string {
	return d.name
}

func (d *kcpDialer) Connect(ctx context.Context) *util.Err {
	addr := d.agent.Addr()
	session, err := kcp.DialWithOptions(addr, nil, d.option.dataShard, d.option.parShard)
	if err != nil {
		return util.NewErr(util.EcConnectErr, util.M{
			"addr":  addr,
			"error": err.Error(),
		})
	}
	d.option.apply(session)
	d.agent.Start(ctx, session)
	return nil
}

func (d *kcpDialer) Agent() kite.IAgent {
	return d.agent
}
