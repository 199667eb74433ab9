package kite

import (
	"context"

	"github.com/15mga/kite/util"
)

type (
	FnAgent      func(IAgent)
	FnAgentErr   func(IAgent, *util.Err)
	FnAgentBytes func(IAgent, []byte)
)

// IAgent 连接代理
type IAgent interface {
	Id() string
	SetId(id string)
	Addr() string
	SetHead(key string, val any)
	GetHead(key string) (any, bool)
	// Send 异步发送,连接关闭后返回 EcClosed
	Send(bytes []byte) *util.Err
	Dispose()
	BindConnected(fn FnAgent)
	BindDisconnected(fn FnAgentErr)
}

// IListener 监听器
type IListener interface {
	Addr() string
	Port() int
	Start() *util.Err
	Close()
}

// IDialer 拨号器
type IDialer interface {
	Name() string
	Connect(ctx context.Context) *util.Err
	Agent() IAgent
}

type AgentRWMode uint8

const (
	AgentRW AgentRWMode = iota
	AgentR
	AgentW
)

type (
	AgentOpt struct {
		PacketMaxCap int //最大包长
		DeadlineSecs int
		AgentMode    AgentRWMode
	}
	AgentOption func(o *AgentOpt)
)

// AgentPacketMaxCap 最大包长
func AgentPacketMaxCap(packetMaxCap int) AgentOption {
	return func(o *AgentOpt) {
		o.PacketMaxCap = packetMaxCap
	}
}

// AgentDeadline 读超时,0 不超时
func AgentDeadline(secs int) AgentOption {
	return func(o *AgentOpt) {
		o.DeadlineSecs = secs
	}
}

func AgentMode(mode AgentRWMode) AgentOption {
	return func(o *AgentOpt) {
		o.AgentMode = mode
	}
}
