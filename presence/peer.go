package presence

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ecs"
)

const (
	TPeer ecs.TComponent = "peer"
)

// FnNow 毫秒时间戳,测试时可替换
type FnNow func() int64

func defNow() int64 {
	return time.Now().UnixMilli()
}

func NewPeer[ID ecs.Identify](timeout time.Duration, now FnNow) *Peer[ID] {
	if now == nil {
		now = defNow
	}
	p := &Peer[ID]{
		Component: ecs.NewComponent[ID](TPeer),
		timeoutMs: timeout.Milliseconds(),
		now:       now,
	}
	return p
}

// Peer 联网玩家的在线状态,连接中且心跳未超时即存活
type Peer[ID ecs.Identify] struct {
	ecs.Component[ID]
	timeoutMs int64
	now       FnNow
	connected atomic.Bool
	lastBeat  atomic.Int64
	agentMtx  sync.Mutex
	agent     kite.IAgent
}

var _ ecs.IStatus[ecs.StrId] = (*Peer[ecs.StrId])(nil)

func (p *Peer[ID]) IsAlive() bool {
	if !p.connected.Load() {
		return false
	}
	return p.now()-p.lastBeat.Load() <= p.timeoutMs
}

func (p *Peer[ID]) Beat() {
	p.lastBeat.Store(p.now())
}

// Connect 同时刷新心跳
func (p *Peer[ID]) Connect() {
	p.Beat()
	p.connected.Store(true)
}

func (p *Peer[ID]) Disconnect() {
	p.connected.Store(false)
}

func (p *Peer[ID]) Connected() bool {
	return p.connected.Load()
}

func (p *Peer[ID]) LastBeat() int64 {
	return p.lastBeat.Load()
}

// Agent 当前连接,重连后为新连接
func (p *Peer[ID]) Agent() kite.IAgent {
	p.agentMtx.Lock()
	defer p.agentMtx.Unlock()
	return p.agent
}

// ConnectAgent 替换当前连接并 Connect
func (p *Peer[ID]) ConnectAgent(agent kite.IAgent) {
	p.agentMtx.Lock()
	p.agent = agent
	p.Connect()
	p.agentMtx.Unlock()
}

// DisconnectAgent 只有 agent 仍是当前连接时才断开,旧连接关闭不影响新连接
func (p *Peer[ID]) DisconnectAgent(agent kite.IAgent) bool {
	p.agentMtx.Lock()
	defer p.agentMtx.Unlock()
	if p.agent != agent {
		return false
	}
	p.agent = nil
	p.Disconnect()
	return true
}
