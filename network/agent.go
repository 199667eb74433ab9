package network

import (
	"context"
	"math"
	"sync"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ds"
	"github.com/15mga/kite/util"
)

const (
	_PacketMaxCap = math.MaxUint16 << 4
	_HeadLen      = 4
)

func newAgent(addr string, receiver kite.FnAgentBytes, opts ...kite.AgentOption) agent {
	opt := &kite.AgentOpt{
		PacketMaxCap: _PacketMaxCap,
	}
	for _, action := range opts {
		action(opt)
	}
	a := agent{
		id:             addr,
		addr:           addr,
		option:         opt,
		enable:         util.NewEnable(),
		receiver:       receiver,
		bytesLink:      ds.NewLink[[]byte](),
		onConnected:    ds.NewFnLink1[kite.IAgent](),
		onDisconnected: ds.NewFnLink2[kite.IAgent, *util.Err](),
		head:           util.M{},
		mtx:            &sync.RWMutex{},
	}
	a.head.Set("addr", addr)
	return a
}

// agent 连接的公共部分,读写协程由具体实现启动
type agent struct {
	option         *kite.AgentOpt
	onClose        func() error
	id             string
	addr           string
	ctx            context.Context
	cancel         context.CancelFunc
	writeSignCh    chan struct{}
	enable         *util.Enable
	receiver       kite.FnAgentBytes
	bytesLink      *ds.Link[[]byte]
	onConnected    *ds.FnLink1[kite.IAgent]
	onDisconnected *ds.FnLink2[kite.IAgent, *util.Err]
	head           util.M
	mtx            *sync.RWMutex
}

func (a *agent) start(ctx context.Context, self kite.IAgent) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.writeSignCh = make(chan struct{}, 1)
	a.enable.Enable(nil)
	a.mtx.RLock()
	a.onConnected.Invoke(self)
	a.mtx.RUnlock()
}

func (a *agent) SetHead(key string, val any) {
	a.mtx.Lock()
	a.head[key] = val
	a.mtx.Unlock()
}

func (a *agent) GetHead(key string) (val any, exist bool) {
	a.mtx.RLock()
	val, exist = a.head[key]
	a.mtx.RUnlock()
	return
}

func (a *agent) Id() (id string) {
	a.mtx.RLock()
	id = a.id
	a.mtx.RUnlock()
	return id
}

func (a *agent) SetId(id string) {
	a.mtx.Lock()
	a.id = id
	a.mtx.Unlock()
}

func (a *agent) Addr() string {
	return a.addr
}

func (a *agent) Send(bytes []byte) *util.Err {
	l := len(bytes)
	if l == 0 {
		return util.NewErr(util.EcEmpty, nil)
	}
	if l > a.option.PacketMaxCap {
		return util.NewErr(util.EcTooLong, util.M{
			"length": l,
		})
	}
	return a.enable.WAction(agentPushBytes, a, bytes)
}

func agentPushBytes(params []any) {
	a, bytes := util.SplitSlc2[*agent, []byte](params)
	a.bytesLink.Push(bytes)
	select {
	case a.writeSignCh <- struct{}{}:
	default:
	}
}

// popAll 取出待发送数据,已关闭返回 false
func (a *agent) popAll() (*ds.LinkElem[[]byte], bool) {
	a.enable.Mtx.Lock()
	defer a.enable.Mtx.Unlock()
	if a.enable.Disabled() {
		return nil, false
	}
	return a.bytesLink.PopAll(), true
}

func (a *agent) BindConnected(fn kite.FnAgent) {
	a.mtx.Lock()
	a.onConnected.Push(fn)
	a.mtx.Unlock()
}

func (a *agent) BindDisconnected(fn kite.FnAgentErr) {
	a.mtx.Lock()
	a.onDisconnected.Push(fn)
	a.mtx.Unlock()
}

func (a *agent) close(self kite.IAgent, err *util.Err) {
	if !a.enable.Disable(agentClose, a) {
		return
	}
	a.cancel()
	a.mtx.RLock()
	a.onDisconnected.Invoke(self, err)
	a.mtx.RUnlock()
}

func agentClose(params []any) {
	a := util.SplitSlc1[*agent](params)
	close(a.writeSignCh)
	a.bytesLink.Dispose()
	if a.onClose != nil {
		_ = a.onClose()
	}
}
