package network

import (
	"net"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/xtaci/kcp-go/v5"
)

type (
	kcpOption struct {
		noDelay   bool
		interval  int
		sndWnd    int
		rcvWnd    int
		dataShard int
		parShard  int
	}
	KcpOption func(o *kcpOption)
)

// KcpNoDelay 低延迟模式,interval 为内部刷新间隔(ms)
func KcpNoDelay(noDelay bool, interval int) KcpOption {
	return func(o *kcpOption) {
		o.noDelay = noDelay
		o.interval = interval
	}
}

func KcpWindow(snd, rcv int) KcpOption {
	return func(o *kcpOption) {
		o.sndWnd = snd
		o.rcvWnd = rcv
	}
}

// KcpFec 前向纠错分片,0 关闭
func KcpFec(dataShard, parShard int) KcpOption {
	return func(o *kcpOption) {
		o.dataShard = dataShard
		o.parShard = parShard
	}
}

func newKcpOption(opts []KcpOption) *kcpOption {
	o := &kcpOption{
		noDelay:  true,
		interval: 10,
		sndWnd:   256,
		rcvWnd:   256,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *kcpOption) apply(session *kcp.UDPSession) {
	noDelay := 0
	if o.noDelay {
		noDelay = 1
	}
	session.SetNoDelay(noDelay, o.interval, 2, 1)
	session.SetWindowSize(o.sndWnd, o.rcvWnd)
	session.SetStreamMode(true)
}

func NewKcpListener(addr string, onConn func(conn net.Conn), opts ...KcpOption) kite.IListener {
	return &kcpListener{
		addr:   addr,
		onConn: onConn,
		option: newKcpOption(opts),
	}
}

type kcpListener struct {
	addr     string
	onConn   func(conn net.Conn)
	option   *kcpOption
	listener *kcp.Listener
}

func (l *kcpListener) Addr() string {
	return l.addr
}

func (l *kcpListener) Port() int {
	if l.listener == nil {
		return 0
	}
	port, _ := util.ParseAddrPort(l.listener.Addr().String())
	return port
}

func (l *kcpListener) Start() *util.Err {
	listener, err := kcp.ListenWithOptions(l.addr, nil, l.option.dataShard, l.option.parShard)
	if err != nil {
		return util.NewErr(util.EcListenErr, util.M{
			"addr":  l.addr,
			"error": err.Error(),
		})
	}
	l.listener = listener
	kite.Info("start kcp listener", util.M{
		"addr": listener.Addr().String(),
	})
	go func() {
		for {
			session, err := listener.AcceptKCP()
			if err != nil {
				kite.Debug("kcp listener stopped", util.M{
					"error": err.Error(),
				})
				return
			}
			l.option.apply(session)
			l.onConn(session)
		}
	}()
	return nil
}

func (l *kcpListener) Close() {
	if l.listener == nil {
		return
	}
	_ = l.listener.Close()
}
