package network

import (
	"net"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
)

func NewTcpListener(addr string, onConn func(conn net.Conn)) kite.IListener {
	return &tcpListener{
		addr:   addr,
		onConn: onConn,
	}
}

type tcpListener struct {
	addr     string
	onConn   func(conn net.Conn)
	listener net.Listener
}

func (l *tcpListener) Addr() string {
	return l.addr
}

func (l *tcpListener) Port() int {
	if l.listener == nil {
		return 0
	}
	port, _ := util.ParseAddrPort(l.listener.Addr().String())
	return port
}

func (l *tcpListener) Start() *util.Err {
	listener, e := net.Listen("tcp", l.addr)
	if e != nil {
		return util.NewErr(util.EcListenErr, util.M{
			"addr":  l.addr,
			"error": e.Error(),
		})
	}
	l.listener = listener
	kite.Info("start tcp listener", util.M{
		"addr": listener.Addr().String(),
	})
	go func() {
		for {
			conn, e := listener.Accept()
			if e != nil {
				kite.Debug("tcp listener stopped", util.M{
					"error": e.Error(),
				})
				return
			}
			l.onConn(conn)
		}
	}()
	return nil
}

func (l *tcpListener) Close() {
	if l.listener == nil {
		return
	}
	_ = l.listener.Close()
}
