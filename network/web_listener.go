package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
)

type webOption struct {
	addr      string
	path      string
	upgrader  *websocket.Upgrader
	resHeader http.Header
}

type WebOption func(option *webOption)

func WebAddr(addr string) WebOption {
	return func(option *webOption) {
		option.addr = addr
	}
}

func WebPath(path string) WebOption {
	return func(option *webOption) {
		option.path = path
	}
}

func WebUpgrader(fn func(*websocket.Upgrader)) WebOption {
	return func(option *webOption) {
		fn(option.upgrader)
	}
}

func WebResHeader(header http.Header) WebOption {
	return func(option *webOption) {
		option.resHeader = header
	}
}

func NewWebListener(onConn func(conn *websocket.Conn), opts ...WebOption) kite.IListener {
	o := &webOption{
		addr:     ":7737",
		path:     "/",
		upgrader: &websocket.Upgrader{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return &webListener{
		option: o,
		onConn: onConn,
	}
}

type webListener struct {
	server   *http.Server
	listener net.Listener
	option   *webOption
	onConn   func(conn *websocket.Conn)
}

func (l *webListener) Addr() string {
	return l.option.addr
}

func (l *webListener) Port() int {
	if l.listener == nil {
		return 0
	}
	port, _ := util.ParseAddrPort(l.listener.Addr().String())
	return port
}

func (l *webListener) handler(writer http.ResponseWriter, request *http.Request) {
	conn, e := l.option.upgrader.Upgrade(writer, request, l.option.resHeader)
	if e != nil {
		kite.Warn3(util.EcServiceErr, e)
		return
	}
	l.onConn(conn)
}

func (l *webListener) Start() *util.Err {
	listener, e := net.Listen("tcp", l.option.addr)
	if e != nil {
		return util.NewErr(util.EcListenErr, util.M{
			"addr":  l.option.addr,
			"error": e.Error(),
		})
	}
	l.listener = listener
	mux := http.NewServeMux()
	mux.HandleFunc(l.option.path, l.handler)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}
	kite.Info("start websocket listener", util.M{
		"addr": listener.Addr().String(),
		"path": l.option.path,
	})
	go func() {
		e := l.server.Serve(listener)
		if e != nil && !errors.Is(e, http.ErrServerClosed) {
			kite.Error3(util.EcListenErr, e)
		}
	}()
	return nil
}

func (l *webListener) Close() {
	if l.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	_ = l.server.Shutdown(ctx)
}
