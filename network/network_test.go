package network

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
)

func echo(agent kite.IAgent, bytes []byte) {
	_ = agent.Send(bytes)
}

func TestTcpEcho(t *testing.T) {
	listener := NewTcpListener("127.0.0.1:0", func(conn net.Conn) {
		NewConnAgent(conn.RemoteAddr().String(), echo).Start(context.Background(), conn)
	})
	assert.Nil(t, listener.Start())
	defer listener.Close()

	ch := make(chan []byte, 1)
	dialer := NewTcpDialer("tcp", fmt.Sprintf("127.0.0.1:%d", listener.Port()), func(agent kite.IAgent, bytes []byte) {
		ch <- bytes
	})
	assert.Nil(t, dialer.Connect(context.Background()))
	defer dialer.Agent().Dispose()

	assert.Nil(t, dialer.Agent().Send([]byte("hello")))
	select {
	case bytes := <-ch:
		assert.Equal(t, "hello", string(bytes))
	case <-time.After(time.Second * 3):
		t.Fatal("echo timeout")
	}
}

func TestWebEcho(t *testing.T) {
	listener := NewWebListener(func(conn *websocket.Conn) {
		NewWebAgent(conn.RemoteAddr().String(), websocket.BinaryMessage, echo).Start(context.Background(), conn)
	}, WebAddr("127.0.0.1:0"), WebPath("/ws"))
	assert.Nil(t, listener.Start())
	defer listener.Close()

	ch := make(chan []byte, 1)
	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", listener.Port())
	dialer := NewWebDialer("web", url, nil, websocket.BinaryMessage, func(agent kite.IAgent, bytes []byte) {
		ch <- bytes
	})
	assert.Nil(t, dialer.Connect(context.Background()))
	defer dialer.Agent().Dispose()

	assert.Nil(t, dialer.Agent().Send([]byte("frame")))
	select {
	case bytes := <-ch:
		assert.Equal(t, "frame", string(bytes))
	case <-time.After(time.Second * 3):
		t.Fatal("echo timeout")
	}
}

func TestKcpEcho(t *testing.T) {
	listener := NewKcpListener("127.0.0.1:0", func(conn net.Conn) {
		NewConnAgent(conn.RemoteAddr().String(), echo).Start(context.Background(), conn)
	}, KcpNoDelay(true, 10))
	assert.Nil(t, listener.Start())
	defer listener.Close()
	assert.NotZero(t, listener.Port())

	ch := make(chan []byte, 8)
	dialer := NewKcpDialer("kcp", fmt.Sprintf("127.0.0.1:%d", listener.Port()), func(agent kite.IAgent, bytes []byte) {
		ch <- bytes
	}, []KcpOption{KcpNoDelay(true, 10)})
	assert.Nil(t, dialer.Connect(context.Background()))

	done := make(chan struct{})
	dialer.Agent().BindDisconnected(func(a kite.IAgent, err *util.Err) {
		close(done)
	})

	// 超过 mtu 的帧也要完整到达
	frames := []string{"a", "hello", strings.Repeat("k", 4096)}
	for _, f := range frames {
		assert.Nil(t, dialer.Agent().Send([]byte(f)))
	}
	for _, f := range frames {
		select {
		case bytes := <-ch:
			assert.Equal(t, f, string(bytes))
		case <-time.After(time.Second * 3):
			t.Fatal("echo timeout")
		}
	}

	dialer.Agent().Dispose()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnected not invoked")
	}
	assert.Equal(t, util.EcClosed, dialer.Agent().Send([]byte("x")).Code())
}

func TestAgentSendErr(t *testing.T) {
	agent := NewConnAgent("none", echo, kite.AgentPacketMaxCap(4))
	err := agent.Send(nil)
	assert.Equal(t, util.EcEmpty, err.Code())
	err = agent.Send([]byte("12345"))
	assert.Equal(t, util.EcTooLong, err.Code())
	err = agent.Send([]byte("1"))
	assert.Equal(t, util.EcClosed, err.Code())
}

func TestAgentDisconnected(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	done := make(chan struct{})
	agent := NewConnAgent("pipe", echo)
	agent.BindDisconnected(func(a kite.IAgent, err *util.Err) {
		close(done)
	})
	agent.Start(context.Background(), client)
	agent.Dispose()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnected not invoked")
	}
	assert.Equal(t, util.EcClosed, agent.Send([]byte("x")).Code())
}
