package mock

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/network"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
)

type TTransport string

const (
	TransportWs  TTransport = "ws"
	TransportKcp TTransport = "kcp"
)

// FnFrame 收到服务端帧时在连接协程调用
type FnFrame func(client *Client, frame *codec.Frame)

type Option struct {
	Name      string
	Transport TTransport
	// Addr ws 为完整 url,kcp 为 host:port
	Addr    string
	Binary  bool
	Kind    string
	Head    http.Header
	BeatDur time.Duration
	MoveDur time.Duration
	OnFrame FnFrame
}

// NewClient 连接成功后才返回,ctx 结束时连接关闭
func NewClient(ctx context.Context, opt Option) (*Client, *util.Err) {
	if opt.BeatDur == 0 {
		opt.BeatDur = time.Second * 3
	}
	client := &Client{
		option:   opt,
		joinedCh: make(chan string, 1),
		errCh:    make(chan *util.Err, 1),
	}
	switch opt.Transport {
	case TransportKcp:
		client.dialer = network.NewKcpDialer(opt.Name, opt.Addr, client.Receive,
			[]network.KcpOption{network.KcpNoDelay(true, 10)})
	default:
		msgType := websocket.TextMessage
		if opt.Binary {
			msgType = websocket.BinaryMessage
		}
		client.dialer = network.NewWebDialer(opt.Name, opt.Addr, opt.Head, msgType, client.Receive)
	}
	client.dialer.Agent().BindConnected(func(agent kite.IAgent) {
		kite.Info("connected", util.M{
			"name": opt.Name,
			"addr": agent.Addr(),
		})
	})
	client.dialer.Agent().BindDisconnected(func(agent kite.IAgent, err *util.Err) {
		kite.Info("disconnect", util.M{
			"name": opt.Name,
			"addr": agent.Addr(),
		})
	})
	err := client.dialer.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Client 模拟玩家,join 后定期心跳和随机移动
type Client struct {
	option   Option
	dialer   kite.IDialer
	joinedCh chan string
	errCh    chan *util.Err
	mtx      sync.RWMutex
	id       string
	frames   int64
	last     *codec.Frame
	x, y     float32
}

func (c *Client) Id() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.id
}

func (c *Client) Dialer() kite.IDialer {
	return c.dialer
}

func (c *Client) Frames() int64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.frames
}

// Last 最近收到的帧,不要修改
func (c *Client) Last() *codec.Frame {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.last
}

func (c *Client) Receive(agent kite.IAgent, bytes []byte) {
	if len(bytes) == 0 {
		return
	}
	if !c.option.Binary || bytes[0] == '{' {
		c.receiveJson(bytes)
		return
	}
	frame := &codec.Frame{}
	if err := codec.UnmarshalFrame(bytes, frame); err != nil {
		kite.Warn(err)
		return
	}
	c.onFrame(frame)
}

func (c *Client) receiveJson(bytes []byte) {
	m, err := util.JsonUnmarshalM(bytes)
	if err != nil {
		kite.Warn(err)
		return
	}
	op, ok := util.MGet[string](m, "op")
	if !ok {
		frame := &codec.Frame{}
		if err := codec.UnjsonFrame(bytes, frame); err != nil {
			kite.Warn(err)
			return
		}
		c.onFrame(frame)
		return
	}
	switch op {
	case "joined":
		id, _ := util.MGet[string](m, "id")
		c.mtx.Lock()
		c.id = id
		c.mtx.Unlock()
		select {
		case c.joinedCh <- id:
		default:
		}
	case "error":
		err := util.NewErr(util.EcServiceErr, m)
		kite.Warn(err)
		select {
		case c.errCh <- err:
		default:
		}
	}
}

func (c *Client) onFrame(frame *codec.Frame) {
	c.mtx.Lock()
	c.frames++
	c.last = frame
	c.mtx.Unlock()
	if c.option.OnFrame != nil {
		c.option.OnFrame(c, frame)
	}
}

// Join id 为空时由服务端分配,服务端回复 error 时返回 EcServiceErr
func (c *Client) Join(ctx context.Context, id string) (string, *util.Err) {
	// 丢弃之前的错误回复
	select {
	case <-c.errCh:
	default:
	}
	err := c.send(util.M{
		"op":   "join",
		"id":   id,
		"kind": c.option.Kind,
	})
	if err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", util.WrapErr(util.EcTimeout, ctx.Err())
	case id := <-c.joinedCh:
		return id, nil
	case err := <-c.errCh:
		return "", err
	}
}

func (c *Client) Beat() *util.Err {
	return c.send(util.M{
		"op": "beat",
	})
}

func (c *Client) Move(x, y float32) *util.Err {
	c.mtx.Lock()
	c.x, c.y = x, y
	c.mtx.Unlock()
	return c.send(util.M{
		"op": "move",
		"x":  x,
		"y":  y,
	})
}

func (c *Client) Leave() *util.Err {
	return c.send(util.M{
		"op": "leave",
	})
}

// Run 阻塞到 ctx 结束
func (c *Client) Run(ctx context.Context) {
	beat := time.NewTicker(c.option.BeatDur)
	defer beat.Stop()
	var moveCh <-chan time.Time
	if c.option.MoveDur > 0 {
		move := time.NewTicker(c.option.MoveDur)
		defer move.Stop()
		moveCh = move.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-beat.C:
			if err := c.Beat(); err != nil {
				kite.Warn(err)
				return
			}
		case <-moveCh:
			c.mtx.RLock()
			x, y := c.x, c.y
			c.mtx.RUnlock()
			x += float32(rand.Intn(3) - 1)
			y += float32(rand.Intn(3) - 1)
			if err := c.Move(x, y); err != nil {
				kite.Warn(err)
				return
			}
		}
	}
}

func (c *Client) Close() {
	c.dialer.Agent().Dispose()
}

func (c *Client) send(m util.M) *util.Err {
	bytes, err := util.JsonMarshal(m)
	if err != nil {
		return err
	}
	return c.dialer.Agent().Send(bytes)
}
