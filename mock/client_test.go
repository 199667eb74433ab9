package mock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/network"
	"github.com/15mga/kite/util"
	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
)

// serve 回复 joined 后推一帧
func serve(binary bool) func(agent kite.IAgent, bytes []byte) {
	return func(agent kite.IAgent, bytes []byte) {
		var m util.M
		if util.JsonUnmarshal(bytes, &m) != nil {
			return
		}
		if m["op"] != "join" {
			return
		}
		reply, _ := util.JsonMarshal(util.M{"op": "joined", "id": "00000000000000ff"})
		_ = agent.Send(reply)
		frame := &codec.Frame{
			Num: 1,
			Entities: []codec.Entity{
				{Id: "00000000000000ff", X: 1, Y: 2, Alive: true},
			},
		}
		if binary {
			_ = agent.Send(codec.MarshalFrame(frame))
			return
		}
		data, _ := codec.JsonFrame(frame)
		_ = agent.Send(data)
	}
}

func testClient(t *testing.T, binary bool) {
	msgType := websocket.TextMessage
	if binary {
		msgType = websocket.BinaryMessage
	}
	listener := network.NewWebListener(func(conn *websocket.Conn) {
		network.NewWebAgent(conn.RemoteAddr().String(), msgType, serve(binary)).Start(context.Background(), conn)
	}, network.WebAddr("127.0.0.1:0"), network.WebPath("/ws"))
	assert.Nil(t, listener.Start())
	defer listener.Close()

	frameCh := make(chan *codec.Frame, 1)
	client, err := NewClient(context.Background(), Option{
		Name:   "bot",
		Addr:   fmt.Sprintf("ws://127.0.0.1:%d/ws", listener.Port()),
		Binary: binary,
		OnFrame: func(_ *Client, frame *codec.Frame) {
			frameCh <- frame
		},
	})
	assert.Nil(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	id, err := client.Join(ctx, "")
	assert.Nil(t, err)
	assert.Equal(t, "00000000000000ff", id)
	assert.Equal(t, id, client.Id())

	select {
	case frame := <-frameCh:
		assert.Equal(t, int64(1), frame.Num)
		assert.Len(t, frame.Entities, 1)
		assert.Equal(t, float32(2), frame.Entities[0].Y)
	case <-time.After(time.Second * 3):
		t.Fatal("frame timeout")
	}
	assert.Equal(t, int64(1), client.Frames())
	assert.NotNil(t, client.Last())
}

func TestClientJson(t *testing.T) {
	testClient(t, false)
}

func TestClientBinary(t *testing.T) {
	testClient(t, true)
}

func TestJoinTimeout(t *testing.T) {
	listener := network.NewWebListener(func(conn *websocket.Conn) {
		network.NewWebAgent(conn.RemoteAddr().String(), websocket.TextMessage, func(kite.IAgent, []byte) {}).
			Start(context.Background(), conn)
	}, network.WebAddr("127.0.0.1:0"))
	assert.Nil(t, listener.Start())
	defer listener.Close()

	client, err := NewClient(context.Background(), Option{
		Name: "bot",
		Addr: fmt.Sprintf("ws://127.0.0.1:%d/", listener.Port()),
	})
	assert.Nil(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()
	_, err = client.Join(ctx, "")
	assert.NotNil(t, err)
	assert.Equal(t, util.EcTimeout, err.Code())
}

func TestJoinError(t *testing.T) {
	listener := network.NewWebListener(func(conn *websocket.Conn) {
		network.NewWebAgent(conn.RemoteAddr().String(), websocket.TextMessage, func(agent kite.IAgent, _ []byte) {
			reply, _ := util.JsonMarshal(util.M{"op": "error", "error": "id taken"})
			_ = agent.Send(reply)
		}).Start(context.Background(), conn)
	}, network.WebAddr("127.0.0.1:0"))
	assert.Nil(t, listener.Start())
	defer listener.Close()

	client, err := NewClient(context.Background(), Option{
		Name: "bot",
		Addr: fmt.Sprintf("ws://127.0.0.1:%d/", listener.Port()),
	})
	assert.Nil(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	id, err := client.Join(ctx, "p1")
	assert.Empty(t, id)
	assert.NotNil(t, err)
	assert.Equal(t, util.EcServiceErr, err.Code())
	reason, _ := err.GetParam("error")
	assert.Equal(t, "id taken", reason)
	assert.Empty(t, client.Id())
}
