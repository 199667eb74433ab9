package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/15mga/kite"
	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/presence"
	"github.com/15mga/kite/render/stream"
	"github.com/15mga/kite/sid"
	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
)

type fakeAgent struct {
	mtx    sync.Mutex
	id     string
	head   util.M
	got    []util.M
	onDisc []kite.FnAgentErr
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{
		id:   "127.0.0.1:1",
		head: util.M{},
	}
}

func (a *fakeAgent) Id() string                    { return a.id }
func (a *fakeAgent) SetId(id string)               { a.id = id }
func (a *fakeAgent) Addr() string                  { return "127.0.0.1:1" }
func (a *fakeAgent) SetHead(key string, val any)   { a.head[key] = val }
func (a *fakeAgent) BindConnected(fn kite.FnAgent) {}

func (a *fakeAgent) GetHead(key string) (any, bool) {
	v, ok := a.head[key]
	return v, ok
}

func (a *fakeAgent) BindDisconnected(fn kite.FnAgentErr) {
	a.onDisc = append(a.onDisc, fn)
}

func (a *fakeAgent) Send(bytes []byte) *util.Err {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	var m util.M
	if err := util.JsonUnmarshal(bytes, &m); err != nil {
		return err
	}
	a.got = append(a.got, m)
	return nil
}

func (a *fakeAgent) Dispose() {
	for _, fn := range a.onDisc {
		fn(a, nil)
	}
}

func (a *fakeAgent) last() util.M {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if len(a.got) == 0 {
		return nil
	}
	return a.got[len(a.got)-1]
}

func TestMain(m *testing.M) {
	sid.SetNodeId(1)
	os.Exit(m.Run())
}

func newTestWorld() (*world, *ecs.Frame[sid.Id]) {
	tracker := presence.NewTracker[sid.Id](presence.TrackerTimeout(time.Minute))
	w := newWorld(tracker, stream.NewHub())
	scene := ecs.NewScene[sid.Id]("test", "match")
	frame := ecs.NewFrame[sid.Id](scene, ecs.FrameSystems[sid.Id](w))
	w.bindFrame(frame)
	return w, frame
}

func TestWorldJoinMove(t *testing.T) {
	w, frame := newTestWorld()
	frame.Step()

	agent := newFakeAgent()
	w.Receive(agent, []byte(`{"op":"join","kind":"#"}`))
	reply := agent.last()
	assert.Equal(t, OpJoined, reply["op"])
	id, err := sid.ParseId(reply["id"].(string))
	assert.Nil(t, err)
	assert.True(t, w.hub.Has(id.String()))

	frame.Step()
	e, ok := frame.Scene().GetEntity(id)
	assert.True(t, ok)
	assert.True(t, w.tracker.Alive(id))

	// 数字以字符串发送也能解析
	w.Receive(agent, []byte(`{"op":"move","x":"3","y":4}`))
	frame.Step()
	b, ok := ecs.GetComponentAs[sid.Id, *body](e, CBody)
	assert.True(t, ok)
	assert.Equal(t, float32(3), b.x)
	assert.Equal(t, float32(4), b.y)

	data, ok := toEntity(b)
	assert.True(t, ok)
	assert.Equal(t, id.String(), data.Id)
	assert.Equal(t, "#", data.Kind)
	assert.True(t, data.Alive)

	agent.Dispose()
	data, _ = toEntity(b)
	assert.False(t, data.Alive)
	assert.False(t, w.hub.Has(id.String()))
}

func TestWorldLeave(t *testing.T) {
	w, frame := newTestWorld()
	frame.Step()

	agent := newFakeAgent()
	w.Receive(agent, []byte(`{"op":"join"}`))
	frame.Step()
	assert.Equal(t, 1, frame.Scene().EntityCount())
	assert.Equal(t, 1, w.tracker.Count())

	w.Receive(agent, []byte(`{"op":"leave"}`))
	frame.Step()
	assert.Equal(t, 0, frame.Scene().EntityCount())
	assert.Equal(t, 0, w.tracker.Count())
}

func TestWorldBadMsg(t *testing.T) {
	w, frame := newTestWorld()
	frame.Step()

	agent := newFakeAgent()
	w.Receive(agent, []byte(`not json`))
	assert.Equal(t, OpError, agent.last()["op"])

	w.Receive(agent, []byte(`{"op":"dance"}`))
	assert.Equal(t, OpError, agent.last()["op"])

	w.Receive(agent, []byte(`{"op":"join","id":"zz"}`))
	assert.Equal(t, OpError, agent.last()["op"])

	// 未 join 的移动被忽略
	w.Receive(agent, []byte(`{"op":"move","x":1,"y":1}`))
	frame.Step()
	assert.Equal(t, 0, frame.Scene().EntityCount())
}

func TestWorldRejoin(t *testing.T) {
	w, frame := newTestWorld()
	frame.Step()

	first := newFakeAgent()
	w.Receive(first, []byte(`{"op":"join"}`))
	frame.Step()
	idStr := first.last()["id"].(string)
	first.Dispose()

	second := newFakeAgent()
	w.Receive(second, []byte(`{"op":"join","id":"`+idStr+`"}`))
	frame.Step()
	assert.Equal(t, idStr, second.last()["id"])
	assert.Equal(t, 1, frame.Scene().EntityCount())
	id, _ := sid.ParseId(idStr)
	assert.True(t, w.tracker.Alive(id))
}

func TestLoadSpawn(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "spawn.json")
	assert.Nil(t, os.WriteFile(p, []byte(`[
		{"id":"00000000000000ff","kind":"#","x":3,"y":"4"},
		{"kind":"T","x":1,"y":1},
		{"id":"zz","kind":"?"}
	]`), 0644))

	w, frame := newTestWorld()
	scene := frame.Scene()
	assert.Equal(t, 2, loadSpawn(scene, p, filepath.Join(dir, "none.json")))
	assert.Equal(t, 2, scene.EntityCount())

	frame.Step()
	id, _ := sid.ParseId("00000000000000ff")
	e, ok := scene.GetEntity(id)
	assert.True(t, ok)
	b, ok := ecs.GetComponentAs[sid.Id, *body](e, CBody)
	assert.True(t, ok)
	assert.Equal(t, "#", b.kind)
	assert.Equal(t, float32(4), b.y)
	data, _ := toEntity(b)
	assert.False(t, data.Alive)

	// 静态实体不占用 peer
	assert.Equal(t, 0, w.tracker.Count())
}

func TestWorldReplaceAgent(t *testing.T) {
	w, frame := newTestWorld()
	frame.Step()

	first := newFakeAgent()
	w.Receive(first, []byte(`{"op":"join"}`))
	frame.Step()
	idStr := first.last()["id"].(string)
	id, _ := sid.ParseId(idStr)

	// 旧连接未关闭时用同一 id 重连
	second := newFakeAgent()
	w.Receive(second, []byte(`{"op":"join","id":"`+idStr+`"}`))
	frame.Step()
	first.Dispose()
	assert.True(t, w.tracker.Alive(id))
	assert.Equal(t, 1, frame.Scene().EntityCount())
}
