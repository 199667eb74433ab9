package stream

import (
	"sync"
	"testing"

	"github.com/15mga/kite"
	"github.com/15mga/kite/codec"
	"github.com/15mga/kite/render"
	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
)

type fakeAgent struct {
	id     string
	mtx    sync.Mutex
	fail   bool
	got    [][]byte
	onDisc []kite.FnAgentErr
}

func newFakeAgent(id string) *fakeAgent {
	return &fakeAgent{id: id}
}

func (a *fakeAgent) Id() string                    { return a.id }
func (a *fakeAgent) SetId(id string)               { a.id = id }
func (a *fakeAgent) Addr() string                  { return "fake" }
func (a *fakeAgent) SetHead(key string, val any)   {}
func (a *fakeAgent) GetHead(key string) (any, bool) { return nil, false }
func (a *fakeAgent) BindConnected(fn kite.FnAgent)  {}

func (a *fakeAgent) BindDisconnected(fn kite.FnAgentErr) {
	a.onDisc = append(a.onDisc, fn)
}

func (a *fakeAgent) Send(bytes []byte) *util.Err {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.fail {
		return util.NewErr(util.EcClosed, nil)
	}
	a.got = append(a.got, append([]byte(nil), bytes...))
	return nil
}

func (a *fakeAgent) Dispose() {
	for _, fn := range a.onDisc {
		fn(a, nil)
	}
}

func TestHub(t *testing.T) {
	hub := NewHub()
	a := newFakeAgent("a")
	b := newFakeAgent("b")
	hub.Attach(a)
	hub.Attach(b)
	assert.Equal(t, 2, hub.Count())

	b.fail = true
	sent, dropped := hub.Broadcast([]byte("x"))
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, dropped)
	assert.False(t, hub.Has("b"))

	a.Dispose()
	assert.Equal(t, 0, hub.Count())
}

func TestHubReplace(t *testing.T) {
	hub := NewHub()
	old := newFakeAgent("a")
	hub.Attach(old)
	fresh := newFakeAgent("a")
	hub.Attach(fresh)
	// 旧连接断开不影响新连接
	old.Dispose()
	assert.True(t, hub.Has("a"))
	hub.Detach("a")
	assert.Equal(t, 0, hub.Count())
}

func TestBackend(t *testing.T) {
	hub := NewHub()
	a := newFakeAgent("a")
	hub.Attach(a)
	b := New(hub, Tune{Every: 2, Binary: true})
	assert.Nil(t, b.PreTick(Tick{Frame: 1, NowMs: 100}))
	data := []EntityData{{Id: "p1", X: 1, Y: 2, Alive: true}}
	assert.Nil(t, b.Draw(1, data))
	assert.Nil(t, b.Draw(2, data))
	assert.Nil(t, b.Draw(3, data))
	assert.Len(t, a.got, 2)

	var frame codec.Frame
	assert.Nil(t, codec.UnmarshalFrame(a.got[1], &frame))
	assert.Equal(t, int64(3), frame.Num)
	assert.Equal(t, int64(100), frame.NowMs)
	assert.Equal(t, data, frame.Entities)

	assert.Nil(t, b.Update(Tune{Every: 0}))
	assert.Nil(t, b.Draw(4, data))
	assert.Nil(t, codec.UnjsonFrame(a.got[2], &frame))
	assert.Equal(t, int64(4), frame.Num)

	stats := b.Status()
	assert.Equal(t, int64(4), stats.Frames)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, 1, stats.Every)
	assert.False(t, stats.Binary)
	assert.Equal(t, 1, stats.Subscribers)
}

func TestBackendClone(t *testing.T) {
	hub := NewHub()
	hub.Attach(newFakeAgent("a"))
	b := New(hub, Tune{Every: 3})
	_ = b.Draw(1, nil)
	c, err := render.Fork[Tune, Stats, EntityData, Tick](b)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), c.Status().Frames)
	_ = c.Update(Tune{Every: 1, Binary: true})
	assert.Equal(t, 3, b.Status().Every)
	assert.Equal(t, 1, c.Status().Subscribers)
}
