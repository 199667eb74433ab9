package render

import (
	"fmt"
	"testing"

	"github.com/15mga/kite/ecs"
	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
)

const (
	CSprite ecs.TComponent = "sprite"
	CLife   ecs.TComponent = "life"
)

type sprite struct {
	ecs.Component[ecs.StrId]
	glyph rune
}

type life struct {
	ecs.Component[ecs.StrId]
	alive bool
}

func (l *life) IsAlive() bool {
	return l.alive
}

// fakeDriver 记录每次调用
type fakeDriver struct {
	calls   []string
	scale   int
	frames  int64
	drawn   []string
	drawErr bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		scale: 1,
	}
}

func (d *fakeDriver) Clone() IBackend[int, int, string, string] {
	return &fakeDriver{
		scale: d.scale,
	}
}

func (d *fakeDriver) PreTick(data string) *util.Err {
	d.calls = append(d.calls, "pre:"+data)
	return nil
}

func (d *fakeDriver) Update(update int) *util.Err {
	d.calls = append(d.calls, fmt.Sprintf("update:%d", update))
	d.scale = update
	return nil
}

func (d *fakeDriver) Status() int {
	return d.scale
}

func (d *fakeDriver) Draw(frame int64, data []string) *util.Err {
	d.calls = append(d.calls, "draw")
	d.frames = frame
	d.drawn = append(d.drawn[:0], data...)
	if d.drawErr {
		return util.NewErr(util.EcRenderErr, nil)
	}
	return nil
}

var _ IDriver[int, int, string, string] = (*fakeDriver)(nil)
var _ = AssertBackend[int, int, string, string](newFakeDriver())

// onlyBackend Clone 结果不是驱动
type onlyBackend struct {
	*fakeDriver
}

func (b *onlyBackend) Clone() IBackend[int, int, string, string] {
	return &plainBackend{}
}

type plainBackend struct{}

func (b *plainBackend) Clone() IBackend[int, int, string, string] {
	return b
}

func TestFork(t *testing.T) {
	d := newFakeDriver()
	d.scale = 3
	c, err := Fork[int, int, string, string](d)
	assert.Nil(t, err)
	assert.Equal(t, 3, c.Status())
	_ = c.Update(5)
	assert.Equal(t, 3, d.Status())

	_, err = Fork[int, int, string, string](&onlyBackend{fakeDriver: d})
	assert.NotNil(t, err)
	assert.Equal(t, util.EcWrongType, err.Code())
}

func extractSprite(c ecs.IComponent[ecs.StrId]) (string, bool) {
	s, ok := c.(*sprite)
	if !ok {
		return "", false
	}
	return c.Entity().Id().String() + ":" + string(s.glyph), true
}

func newWorld(alive ...bool) *ecs.Scene[ecs.StrId] {
	scene := ecs.NewScene[ecs.StrId]("s", "test")
	for i, a := range alive {
		e := ecs.NewEntity[ecs.StrId](ecs.StrId(fmt.Sprintf("e%03d", i)))
		e.AddComponents(
			&sprite{Component: ecs.NewComponent[ecs.StrId](CSprite), glyph: '@'},
			&life{Component: ecs.NewComponent[ecs.StrId](CLife), alive: a},
		)
		_ = scene.AddEntity(e)
	}
	return scene
}

func TestNewPipelineErr(t *testing.T) {
	_, err := NewPipeline[ecs.StrId, int, int, string, string]("render", newFakeDriver())
	assert.NotNil(t, err)
	_, err = NewPipeline[ecs.StrId, int, int, string, string]("render", newFakeDriver(),
		PipelineTag[ecs.StrId, string, string](string(CSprite)))
	assert.Equal(t, util.EcParamsErr, err.Code())
}

func TestPipeline(t *testing.T) {
	scene := newWorld(true, false, true)
	d := newFakeDriver()
	p, err := NewPipeline[ecs.StrId, int, int, string, string]("render", d,
		PipelineTag[ecs.StrId, string, string](string(CSprite)),
		PipelineExtract[ecs.StrId, string, string](extractSprite),
		PipelineStatus[ecs.StrId, string, string](CLife),
		PipelinePreTick[ecs.StrId, string, string](func(f *ecs.Frame[ecs.StrId]) string {
			return fmt.Sprintf("%d", f.Num())
		}))
	assert.Nil(t, err)
	frame := ecs.NewFrame[ecs.StrId](scene, ecs.FrameSystems[ecs.StrId](p))

	p.PushUpdate(2)
	p.PushUpdate(4)
	frame.Step()
	assert.Equal(t, []string{"update:2", "update:4", "pre:1", "draw"}, d.calls)
	assert.Equal(t, []string{"e000:@", "e002:@"}, d.drawn)
	assert.Equal(t, int64(1), d.frames)
	assert.Equal(t, 4, p.Status())

	d.calls = d.calls[:0]
	d.drawErr = true
	frame.Step()
	assert.Equal(t, []string{"pre:2", "draw"}, d.calls)
	assert.Equal(t, int64(2), d.frames)
}

func TestPipelineParallel(t *testing.T) {
	alive := make([]bool, 500)
	for i := range alive {
		alive[i] = i%5 != 0
	}
	scene := newWorld(alive...)
	d := newFakeDriver()
	p, err := NewPipeline[ecs.StrId, int, int, string, string]("render", d,
		PipelineTag[ecs.StrId, string, string](string(CSprite)),
		PipelineExtract[ecs.StrId, string, string](extractSprite),
		PipelineStatus[ecs.StrId, string, string](CLife),
		PipelineParallel[ecs.StrId, string, string](32))
	assert.Nil(t, err)
	frame := ecs.NewFrame[ecs.StrId](scene, ecs.FrameSystems[ecs.StrId](p))
	frame.Step()
	assert.Len(t, d.drawn, 400)
	assert.Equal(t, "e001:@", d.drawn[0])
}
