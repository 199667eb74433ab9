package term

import (
	"testing"

	"github.com/15mga/kite/render"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	ss := tcell.NewSimulationScreen("UTF-8")
	if err := ss.Init(); err != nil {
		t.Fatalf("SimulationScreen.Init: %v", err)
	}
	ss.SetSize(20, 10)
	return ss
}

func runeAt(scr tcell.Screen, x, y int) rune {
	r, _, _, _ := scr.GetContent(x, y)
	return r
}

func TestDraw(t *testing.T) {
	ss := newScreen(t)
	b := New(ss)
	assert.Nil(t, b.PreTick(PreTick{Frame: 1, Header: "kite"}))
	err := b.Draw(1, []EntityData{
		{Id: "a", X: 2, Y: 0, Z: 1, Glyph: "@"},
		{Id: "b", X: 2, Y: 0, Z: 0, Glyph: "x"},
		{Id: "c", X: 5, Y: 3, Z: 0, Glyph: "o"},
		{Id: "d", X: 5, Y: 3, Z: 0, Glyph: "O"},
		{Id: "out", X: 50, Y: 3, Glyph: "!"},
		{Id: "neg", X: -1, Y: 3, Glyph: "!"},
	})
	assert.Nil(t, err)
	assert.Equal(t, 'k', runeAt(ss, 0, 0))
	assert.Equal(t, 'e', runeAt(ss, 3, 0))
	// 第 0 行为标题,世界 y=0 在第 1 行
	assert.Equal(t, '@', runeAt(ss, 2, 1))
	assert.Equal(t, 'O', runeAt(ss, 5, 4))

	status := b.Status()
	assert.Equal(t, 2, status.Drawn)
	assert.Equal(t, int64(1), status.Frames)
	assert.Equal(t, 20, status.Width)
	assert.Equal(t, 10, status.Height)
}

func TestCamera(t *testing.T) {
	ss := newScreen(t)
	b := New(ss)
	assert.Nil(t, b.Update(Update{Kind: UpdateCamera, X: 10, Y: 10}))
	assert.Nil(t, b.Update(Update{Kind: UpdateResize, W: 8, H: 5}))
	_ = b.Draw(1, []EntityData{
		{Id: "a", X: 12, Y: 11, Glyph: "@"},
		{Id: "b", X: 19, Y: 11, Glyph: "#"},
	})
	assert.Equal(t, '@', runeAt(ss, 2, 2))
	status := b.Status()
	assert.Equal(t, 1, status.Drawn)
	assert.Equal(t, 8, status.Width)
	assert.Equal(t, 10, status.CamX)

	assert.NotNil(t, b.Update(Update{Kind: UpdateResize, W: -1}))
	assert.NotNil(t, b.Update(Update{Kind: 99}))
	assert.Nil(t, b.Update(Update{Kind: UpdateClear}))
	assert.Equal(t, 0, b.Status().Drawn)
}

func TestWideGlyph(t *testing.T) {
	ss := newScreen(t)
	b := New(ss)
	_ = b.Draw(1, []EntityData{
		{Id: "a", X: 1, Y: 1, Glyph: "龙"},
	})
	assert.Equal(t, '龙', runeAt(ss, 1, 2))
}

func TestClone(t *testing.T) {
	ss := newScreen(t)
	b := New(ss)
	_ = b.Update(Update{Kind: UpdateCamera, X: 1, Y: 1})
	c, err := render.Fork[Update, Status, EntityData, PreTick](b)
	assert.Nil(t, err)
	assert.Equal(t, 1, c.Status().CamX)

	_ = c.Update(Update{Kind: UpdateCamera, X: 3, Y: 3})
	assert.Equal(t, 1, b.Status().CamX)
	assert.Equal(t, 3, c.Status().CamX)

	_ = c.Draw(1, []EntityData{{Id: "a", X: 3, Y: 3, Glyph: "@"}})
	assert.Equal(t, '@', runeAt(ss, 0, 1))
	assert.Equal(t, int64(0), b.Status().Frames)
}
