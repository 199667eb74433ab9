package term

import (
	"math"
	"sync"

	"github.com/15mga/kite/render"
	"github.com/15mga/kite/util"
	"github.com/gdamore/tcell/v2"
	"github.com/kamstrup/intmap"
	"github.com/mattn/go-runewidth"
)

type UpdateKind uint8

const (
	// UpdateResize 固定视口为 W*H,0 表示跟随屏幕
	UpdateResize UpdateKind = iota
	// UpdateCamera 相机移到 X,Y
	UpdateCamera
	UpdateClear
)

type (
	EntityData struct {
		Id    string
		X, Y  float32
		Z     float32
		Glyph string
		Fg    tcell.Color
	}
	PreTick struct {
		Frame  int64
		Header string
	}
	Update struct {
		Kind UpdateKind
		W, H int
		X, Y int
	}
	Status struct {
		Width, Height int
		CamX, CamY    int
		Frames        int64
		Drawn         int
	}
)

type IDriver = render.IDriver[Update, Status, EntityData, PreTick]

var _ IDriver = (*Backend)(nil)

// screen 多个副本共用同一屏幕
type screen struct {
	mtx sync.Mutex
	scr tcell.Screen
}

func New(scr tcell.Screen) *Backend {
	return &Backend{
		shared: &screen{scr: scr},
		cells:  intmap.New[int, int](256),
	}
}

// Backend 终端渲染,第 0 行为标题,实体从第 1 行开始
type Backend struct {
	shared *screen
	mtx    sync.Mutex
	width  int
	height int
	camX   int
	camY   int
	header string
	frames int64
	drawn  int
	cells  *intmap.Map[int, int]
}

func (b *Backend) Clone() render.IBackend[Update, Status, EntityData, PreTick] {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return &Backend{
		shared: b.shared,
		width:  b.width,
		height: b.height,
		camX:   b.camX,
		camY:   b.camY,
		header: b.header,
		frames: b.frames,
		drawn:  b.drawn,
		cells:  intmap.New[int, int](256),
	}
}

func (b *Backend) PreTick(data PreTick) *util.Err {
	b.mtx.Lock()
	b.header = data.Header
	b.mtx.Unlock()
	return nil
}

func (b *Backend) Update(update Update) *util.Err {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	switch update.Kind {
	case UpdateResize:
		if update.W < 0 || update.H < 0 {
			return util.NewErr(util.EcParamsErr, util.M{
				"w": update.W,
				"h": update.H,
			})
		}
		b.width, b.height = update.W, update.H
	case UpdateCamera:
		b.camX, b.camY = update.X, update.Y
	case UpdateClear:
		b.shared.mtx.Lock()
		b.shared.scr.Clear()
		b.shared.scr.Show()
		b.shared.mtx.Unlock()
		b.drawn = 0
	default:
		return util.NewErr(util.EcParamsErr, util.M{
			"kind": update.Kind,
		})
	}
	return nil
}

func (b *Backend) Status() Status {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	w, h := b.viewport()
	return Status{
		Width:  w,
		Height: h,
		CamX:   b.camX,
		CamY:   b.camY,
		Frames: b.frames,
		Drawn:  b.drawn,
	}
}

func (b *Backend) viewport() (int, int) {
	w, h := b.shared.scr.Size()
	if b.width > 0 && b.width < w {
		w = b.width
	}
	if b.height > 0 && b.height < h {
		h = b.height
	}
	return w, h
}

func (b *Backend) Draw(frame int64, data []EntityData) *util.Err {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.shared.mtx.Lock()
	defer b.shared.mtx.Unlock()

	scr := b.shared.scr
	w, h := b.viewport()
	scr.Clear()
	b.putText(0, 0, w, b.header, tcell.StyleDefault)

	// 同一格保留 Z 最大的,相同时后者覆盖
	b.cells.Clear()
	for i := range data {
		key, ok := b.cell(&data[i], w, h)
		if !ok {
			continue
		}
		if idx, exist := b.cells.Get(key); exist && data[idx].Z > data[i].Z {
			continue
		}
		b.cells.Put(key, i)
	}
	drawn := 0
	for i := range data {
		d := &data[i]
		key, ok := b.cell(d, w, h)
		if !ok {
			continue
		}
		if idx, _ := b.cells.Get(key); idx != i {
			continue
		}
		b.putGlyph(key%w, key/w, d.Glyph, tcell.StyleDefault.Foreground(d.Fg))
		drawn++
	}
	scr.Show()
	b.frames++
	b.drawn = drawn
	return nil
}

// cell 世界坐标转屏幕格,不在视口内返回 false
func (b *Backend) cell(d *EntityData, w, h int) (int, bool) {
	x := int(math.Floor(float64(d.X))) - b.camX
	y := int(math.Floor(float64(d.Y))) - b.camY + 1
	if x < 0 || x >= w || y < 1 || y >= h {
		return 0, false
	}
	return y*w + x, true
}

func (b *Backend) putText(x, y, w int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= w {
			return
		}
		b.shared.scr.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (b *Backend) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	b.shared.scr.SetContent(x, y, runes[0], combc, style)
	if runewidth.StringWidth(glyph) == 2 {
		b.shared.scr.SetContent(x+1, y, ' ', nil, style)
	}
}
