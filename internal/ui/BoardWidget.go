package ui

import (
	"image/color"
	"sync"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// segment is one line handed to the widget by the engine.
type segment struct {
	start, end state.Point
	color      color.Color
	width      float32
}

// BoardWidget is the desktop drawing surface. The engine draws into it
// through the state.Surface methods; pointer input is mapped to
// surface-local points and fed back to the engine.
type BoardWidget struct {
	widget.BaseWidget
	Canvas *state.StrokeCanvas

	mu         sync.RWMutex
	segments   []segment
	background color.Color
	panX, panY float32
	panning    bool

	OnStatus func(string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ state.Surface = (*BoardWidget)(nil)

// NewBoardWidget creates the widget together with the canvas drawing on it.
func NewBoardWidget(width, height int, background color.Color, opts ...state.Option) *BoardWidget {
	b := &BoardWidget{background: background}
	b.ExtendBaseWidget(b)
	b.Canvas = state.NewStrokeCanvas(b, width, height, opts...)
	return b
}

func (b *BoardWidget) Clear() {
	b.mu.Lock()
	b.segments = b.segments[:0]
	b.mu.Unlock()
	b.refreshLater()
}

func (b *BoardWidget) StrokeSegment(start, end state.Point, col string, size float64, mode state.Mode) {
	var c color.Color = b.background
	if mode != state.ModeErase {
		c = render.ResolveColor(col)
	}
	b.mu.Lock()
	b.segments = append(b.segments, segment{start: start, end: end, color: c, width: float32(size)})
	b.mu.Unlock()
	b.refreshLater()
}

// Len returns the number of segments currently shown.
func (b *BoardWidget) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.segments)
}

// refreshLater is safe from engine timers and network goroutines.
func (b *BoardWidget) refreshLater() {
	fyne.Do(b.Refresh)
}

func (b *BoardWidget) SetStatus(text string) {
	if b.OnStatus != nil {
		fyne.Do(func() { b.OnStatus(text) })
	}
}

func (b *BoardWidget) offset() state.Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return state.Offset{X: float64(b.panX), Y: float64(b.panY)}
}

func (b *BoardWidget) feed(t state.EventType, pos fyne.Position) {
	p := b.offset().Map(float64(pos.X), float64(pos.Y))
	b.Canvas.Handle(state.Event{Type: t, Point: p})
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.feed(state.EventDown, e.Position)
	case desktop.MouseButtonSecondary:
		b.mu.Lock()
		b.panning = true
		b.mu.Unlock()
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.feed(state.EventUp, e.Position)
	case desktop.MouseButtonSecondary:
		b.mu.Lock()
		b.panning = false
		b.mu.Unlock()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.Canvas.Drawing() {
		b.feed(state.EventMove, e.Position)
		return
	}
	b.mu.Lock()
	if !b.panning {
		b.mu.Unlock()
		return
	}
	b.panX += e.Dragged.DX
	b.panY += e.Dragged.DY
	b.mu.Unlock()
	b.Refresh()
}

func (b *BoardWidget) DragEnd() {
	b.Canvas.Handle(state.Event{Type: state.EventUp})
}

// MouseOut ends the stroke in progress; leaving the board commits it.
func (b *BoardWidget) MouseOut() {
	b.Canvas.Handle(state.Event{Type: state.EventCancel})
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.mu.Lock()
	b.panX += e.Scrolled.DX
	b.panY += e.Scrolled.DY
	b.mu.Unlock()
	b.Refresh()
}

// ResetView undoes any panning.
func (b *BoardWidget) ResetView() {
	b.mu.Lock()
	b.panX, b.panY = 0, 0
	b.mu.Unlock()
	b.Refresh()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(b.background)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	r.board.mu.RLock()
	defer r.board.mu.RUnlock()

	objects := make([]fyne.CanvasObject, 0, len(r.board.segments)+1)
	objects = append(objects, r.background)
	px, py := r.board.panX, r.board.panY
	for _, s := range r.board.segments {
		line := canvas.NewLine(s.color)
		line.StrokeWidth = s.width
		line.Position1 = fyne.NewPos(float32(s.start.X)+px, float32(s.start.Y)+py)
		line.Position2 = fyne.NewPos(float32(s.end.X)+px, float32(s.end.Y)+py)
		objects = append(objects, line)
	}
	return objects
}

func (r *boardWidgetRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}
