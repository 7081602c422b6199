package ui

import (
	"image/color"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Palette is the set of swatches offered in the toolbar.
var Palette = []string{"#000000", "#ff0000", "#00a000", "#0000ff", "#ffd700", "#8b4513"}

const eraserSize = 20.0

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Value    string
	OnTapped func(string)
}

func newColorSwatch(value string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Value: value, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ResolveColor(s.Value))
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Value)
	}
}

// Actions are the board operations the toolbar triggers beyond pen
// selection. Nil entries hide their buttons.
type Actions struct {
	Save    func()
	Open    func()
	Animate func()
}

// toolState remembers the pen while the eraser is active.
type toolState struct {
	board *BoardWidget
	pen   state.Pen
}

func (t *toolState) usePen() {
	t.board.Canvas.SetPen(t.pen)
}

func (t *toolState) useEraser() {
	t.board.Canvas.SetPen(state.Pen{Color: t.pen.Color, Size: eraserSize, Mode: state.ModeErase})
}

func (t *toolState) setColor(c string) {
	t.pen.Color = c
	t.usePen()
}

func (t *toolState) setSize(size float64) {
	t.pen.Size = size
	if t.board.Canvas.Pen().Mode != state.ModeErase {
		t.usePen()
	}
}

// --- The Main Toolbar ---
func NewToolbar(board *BoardWidget, actions Actions) fyne.CanvasObject {
	tools := &toolState{board: board, pen: board.Canvas.Pen()}

	var items []widget.ToolbarItem
	// A read-only board mirrors its log from elsewhere; local edits would
	// only make it diverge.
	if !board.Canvas.ReadOnly() {
		items = append(items,
			widget.NewToolbarAction(theme.DocumentCreateIcon(), tools.usePen),
			widget.NewToolbarAction(theme.ContentClearIcon(), tools.useEraser),
			widget.NewToolbarSeparator(),
			widget.NewToolbarAction(theme.ContentUndoIcon(), board.Canvas.Undo),
			widget.NewToolbarAction(theme.ContentRedoIcon(), board.Canvas.Redo),
		)
	}
	items = append(items,
		widget.NewToolbarAction(theme.ViewRefreshIcon(), board.Canvas.RedrawAll),
		widget.NewToolbarAction(theme.ZoomFitIcon(), board.ResetView),
	)
	if actions.Animate != nil {
		items = append(items,
			widget.NewToolbarSeparator(),
			widget.NewToolbarAction(theme.MediaPlayIcon(), actions.Animate),
			widget.NewToolbarAction(theme.MediaStopIcon(), func() {
				board.Canvas.CancelAnimation()
				board.Canvas.RedrawAll()
			}),
		)
	}
	if actions.Open != nil || actions.Save != nil {
		items = append(items, widget.NewToolbarSeparator())
	}
	if actions.Open != nil {
		items = append(items, widget.NewToolbarAction(theme.FolderOpenIcon(), actions.Open))
	}
	if actions.Save != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Save))
	}
	tb := widget.NewToolbar(items...)

	// --- Color Palette ---
	colorBox := container.NewHBox()
	for _, c := range Palette {
		colorBox.Add(newColorSwatch(c, tools.setColor))
	}

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(tools.pen.Size)
	strokeSlider.OnChanged = tools.setSize
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
