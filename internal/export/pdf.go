package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// PDF is a surface backed by a single gofpdf page measured in points, one
// point per canvas pixel.
type PDF struct {
	doc           *gofpdf.Fpdf
	width, height float64
	background    color.NRGBA
	started       bool
}

var _ state.Surface = (*PDF)(nil)

func NewPDF(width, height int, background color.Color) *PDF {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	return &PDF{
		doc:        doc,
		width:      float64(width),
		height:     float64(height),
		background: color.NRGBAModel.Convert(background).(color.NRGBA),
	}
}

// Clear paints the page with the background color. PDF has no way to
// remove content already emitted, so replays after a Clear are layered on
// top of an opaque fill.
func (p *PDF) Clear() {
	if !p.started {
		p.doc.AddPage()
		p.doc.SetLineCapStyle("round")
		p.doc.SetLineJoinStyle("round")
		p.started = true
	}
	bg := p.background
	p.doc.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.doc.Rect(0, 0, p.width, p.height, "F")
}

func (p *PDF) StrokeSegment(start, end state.Point, col string, size float64, mode state.Mode) {
	if !p.started {
		p.Clear()
	}
	c := p.background
	if mode != state.ModeErase {
		c = render.ResolveColor(col)
	}
	p.doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.doc.SetLineWidth(size)
	p.doc.Line(start.X, start.Y, end.X, end.Y)
}

// Output writes the finished document to w. The surface cannot be drawn on
// afterwards.
func (p *PDF) Output(w io.Writer) error {
	if !p.started {
		p.Clear()
	}
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// ExportPDF replays snap onto a PDF page and writes it to path.
func ExportPDF(path string, snap state.Snapshot, background color.Color) error {
	p := NewPDF(snap.Width, snap.Height, background)
	state.NewStrokeCanvas(p, snap.Width, snap.Height, state.WithSnapshot(snap))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := p.Output(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
