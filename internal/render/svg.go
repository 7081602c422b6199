package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"

	"SketchBoard/internal/state"
)

// ViewBox is the region of user space an SVG document shows.
type ViewBox struct {
	X, Y, W, H float64
}

type svgLine struct {
	start, end state.Point
	stroke     color.NRGBA
	width      float64
}

// SVG is a vector surface. Each segment becomes one <line> element.
type SVG struct {
	width, height int
	background    color.NRGBA
	viewBox       ViewBox
	lines         []svgLine
}

var _ state.Surface = (*SVG)(nil)

func NewSVG(width, height int, background color.Color) *SVG {
	return &SVG{
		width:      width,
		height:     height,
		background: color.NRGBAModel.Convert(background).(color.NRGBA),
		viewBox:    ViewBox{W: float64(width), H: float64(height)},
	}
}

func (s *SVG) Clear() {
	s.lines = s.lines[:0]
}

func (s *SVG) StrokeSegment(start, end state.Point, col string, size float64, mode state.Mode) {
	c := s.background
	if mode != state.ModeErase {
		c = ResolveColor(col)
	}
	s.lines = append(s.lines, svgLine{start: start, end: end, stroke: c, width: size})
}

// Len returns the number of line elements currently held.
func (s *SVG) Len() int {
	return len(s.lines)
}

// SetViewBox restricts the emitted document to vb.
func (s *SVG) SetViewBox(vb ViewBox) {
	s.viewBox = vb
}

func (s *SVG) ViewBox() ViewBox {
	return s.viewBox
}

// WriteTo writes the surface as a standalone SVG document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	vb := s.viewBox
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="%g %g %g %g">`+"\n",
		vb.W, vb.H, vb.X, vb.Y, vb.W, vb.H)
	fmt.Fprintf(&buf, `<rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>`+"\n",
		vb.X, vb.Y, vb.W, vb.H, Hex(s.background))
	for _, l := range s.lines {
		fmt.Fprintf(&buf, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"`,
			l.start.X, l.start.Y, l.end.X, l.end.Y, Hex(l.stroke), l.width)
		if l.stroke.A != 0xff {
			fmt.Fprintf(&buf, ` stroke-opacity="%.3f"`, float64(l.stroke.A)/0xff)
		}
		buf.WriteString(` stroke-linecap="round" stroke-linejoin="round"/>` + "\n")
	}
	buf.WriteString("</svg>\n")
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// RenderSVG replays snap onto a vector surface and writes it to path.
func RenderSVG(path string, snap state.Snapshot, background color.Color) error {
	s := NewSVG(snap.Width, snap.Height, background)
	state.NewStrokeCanvas(s, snap.Width, snap.Height, state.WithSnapshot(snap))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing svg: %w", err)
	}
	return f.Close()
}
