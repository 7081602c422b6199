package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"SketchBoard/internal/state"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Raster is an in-memory image surface. Erase strokes paint the background.
type Raster struct {
	img        *image.RGBA
	background color.Color
	dasher     *rasterx.Dasher
}

var _ state.Surface = (*Raster)(nil)

// NewRaster returns a surface of the given size filled with background.
func NewRaster(width, height int, background color.Color) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	r := &Raster{
		img:        img,
		background: background,
		dasher:     rasterx.NewDasher(width, height, scanner),
	}
	r.Clear()
	return r
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
}

func (r *Raster) StrokeSegment(start, end state.Point, col string, size float64, mode state.Mode) {
	var c color.Color = r.background
	if mode != state.ModeErase {
		c = ResolveColor(col)
	}
	d := r.dasher
	d.Clear()
	d.SetStroke(fixed.Int26_6(size*64), 4*64, rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.Round, nil, 0)
	d.SetColor(c)
	d.Start(rasterx.ToFixedP(start.X, start.Y))
	d.Line(rasterx.ToFixedP(end.X, end.Y))
	d.Stop(false)
	d.Draw()
}

// Image exposes the backing image. It is overwritten by later drawing.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// RenderPNG replays snap onto a fresh raster and writes it to path.
func RenderPNG(path string, snap state.Snapshot, background color.Color) error {
	r := NewRaster(snap.Width, snap.Height, background)
	state.NewStrokeCanvas(r, snap.Width, snap.Height, state.WithSnapshot(snap))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
