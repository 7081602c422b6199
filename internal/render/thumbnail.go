package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"SketchBoard/internal/state"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// fitPadding surrounds the drawn area when a thumbnail is cropped to it.
const fitPadding = 10

// Thumbnail renders snap scaled to fit inside maxW x maxH, keeping its
// aspect ratio. With fit set, the image is cropped to the drawn strokes.
func Thumbnail(snap state.Snapshot, maxW, maxH int, fit bool, background color.Color) (*image.RGBA, error) {
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("thumbnail size %dx%d", maxW, maxH)
	}
	surface := NewSVG(snap.Width, snap.Height, background)
	state.NewStrokeCanvas(surface, snap.Width, snap.Height, state.WithSnapshot(snap))
	if fit {
		if vb, ok := contentBox(snap.Strokes); ok {
			surface.SetViewBox(vb)
		}
	}

	var doc bytes.Buffer
	if _, err := surface.WriteTo(&doc); err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(&doc, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing thumbnail svg: %w", err)
	}

	vb := surface.ViewBox()
	scale := math.Min(float64(maxW)/vb.W, float64(maxH)/vb.H)
	w := max(1, int(math.Round(vb.W*scale)))
	h := max(1, int(math.Round(vb.H*scale)))
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}

// contentBox is the padded union of the strokes' bounds.
func contentBox(strokes []state.Stroke) (ViewBox, bool) {
	var minX, minY, maxX, maxY float64
	found := false
	for _, s := range strokes {
		x0, y0, x1, y1, ok := s.Bounds()
		if !ok {
			continue
		}
		if !found {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			found = true
			continue
		}
		minX, minY = math.Min(minX, x0), math.Min(minY, y0)
		maxX, maxY = math.Max(maxX, x1), math.Max(maxY, y1)
	}
	if !found {
		return ViewBox{}, false
	}
	return ViewBox{
		X: minX - fitPadding,
		Y: minY - fitPadding,
		W: maxX - minX + 2*fitPadding,
		H: maxY - minY + 2*fitPadding,
	}, true
}
