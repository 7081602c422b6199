package state

// Surface is the 2D drawing target the canvas replays onto. Implementations
// draw a single round-capped, round-joined line per StrokeSegment call.
type Surface interface {
	Clear()
	StrokeSegment(start, end Point, color string, size float64, mode Mode)
}

// Offset is the on-screen position of a surface. Raw pointer coordinates
// are mapped into surface-local space by subtracting it.
type Offset struct {
	X, Y float64
}

// Map converts a raw pointer position into a surface-local Point.
func (o Offset) Map(x, y float64) Point {
	return Point{X: x - o.X, Y: y - o.Y}
}

type nopSurface struct{}

func (nopSurface) Clear()                                            {}
func (nopSurface) StrokeSegment(Point, Point, string, float64, Mode) {}
