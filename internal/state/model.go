package state

import "fmt"

// Point is a surface-local coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one straight line between two consecutive pointer samples.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Mode selects how a segment is composited onto the surface.
type Mode string

const (
	ModeNormal Mode = ""
	ModeErase  Mode = "erase"
)

func (m Mode) String() string {
	if m == ModeNormal {
		return "normal"
	}
	return string(m)
}

// Valid reports whether m is a known compositing mode.
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeErase
}

// Stroke is one continuous pointer-down to pointer-up interaction.
type Stroke struct {
	Color    string    `json:"color"`
	Size     float64   `json:"size"`
	Mode     Mode      `json:"mode,omitempty"`
	Segments []Segment `json:"lines"`
}

// Clone returns a deep copy of s. Committed strokes never share their
// segment storage with anything else.
func (s Stroke) Clone() Stroke {
	c := s
	c.Segments = make([]Segment, len(s.Segments))
	copy(c.Segments, s.Segments)
	return c
}

// Bounds returns the bounding box of the stroke's segments, grown by half
// the stroke size. ok is false for a stroke without segments.
func (s Stroke) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if len(s.Segments) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = s.Segments[0].Start.X, s.Segments[0].Start.Y
	maxX, maxY = minX, minY
	for _, seg := range s.Segments {
		for _, p := range [2]Point{seg.Start, seg.End} {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	half := s.Size / 2
	return minX - half, minY - half, maxX + half, maxY + half, true
}

func (s Stroke) String() string {
	return fmt.Sprintf("stroke(%s, %g, %s, %d lines)", s.Color, s.Size, s.Mode, len(s.Segments))
}

// Pen holds the attributes applied to strokes started from pointer input.
type Pen struct {
	Color string
	Size  float64
	Mode  Mode
}

// DefaultPen is used until the host selects something else.
var DefaultPen = Pen{Color: "#000000", Size: 5}

func cloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
