package render

import (
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/colornames"
)

// ParseColor understands "#rgb", "#rrggbb", "#rrggbbaa" and CSS color names.
func ParseColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.NRGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	if !strings.HasPrefix(name, "#") {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	hex := name[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

var warned sync.Map

// ResolveColor is ParseColor for drawing code: unknown colors render black
// and are reported once per distinct value.
func ResolveColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		if _, seen := warned.LoadOrStore(s, true); !seen {
			log.Printf("[RENDER] %v, drawing in black", err)
		}
		return color.NRGBA{A: 0xff}
	}
	return c
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
