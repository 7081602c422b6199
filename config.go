package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "sketchboard.toml"

// Config holds the application configuration.
type Config struct {
	Port       int     `toml:"port"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	PenColor   string  `toml:"pen_color"`
	PenSize    float64 `toml:"pen_size"`
	Background string  `toml:"background"`
	Advertise  bool    `toml:"advertise"`
	// Snapshot is loaded onto the host board at startup.
	Snapshot string `toml:"snapshot"`

	AnimateInterval time.Duration `toml:"animate_interval"`
	AnimateLoop     bool          `toml:"animate_loop"`
	LoopDelay       time.Duration `toml:"loop_delay"`
}

// NewConfig returns the defaults.
func NewConfig() Config {
	return Config{
		Port:            8888,
		Width:           1024,
		Height:          768,
		PenColor:        state.DefaultPen.Color,
		PenSize:         state.DefaultPen.Size,
		Background:      "white",
		Advertise:       true,
		AnimateInterval: 20 * time.Millisecond,
		LoopDelay:       time.Second,
	}
}

// LoadConfig overlays the TOML file at path onto the defaults. A missing
// file is only an error when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := NewConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return NewConfig(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("Config %s: unknown key %q ignored", path, key.String())
	}
	return cfg, nil
}

// bindFlags exposes the config fields on fs; parsed values override the
// file.
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "TCP port the host listens on")
	fs.IntVar(&c.Width, "width", c.Width, "board width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "board height in pixels")
	fs.StringVar(&c.PenColor, "color", c.PenColor, "initial pen color")
	fs.Float64Var(&c.PenSize, "size", c.PenSize, "initial pen size")
	fs.StringVar(&c.Background, "background", c.Background, "board background color")
	fs.BoolVar(&c.Advertise, "advertise", c.Advertise, "announce the board over mDNS")
	fs.StringVar(&c.Snapshot, "load", c.Snapshot, "snapshot file to open at startup")
	fs.DurationVar(&c.AnimateInterval, "interval", c.AnimateInterval, "delay between replayed segments")
	fs.BoolVar(&c.AnimateLoop, "loop", c.AnimateLoop, "repeat the replay")
	fs.DurationVar(&c.LoopDelay, "loop-delay", c.LoopDelay, "pause before the replay repeats")
}

// Validate checks the values that have no sensible fallback.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("board size %dx%d", c.Width, c.Height)
	}
	if c.PenSize <= 0 {
		return fmt.Errorf("pen size %v", c.PenSize)
	}
	if _, err := render.ParseColor(c.PenColor); err != nil {
		return fmt.Errorf("pen color: %w", err)
	}
	if _, err := render.ParseColor(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if c.AnimateInterval <= 0 {
		return fmt.Errorf("animate interval %s", c.AnimateInterval)
	}
	return nil
}

func (c Config) Pen() state.Pen {
	return state.Pen{Color: c.PenColor, Size: c.PenSize}
}

func (c Config) BackgroundColor() color.Color {
	return render.ResolveColor(c.Background)
}
