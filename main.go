package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	gonet "net"
	"net/http"
	"os"
	"strings"
	"time"

	"SketchBoard/internal/export"
	"SketchBoard/internal/net"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/ui"
)

const (
	browseTimeout  = 3 * time.Second
	thumbnailSize  = 256
	uiLaunchDelay  = 500 * time.Millisecond
	defaultCommand = "host"
)

var ErrUnknownCommand = errors.New("unknown command")

const usage = `usage:
  sketchboard [host] [flags]            draw and share a board
  sketchboard join [flags] [link]       view a shared board (browses the LAN without a link)
  sketchboard sketchboard://host:port   same as join
  sketchboard render [flags] in.json out.png
  sketchboard svg    [flags] in.json out.svg
  sketchboard export [flags] in.json out.pdf
  sketchboard thumb  [flags] in.json out.png`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%v", err)
	}
}

func run(args []string) error {
	cmd := defaultCommand
	if len(args) > 0 {
		switch {
		case strings.HasPrefix(args[0], net.LinkScheme):
			cmd = "join"
		case !strings.HasPrefix(args[0], "-"):
			cmd, args = args[0], args[1:]
		}
	}

	// Flags are parsed twice: once to find the config file, then again on
	// top of the loaded file so command-line values win.
	opts := cliOptions{thumbSize: thumbnailSize}
	probe := NewConfig()
	if _, err := parseFlags(cmd, args, &probe, &opts); err != nil {
		return err
	}
	cfg, err := LoadConfig(firstNonEmpty(opts.config, DefaultConfigFile), opts.config != "")
	if err != nil {
		return err
	}
	fs, err := parseFlags(cmd, args, &cfg, &opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	rest := fs.Args()

	switch cmd {
	case "host":
		return runHost(cfg)
	case "join":
		link := ""
		if len(rest) > 0 {
			link = rest[0]
		}
		return runJoin(cfg, link)
	case "render", "svg", "export", "thumb":
		if len(rest) != 2 {
			return fmt.Errorf("%s: expected input and output paths\n%s", cmd, usage)
		}
		return convert(cmd, rest[0], rest[1], cfg, opts)
	default:
		return fmt.Errorf("%w %q\n%s", ErrUnknownCommand, cmd, usage)
	}
}

// cliOptions are flags that are not part of Config.
type cliOptions struct {
	config    string
	fit       bool
	thumbSize int
}

func parseFlags(cmd string, args []string, cfg *Config, opts *cliOptions) (*flag.FlagSet, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.config, "config", opts.config, "TOML config file (default ./"+DefaultConfigFile+" if present)")
	fs.BoolVar(&opts.fit, "fit", opts.fit, "thumb: crop to the drawn area")
	fs.IntVar(&opts.thumbSize, "thumb-size", opts.thumbSize, "thumb: bounding box in pixels")
	cfg.bindFlags(fs)
	return fs, fs.Parse(args)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// convert replays a snapshot file onto one of the offline surfaces.
func convert(cmd, in, out string, cfg Config, opts cliOptions) error {
	snap, err := state.ReadFile(in)
	if err != nil {
		return err
	}
	bg := cfg.BackgroundColor()
	switch cmd {
	case "render":
		err = render.RenderPNG(out, snap, bg)
	case "svg":
		err = render.RenderSVG(out, snap, bg)
	case "export":
		err = export.ExportPDF(out, snap, bg)
	case "thumb":
		err = writeThumbnail(out, snap, opts.thumbSize, opts.fit, bg)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	log.Printf("Wrote %s (%d strokes)", out, len(snap.Strokes))
	return nil
}

func writeThumbnail(out string, snap state.Snapshot, size int, fit bool, bg color.Color) error {
	img, err := render.Thumbnail(snap, size, size, fit, bg)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runHost(cfg Config) error {
	log.Println("Starting as HOST")
	session := state.NewSessionID()
	bg := cfg.BackgroundColor()
	board := ui.NewBoardWidget(cfg.Width, cfg.Height, bg, state.WithPen(cfg.Pen()))
	if cfg.Snapshot != "" {
		snap, err := state.ReadFile(cfg.Snapshot)
		if err != nil {
			return err
		}
		board.Canvas.Load(snap)
	}

	hub := net.NewHub(board.Canvas, session, bg)
	listener, err := gonet.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer listener.Close()
	go func() {
		log.Printf("[HOST] Listening on port %d, session %s", cfg.Port, session)
		if err := http.Serve(listener, hub); err != nil && !errors.Is(err, gonet.ErrClosed) {
			log.Printf("[HOST] Server stopped: %v", err)
		}
	}()

	if cfg.Advertise {
		server, err := net.Advertise(cfg.Port, session)
		if err != nil {
			log.Printf("[HOST] mDNS disabled: %v", err)
		} else {
			defer server.Shutdown()
		}
	}

	ui.RunApp(board, ui.Options{
		Title:     "SketchBoard",
		ShareLink: net.ShareLink(net.OutgoingIP(), cfg.Port),
		Editable:  true,
		Animate:   animator(board, cfg),
	})
	return nil
}

func runJoin(cfg Config, link string) error {
	log.Println("Starting as VIEWER")
	board := ui.NewBoardWidget(cfg.Width, cfg.Height, cfg.BackgroundColor(), state.WithReadOnly())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go connectToHost(ctx, link, board)
	ui.RunApp(board, ui.Options{Title: "SketchBoard (viewer)", Animate: animator(board, cfg)})
	return nil
}

func animator(board *ui.BoardWidget, cfg Config) func() {
	return func() {
		board.Canvas.CancelAnimation()
		board.Canvas.Animate(cfg.AnimateInterval, cfg.AnimateLoop, cfg.LoopDelay)
	}
}

func connectToHost(ctx context.Context, link string, board *ui.BoardWidget) {
	time.Sleep(uiLaunchDelay) // Give UI time to launch

	addr, err := resolveHost(link)
	if err != nil {
		board.SetStatus(err.Error())
		return
	}
	viewer, err := net.Dial(ctx, addr, board.Canvas)
	if err != nil {
		board.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer viewer.Close()
	board.SetStatus("Connected to host " + addr)
	log.Println("Viewer connected to", addr)

	if err := viewer.Run(ctx); err != nil {
		board.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
		return
	}
	board.SetStatus("Host closed the board")
}

// resolveHost turns a share link into an address, browsing the LAN when
// no link was given.
func resolveHost(link string) (string, error) {
	if link != "" {
		return net.ParseLink(link)
	}
	hosts, err := net.Browse(browseTimeout)
	if err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", errors.New("no boards found on the local network")
	}
	log.Printf("Joining %s at %s", hosts[0].Name, hosts[0].Addr)
	return hosts[0].Addr, nil
}
