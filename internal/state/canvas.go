package state

import (
	"log"
	"sync"
	"time"
)

// StrokeCanvas records freehand strokes as a linear log, replays them onto a
// Surface and keeps a redo stack of undone strokes.
//
// Calls that arrive in the wrong order (Extend while idle, Begin while
// already drawing, Undo on an empty log) are ignored. A StrokeCanvas is safe
// for use from several goroutines; the surface is only touched with the
// canvas lock held.
type StrokeCanvas struct {
	mu        sync.Mutex
	surface   Surface
	scheduler Scheduler

	width, height int
	strokes       []Stroke
	undoHistory   []Stroke

	current  *Stroke
	last     Point
	readOnly bool
	pen      Pen

	pending []*pendingDraw
	seq     sequence
	hooks   []func(Change)
}

type pendingDraw struct {
	timer Timer
	done  bool
}

// Option configures a StrokeCanvas at construction time.
type Option func(*StrokeCanvas)

// WithScheduler replaces the timer source used by Animate.
func WithScheduler(s Scheduler) Option {
	return func(c *StrokeCanvas) { c.scheduler = s }
}

// WithReadOnly starts the canvas as a pure replay viewer.
func WithReadOnly() Option {
	return func(c *StrokeCanvas) { c.readOnly = true }
}

// WithPen sets the pen used for strokes started from pointer input.
func WithPen(p Pen) Option {
	return func(c *StrokeCanvas) { c.pen = p }
}

// WithSnapshot pre-seeds the log. The snapshot's dimensions win over the
// ones passed to NewStrokeCanvas.
func WithSnapshot(s Snapshot) Option {
	return func(c *StrokeCanvas) {
		c.loadLocked(s)
	}
}

// NewStrokeCanvas creates an empty canvas drawing onto surface. A nil
// surface discards all drawing.
func NewStrokeCanvas(surface Surface, width, height int, opts ...Option) *StrokeCanvas {
	if surface == nil {
		surface = nopSurface{}
	}
	c := &StrokeCanvas{
		surface:   surface,
		scheduler: SystemScheduler,
		width:     width,
		height:    height,
		pen:       DefaultPen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers f to be called after every log mutation. f runs with
// the canvas locked, so it must not call back into the canvas.
func (c *StrokeCanvas) OnChange(f func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, f)
}

func (c *StrokeCanvas) emit(ch Change) {
	ch.Seq = c.seq.next()
	for _, f := range c.hooks {
		f(ch)
	}
}

// Begin opens a new stroke at p with the given color and size.
func (c *StrokeCanvas) Begin(p Point, color string, size float64) {
	c.BeginStroke(p, Pen{Color: color, Size: size})
}

// BeginStroke is Begin with an explicit compositing mode.
func (c *StrokeCanvas) BeginStroke(p Point, pen Pen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readOnly || c.current != nil {
		return
	}
	c.current = &Stroke{Color: pen.Color, Size: pen.Size, Mode: pen.Mode, Segments: []Segment{}}
	c.last = p
}

// Extend adds a segment from the last pen position to p and draws it.
func (c *StrokeCanvas) Extend(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	seg := Segment{Start: c.last, End: p}
	c.current.Segments = append(c.current.Segments, seg)
	c.surface.StrokeSegment(seg.Start, seg.End, c.current.Color, c.current.Size, c.current.Mode)
	c.last = p
}

// End commits the in-progress stroke, even one without segments.
func (c *StrokeCanvas) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	s := c.current.Clone()
	c.current = nil
	c.commitLocked(s)
}

// Cancel terminates an interrupted interaction. It commits exactly like End.
func (c *StrokeCanvas) Cancel() {
	c.End()
}

// Commit appends a complete stroke to the log and draws it. It works on
// read-only canvases, which use it to mirror another canvas.
func (c *StrokeCanvas) Commit(s Stroke) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s = s.Clone()
	c.drawStroke(s)
	c.commitLocked(s)
}

func (c *StrokeCanvas) commitLocked(s Stroke) {
	c.strokes = append(c.strokes, s)
	c.undoHistory = nil
	committed := s.Clone()
	c.emit(Change{Type: ChangeCommit, Stroke: &committed})
}

// Undo moves the newest stroke onto the redo stack and replays the rest.
func (c *StrokeCanvas) Undo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.strokes)
	if n == 0 {
		return
	}
	s := c.strokes[n-1]
	c.strokes = c.strokes[:n-1]
	c.undoHistory = append(c.undoHistory, s)
	c.redrawLocked()
	c.emit(Change{Type: ChangeUndo})
}

// Redo restores the most recently undone stroke and draws only that stroke.
func (c *StrokeCanvas) Redo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.undoHistory)
	if n == 0 {
		return
	}
	s := c.undoHistory[n-1]
	c.undoHistory = c.undoHistory[:n-1]
	c.strokes = append(c.strokes, s)
	c.drawStroke(s)
	c.emit(Change{Type: ChangeRedo})
}

// Clear wipes the surface. The log is untouched.
func (c *StrokeCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.Clear()
}

// RedrawAll clears the surface and replays every committed stroke.
func (c *StrokeCanvas) RedrawAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redrawLocked()
}

func (c *StrokeCanvas) redrawLocked() {
	c.surface.Clear()
	for _, s := range c.strokes {
		c.drawStroke(s)
	}
}

func (c *StrokeCanvas) drawStroke(s Stroke) {
	for _, seg := range s.Segments {
		c.surface.StrokeSegment(seg.Start, seg.End, s.Color, s.Size, s.Mode)
	}
}

// Serialize returns a copy of the log that shares no memory with the canvas.
func (c *StrokeCanvas) Serialize() Snapshot {
	snap, _ := c.Checkpoint()
	return snap
}

// Checkpoint is Serialize plus the sequence number of the last change
// included in the snapshot.
func (c *StrokeCanvas) Checkpoint() (Snapshot, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(), c.seq.current()
}

// CheckpointFunc calls f with a checkpoint while the canvas is still locked,
// so no change can be emitted between taking the snapshot and f returning.
// f must not call back into the canvas.
func (c *StrokeCanvas) CheckpointFunc(f func(Snapshot, uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f(c.snapshotLocked(), c.seq.current())
}

func (c *StrokeCanvas) snapshotLocked() Snapshot {
	return Snapshot{
		Width:       c.width,
		Height:      c.height,
		Strokes:     cloneStrokes(c.strokes),
		UndoHistory: cloneStrokes(c.undoHistory),
	}
}

// Load replaces the log with snap and redraws. Any stroke in progress is
// dropped. The snapshot is expected to have passed Validate.
func (c *StrokeCanvas) Load(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(snap)
	loaded := c.snapshotLocked()
	c.emit(Change{Type: ChangeLoad, Snapshot: &loaded})
}

func (c *StrokeCanvas) loadLocked(snap Snapshot) {
	if snap.Width > 0 && snap.Height > 0 {
		c.width, c.height = snap.Width, snap.Height
	}
	c.strokes = cloneStrokes(snap.Strokes)
	c.undoHistory = cloneStrokes(snap.UndoHistory)
	c.current = nil
	c.redrawLocked()
	log.Printf("[CANVAS] Loaded %d strokes (%d undone), %dx%d", len(c.strokes), len(c.undoHistory), c.width, c.height)
}

// Resize changes the canvas dimensions and replays the log, recovering
// from any loss of surface content.
func (c *StrokeCanvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.redrawLocked()
}

// Animate clears the surface and replays the log on a timer, one segment
// every interval. With loop set, playback restarts loopDelay after the last
// segment. It is ignored while a stroke is being drawn.
func (c *StrokeCanvas) Animate(interval time.Duration, loop bool, loopDelay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return
	}
	log.Printf("[CANVAS] Animating %d strokes every %s (loop=%v)", len(c.strokes), interval, loop)
	c.animateLocked(interval, loop, loopDelay)
}

func (c *StrokeCanvas) animateLocked(interval time.Duration, loop bool, loopDelay time.Duration) {
	live := c.pending[:0]
	for _, p := range c.pending {
		if !p.done {
			live = append(live, p)
		}
	}
	c.pending = live

	c.surface.Clear()
	k := 0
	for _, s := range c.strokes {
		for _, seg := range s.Segments {
			k++
			seg, color, size, mode := seg, s.Color, s.Size, s.Mode
			c.schedule(time.Duration(k)*interval, func() {
				c.surface.StrokeSegment(seg.Start, seg.End, color, size, mode)
			})
		}
	}
	if loop {
		c.schedule(time.Duration(k)*interval+loopDelay, func() {
			c.animateLocked(interval, loop, loopDelay)
		})
	}
}

// schedule registers f with the scheduler. f runs with the canvas locked
// and is skipped if the animation was cancelled in the meantime.
func (c *StrokeCanvas) schedule(d time.Duration, f func()) {
	p := &pendingDraw{}
	p.timer = c.scheduler.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if p.done {
			return
		}
		p.done = true
		f()
	})
	c.pending = append(c.pending, p)
}

// CancelAnimation stops every pending animation callback.
func (c *StrokeCanvas) CancelAnimation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	stopped := 0
	for _, p := range c.pending {
		if !p.done {
			p.done = true
			p.timer.Stop()
			stopped++
		}
	}
	c.pending = nil
	if stopped > 0 {
		log.Printf("[CANVAS] Cancelled %d pending animation steps", stopped)
	}
}

// Animating reports whether any animation callback is still pending.
func (c *StrokeCanvas) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pending {
		if !p.done {
			return true
		}
	}
	return false
}

func (c *StrokeCanvas) SetReadOnly(ro bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readOnly = ro
}

func (c *StrokeCanvas) ReadOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readOnly
}

// Drawing reports whether a stroke is in progress.
func (c *StrokeCanvas) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *StrokeCanvas) SetPen(p Pen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pen = p
}

func (c *StrokeCanvas) Pen() Pen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pen
}

func (c *StrokeCanvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Strokes returns a copy of the committed strokes.
func (c *StrokeCanvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneStrokes(c.strokes)
}

// UndoHistory returns a copy of the strokes available to Redo.
func (c *StrokeCanvas) UndoHistory() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneStrokes(c.undoHistory)
}

func (c *StrokeCanvas) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.strokes) > 0
}

func (c *StrokeCanvas) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undoHistory) > 0
}
