package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitRecordsSegments(t *testing.T) {
	c := NewStrokeCanvas(&recorder{}, 100, 100)
	c.Begin(Point{0, 0}, "#ff0000", 5)
	c.Extend(Point{10, 0})
	c.Extend(Point{10, 10})
	c.End()

	strokes := c.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, "#ff0000", strokes[0].Color)
	assert.Equal(t, 5.0, strokes[0].Size)
	assert.Equal(t, []Segment{
		{Start: Point{0, 0}, End: Point{10, 0}},
		{Start: Point{10, 0}, End: Point{10, 10}},
	}, strokes[0].Segments)
	assert.Empty(t, c.UndoHistory())
	assert.False(t, c.Drawing())
}

func TestExtendDrawsEachSegment(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	c.Begin(Point{1, 1}, "blue", 2)
	c.Extend(Point{2, 2})
	c.Extend(Point{3, 3})
	assert.Len(t, r.ops, 2)
	assert.True(t, c.Drawing())
	assert.Empty(t, c.Strokes(), "nothing is committed before End")
}

func TestTapCommitsEmptyStroke(t *testing.T) {
	c := NewStrokeCanvas(nil, 10, 10)
	c.Begin(Point{5, 5}, "black", 3)
	c.End()
	strokes := c.Strokes()
	require.Len(t, strokes, 1)
	assert.Empty(t, strokes[0].Segments)
}

func TestCancelCommitsLikeEnd(t *testing.T) {
	c := NewStrokeCanvas(nil, 10, 10)
	c.Begin(Point{0, 0}, "black", 3)
	c.Extend(Point{1, 1})
	c.Cancel()
	require.Len(t, c.Strokes(), 1)
	assert.False(t, c.Drawing())
}

func TestBeginWhileDrawingIsIgnored(t *testing.T) {
	c := NewStrokeCanvas(nil, 10, 10)
	c.Begin(Point{0, 0}, "red", 1)
	c.Begin(Point{5, 5}, "blue", 9)
	c.Extend(Point{1, 0})
	c.End()

	strokes := c.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, "red", strokes[0].Color)
	assert.Equal(t, Point{0, 0}, strokes[0].Segments[0].Start)
}

func TestReadOnlyRejectsInput(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 10, 10, WithReadOnly())
	c.Begin(Point{0, 0}, "red", 1)
	c.Extend(Point{1, 1})
	c.End()
	assert.Empty(t, c.Strokes())
	assert.Empty(t, r.ops)

	c.Commit(Stroke{Color: "red", Size: 1, Segments: []Segment{{End: Point{1, 1}}}})
	assert.Len(t, c.Strokes(), 1, "programmatic commits still apply")
}

func TestNoOpGuards(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 10, 10)
	c.Undo()
	c.Redo()
	c.Extend(Point{1, 1})
	c.End()
	c.Cancel()
	assert.Empty(t, c.Strokes())
	assert.Empty(t, c.UndoHistory())
	assert.Empty(t, r.ops)
	assert.Zero(t, r.clears)
}

func TestUndoReplaysRemainingStrokes(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	drawStroke(c, "green", 2, Point{0, 1}, Point{1, 1})
	drawStroke(c, "blue", 3, Point{0, 2}, Point{1, 2})
	third := c.Strokes()[2]

	c.Undo()
	assert.Len(t, c.Strokes(), 2)
	assert.Equal(t, []Stroke{third}, c.UndoHistory())

	want := &recorder{}
	ref := NewStrokeCanvas(want, 100, 100)
	drawStroke(ref, "red", 1, Point{0, 0}, Point{1, 0})
	drawStroke(ref, "green", 2, Point{0, 1}, Point{1, 1})
	ref.RedrawAll()
	assert.Equal(t, want.ops, r.ops)
}

func TestUndoRedoInverse(t *testing.T) {
	c := NewStrokeCanvas(nil, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	drawStroke(c, "green", 2, Point{0, 1}, Point{1, 1}, Point{2, 2})
	c.Undo()
	beforeStrokes, beforeUndo := c.Strokes(), c.UndoHistory()

	c.Undo()
	c.Redo()
	assert.Equal(t, beforeStrokes, c.Strokes())
	assert.Equal(t, beforeUndo, c.UndoHistory())
}

func TestRedoDrawsOnlyRestoredStroke(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	drawStroke(c, "blue", 1, Point{0, 5}, Point{1, 5})
	c.Undo()
	clears := r.clears
	opsBefore := len(r.ops)

	c.Redo()
	assert.Equal(t, clears, r.clears)
	assert.Len(t, r.ops, opsBefore+1)
	assert.Contains(t, r.ops[len(r.ops)-1], "blue")
}

func TestNewCommitInvalidatesRedo(t *testing.T) {
	c := NewStrokeCanvas(nil, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	c.Undo()
	require.True(t, c.CanRedo())

	drawStroke(c, "blue", 1, Point{0, 0}, Point{0, 1})
	assert.False(t, c.CanRedo())
	c.Redo()
	require.Len(t, c.Strokes(), 1)
	assert.Equal(t, "blue", c.Strokes()[0].Color)
}

func TestCommittedStrokesDoNotAlias(t *testing.T) {
	c := NewStrokeCanvas(nil, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	got := c.Strokes()
	got[0].Segments[0].End = Point{99, 99}
	assert.Equal(t, Point{1, 0}, c.Strokes()[0].Segments[0].End)

	snap := c.Serialize()
	snap.Strokes[0].Color = "green"
	assert.Equal(t, "red", c.Strokes()[0].Color)
}

func TestRedrawAllIsIdempotent(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 1})
	drawStroke(c, "blue", 4, Point{3, 3}, Point{4, 4})

	c.RedrawAll()
	first := append([]string(nil), r.ops...)
	c.RedrawAll()
	assert.Equal(t, first, r.ops)
	assert.Len(t, first, 3)
}

func TestClearLeavesLog(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	c.Clear()
	assert.Empty(t, r.ops)
	assert.Len(t, c.Strokes(), 1)
}

func TestEraseModeIsRecordedAndReplayed(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	c.BeginStroke(Point{0, 0}, Pen{Color: "white", Size: 20, Mode: ModeErase})
	c.Extend(Point{5, 5})
	c.End()
	require.Equal(t, ModeErase, c.Strokes()[0].Mode)
	c.RedrawAll()
	assert.Contains(t, r.ops[0], "erase")
}

func TestLoadRedrawsAndDropsInProgressStroke(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 10, 10)
	c.Begin(Point{0, 0}, "red", 1)
	c.Load(Snapshot{
		Width: 40, Height: 30,
		Strokes:     []Stroke{{Color: "blue", Size: 2, Segments: []Segment{{End: Point{1, 1}}}}},
		UndoHistory: []Stroke{{Color: "green", Size: 2, Segments: []Segment{}}},
	})
	assert.False(t, c.Drawing())
	w, h := c.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Len(t, r.ops, 1)
	assert.True(t, c.CanRedo())
}

func TestOnChangeSequence(t *testing.T) {
	c := NewStrokeCanvas(nil, 10, 10)
	var got []Change
	c.OnChange(func(ch Change) { got = append(got, ch) })

	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})
	c.Undo()
	c.Redo()
	c.Undo()
	c.Load(c.Serialize())

	require.Len(t, got, 5)
	types := []ChangeType{ChangeCommit, ChangeUndo, ChangeRedo, ChangeUndo, ChangeLoad}
	for i, ch := range got {
		assert.Equal(t, types[i], ch.Type)
		assert.Equal(t, uint64(i+1), ch.Seq)
	}
	require.NotNil(t, got[0].Stroke)
	assert.Equal(t, "red", got[0].Stroke.Color)
	require.NotNil(t, got[4].Snapshot)
	assert.Len(t, got[4].Snapshot.UndoHistory, 1)

	_, seq := c.Checkpoint()
	assert.Equal(t, uint64(5), seq)
}

func TestAnimateSchedule(t *testing.T) {
	r := &recorder{}
	s := &manualScheduler{}
	c := NewStrokeCanvas(r, 100, 100, WithScheduler(s))
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 0})
	drawStroke(c, "blue", 1, Point{0, 1}, Point{1, 1}, Point{2, 1})

	c.Animate(100*time.Millisecond, false, 0)
	assert.Empty(t, r.ops, "animate starts from a cleared surface")
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond, 200 * time.Millisecond,
		300 * time.Millisecond, 400 * time.Millisecond,
	}, s.delays())
	assert.True(t, c.Animating())

	assert.Equal(t, 4, s.advance(time.Second))
	want := &recorder{}
	ref := NewStrokeCanvas(want, 100, 100, WithSnapshot(c.Serialize()))
	ref.RedrawAll()
	assert.Equal(t, want.ops, r.ops)
	assert.False(t, c.Animating())
}

func TestCancelAnimationBeforeAnyFire(t *testing.T) {
	r := &recorder{}
	s := &manualScheduler{}
	c := NewStrokeCanvas(r, 100, 100, WithScheduler(s))
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 0})
	drawStroke(c, "blue", 1, Point{0, 1}, Point{1, 1}, Point{2, 1})

	c.Animate(100*time.Millisecond, false, 0)
	c.CancelAnimation()
	c.CancelAnimation()
	assert.Zero(t, s.advance(time.Second))
	assert.Empty(t, r.ops)
}

func TestCancelAnimationMidway(t *testing.T) {
	r := &recorder{}
	s := &manualScheduler{}
	c := NewStrokeCanvas(r, 100, 100, WithScheduler(s))
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 0}, Point{3, 0})

	c.Animate(10*time.Millisecond, false, 0)
	s.advance(15 * time.Millisecond)
	c.CancelAnimation()
	s.advance(time.Second)
	assert.Len(t, r.ops, 1)
}

func TestAnimateIgnoredWhileDrawing(t *testing.T) {
	r := &recorder{}
	s := &manualScheduler{}
	c := NewStrokeCanvas(r, 100, 100, WithScheduler(s))
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0})

	c.Begin(Point{5, 5}, "blue", 2)
	c.Extend(Point{6, 6})
	clears := r.clears
	c.Animate(10*time.Millisecond, false, 0)
	assert.Equal(t, clears, r.clears, "the live stroke stays on the surface")
	assert.Empty(t, s.delays())
	assert.False(t, c.Animating())

	c.Extend(Point{7, 7})
	c.End()
	assert.Len(t, r.ops, 3)
	c.Animate(10*time.Millisecond, false, 0)
	assert.Len(t, s.delays(), 3)
}

func TestResizeReplaysLog(t *testing.T) {
	r := &recorder{}
	c := NewStrokeCanvas(r, 100, 100)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 0})
	drawStroke(c, "blue", 2, Point{5, 5}, Point{6, 6})
	before := append([]string(nil), r.ops...)

	r.ops = nil // content lost
	clears := r.clears
	c.Resize(300, 200)

	w, h := c.Size()
	assert.Equal(t, []int{300, 200}, []int{w, h})
	assert.Equal(t, clears+1, r.clears)
	assert.Equal(t, before, r.ops)
	assert.Equal(t, 300, c.Serialize().Width)
}

func TestCheckpointFuncSeesLatestChange(t *testing.T) {
	c := NewStrokeCanvas(nil, 10, 10)
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 1})
	var got Snapshot
	var seq uint64
	c.CheckpointFunc(func(s Snapshot, n uint64) { got, seq = s, n })
	snap, n := c.Checkpoint()
	assert.Equal(t, snap, got)
	assert.Equal(t, n, seq)
	assert.NotZero(t, seq)
}

func TestAnimateLoop(t *testing.T) {
	r := &recorder{}
	s := &manualScheduler{}
	c := NewStrokeCanvas(r, 100, 100, WithScheduler(s))
	drawStroke(c, "red", 1, Point{0, 0}, Point{1, 0}, Point{2, 0})

	c.Animate(10*time.Millisecond, true, 50*time.Millisecond)
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond, 20 * time.Millisecond, 70 * time.Millisecond,
	}, s.delays())

	s.advance(70 * time.Millisecond)
	assert.Equal(t, 2, r.clears, "loop restarts from a cleared surface")
	assert.Equal(t, []time.Duration{
		80 * time.Millisecond, 90 * time.Millisecond, 140 * time.Millisecond,
	}, s.delays())

	c.CancelAnimation()
	assert.Empty(t, s.delays())
}

func TestHandleDispatchesInput(t *testing.T) {
	c := NewStrokeCanvas(nil, 100, 100, WithPen(Pen{Color: "purple", Size: 7}))
	now := time.Now()
	for _, ev := range []Event{
		{Type: EventDown, Point: Point{1, 1}, Time: now},
		{Type: EventMove, Point: Point{2, 2}, Time: now},
		{Type: EventMove, Point: Point{3, 3}, Time: now},
		{Type: EventUp, Time: now},
		{Type: EventMove, Point: Point{9, 9}, Time: now},
	} {
		c.Handle(ev)
	}
	strokes := c.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, "purple", strokes[0].Color)
	assert.Equal(t, 7.0, strokes[0].Size)
	assert.Len(t, strokes[0].Segments, 2)
}

func TestOffsetMap(t *testing.T) {
	o := Offset{X: 10, Y: 20}
	assert.Equal(t, Point{5, 5}, o.Map(15, 25))
}

func TestIndependentCanvases(t *testing.T) {
	a := NewStrokeCanvas(nil, 10, 10)
	b := NewStrokeCanvas(nil, 10, 10)
	a.Begin(Point{0, 0}, "red", 1)
	b.Begin(Point{0, 0}, "blue", 1)
	b.End()
	assert.True(t, a.Drawing())
	assert.Len(t, b.Strokes(), 1)
	assert.Empty(t, a.Strokes())
}
