package state

import (
	"fmt"
	"sort"
	"time"
)

// recorder is a Surface that keeps the calls made since the last Clear.
type recorder struct {
	ops    []string
	clears int
}

func (r *recorder) Clear() {
	r.ops = nil
	r.clears++
}

func (r *recorder) StrokeSegment(start, end Point, color string, size float64, mode Mode) {
	r.ops = append(r.ops, fmt.Sprintf("%v->%v %s %g %s", start, end, color, size, mode))
}

// manualScheduler fires callbacks only when advanced.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// delays returns the scheduled offsets of timers that are still pending.
func (s *manualScheduler) delays() []time.Duration {
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.at)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// advance moves the clock forward, firing due timers in schedule order.
func (s *manualScheduler) advance(d time.Duration) int {
	target := s.now + d
	fired := 0
	for {
		var next *manualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.at
		next.fired = true
		next.f()
		fired++
	}
	s.now = target
	return fired
}

func drawStroke(c *StrokeCanvas, color string, size float64, pts ...Point) {
	c.Begin(pts[0], color, size)
	for _, p := range pts[1:] {
		c.Extend(p)
	}
	c.End()
}
