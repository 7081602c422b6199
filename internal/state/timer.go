package state

import "time"

// Timer is a handle to a deferred callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d has elapsed, returning a handle that cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules callbacks on the runtime timer heap.
var SystemScheduler Scheduler = realScheduler{}
