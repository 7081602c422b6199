package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ChangeType names the log mutation a Change reports.
type ChangeType string

const (
	ChangeCommit ChangeType = "commit"
	ChangeUndo   ChangeType = "undo"
	ChangeRedo   ChangeType = "redo"
	ChangeLoad   ChangeType = "snapshot"
)

// Change is emitted after every mutation of a canvas' stroke log.
type Change struct {
	Type     ChangeType
	Seq      uint64
	Stroke   *Stroke   // set for ChangeCommit
	Snapshot *Snapshot // set for ChangeLoad
}

// NewSessionID returns a random identifier for one canvas lifetime.
func NewSessionID() string {
	return uuid.NewString()
}

// sequence hands out change numbers. Each canvas has its own.
type sequence struct {
	n atomic.Uint64
}

func (s *sequence) next() uint64 {
	return s.n.Add(1)
}

func (s *sequence) current() uint64 {
	return s.n.Load()
}
