package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrInvalidSnapshot is wrapped by every validation failure.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the serialized form of a canvas: its dimensions, committed
// strokes and redo stack. Field names are the persistence and wire contract.
type Snapshot struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Strokes     []Stroke `json:"strokes"`
	UndoHistory []Stroke `json:"undoHistory"`
}

// Validate rejects snapshots a canvas should never be loaded from.
func (s Snapshot) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidSnapshot, s.Width, s.Height)
	}
	if err := validateStrokes("strokes", s.Strokes); err != nil {
		return err
	}
	return validateStrokes("undoHistory", s.UndoHistory)
}

func validateStrokes(field string, strokes []Stroke) error {
	for i, st := range strokes {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", field, i, err)
		}
	}
	return nil
}

// Validate checks a single stroke.
func (s Stroke) Validate() error {
	if s.Color == "" {
		return fmt.Errorf("%w: empty color", ErrInvalidSnapshot)
	}
	if !finite(s.Size) || s.Size < 0 {
		return fmt.Errorf("%w: size %v", ErrInvalidSnapshot, s.Size)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSnapshot, string(s.Mode))
	}
	for j, seg := range s.Segments {
		if !finite(seg.Start.X) || !finite(seg.Start.Y) || !finite(seg.End.X) || !finite(seg.End.Y) {
			return fmt.Errorf("%w: lines[%d] has a non-finite coordinate", ErrInvalidSnapshot, j)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap Snapshot) error {
	if snap.Strokes == nil {
		snap.Strokes = []Stroke{}
	}
	if snap.UndoHistory == nil {
		snap.UndoHistory = []Stroke{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Decode reads and validates a JSON snapshot.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, list := range [][]Stroke{snap.Strokes, snap.UndoHistory} {
		for i := range list {
			if list[i].Segments == nil {
				list[i].Segments = []Segment{}
			}
		}
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// WriteFile saves snap to path, replacing any existing file.
func WriteFile(path string, snap Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
