package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
)

// Viewer mirrors a host's board onto a local read-only canvas.
type Viewer struct {
	canvas *state.StrokeCanvas
	conn   *websocket.Conn
	writeM sync.Mutex

	mu      sync.Mutex
	session string
	seq     uint64
	synced  bool
}

// Dial connects to the hub listening at addr ("host:port").
func Dial(ctx context.Context, addr string, canvas *state.StrokeCanvas) (*Viewer, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	canvas.SetReadOnly(true)
	return &Viewer{canvas: canvas, conn: conn}, nil
}

// Session returns the host session the viewer is attached to.
func (v *Viewer) Session() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session
}

// Run applies host messages until the connection drops or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { v.conn.Close() })
	defer stop()
	for {
		var msg Message
		if err := v.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("reading from host: %w", err)
		}
		if v.apply(msg) {
			if err := v.send(Message{Type: TypeResync}); err != nil {
				return err
			}
		}
	}
}

// apply reports whether the viewer fell out of step and needs a snapshot.
func (v *Viewer) apply(msg Message) bool {
	switch msg.Type {
	case TypeHello:
		v.mu.Lock()
		changed := msg.Session != v.session
		v.session = msg.Session
		v.mu.Unlock()
		if changed {
			v.synced = false
			log.Printf("[VIEWER] Attached to session %s", msg.Session)
		}
		return false
	case TypeSnapshot:
		if msg.Snapshot == nil {
			return true
		}
		if err := msg.Snapshot.Validate(); err != nil {
			log.Printf("[VIEWER] Ignoring snapshot: %v", err)
			return false
		}
		v.canvas.Load(*msg.Snapshot)
		v.seq, v.synced = msg.Seq, true
		return false
	case TypeCommit, TypeUndo, TypeRedo:
	default:
		return false
	}

	if !v.synced || msg.Seq <= v.seq {
		return false
	}
	if msg.Seq != v.seq+1 {
		log.Printf("[VIEWER] Missed changes %d..%d, resyncing", v.seq+1, msg.Seq-1)
		v.synced = false
		return true
	}
	switch msg.Type {
	case TypeCommit:
		if msg.Stroke == nil {
			v.synced = false
			return true
		}
		v.canvas.Commit(*msg.Stroke)
	case TypeUndo:
		v.canvas.Undo()
	case TypeRedo:
		v.canvas.Redo()
	}
	v.seq = msg.Seq
	return false
}

func (v *Viewer) send(msg Message) error {
	v.writeM.Lock()
	defer v.writeM.Unlock()
	if err := v.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("writing to host: %w", err)
	}
	return nil
}

// Close sends a close frame and drops the connection.
func (v *Viewer) Close() error {
	v.writeM.Lock()
	v.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	v.writeM.Unlock()
	return v.conn.Close()
}
