package net

import (
	"fmt"
	"image/color"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
)

// Message types exchanged between a hub and its viewers.
const (
	TypeHello    = "hello"
	TypeSnapshot = "snapshot"
	TypeCommit   = "commit"
	TypeUndo     = "undo"
	TypeRedo     = "redo"
	TypeResync   = "resync"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256

	// maxThumbnail bounds the w and h query parameters of /thumbnail.png.
	maxThumbnail = 2048
)

// Message is the JSON envelope sent over the websocket.
type Message struct {
	Type     string          `json:"type"`
	Seq      uint64          `json:"seq,omitempty"`
	Session  string          `json:"session,omitempty"`
	Snapshot *state.Snapshot `json:"snapshot,omitempty"`
	Stroke   *state.Stroke   `json:"stroke,omitempty"`
}

func messageFor(ch state.Change) Message {
	msg := Message{Type: string(ch.Type), Seq: ch.Seq}
	switch ch.Type {
	case state.ChangeCommit:
		msg.Type, msg.Stroke = TypeCommit, ch.Stroke
	case state.ChangeLoad:
		msg.Type, msg.Snapshot = TypeSnapshot, ch.Snapshot
	}
	return msg
}

// peer is one connected viewer.
type peer struct {
	conn    *websocket.Conn
	send    chan Message
	once    sync.Once
	dropped atomic.Bool
}

func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// drop disconnects a peer whose buffer is full. Only the first call logs;
// the peer stays registered until its read loop notices the closed conn.
func (p *peer) drop() {
	if p.dropped.CompareAndSwap(false, true) {
		log.Printf("[HUB] Viewer %s is not keeping up, disconnecting", p.conn.RemoteAddr())
		p.conn.Close()
	}
}

// offer queues msg without blocking, dropping the peer when it is full.
func (p *peer) offer(msg Message) {
	if p.dropped.Load() {
		return
	}
	select {
	case p.send <- msg:
	default:
		p.drop()
	}
}

// Hub is run by the HOST. It mirrors every change of its canvas to the
// connected viewers and serves the current board over plain HTTP.
type Hub struct {
	canvas     *state.StrokeCanvas
	session    string
	background color.Color
	upgrader   websocket.Upgrader
	mux        *http.ServeMux

	peers map[*peer]bool
	mu    sync.RWMutex
}

// NewHub wires a hub to canvas. Thumbnails are rendered over background.
func NewHub(canvas *state.StrokeCanvas, session string, background color.Color) *Hub {
	h := &Hub{
		canvas:     canvas,
		session:    session,
		background: background,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		mux:   http.NewServeMux(),
		peers: make(map[*peer]bool),
	}
	h.mux.HandleFunc("/ws", h.serveWS)
	h.mux.HandleFunc("/snapshot.json", h.serveSnapshot)
	h.mux.HandleFunc("/thumbnail.png", h.serveThumbnail)
	canvas.OnChange(h.broadcast)
	return h
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Peers returns the number of connected viewers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// broadcast runs with the canvas locked, so it only queues messages.
func (h *Hub) broadcast(ch state.Change) {
	msg := messageFor(ch)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		p.offer(msg)
	}
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = true
	log.Printf("[HUB] Viewer connected from %s (%d total)", p.conn.RemoteAddr(), len(h.peers))
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	p.close()
	log.Printf("[HUB] Viewer %s left (%d total)", p.conn.RemoteAddr(), len(h.peers))
}

// queue sends msg to p unless its buffer is full.
func (h *Hub) queue(p *peer, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.peers[p] {
		return
	}
	p.offer(msg)
}

// sendSnapshot queues the snapshot with the canvas still locked, so every
// change broadcast afterwards is queued behind it.
func (h *Hub) sendSnapshot(p *peer) {
	h.canvas.CheckpointFunc(func(snap state.Snapshot, seq uint64) {
		h.queue(p, Message{Type: TypeSnapshot, Seq: seq, Snapshot: &snap})
	})
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	p := &peer{conn: conn, send: make(chan Message, sendBuffer)}
	h.add(p)
	h.queue(p, Message{Type: TypeHello, Session: h.session})
	h.sendSnapshot(p)

	go h.writeLoop(p)
	h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer func() {
		h.remove(p)
		p.conn.Close()
	}()
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[HUB] Viewer %s: %v", p.conn.RemoteAddr(), err)
			}
			return
		}
		if msg.Type == TypeResync {
			log.Printf("[HUB] Viewer %s asked for a resync", p.conn.RemoteAddr())
			h.sendSnapshot(p)
		}
	}
}

func (h *Hub) writeLoop(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteJSON(msg); err != nil {
				log.Printf("[HUB] Error sending to %s: %v", p.conn.RemoteAddr(), err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := state.Encode(w, h.canvas.Serialize()); err != nil {
		log.Printf("[HUB] Snapshot for %s: %v", r.RemoteAddr, err)
	}
}

func (h *Hub) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width := queryInt(q.Get("w"), 256)
	height := queryInt(q.Get("h"), 256)
	fit := q.Get("fit") == "1" || q.Get("fit") == "true"
	if width > maxThumbnail || height > maxThumbnail {
		http.Error(w, fmt.Sprintf("thumbnail larger than %dx%d", maxThumbnail, maxThumbnail), http.StatusBadRequest)
		return
	}

	img, err := render.Thumbnail(h.canvas.Serialize(), width, height, fit, h.background)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("[HUB] Thumbnail for %s: %v", r.RemoteAddr, err)
	}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
