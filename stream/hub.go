// Package stream broadcasts downsampled overlay frames to remote viewers
// over websockets.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/smoketrail/fluid"
)

// Frame is one broadcast message. Density and Temperature hold one byte per
// output pixel, row-major, Width*Height long.
type Frame struct {
	Type        string  `json:"type"`
	Frame       uint64  `json:"frame"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Density     []uint8 `json:"density"`
	Temperature []uint8 `json:"temperature"`
}

// Command is a message sent by a viewer.
type Command struct {
	Type string `json:"type"` // "reset"
}

// sendQueue is the number of encoded frames buffered per viewer. A viewer
// that falls further behind misses frames until it catches up.
const sendQueue = 4

// client is one connected viewer. Frames reach the socket through send,
// drained by the viewer's own writer goroutine.
type client struct {
	conn *websocket.Conn
	send chan *websocket.PreparedMessage
}

// Hub tracks connected viewers. Broadcast never writes to a socket itself,
// so a stalled viewer only ever delays its own frames.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	dropped atomic.Uint64

	// WriteTimeout bounds each socket write; a viewer that exceeds it is
	// disconnected.
	WriteTimeout time.Duration

	// OnCommand is called from connection goroutines for every valid command.
	OnCommand func(Command)
}

// NewHub creates an empty hub that accepts any origin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:      make(map[*client]struct{}),
		WriteTimeout: time.Second,
	}
}

// ServeHTTP upgrades the request and keeps the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan *websocket.PreparedMessage, sendQueue)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()
	defer func() {
		h.remove(c)
		conn.Close()
		<-done
	}()

	slog.Info("viewer connected", "remote", r.RemoteAddr)
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		if cmd.Type != "" && h.OnCommand != nil {
			h.OnCommand(cmd)
		}
	}
}

// writeLoop drains c.send until it is closed or a write fails. A failed
// write closes the socket, which ends the read loop and removes the client.
func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
		if err := c.conn.WritePreparedMessage(msg); err != nil {
			slog.Warn("websocket write failed", "err", err)
			c.conn.Close()
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped because a viewer's queue
// was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Broadcast encodes f once and queues it for every viewer without waiting
// on any socket. f may be reused as soon as Broadcast returns. It returns
// the number of viewers the frame was queued for.
func (h *Hub) Broadcast(f *Frame) int {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Error("encoding frame failed", "err", err)
		return 0
	}
	msg, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		slog.Error("preparing frame failed", "err", err)
		return 0
	}

	queued := 0
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
			queued++
		default:
			h.dropped.Add(1)
		}
	}
	h.mu.RUnlock()
	return queued
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Serve runs an HTTP server exposing the hub at /ws until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.Close()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// EncodeFrame downsamples the interior of snap into f, reusing its buffers.
// Each output pixel averages a downsample x downsample block; temperature is
// scaled so hotTemp maps to 255.
func EncodeFrame(f *Frame, snap *fluid.Snapshot, downsample int, hotTemp float32) {
	g := snap.Grid
	if downsample < 1 {
		downsample = 1
	}
	if hotTemp <= 0 {
		hotTemp = 1
	}
	w := (g.Width + downsample - 1) / downsample
	h := (g.Height + downsample - 1) / downsample

	f.Type = "frame"
	f.Frame = snap.Frame
	f.Width, f.Height = w, h
	if cap(f.Density) < w*h {
		f.Density = make([]uint8, w*h)
		f.Temperature = make([]uint8, w*h)
	}
	f.Density = f.Density[:w*h]
	f.Temperature = f.Temperature[:w*h]

	for oy := 0; oy < h; oy++ {
		for ox := 0; ox < w; ox++ {
			var d, t float32
			n := 0
			for y := 1 + oy*downsample; y <= min(g.Height, (oy+1)*downsample); y++ {
				for x := 1 + ox*downsample; x <= min(g.Width, (ox+1)*downsample); x++ {
					i := g.Index(x, y)
					d += snap.Density[i]
					t += snap.Temperature[i]
					n++
				}
			}
			k := oy*w + ox
			f.Density[k] = toByte(d / float32(n))
			f.Temperature[k] = toByte(t / float32(n) / hotTemp)
		}
	}
}

func toByte(v float32) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
