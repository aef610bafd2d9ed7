package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Instruction is a message sent to connected relays.
type Instruction struct {
	Type string `json:"type"`
}

// InstructionReload asks the relay to reload the ClickTime page.
const InstructionReload = "RELOAD"

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
)

type relay struct {
	ws   *websocket.Conn
	send chan Instruction
	done chan struct{}
	once sync.Once
}

func (r *relay) close() {
	r.once.Do(func() {
		close(r.done)
		_ = r.ws.Close()
	})
}

// Hub tracks connected relay websockets and fans instructions out to them.
type Hub struct {
	mu     sync.Mutex
	relays map[*relay]struct{}
	logger *slog.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{relays: make(map[*relay]struct{}), logger: logger}
}

// Len returns the number of connected relays.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.relays)
}

// Refresh asks every connected relay to reload the host page.
func (h *Hub) Refresh(context.Context) error {
	n := h.Broadcast(Instruction{Type: InstructionReload})
	if n == 0 {
		h.logger.Warn("no relay connected, host view not refreshed")
	}
	return nil
}

// Broadcast queues msg for every relay and returns how many received it.
// Relays with a full queue are skipped.
func (h *Hub) Broadcast(msg Instruction) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for r := range h.relays {
		select {
		case r.send <- msg:
			n++
		default:
			h.logger.Warn("relay send queue full, dropping instruction", "type", msg.Type)
		}
	}
	return n
}

// Close disconnects every relay.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r := range h.relays {
		r.close()
		delete(h.relays, r)
	}
}

func (h *Hub) add(ws *websocket.Conn) *relay {
	r := &relay{ws: ws, send: make(chan Instruction, sendBuffer), done: make(chan struct{})}
	h.mu.Lock()
	h.relays[r] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(r)
	return r
}

func (h *Hub) remove(r *relay) {
	h.mu.Lock()
	delete(h.relays, r)
	h.mu.Unlock()
	r.close()
}

// writeLoop is the only writer on r.ws.
func (h *Hub) writeLoop(r *relay) {
	for {
		select {
		case <-r.done:
			return
		case msg := <-r.send:
			_ = r.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := r.ws.WriteJSON(msg); err != nil {
				h.logger.Debug("relay write failed", "error", err)
				h.remove(r)
				return
			}
		}
	}
}
