package ws

import (
	"sync"

	"github.com/blastyard/arena-server/pkg/types"
)

// SurfaceHub implements the per-session UI collaborator over websocket
// outboxes. A session with no registered surface is a silent no-op, as is
// one whose buffer is full: a slow client loses HUD frames, never stalls
// the round.
type SurfaceHub struct {
	mu       sync.Mutex
	outboxes map[uint64]chan types.ServerMessage
}

func NewSurfaceHub() *SurfaceHub {
	return &SurfaceHub{outboxes: make(map[uint64]chan types.ServerMessage)}
}

// Register creates the session's outbox and returns it for the connection's
// writer goroutine to drain.
func (h *SurfaceHub) Register(sessionID uint64) <-chan types.ServerMessage {
	ch := make(chan types.ServerMessage, 16)
	h.mu.Lock()
	h.outboxes[sessionID] = ch
	h.mu.Unlock()
	return ch
}

func (h *SurfaceHub) Unregister(sessionID uint64) {
	h.mu.Lock()
	if ch, ok := h.outboxes[sessionID]; ok {
		close(ch)
		delete(h.outboxes, sessionID)
	}
	h.mu.Unlock()
}

func (h *SurfaceHub) SetStatus(sessionID uint64, top, bottom string) {
	h.send(sessionID, types.ServerMessage{Type: types.MsgStatus, Top: top, Bottom: bottom})
}

func (h *SurfaceHub) SetOutcomeOverlay(sessionID uint64, visible bool, top, bottom string, won bool) {
	h.send(sessionID, types.ServerMessage{Type: types.MsgOverlay, Visible: visible, Top: top, Bottom: bottom, Won: won})
}

func (h *SurfaceHub) send(sessionID uint64, msg types.ServerMessage) {
	h.mu.Lock()
	ch, ok := h.outboxes[sessionID]
	h.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Full outbox: drop the frame.
	}
}
