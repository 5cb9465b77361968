package handlers

import (
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/websocket"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	chat      *chat.Service
	wsHandler *websocket.Handler
}

// NewHandlers creates a new handlers instance
func NewHandlers(chatService *chat.Service) *Handlers {
	return &Handlers{
		chat: chatService,
	}
}

// SetWebSocketHandler sets the WebSocket handler for real-time notifications
func (h *Handlers) SetWebSocketHandler(ws *websocket.Handler) {
	h.wsHandler = ws
}

// publisher returns a fresh per-request deferred publisher. Events
// queued on it are delivered only after the handler's database work
// succeeded.
func (h *Handlers) publisher() *websocket.DeferredPublisher {
	if h.wsHandler == nil {
		return websocket.NewDeferredPublisher(nil)
	}
	return websocket.NewDeferredPublisher(h.wsHandler.GetHub())
}
