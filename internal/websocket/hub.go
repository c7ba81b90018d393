package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/projection"
	"github.com/legalvoice/api/internal/store"
	"go.uber.org/zap"
)

// Client represents a WebSocket client
type Client struct {
	CaseID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient creates a client with a buffered send queue
func NewClient(caseID string, conn *websocket.Conn) *Client {
	return &Client{
		CaseID: caseID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// Hub maintains active WebSocket connections and runs one projection watch
// per observed case.
type Hub struct {
	// Clients grouped by case ID
	clients map[string]map[*Client]bool

	// Watch cancel funcs by case ID
	watchers map[string]context.CancelFunc

	// Last message sent per case, replayed to late joiners
	last map[string][]byte

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	// Closed when Run returns
	done chan struct{}

	cases    projection.Getter
	interval time.Duration
	log      *zap.Logger

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	CaseID  string
	Message []byte
}

// NewHub creates a new Hub
func NewHub(cases projection.Getter, interval time.Duration, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		watchers:   make(map[string]context.CancelFunc),
		last:       make(map[string][]byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		cases:      cases,
		interval:   interval,
		log:        log,
	}
}

// Run starts the hub's main loop. It stops every watch when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, cancel := range h.watchers {
				cancel()
				delete(h.watchers, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.CaseID] == nil {
				h.clients[client.CaseID] = make(map[*Client]bool)
			}
			h.clients[client.CaseID][client] = true
			if _, watching := h.watchers[client.CaseID]; !watching {
				watchCtx, cancel := context.WithCancel(ctx)
				h.watchers[client.CaseID] = cancel
				go h.watch(watchCtx, client.CaseID)
			} else if msg, ok := h.last[client.CaseID]; ok {
				trySend(client, msg)
			}
			h.mu.Unlock()
			h.log.Debug("client registered", zap.String("case_id", client.CaseID))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.CaseID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.CaseID)
						delete(h.last, client.CaseID)
						if cancel, ok := h.watchers[client.CaseID]; ok {
							cancel()
							delete(h.watchers, client.CaseID)
						}
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", zap.String("case_id", client.CaseID))

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.CaseID]; ok {
				h.last[msg.CaseID] = msg.Message
				for client := range clients {
					trySend(client, msg.Message)
				}
			}
			h.mu.Unlock()
		}
	}
}

// trySend drops the message when the client's queue is full.
func trySend(client *Client, msg []byte) {
	select {
	case client.Send <- msg:
	default:
	}
}

// Register adds a new client. It is a no-op once Run has returned.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Watching reports whether a projection watch is running for the case.
func (h *Hub) Watching(caseID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.watchers[caseID]
	return ok
}

func (h *Hub) watch(ctx context.Context, caseID string) {
	err := projection.Watch(ctx, h.cases, caseID, h.interval, func(p model.Progress) error {
		if p.IsTerminal {
			return h.BroadcastComplete(ctx, caseID, p)
		}
		return h.BroadcastProgress(ctx, caseID, p)
	})
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, store.ErrNotFound):
		h.BroadcastError(ctx, caseID, "NOT_FOUND", "Case not found")
	default:
		h.log.Warn("case watch stopped", zap.String("case_id", caseID), zap.Error(err))
	}
}

// BroadcastProgress sends a progress update to all case subscribers
func (h *Hub) BroadcastProgress(ctx context.Context, caseID string, p model.Progress) error {
	return h.publish(ctx, caseID, model.WSProgressMessage{
		Type:     model.WSMessageTypeProgress,
		CaseID:   caseID,
		Progress: p,
	})
}

// BroadcastComplete sends the terminal state to all case subscribers
func (h *Hub) BroadcastComplete(ctx context.Context, caseID string, p model.Progress) error {
	return h.publish(ctx, caseID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		CaseID: caseID,
		Result: p,
	})
}

// BroadcastError sends an error message to all case subscribers
func (h *Hub) BroadcastError(ctx context.Context, caseID string, code, message string) error {
	return h.publish(ctx, caseID, model.WSErrorMessage{
		Type:   model.WSMessageTypeError,
		CaseID: caseID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

func (h *Hub) publish(ctx context.Context, caseID string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal websocket message", zap.Error(err))
		return err
	}
	select {
	case h.broadcast <- &BroadcastMessage{CaseID: caseID, Message: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, caseID string) {
	client := NewClient(caseID, c)

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", zap.String("case_id", caseID), zap.Error(err))
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			trySend(client, data)
		}
	}
}
