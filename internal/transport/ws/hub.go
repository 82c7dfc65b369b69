package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgScoreUpdated        MessageType = "score_updated"
	MsgProjectScoreUpdated MessageType = "project_score_updated"
	MsgError               MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans dashboard events out to every connection watching a project
type Hub struct {
	// project -> connections
	conns map[string]map[*Connection]bool

	mu     sync.RWMutex
	logger *slog.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	ProjectID string
	Subject   string // operator or evaluator id, for logs
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ProjectID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		logger:     logger,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.ProjectID] == nil {
				h.conns[conn.ProjectID] = make(map[*Connection]bool)
			}
			h.conns[conn.ProjectID][conn] = true
			h.mu.Unlock()
			h.logger.Info("dashboard connected", "project_id", conn.ProjectID, "subject", conn.Subject)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.ProjectID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.conns, conn.ProjectID)
				}
				h.logger.Info("dashboard disconnected", "project_id", conn.ProjectID, "subject", conn.Subject)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Warn("failed to encode dashboard message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.ProjectID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Connections returns how many dashboards watch a project
func (h *Hub) Connections(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[projectID])
}

// BroadcastToProject sends an event to every dashboard of a project (implements service.Broadcaster)
func (h *Hub) BroadcastToProject(projectID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to encode dashboard payload", "type", msgType, "error", err)
		return
	}
	msg := &BroadcastMessage{
		ProjectID: projectID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("dashboard broadcast queue full", "project_id", projectID, "type", msgType)
	}
}
