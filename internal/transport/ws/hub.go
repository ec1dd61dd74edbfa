package ws

import (
	"bytes"
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	MsgSessionUpdate  MessageType = "session_update"
	MsgSessionDeleted MessageType = "session_deleted"
	MsgPlayerJoined   MessageType = "player_joined"
	MsgPlayerLeft     MessageType = "player_left"
	MsgError          MessageType = "error"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections per session. Every mutating operation
// ends with a full session snapshot pushed through here; consecutive
// identical snapshots are suppressed.
type Hub struct {
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // sessionCode -> playerID -> conn

	// last session_update payload per session, for duplicate suppression
	lastSnapshot map[string][]byte

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one WebSocket connection.
type Connection struct {
	SessionCode string
	PlayerID    string // empty for host connections
	IsHost      bool
	Send        chan []byte
	Hub         *Hub
}

// BroadcastMessage is a message to broadcast.
type BroadcastMessage struct {
	SessionCode string
	ToHost      bool
	ToPlayer    string // specific player ID; empty with ToSession means everyone
	ToSession   bool
	Message     *Message
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	h := &Hub{
		hostConns:    make(map[string]*Connection),
		playerConns:  make(map[string]map[string]*Connection),
		lastSnapshot: make(map[string][]byte),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn.SessionCode] = conn
				log.Printf("host connected to session %s", conn.SessionCode)
			} else {
				if h.playerConns[conn.SessionCode] == nil {
					h.playerConns[conn.SessionCode] = make(map[string]*Connection)
				}
				h.playerConns[conn.SessionCode][conn.PlayerID] = conn
				log.Printf("player %s connected to session %s", conn.PlayerID, conn.SessionCode)

				h.notifyHost(conn.SessionCode, MsgPlayerJoined, conn.PlayerID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.SessionCode]; ok && existing == conn {
					delete(h.hostConns, conn.SessionCode)
					close(conn.Send)
					log.Printf("host disconnected from session %s", conn.SessionCode)
				}
			} else {
				if players, ok := h.playerConns[conn.SessionCode]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
						log.Printf("player %s disconnected from session %s", conn.PlayerID, conn.SessionCode)

						h.notifyHost(conn.SessionCode, MsgPlayerLeft, conn.PlayerID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	data, _ := json.Marshal(msg.Message)

	h.mu.Lock()
	if msg.Message.Type == MsgSessionUpdate {
		if bytes.Equal(h.lastSnapshot[msg.SessionCode], data) {
			h.mu.Unlock()
			return
		}
		h.lastSnapshot[msg.SessionCode] = data
	}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()

	sendTo := func(conn *Connection) {
		select {
		case conn.Send <- data:
		default:
			// drop message if buffer full
		}
	}

	if msg.ToSession {
		if conn, ok := h.hostConns[msg.SessionCode]; ok {
			sendTo(conn)
		}
		for _, conn := range h.playerConns[msg.SessionCode] {
			sendTo(conn)
		}
		return
	}
	if msg.ToHost {
		if conn, ok := h.hostConns[msg.SessionCode]; ok {
			sendTo(conn)
		}
		return
	}
	if msg.ToPlayer != "" {
		if players, ok := h.playerConns[msg.SessionCode]; ok {
			if conn, ok := players[msg.ToPlayer]; ok {
				sendTo(conn)
			}
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToHost sends a message to the session host (implements
// service.Broadcaster).
func (h *Hub) BroadcastToHost(sessionCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionCode: sessionCode,
		ToHost:      true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements
// service.Broadcaster).
func (h *Hub) BroadcastToPlayer(sessionCode, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionCode: sessionCode,
		ToPlayer:    playerID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToSession sends a message to the host and every player in a
// session (implements service.Broadcaster).
func (h *Hub) BroadcastToSession(sessionCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionCode: sessionCode,
		ToSession:   true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// notifyHost is called with h.mu held.
func (h *Hub) notifyHost(sessionCode string, msgType MessageType, playerID string) {
	if conn, ok := h.hostConns[sessionCode]; ok {
		data, _ := json.Marshal(&Message{
			Type:    msgType,
			Payload: json.RawMessage(`{"playerId":"` + playerID + `"}`),
		})
		select {
		case conn.Send <- data:
		default:
		}
	}
}
