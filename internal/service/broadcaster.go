package service

// Broadcaster pushes state updates to connected clients. Implemented by the
// WebSocket hub.
type Broadcaster interface {
	BroadcastToHost(sessionCode string, msgType string, payload interface{})
	BroadcastToPlayer(sessionCode, playerID string, msgType string, payload interface{})
	BroadcastToSession(sessionCode string, msgType string, payload interface{})
}
