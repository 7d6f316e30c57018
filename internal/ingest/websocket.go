package ingest

import (
	"sync"

	"github.com/gorilla/websocket"

	"telemetry-service/internal/logging"
)

const maxConnections = 64

// WebSocketManager manages live-feed subscribers. Every classified reading
// is broadcast to all of them; a failed write drops the connection.
type WebSocketManager struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWebSocketManager(logger *logging.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// AddConnection registers a subscriber.
func (m *WebSocketManager) AddConnection(conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.connections) >= maxConnections {
		m.logger.Warnf("Max WebSocket connections reached, rejecting subscriber")
		_ = conn.Close()
		return
	}
	m.connections[conn] = true
	m.logger.Infof("Added WebSocket subscriber (total: %d)", len(m.connections))
}

// RemoveConnection unregisters a subscriber.
func (m *WebSocketManager) RemoveConnection(conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[conn]; exists {
		delete(m.connections, conn)
		m.logger.Infof("Removed WebSocket subscriber (remaining: %d)", len(m.connections))
	}
}

// Broadcast sends a message to every subscriber.
func (m *WebSocketManager) Broadcast(message []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for conn := range m.connections {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("WebSocket write failed, dropping subscriber: %v", err)
			_ = conn.Close()
			delete(m.connections, conn)
		}
	}
}
