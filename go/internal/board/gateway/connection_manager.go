package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/identity"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections watching auctions
type ConnectionManager struct {
	// Connection pools organized by auction ID
	auctionConnections map[string]map[*Connection]bool
	mu                 sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	ticks    *auction.TickSource
}

// Connection is one browser watching one auction. Each connection owns a
// countdown view on the shared tick source.
type Connection struct {
	ID        string
	Viewer    identity.Viewer
	AuctionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Manager   *ConnectionManager
	Countdown *auction.View

	ConnectedAt time.Time

	sendMu sync.Mutex
	closed bool

	phaseMu sync.Mutex
	phase   models.Phase // last phase rendered to this connection
}

// swapPhase records p as the phase last rendered and returns the previous one.
func (c *Connection) swapPhase(p models.Phase) models.Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	prev := c.phase
	c.phase = p
	return prev
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration              `yaml:"write_timeout"`
	ReadTimeout     time.Duration              `yaml:"read_timeout"`
	PingInterval    time.Duration              `yaml:"ping_interval"`
	MaxMessageSize  int64                      `yaml:"max_message_size"`
	ReadBufferSize  int                        `yaml:"read_buffer_size"`
	WriteBufferSize int                        `yaml:"write_buffer_size"`
	SendBufferSize  int                        `yaml:"send_buffer_size"`
	CheckOrigin     func(r *http.Request) bool `yaml:"-"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  64,
		CheckOrigin: func(r *http.Request) bool {
			// origin policy is enforced by the CORS layer in front of the gateway
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, ticks *auction.TickSource) *ConnectionManager {
	return &ConnectionManager{
		auctionConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
		ticks:  ticks,
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and registers it
// under auctionID. The returned connection is already pumping.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, viewer identity.Viewer, auctionID string) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Viewer:      viewer,
		AuctionID:   auctionID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		Countdown:   cm.ticks.NewView(),
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", viewer.UserID).
		Str("auction_id", auctionID).
		Msg("WebSocket connection established")

	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.auctionConnections[conn.AuctionID] == nil {
		cm.auctionConnections[conn.AuctionID] = make(map[*Connection]bool)
	}
	cm.auctionConnections[conn.AuctionID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("auction_id", conn.AuctionID).
		Int("total_connections", len(cm.auctionConnections[conn.AuctionID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection and tears down its countdown.
// Safe to call more than once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	connections, exists := cm.auctionConnections[conn.AuctionID]
	if !exists || !connections[conn] {
		cm.mu.Unlock()
		return
	}
	delete(connections, conn)
	if len(connections) == 0 {
		delete(cm.auctionConnections, conn.AuctionID)
	}
	cm.mu.Unlock()

	// the countdown must be gone before Send is closed
	conn.Countdown.Close()

	conn.sendMu.Lock()
	conn.closed = true
	close(conn.Send)
	conn.sendMu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.Viewer.UserID).
		Str("auction_id", conn.AuctionID).
		Msg("connection unregistered")
}

// Connections returns a snapshot of the connections watching auctionID.
func (cm *ConnectionManager) Connections(auctionID string) []*Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	conns := make([]*Connection, 0, len(cm.auctionConnections[auctionID]))
	for conn := range cm.auctionConnections[auctionID] {
		conns = append(conns, conn)
	}
	return conns
}

// WatchedAuctions returns the IDs of auctions with at least one connection.
func (cm *ConnectionManager) WatchedAuctions() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	ids := make([]string, 0, len(cm.auctionConnections))
	for id := range cm.auctionConnections {
		ids = append(ids, id)
	}
	return ids
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	totalConnections := 0
	auctionCounts := make(map[string]int)

	for auctionID, connections := range cm.auctionConnections {
		count := len(connections)
		totalConnections += count
		auctionCounts[auctionID] = count
	}

	return map[string]interface{}{
		"total_connections":   totalConnections,
		"active_auctions":     len(cm.auctionConnections),
		"auction_connections": auctionCounts,
		"active_countdowns":   cm.ticks.Active(),
	}
}

// SendEvent queues event for this connection without blocking. Events for a
// slow or closed connection are dropped.
func (c *Connection) SendEvent(event *AuctionEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return false
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("event_type", string(event.Type)).
			Msg("connection send buffer full, dropping event")
		return false
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		// browsers only listen; anything they send is logged and ignored
		log.Debug().
			Str("connection_id", c.ID).
			Str("user_id", c.Viewer.UserID).
			Int("bytes", len(message)).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
