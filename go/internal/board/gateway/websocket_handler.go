package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcdev12/bidboard/go/internal/identity"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for auction connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	service           *Service
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, service *Service) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		service:           service,
	}
}

// HandleAuctionConnection handles GET /ws/auction?auction_id=...&token=...
func (h *WebSocketHandler) HandleAuctionConnection(w http.ResponseWriter, r *http.Request) {
	auctionID := r.URL.Query().Get("auction_id")
	if auctionID == "" {
		http.Error(w, "auction_id is required", http.StatusBadRequest)
		return
	}

	// anonymous viewers are allowed; they just get no highlighted bids
	viewer, _ := identity.FromRequest(r)

	conn, err := h.connectionManager.UpgradeConnection(w, r, viewer, auctionID)
	if err != nil {
		// the upgrader has already replied to the client
		log.Error().
			Err(err).
			Str("auction_id", auctionID).
			Str("user_id", viewer.UserID).
			Msg("failed to upgrade WebSocket connection")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := h.service.attach(ctx, conn); err != nil {
		log.Error().
			Err(err).
			Str("connection_id", conn.ID).
			Str("auction_id", auctionID).
			Msg("failed to load initial auction view")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/auction", h.HandleAuctionConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
