package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/bidboard/go/clients"
	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/board"
	"github.com/mcdev12/bidboard/go/internal/identity"
	"github.com/rs/zerolog/log"
)

// ViewHandler serves auction views and bid submission over plain HTTP
type ViewHandler struct {
	app *board.App
}

// NewViewHandler creates a new view handler
func NewViewHandler(app *board.App) *ViewHandler {
	return &ViewHandler{app: app}
}

type placeBidBody struct {
	Amount float64 `json:"amount"`
}

// HandleGetAuctionView handles GET /api/auctions/{id}/view
func (h *ViewHandler) HandleGetAuctionView(w http.ResponseWriter, r *http.Request) {
	auctionID := r.PathValue("id")
	viewer, _ := identity.FromRequest(r)

	view, err := h.app.AuctionView(r.Context(), auctionID, viewer.UserID)
	if err != nil {
		log.Error().Err(err).Str("auction_id", auctionID).Msg("failed to build auction view")
		http.Error(w, "Failed to get auction view", statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandlePlaceBid handles POST /api/auctions/{id}/bids on behalf of the token's viewer
func (h *ViewHandler) HandlePlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID := r.PathValue("id")

	viewer, ok := identity.FromRequest(r)
	if !ok {
		http.Error(w, "Sign in to place a bid", http.StatusUnauthorized)
		return
	}

	var body placeBidBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bid, err := h.app.PlaceBid(r.Context(), auction.PlaceBidRequest{
		AuctionID: auctionID,
		BidderID:  viewer.UserID,
		Amount:    body.Amount,
	})
	if err != nil {
		log.Warn().Err(err).Str("auction_id", auctionID).Str("user_id", viewer.UserID).Msg("bid not placed")
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, bid)
}

// HandleGetProductAuctions handles GET /api/products/{id}/auctions
func (h *ViewHandler) HandleGetProductAuctions(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	cards, err := h.app.ProductAuctions(r.Context(), productID)
	if err != nil {
		log.Error().Err(err).Str("product_id", productID).Msg("failed to list product auctions")
		http.Error(w, "Failed to get auctions", statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// HandleGetViewerBids handles GET /api/me/bids, the bid history of the token's viewer
func (h *ViewHandler) HandleGetViewerBids(w http.ResponseWriter, r *http.Request) {
	viewer, ok := identity.FromRequest(r)
	if !ok {
		http.Error(w, "Sign in to see your bids", http.StatusUnauthorized)
		return
	}

	entries, err := h.app.ViewerBids(r.Context(), identity.BearerToken(r), viewer.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.UserID).Msg("failed to list viewer bids")
		http.Error(w, "Failed to get bids", statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// RegisterRoutes registers view routes
func (h *ViewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auctions/{id}/view", h.HandleGetAuctionView)
	mux.HandleFunc("POST /api/auctions/{id}/bids", h.HandlePlaceBid)
	mux.HandleFunc("GET /api/products/{id}/auctions", h.HandleGetProductAuctions)
	mux.HandleFunc("GET /api/me/bids", h.HandleGetViewerBids)
}

func statusFor(err error) int {
	var apiErr *clients.APIError
	switch {
	case errors.Is(err, clients.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrInvalidBid), errors.Is(err, auction.ErrBidTooLow):
		return http.StatusBadRequest
	case errors.Is(err, auction.ErrNotBiddable):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
