// Package board assembles live auction views from marketplace snapshots.
package board

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Marketplace defines what the app needs from the marketplace backend
type Marketplace interface {
	GetAuction(ctx context.Context, auctionID string) (*models.Auction, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]models.Bid, error)
	GetAuctionsByProduct(ctx context.Context, productID string) ([]models.Auction, error)
	GetProductImageURL(ctx context.Context, productID string) (string, error)
	GetBidsByUser(ctx context.Context, token, userID string) ([]models.BidRecord, error)
	PlaceBid(ctx context.Context, req auction.PlaceBidRequest) (*models.Bid, error)
}

// Snapshot is everything fetched for one auction at one moment.
type Snapshot struct {
	Auction models.Auction
	Product *models.Product
	Bids    []models.Bid
}

// AuctionView is a snapshot rendered for one viewer at one instant.
type AuctionView struct {
	Auction        models.Auction         `json:"auction"`
	Product        *models.Product        `json:"product,omitempty"`
	Status         auction.Status         `json:"status"`
	Countdown      *models.CountdownState `json:"countdown,omitempty"`
	Bids           []auction.RankedBid    `json:"bids"`
	HighestBid     *models.Bid            `json:"highest_bid,omitempty"`
	ViewerIsWinner bool                   `json:"viewer_is_winner"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// App handles auction board logic
type App struct {
	market Marketplace
	clock  clockwork.Clock
}

// NewApp creates a new board App
func NewApp(market Marketplace, clock clockwork.Clock) *App {
	return &App{
		market: market,
		clock:  clock,
	}
}

// Clock returns the clock views are rendered against.
func (a *App) Clock() clockwork.Clock {
	return a.clock
}

// Snapshot fetches the auction, its product and its bids.
func (a *App) Snapshot(ctx context.Context, auctionID string) (*Snapshot, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("auction ID is required")
	}

	auc, err := a.market.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}

	snap := &Snapshot{Auction: *auc}

	if auc.ProductID != "" {
		product, err := a.market.GetProduct(ctx, auc.ProductID)
		if err != nil {
			// the board still works without product details
			log.Warn().
				Err(err).
				Str("auction_id", auctionID).
				Str("product_id", auc.ProductID).
				Msg("failed to load product for auction")
		} else {
			snap.Product = product
		}
	}

	bids, err := a.market.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bids: %w", err)
	}
	snap.Bids = bids

	return snap, nil
}

// AuctionView fetches a fresh snapshot and renders it for viewerID at the current time.
func (a *App) AuctionView(ctx context.Context, auctionID, viewerID string) (*AuctionView, error) {
	snap, err := a.Snapshot(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	view := BuildView(a.clock.Now(), snap, viewerID)
	return &view, nil
}

// BuildView renders snap for viewerID at now. The countdown is only present
// while the auction is ongoing.
func BuildView(now time.Time, snap *Snapshot, viewerID string) AuctionView {
	status := auction.ResolveStatus(now, snap.Auction)

	view := AuctionView{
		Auction:     snap.Auction,
		Product:     snap.Product,
		Status:      status,
		Bids:        auction.Rank(snap.Bids, viewerID),
		GeneratedAt: now,
	}

	if status.Phase == models.PhaseOngoing {
		cd := auction.Decompose(snap.Auction.EndTime.Sub(now))
		view.Countdown = &cd
	}

	if top, ok := auction.HighestBid(snap.Bids); ok {
		view.HighestBid = &top
	}

	if w := snap.Auction.WinnerID; w != nil && viewerID != "" && *w == viewerID {
		view.ViewerIsWinner = true
	}

	return view
}

// PlaceBid checks the bid against the current snapshot and submits it.
func (a *App) PlaceBid(ctx context.Context, req auction.PlaceBidRequest) (*models.Bid, error) {
	snap, err := a.Snapshot(ctx, req.AuctionID)
	if err != nil {
		return nil, err
	}

	startingPrice := 0.0
	if snap.Product != nil {
		startingPrice = snap.Product.StartingPrice
	}

	status := auction.ResolveStatus(a.clock.Now(), snap.Auction)
	if err := auction.CheckBid(req, status.Phase, startingPrice); err != nil {
		return nil, fmt.Errorf("bid rejected: %w", err)
	}

	bid, err := a.market.PlaceBid(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit bid: %w", err)
	}

	log.Info().
		Str("auction_id", req.AuctionID).
		Str("bidder_id", req.BidderID).
		Float64("amount", req.Amount).
		Msg("bid submitted")

	return bid, nil
}
