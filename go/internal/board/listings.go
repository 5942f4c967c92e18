package board

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/rs/zerolog/log"
)

// AuctionCard is one auction of a product listing with its status badge.
type AuctionCard struct {
	Auction  models.Auction `json:"auction"`
	Status   auction.Status `json:"status"`
	ImageURL string         `json:"image_url,omitempty"`
}

// BidOutcome classifies one of the viewer's bids.
type BidOutcome string

const (
	BidOutcomeWon     BidOutcome = "WON"
	BidOutcomeLost    BidOutcome = "LOST"
	BidOutcomePending BidOutcome = "PENDING"
)

// BidHistoryEntry is a bid from the viewer's history rendered at one instant.
type BidHistoryEntry struct {
	models.BidRecord
	Status   auction.Status `json:"status"`
	Outcome  BidOutcome     `json:"outcome"`
	ImageURL string         `json:"image_url,omitempty"`
}

// ProductAuctions lists the auctions of productID with their status at the current time.
func (a *App) ProductAuctions(ctx context.Context, productID string) ([]AuctionCard, error) {
	if productID == "" {
		return nil, fmt.Errorf("product ID is required")
	}

	auctions, err := a.market.GetAuctionsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load auctions: %w", err)
	}

	image := a.imageURL(ctx, productID)
	now := a.clock.Now()

	cards := make([]AuctionCard, 0, len(auctions))
	for _, auc := range auctions {
		cards = append(cards, AuctionCard{
			Auction:  auc,
			Status:   auction.ResolveStatus(now, auc),
			ImageURL: image,
		})
	}
	return cards, nil
}

// ViewerBids lists the bids placed by the owner of token, most recent first,
// each classified as won, lost or still pending.
func (a *App) ViewerBids(ctx context.Context, token, viewerID string) ([]BidHistoryEntry, error) {
	records, err := a.market.GetBidsByUser(ctx, token, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer bids: %w", err)
	}

	now := a.clock.Now()
	images := make(map[string]string)

	entries := make([]BidHistoryEntry, 0, len(records))
	for _, rec := range records {
		productID := rec.Product.ID
		image, ok := images[productID]
		if !ok && productID != "" {
			image = a.imageURL(ctx, productID)
			images[productID] = image
		}

		entries = append(entries, BuildHistoryEntry(now, rec, viewerID, image))
	}

	slices.SortStableFunc(entries, func(x, y BidHistoryEntry) int {
		return cmp.Compare(y.Bid.CreatedAt.UnixNano(), x.Bid.CreatedAt.UnixNano())
	})
	return entries, nil
}

// BuildHistoryEntry renders rec for viewerID at now. A bid is won when the
// viewer is the auction's winner, lost once the auction is over with another
// winner or none, and pending otherwise.
func BuildHistoryEntry(now time.Time, rec models.BidRecord, viewerID, imageURL string) BidHistoryEntry {
	status := auction.ResolveStatus(now, rec.Auction)

	outcome := BidOutcomePending
	switch {
	case rec.Auction.WinnerID != nil && viewerID != "" && *rec.Auction.WinnerID == viewerID:
		outcome = BidOutcomeWon
	case status.Phase == models.PhaseClosed || status.Phase == models.PhaseEnded:
		outcome = BidOutcomeLost
	}

	return BidHistoryEntry{
		BidRecord: rec,
		Status:    status,
		Outcome:   outcome,
		ImageURL:  imageURL,
	}
}

// imageURL fetches the product's first image. Cards render without one on failure.
func (a *App) imageURL(ctx context.Context, productID string) string {
	url, err := a.market.GetProductImageURL(ctx, productID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("product_id", productID).
			Msg("failed to load product image")
		return ""
	}
	return url
}
