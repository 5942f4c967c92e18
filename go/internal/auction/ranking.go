package auction

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mcdev12/bidboard/go/internal/models"
)

// RankedBid is a bid annotated for bid-history display.
type RankedBid struct {
	models.Bid
	// RelativeWidth is Amount as a fraction of the highest amount in the ranked set.
	RelativeWidth float64 `json:"relative_width"`
	IsViewerBid   bool    `json:"is_viewer_bid"`
}

// Rank orders bids by amount descending and flags the ones placed by viewerID.
// Equal amounts are ordered by earlier CreatedAt, then by ID, so the bid that
// reached the amount first ranks higher. An empty viewerID flags nothing.
// The input slice is not modified.
func Rank(bids []models.Bid, viewerID string) []RankedBid {
	ranked := make([]RankedBid, 0, len(bids))
	if len(bids) == 0 {
		return ranked
	}

	sorted := slices.Clone(bids)
	slices.SortFunc(sorted, compareBids)

	maxAmount := sorted[0].Amount
	for _, b := range sorted {
		width := 0.0
		if maxAmount > 0 {
			width = b.Amount / maxAmount
		}
		ranked = append(ranked, RankedBid{
			Bid:           b,
			RelativeWidth: width,
			IsViewerBid:   viewerID != "" && b.BidderID == viewerID,
		})
	}
	return ranked
}

// HighestBid returns the bid that Rank would place first.
func HighestBid(bids []models.Bid) (models.Bid, bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}
	top := bids[0]
	for _, b := range bids[1:] {
		if compareBids(b, top) < 0 {
			top = b
		}
	}
	return top, true
}

func compareBids(a, b models.Bid) int {
	if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
