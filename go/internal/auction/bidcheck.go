package auction

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mcdev12/bidboard/go/internal/models"
)

var (
	// ErrInvalidBid is returned when a bid request is structurally invalid.
	ErrInvalidBid = errors.New("invalid bid")
	// ErrBidTooLow is returned when a bid does not exceed the starting price.
	ErrBidTooLow = errors.New("bid must exceed the starting price")
	// ErrNotBiddable is returned when the auction is not in its ongoing phase.
	ErrNotBiddable = errors.New("auction is not accepting bids")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PlaceBidRequest is the body submitted to the marketplace when placing a bid.
type PlaceBidRequest struct {
	AuctionID string  `json:"auctionId" validate:"required"`
	BidderID  string  `json:"bidderId" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

// CheckBid is the advisory pre-submit check. The marketplace remains the
// authority on whether a bid is accepted.
func CheckBid(req PlaceBidRequest, phase models.Phase, startingPrice float64) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBid, err)
	}
	if phase != models.PhaseOngoing {
		return fmt.Errorf("%w: auction is %s", ErrNotBiddable, phase)
	}
	if req.Amount <= startingPrice {
		return fmt.Errorf("%w: %.2f <= %.2f", ErrBidTooLow, req.Amount, startingPrice)
	}
	return nil
}
