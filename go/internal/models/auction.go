package models

import (
	"time"
)

// Phase is the derived state of an auction relative to the current time.
type Phase string

const (
	PhaseUpcoming    Phase = "UPCOMING"
	PhaseOngoing     Phase = "ONGOING"
	PhaseClosed      Phase = "CLOSED"
	PhaseEnded       Phase = "ENDED"
	PhaseUnavailable Phase = "UNAVAILABLE" // start or end time could not be parsed
)

// Auction is a read-only snapshot of a marketplace auction.
// A zero StartTime or EndTime means the backend value was missing or malformed.
type Auction struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsClosed  bool      `json:"is_closed"`
	WinnerID  *string   `json:"winner_id,omitempty"`
}

// Bid is a single bid placed on an auction.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is the listing an auction sells.
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartingPrice float64   `json:"starting_price"`
	Status        string    `json:"status"`
	SellerID      string    `json:"seller_id"`
	CategoryID    string    `json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BidRecord is one of a user's bids together with the auction and product it was placed on.
type BidRecord struct {
	Bid     Bid     `json:"bid"`
	Auction Auction `json:"auction"`
	Product Product `json:"product"`
}

// CountdownState is the days/hours/minutes/seconds decomposition of the time left.
type CountdownState struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero reports whether no time remains.
func (c CountdownState) IsZero() bool {
	return c == CountdownState{}
}

// TotalSeconds folds the decomposition back into seconds.
func (c CountdownState) TotalSeconds() int {
	return c.Days*86400 + c.Hours*3600 + c.Minutes*60 + c.Seconds
}
