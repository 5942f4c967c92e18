package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bidboard/go/internal/models"
)

// AuctionEvent is the envelope of every message pushed to a browser.
type AuctionEvent struct {
	ID        string          `json:"id"`
	AuctionID string          `json:"auction_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType represents the type of auction event
type EventType string

const (
	EventTypeAuctionView          EventType = "AuctionView"
	EventTypeCountdownTick        EventType = "CountdownTick"
	EventTypeCountdownEnded       EventType = "CountdownEnded"
	EventTypeCountdownUnavailable EventType = "CountdownUnavailable"
)

// Upstream event types published by the marketplace on auction.events.>
const (
	UpstreamBidPlaced      = "BidPlaced"
	UpstreamAuctionClosed  = "AuctionClosed"
	UpstreamAuctionUpdated = "AuctionUpdated"
)

// CountdownTickPayload carries one countdown recomputation.
type CountdownTickPayload struct {
	Countdown        models.CountdownState `json:"countdown"`
	TimeRemainingSec int                   `json:"time_remaining_sec"`
	EndsAt           time.Time             `json:"ends_at"`
}

// CountdownUnavailablePayload is sent once when an auction has no usable end time.
type CountdownUnavailablePayload struct {
	Label string `json:"label"`
}

// NewAuctionEvent marshals payload into an event envelope.
func NewAuctionEvent(auctionID string, eventType EventType, at time.Time, payload interface{}) (*AuctionEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &AuctionEvent{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}, nil
}
