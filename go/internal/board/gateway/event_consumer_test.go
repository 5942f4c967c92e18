package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRefresher struct {
	refreshed []string
	err       error
}

func (r *recordingRefresher) RefreshAuction(_ context.Context, auctionID string) error {
	r.refreshed = append(r.refreshed, auctionID)
	return r.err
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []string
		wantErr bool
	}{
		{
			name: "bid placed refreshes auction",
			data: `{"eventId":"e1","eventType":"BidPlaced","auctionId":"a1","timestamp":"2025-01-01T00:00:00Z","payload":{"amount":10}}`,
			want: []string{"a1"},
		},
		{
			name: "auction closed refreshes auction",
			data: `{"eventId":"e2","eventType":"AuctionClosed","auctionId":"a2"}`,
			want: []string{"a2"},
		},
		{
			name: "unknown event is skipped",
			data: `{"eventId":"e3","eventType":"ReviewPosted","auctionId":"a1"}`,
		},
		{
			name:    "malformed envelope",
			data:    `{"eventId":`,
			wantErr: true,
		},
		{
			name:    "missing auction id",
			data:    `{"eventId":"e4","eventType":"BidPlaced"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRefresher{}
			ec := &EventConsumer{refresher: r}

			err := ec.handleEvent(context.Background(), []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.refreshed)
		})
	}
}

func TestHandleEventPropagatesRefreshError(t *testing.T) {
	boom := errors.New("marketplace down")
	ec := &EventConsumer{refresher: &recordingRefresher{err: boom}}

	err := ec.handleEvent(context.Background(), []byte(`{"eventId":"e1","eventType":"AuctionUpdated","auctionId":"a1"}`))
	assert.ErrorIs(t, err, boom)
}
