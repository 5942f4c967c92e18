package auction

import (
	"testing"
	"time"

	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankScenario(t *testing.T) {
	bids := []models.Bid{
		{ID: "1", BidderID: "A", Amount: 100},
		{ID: "2", BidderID: "B", Amount: 250},
		{ID: "3", BidderID: "A", Amount: 150},
	}

	ranked := Rank(bids, "A")
	require.Len(t, ranked, 3)

	wantAmounts := []float64{250, 150, 100}
	wantWidths := []float64{1.0, 0.6, 0.4}
	wantViewer := []bool{false, true, true}
	for i, rb := range ranked {
		assert.Equal(t, wantAmounts[i], rb.Amount)
		assert.InDelta(t, wantWidths[i], rb.RelativeWidth, 1e-9)
		assert.Equal(t, wantViewer[i], rb.IsViewerBid)
	}
	assert.Equal(t, 1.0, ranked[0].RelativeWidth)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	bids := []models.Bid{
		{ID: "1", BidderID: "A", Amount: 10},
		{ID: "2", BidderID: "B", Amount: 30},
		{ID: "3", BidderID: "C", Amount: 20},
	}
	original := append([]models.Bid(nil), bids...)

	first := Rank(bids, "B")
	second := Rank(bids, "B")

	assert.Equal(t, original, bids)
	assert.Equal(t, first, second)
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(nil, "A")
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankWithoutViewer(t *testing.T) {
	bids := []models.Bid{
		{ID: "1", BidderID: "", Amount: 10},
		{ID: "2", BidderID: "B", Amount: 30},
	}
	for _, rb := range Rank(bids, "") {
		assert.False(t, rb.IsViewerBid, "bid %s", rb.ID)
	}
}

func TestRankTieBreak(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bids := []models.Bid{
		{ID: "late", Amount: 50, CreatedAt: t0.Add(2 * time.Minute)},
		{ID: "b", Amount: 50, CreatedAt: t0},
		{ID: "early", Amount: 50, CreatedAt: t0.Add(-time.Minute)},
		{ID: "a", Amount: 50, CreatedAt: t0},
		{ID: "top", Amount: 75, CreatedAt: t0.Add(time.Hour)},
	}

	ranked := Rank(bids, "")
	ids := make([]string, 0, len(ranked))
	for _, rb := range ranked {
		ids = append(ids, rb.ID)
	}
	assert.Equal(t, []string{"top", "early", "a", "b", "late"}, ids)
}

func TestRankSortedDescending(t *testing.T) {
	bids := []models.Bid{
		{ID: "1", Amount: 5}, {ID: "2", Amount: 500}, {ID: "3", Amount: 42},
		{ID: "4", Amount: 0.5}, {ID: "5", Amount: 500}, {ID: "6", Amount: 77.25},
	}
	ranked := Rank(bids, "")
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Amount, ranked[i].Amount)
		assert.LessOrEqual(t, ranked[i].RelativeWidth, 1.0)
		assert.GreaterOrEqual(t, ranked[i].RelativeWidth, 0.0)
	}
	assert.Equal(t, 1.0, ranked[0].RelativeWidth)
	assert.Equal(t, 1.0, ranked[1].RelativeWidth)
}

func TestRankNonPositiveMax(t *testing.T) {
	ranked := Rank([]models.Bid{{ID: "1", Amount: 0}}, "")
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].RelativeWidth)
}

func TestHighestBid(t *testing.T) {
	_, ok := HighestBid(nil)
	assert.False(t, ok)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	top, ok := HighestBid([]models.Bid{
		{ID: "x", Amount: 10, CreatedAt: t0},
		{ID: "y", Amount: 90, CreatedAt: t0.Add(time.Second)},
		{ID: "z", Amount: 90, CreatedAt: t0},
	})
	require.True(t, ok)
	assert.Equal(t, "z", top.ID)
}
