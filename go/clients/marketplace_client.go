package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcdev12/bidboard/go/internal/auction"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/mcdev12/bidboard/go/internal/timeutil"
)

// MarketplaceClient talks to the marketplace REST backend. Timestamps are
// normalized to UTC here and nowhere else.
type MarketplaceClient struct {
	*BaseClient
}

func NewMarketplaceClient(baseURL, token string) *MarketplaceClient {
	client := &MarketplaceClient{
		BaseClient: NewBaseClient(strings.TrimRight(baseURL, "/")),
	}

	client.SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetHeader("Authorization", "Bearer "+token)
	}

	return client
}

// AuctionDTO is the backend's auction record. Timestamps may lack a zone designator.
type AuctionDTO struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	IsClosed  bool    `json:"isClosed"`
	WinnerID  *string `json:"winnerId"`
}

type BidDTO struct {
	ID        string  `json:"id"`
	AuctionID string  `json:"auctionId"`
	BidderID  string  `json:"bidderId"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"createdAt"`
}

type ProductDTO struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"startingPrice"`
	Status        string  `json:"status"`
	SellerID      string  `json:"sellerId"`
	CategoryID    string  `json:"categoryId"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// UserBidDTO is an entry of /bids/user: the bid with its auction and product inlined.
type UserBidDTO struct {
	ID        string     `json:"id"`
	Amount    float64    `json:"amount"`
	CreatedAt string     `json:"createdAt"`
	Auction   AuctionDTO `json:"auction"`
	Product   ProductDTO `json:"product"`
}

type productImageDTO struct {
	ImageURL string `json:"imageUrl"`
}

func (d AuctionDTO) ToModel() models.Auction {
	return models.Auction{
		ID:        d.ID,
		ProductID: d.ProductID,
		StartTime: timeutil.InstantOrZero(d.StartTime),
		EndTime:   timeutil.InstantOrZero(d.EndTime),
		IsClosed:  d.IsClosed,
		WinnerID:  d.WinnerID,
	}
}

func (d BidDTO) ToModel() models.Bid {
	return models.Bid{
		ID:        d.ID,
		AuctionID: d.AuctionID,
		BidderID:  d.BidderID,
		Amount:    d.Amount,
		CreatedAt: timeutil.InstantOrZero(d.CreatedAt),
	}
}

func (d ProductDTO) ToModel() models.Product {
	return models.Product{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		StartingPrice: d.StartingPrice,
		Status:        d.Status,
		SellerID:      d.SellerID,
		CategoryID:    d.CategoryID,
		CreatedAt:     timeutil.InstantOrZero(d.CreatedAt),
		UpdatedAt:     timeutil.InstantOrZero(d.UpdatedAt),
	}
}

func (d UserBidDTO) ToModel(bidderID string) models.BidRecord {
	auc := d.Auction.ToModel()
	if auc.ProductID == "" {
		auc.ProductID = d.Product.ID
	}
	return models.BidRecord{
		Bid: models.Bid{
			ID:        d.ID,
			AuctionID: auc.ID,
			BidderID:  bidderID,
			Amount:    d.Amount,
			CreatedAt: timeutil.InstantOrZero(d.CreatedAt),
		},
		Auction: auc,
		Product: d.Product.ToModel(),
	}
}

func (c *MarketplaceClient) GetAuction(ctx context.Context, auctionID string) (*models.Auction, error) {
	var dto AuctionDTO
	if err := c.getJSON(ctx, "/auctions/"+url.PathEscape(auctionID), &dto); err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	a := dto.ToModel()
	return &a, nil
}

func (c *MarketplaceClient) GetAuctionsByProduct(ctx context.Context, productID string) ([]models.Auction, error) {
	var dtos []AuctionDTO
	if err := c.getJSON(ctx, "/auctions/product/"+url.PathEscape(productID), &dtos); err != nil {
		return nil, fmt.Errorf("failed to get auctions for product: %w", err)
	}

	auctions := make([]models.Auction, 0, len(dtos))
	for _, dto := range dtos {
		auctions = append(auctions, dto.ToModel())
	}
	return auctions, nil
}

func (c *MarketplaceClient) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var dto ProductDTO
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(productID), &dto); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	p := dto.ToModel()
	return &p, nil
}

func (c *MarketplaceClient) GetBidsByAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	var dtos []BidDTO
	if err := c.getJSON(ctx, "/bids/auction/"+url.PathEscape(auctionID), &dtos); err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}

	bids := make([]models.Bid, 0, len(dtos))
	for _, dto := range dtos {
		bids = append(bids, dto.ToModel())
	}
	return bids, nil
}

// GetProductImageURL returns the first image of a product as an absolute URL,
// or "" when the product has none.
func (c *MarketplaceClient) GetProductImageURL(ctx context.Context, productID string) (string, error) {
	var images []productImageDTO
	if err := c.getJSON(ctx, "/product-images/"+url.PathEscape(productID), &images); err != nil {
		return "", fmt.Errorf("failed to get product images: %w", err)
	}
	if len(images) == 0 || images[0].ImageURL == "" {
		return "", nil
	}
	return c.absoluteURL(images[0].ImageURL), nil
}

// GetBidsByUser lists the bids of the user owning token. The backend scopes
// /bids/user by the caller, so the user's own token replaces the service token.
func (c *MarketplaceClient) GetBidsByUser(ctx context.Context, token, userID string) ([]models.BidRecord, error) {
	if token == "" {
		return nil, fmt.Errorf("user token is required")
	}

	body, err := c.MakeRequestWithHeaders(ctx, http.MethodGet, "/bids/user", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user bids: %w", err)
	}

	var dtos []UserBidDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	records := make([]models.BidRecord, 0, len(dtos))
	for _, dto := range dtos {
		records = append(records, dto.ToModel(userID))
	}
	return records, nil
}

// PlaceBid submits a bid. The backend decides whether it is accepted.
func (c *MarketplaceClient) PlaceBid(ctx context.Context, req auction.PlaceBidRequest) (*models.Bid, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bid: %w", err)
	}

	body, err := c.Post(ctx, "/bids", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to place bid: %w", err)
	}

	var dto BidDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	b := dto.ToModel()
	return &b, nil
}

func (c *MarketplaceClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return nil
}

func (c *MarketplaceClient) absoluteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL() + path
}
