package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/model"
)

// Defaults used when a BuyRequest leaves the text fields empty.
const (
	DefaultBuyMessage = "I am interested in this item"
	DefaultBuyContact = "Please contact me via email"
)

// BuyRequest is the body of a request-to-buy.
type BuyRequest struct {
	BuyerID     int64  `json:"buyer_id"`
	Message     string `json:"message"`
	ContactInfo string `json:"contact_info"`
}

// BuyResult is the backend's acknowledgement of a purchase request.
type BuyResult struct {
	Message string `json:"message"`
	// Warning is set when the request was recorded but the seller could
	// not be notified (HTTP 207).
	Warning string `json:"error,omitempty"`
	Listing struct {
		ID     int64        `json:"id"`
		Status model.Status `json:"status"`
	} `json:"listing"`
	IdempotencyKey string `json:"-"`
}

// Partial reports whether the request was recorded without notifying the seller.
func (r *BuyResult) Partial() bool {
	return r.Warning != ""
}

// RequestToBuy records the session user's intent to buy a listing. Only one
// request per listing may be in flight; a concurrent duplicate fails with
// ErrRequestInFlight. Each call carries a fresh Idempotency-Key.
func (c *Client) RequestToBuy(ctx context.Context, id int64, br BuyRequest) (*BuyResult, error) {
	const op = "request to buy"
	if err := c.requireToken(op); err != nil {
		return nil, err
	}
	if br.BuyerID == 0 {
		uid, err := c.requireUser(op)
		if err != nil {
			return nil, err
		}
		br.BuyerID = uid
	}
	if br.Message == "" {
		br.Message = DefaultBuyMessage
	}
	if br.ContactInfo == "" {
		br.ContactInfo = DefaultBuyContact
	}

	if !c.beginBuy(id) {
		return nil, ErrRequestInFlight
	}
	defer c.endBuy(id)

	key := uuid.NewString()
	var out BuyResult
	status, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   listingPath(id, "buy/"),
		body:   br,
		header: http.Header{"Idempotency-Key": {key}},
	}, &out)
	if err != nil {
		return nil, err
	}
	out.IdempotencyKey = key
	if status == http.StatusMultiStatus && out.Warning == "" {
		out.Warning = out.Message
	}
	if out.Partial() {
		c.logger.Warn("purchase recorded without seller notification",
			zap.Int64("listing_id", id),
			zap.String("warning", out.Warning),
		)
	}
	return &out, nil
}

func (c *Client) beginBuy(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.buying[id]; ok {
		return false
	}
	c.buying[id] = struct{}{}
	return true
}

func (c *Client) endBuy(id int64) {
	c.mu.Lock()
	delete(c.buying, id)
	c.mu.Unlock()
}
