package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/model"
)

// Heart saves a listing for the session user. Hearting twice fails with
// KindAlreadyHearted; hearting an unavailable listing with KindNotAvailable.
func (c *Client) Heart(ctx context.Context, id int64) error {
	const op = "heart listing"
	if err := c.requireToken(op); err != nil {
		return err
	}
	_, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   listingPath(id, "heart/"),
	}, nil)
	return err
}

// Unheart removes a saved listing.
func (c *Client) Unheart(ctx context.Context, id int64) error {
	const op = "unheart listing"
	if err := c.requireToken(op); err != nil {
		return err
	}
	_, err := c.send(ctx, op, request{
		method: http.MethodDelete,
		path:   listingPath(id, "heart/"),
	}, nil)
	return err
}

// ListHearted returns the session user's hearted listings. It is used on
// pages that also work anonymously, so it never fails: a missing token,
// 401, 422, or any other error yields an empty list.
func (c *Client) ListHearted(ctx context.Context) []model.Listing {
	if c.tokens.Token() == "" {
		return []model.Listing{}
	}

	var out []model.Listing
	if _, err := c.send(ctx, "list hearted", request{
		method: http.MethodGet,
		path:   "listing/hearted/",
	}, &out); err != nil {
		switch StatusOf(err) {
		case http.StatusUnauthorized, http.StatusUnprocessableEntity:
			c.logger.Debug("hearted listings unavailable", zap.Error(err))
		default:
			c.logger.Warn("fetching hearted listings", zap.Error(err))
		}
		return []model.Listing{}
	}
	return nonNil(out)
}
