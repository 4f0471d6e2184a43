package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/erazemk/tigerpop/internal/model"
)

// ListFilters are the query-string filters accepted by List.
type ListFilters struct {
	Status      model.Status
	Category    model.Category
	MaxPrice    *model.Price
	MinPrice    *model.Price
	Search      string
	IncludeSold bool
}

func (f ListFilters) values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Category != "" {
		v.Set("category", string(f.Category))
	}
	if f.MaxPrice != nil {
		v.Set("max_price", f.MaxPrice.Decimal())
	}
	if f.MinPrice != nil {
		v.Set("min_price", f.MinPrice.Decimal())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.IncludeSold {
		v.Set("include_sold", "true")
	}
	return v
}

// List returns listings in server order.
func (c *Client) List(ctx context.Context, f ListFilters) ([]model.Listing, error) {
	var out []model.Listing
	if _, err := c.send(ctx, "list listings", request{
		method: http.MethodGet,
		path:   "listing/",
		query:  f.values(),
	}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Get returns a single listing. A missing listing fails with KindNotFound.
func (c *Client) Get(ctx context.Context, id int64) (*model.Listing, error) {
	var out model.Listing
	if _, err := c.send(ctx, "get listing", request{
		method: http.MethodGet,
		path:   listingPath(id, ""),
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateListing is the body of a create request.
type CreateListing struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       model.Price     `json:"price"`
	Category    model.Category  `json:"category"`
	Condition   model.Condition `json:"condition"`
	Images      []string        `json:"images"`
	UserID      int64           `json:"user_id"`
}

// Validate checks the fields the backend would otherwise reject.
func (d *CreateListing) Validate() error {
	const op = "create listing"
	switch {
	case strings.TrimSpace(d.Title) == "":
		return invalid(op, "title is required")
	case d.Price < 0:
		return invalid(op, "price must not be negative")
	case !validCategory(d.Category):
		return invalid(op, fmt.Sprintf("unknown category %q", d.Category))
	case !validCondition(d.Condition):
		return invalid(op, fmt.Sprintf("unknown condition %q", d.Condition))
	case d.UserID <= 0:
		return invalid(op, "owner is required")
	}
	return nil
}

// Create submits a new listing. When d.UserID is zero the session user
// is used as the owner.
func (c *Client) Create(ctx context.Context, d CreateListing) (*model.Listing, error) {
	const op = "create listing"
	if err := c.requireToken(op); err != nil {
		return nil, err
	}
	if d.UserID == 0 {
		if id, ok := c.tokens.UserID(); ok {
			d.UserID = id
		}
	}
	if d.Images == nil {
		d.Images = []string{}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var out model.Listing
	if _, err := c.send(ctx, op, request{
		method: http.MethodPost,
		path:   "listing/",
		body:   d,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListingPatch is a partial update; nil fields are left unchanged.
type ListingPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *model.Price     `json:"price,omitempty"`
	Category    *model.Category  `json:"category,omitempty"`
	Condition   *model.Condition `json:"condition,omitempty"`
	Images      []string         `json:"images,omitzero"`
}

// Empty reports whether the patch changes nothing.
func (p *ListingPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.Condition == nil && p.Images == nil
}

// Apply merges the patch into l.
func (p *ListingPatch) Apply(l *model.Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Category != nil {
		l.Category = *p.Category
	}
	if p.Condition != nil {
		l.Condition = *p.Condition
	}
	if p.Images != nil {
		l.Images = append([]string{}, p.Images...)
	}
}

func (p *ListingPatch) validate(op string) error {
	switch {
	case p.Title != nil && strings.TrimSpace(*p.Title) == "":
		return invalid(op, "title is required")
	case p.Price != nil && *p.Price < 0:
		return invalid(op, "price must not be negative")
	case p.Category != nil && !validCategory(*p.Category):
		return invalid(op, fmt.Sprintf("unknown category %q", *p.Category))
	case p.Condition != nil && !validCondition(*p.Condition):
		return invalid(op, fmt.Sprintf("unknown condition %q", *p.Condition))
	}
	return nil
}

// Update applies a partial update. Only the seller may update; the backend
// answers 403 otherwise, surfaced as KindForbidden.
func (c *Client) Update(ctx context.Context, id int64, p ListingPatch) (*model.Listing, error) {
	const op = "update listing"
	if err := c.requireToken(op); err != nil {
		return nil, err
	}
	if err := p.validate(op); err != nil {
		return nil, err
	}

	var out model.Listing
	if _, err := c.send(ctx, op, request{
		method: http.MethodPut,
		path:   listingPath(id, ""),
		body:   p,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sets a listing to available or sold and returns the status
// the backend confirmed.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Status, error) {
	const op = "update status"
	if status != model.StatusAvailable && status != model.StatusSold {
		return "", invalid(op, fmt.Sprintf("status must be available or sold, got %q", status))
	}
	if err := c.requireToken(op); err != nil {
		return "", err
	}

	var out struct {
		ID     int64        `json:"id"`
		Status model.Status `json:"status"`
	}
	if _, err := c.send(ctx, op, request{
		method: http.MethodPatch,
		path:   listingPath(id, "status/"),
		body:   map[string]model.Status{"status": status},
	}, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		out.Status = status
	}
	return out.Status, nil
}

// Delete removes a listing owned by the session user.
func (c *Client) Delete(ctx context.Context, id int64) error {
	const op = "delete listing"
	userID, err := c.requireUser(op)
	if err != nil {
		return err
	}

	_, err = c.send(ctx, op, request{
		method: http.MethodDelete,
		path:   listingPath(id, ""),
		query:  url.Values{"user_id": {strconv.FormatInt(userID, 10)}},
	}, nil)
	return err
}

// UserListings returns every listing sold by userID, including sold ones.
func (c *Client) UserListings(ctx context.Context, userID int64) ([]model.Listing, error) {
	var out []model.Listing
	if _, err := c.send(ctx, "user listings", request{
		method: http.MethodGet,
		path:   "listing/user/",
		query:  url.Values{"user_id": {strconv.FormatInt(userID, 10)}},
	}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// BuyerListings returns listings whose buyer is buyerID.
func (c *Client) BuyerListings(ctx context.Context, buyerID int64) ([]model.Listing, error) {
	var out []model.Listing
	if _, err := c.send(ctx, "buyer listings", request{
		method: http.MethodGet,
		path:   "listing/buyer",
		query:  url.Values{"buyer_id": {strconv.FormatInt(buyerID, 10)}},
	}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Categories returns the categories the backend offers.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if _, err := c.send(ctx, "categories", request{
		method: http.MethodGet,
		path:   "listing/categories/",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listingPath(id int64, suffix string) string {
	return "listing/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func validCategory(c model.Category) bool {
	return slices.Contains(model.Categories, c)
}

func validCondition(c model.Condition) bool {
	return slices.Contains(model.Conditions, c)
}

func nonNil(ls []model.Listing) []model.Listing {
	if ls == nil {
		return []model.Listing{}
	}
	return ls
}
