package view

import (
	"context"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
)

// PricePresets are the quick max-price choices offered on the feed.
var PricePresets = []model.Price{1000, 1500, 2000, 5000}

// Marketplace is the public feed of available listings.
type Marketplace struct {
	*list
	repo   Repository
	hearts Hearts

	stopHearts func()
}

// NewMarketplace creates the feed controller. hearts may be nil for an
// anonymous feed without heart state.
func NewMarketplace(repo Repository, h Hearts, opts ...Option) *Marketplace {
	o := buildOptions(opts)
	m := &Marketplace{
		list:   newList(o.logger.Named("marketplace"), filter.Marketplace("", nil, "")),
		repo:   repo,
		hearts: h,
	}
	if h != nil {
		m.list.hearted = h.Set
		m.stopHearts = h.Subscribe(func(filter.Set) { m.notify() })
	}
	return m
}

// Load fetches the feed for the current criteria and seeds the heart set.
func (m *Marketplace) Load(ctx context.Context) error {
	if m.hearts != nil {
		m.hearts.Seed(ctx)
	}
	c := m.currentCriteria()
	return m.load(ctx, "list listings", func(ctx context.Context) ([]model.Listing, error) {
		return m.repo.List(ctx, client.ListFilters{
			Status:   model.StatusAvailable,
			Category: c.Category,
			MaxPrice: c.MaxPrice,
			Search:   c.Search,
		})
	})
}

// Filter changes the category, price ceiling and search text, re-derives
// the visible set from the listings already held, and reloads.
func (m *Marketplace) Filter(ctx context.Context, category model.Category, maxPrice *model.Price, search string) error {
	m.setCriteria(filter.Marketplace(category, maxPrice, search))
	return m.Load(ctx)
}

// ToggleHeart flips the heart on a listing.
func (m *Marketplace) ToggleHeart(ctx context.Context, id int64) (bool, error) {
	if m.hearts == nil {
		return false, &client.Error{Kind: client.KindAuthRequired, Op: "heart listing", Reason: "please log in"}
	}
	return m.hearts.Toggle(ctx, id)
}

// Remove drops a listing from the feed, e.g. after it was requested from
// the detail view.
func (m *Marketplace) Remove(id int64) {
	m.mu.Lock()
	m.listings = removeID(id)(append([]model.Listing(nil), m.listings...))
	m.mu.Unlock()
	m.notify()
}

// Snapshot returns the current state.
func (m *Marketplace) Snapshot() Snapshot {
	return m.snapshot()
}

// Subscribe calls fn after every state change.
func (m *Marketplace) Subscribe(fn func()) (cancel func()) {
	return m.subscribe(fn)
}

// Close releases subscriptions.
func (m *Marketplace) Close() {
	if m.stopHearts != nil {
		m.stopHearts()
	}
	m.close()
}
