package view

import (
	"context"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
)

// SellerDashboard shows the session user's own listings.
type SellerDashboard struct {
	*list
	repo    Repository
	session Session
	tab     filter.SellerTab
}

// NewSellerDashboard creates the seller dashboard on the "all" tab.
func NewSellerDashboard(repo Repository, s Session, opts ...Option) *SellerDashboard {
	o := buildOptions(opts)
	return &SellerDashboard{
		list:    newList(o.logger.Named("seller"), filter.Seller(filter.SellerAll, 0)),
		repo:    repo,
		session: s,
		tab:     filter.SellerAll,
	}
}

// Load fetches every listing the user sells, sold ones included.
func (d *SellerDashboard) Load(ctx context.Context) error {
	const op = "user listings"
	uid, err := requireUser(d.session, op)
	if err != nil {
		return d.fail(err)
	}
	d.setCriteria(filter.Seller(d.currentTab(), uid))
	return d.load(ctx, op, func(ctx context.Context) ([]model.Listing, error) {
		return d.repo.UserListings(ctx, uid)
	})
}

// SetTab switches tabs. The data is already local, so nothing is fetched.
func (d *SellerDashboard) SetTab(tab filter.SellerTab) {
	d.mu.Lock()
	d.tab = tab
	uid := d.criteria.UserID
	d.mu.Unlock()
	d.setCriteria(filter.Seller(tab, uid))
}

func (d *SellerDashboard) currentTab() filter.SellerTab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// Delete removes a listing locally and on the server.
func (d *SellerDashboard) Delete(ctx context.Context, id int64) error {
	return d.mutate(ctx, "delete listing", id, removeID(id), func(ctx context.Context) (func(*model.Listing), error) {
		return nil, d.repo.Delete(ctx, id)
	})
}

// MarkSold sets a listing to sold.
func (d *SellerDashboard) MarkSold(ctx context.Context, id int64) error {
	return d.SetStatus(ctx, id, model.StatusSold)
}

// SetStatus sets a listing to available or sold.
func (d *SellerDashboard) SetStatus(ctx context.Context, id int64, status model.Status) error {
	if status != model.StatusAvailable && status != model.StatusSold {
		return &client.Error{Kind: client.KindInvalid, Op: "update status", Reason: "status must be available or sold"}
	}
	return d.mutate(ctx, "update status", id, updateID(id, func(l *model.Listing) {
		l.Status = status
	}), func(ctx context.Context) (func(*model.Listing), error) {
		confirmed, err := d.repo.UpdateStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		return func(l *model.Listing) { l.Status = confirmed }, nil
	})
}

// Save applies an edit locally and on the server. The server's copy of
// the listing replaces the local one on success.
func (d *SellerDashboard) Save(ctx context.Context, id int64, p client.ListingPatch) error {
	return d.mutate(ctx, "update listing", id, updateID(id, p.Apply), func(ctx context.Context) (func(*model.Listing), error) {
		updated, err := d.repo.Update(ctx, id, p)
		if err != nil || updated == nil {
			return nil, err
		}
		return func(l *model.Listing) { *l = *updated }, nil
	})
}

// Add inserts a freshly created listing at the front, as the server
// orders by recency.
func (d *SellerDashboard) Add(l model.Listing) {
	d.mu.Lock()
	d.listings = append([]model.Listing{l}, d.listings...)
	d.mu.Unlock()
	d.notify()
}

// Snapshot returns the current state.
func (d *SellerDashboard) Snapshot() Snapshot {
	return d.snapshot()
}

// Subscribe calls fn after every state change.
func (d *SellerDashboard) Subscribe(fn func()) (cancel func()) {
	return d.subscribe(fn)
}

// Close releases subscriptions.
func (d *SellerDashboard) Close() {
	d.close()
}
