package view

import (
	"context"

	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
)

// BuyerDashboard shows listings the session user requested or bought, and
// the hearted listings.
type BuyerDashboard struct {
	*list
	repo    Repository
	session Session
	hearts  Hearts
	tab     filter.BuyerTab

	stopHearts func()
}

// NewBuyerDashboard creates the buyer dashboard on the "all" tab.
func NewBuyerDashboard(repo Repository, s Session, h Hearts, opts ...Option) *BuyerDashboard {
	o := buildOptions(opts)
	d := &BuyerDashboard{
		list:    newList(o.logger.Named("buyer"), filter.Buyer(filter.BuyerAll, 0)),
		repo:    repo,
		session: s,
		hearts:  h,
		tab:     filter.BuyerAll,
	}
	if h != nil {
		d.list.hearted = h.Set
		d.stopHearts = h.Subscribe(func(filter.Set) { d.notify() })
	}
	return d
}

// Load fetches the data behind the current tab: the purchases, or the
// hearted listings on the hearted tab.
func (d *BuyerDashboard) Load(ctx context.Context) error {
	uid, err := requireUser(d.session, "buyer listings")
	if err != nil {
		return d.fail(err)
	}

	d.mu.Lock()
	tab := d.tab
	d.mu.Unlock()
	d.setCriteria(filter.Buyer(tab, uid))

	if tab == filter.BuyerHearted && d.hearts != nil {
		return d.load(ctx, "list hearted", func(ctx context.Context) ([]model.Listing, error) {
			return d.hearts.Refresh(ctx), nil
		})
	}
	return d.load(ctx, "buyer listings", func(ctx context.Context) ([]model.Listing, error) {
		return d.repo.BuyerListings(ctx, uid)
	})
}

// SetTab switches tabs, reloading when the tab needs a different source.
func (d *BuyerDashboard) SetTab(ctx context.Context, tab filter.BuyerTab) error {
	d.mu.Lock()
	prev := d.tab
	d.tab = tab
	uid := d.criteria.UserID
	d.mu.Unlock()

	if (prev == filter.BuyerHearted) != (tab == filter.BuyerHearted) {
		return d.Load(ctx)
	}
	d.setCriteria(filter.Buyer(tab, uid))
	return nil
}

// ToggleHeart flips the heart on a listing. On the hearted tab an
// unhearted listing disappears from the visible set at once.
func (d *BuyerDashboard) ToggleHeart(ctx context.Context, id int64) (bool, error) {
	if d.hearts == nil {
		_, err := requireUser(nil, "heart listing")
		return false, err
	}
	return d.hearts.Toggle(ctx, id)
}

// Snapshot returns the current state.
func (d *BuyerDashboard) Snapshot() Snapshot {
	return d.snapshot()
}

// Subscribe calls fn after every state change.
func (d *BuyerDashboard) Subscribe(fn func()) (cancel func()) {
	return d.subscribe(fn)
}

// Close releases subscriptions.
func (d *BuyerDashboard) Close() {
	if d.stopHearts != nil {
		d.stopHearts()
	}
	d.close()
}
