package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/optimistic"
)

// DetailSnapshot is an immutable copy of a Detail controller's state.
type DetailSnapshot struct {
	Phase   Phase
	Listing *model.Listing
	Hearted bool
	IsOwner bool
	// Buying is true while a purchase request is in flight; the buy
	// action must be disabled meanwhile.
	Buying  bool
	CanBuy  bool
	Err     error  // load error
	Message string // user text for Err
	// Notice reports the outcome of the last heart or buy action.
	Notice string
}

// Detail is the single-listing screen.
type Detail struct {
	repo    Repository
	session Session
	hearts  Hearts
	logger  *zap.Logger
	id      int64

	mu      sync.Mutex
	phase   Phase
	listing *model.Listing
	err     error
	notice  string
	buying  bool
	gen     uint64
	pending optimistic.Tracker[int64, model.Listing]
	subs    map[int]func()
	nextSub int

	stopHearts func()
}

// NewDetail creates the controller for listing id. s and h may be nil for
// anonymous browsing.
func NewDetail(repo Repository, s Session, h Hearts, id int64, opts ...Option) *Detail {
	o := buildOptions(opts)
	d := &Detail{
		repo:    repo,
		session: s,
		hearts:  h,
		logger:  o.logger.Named("detail").With(zap.Int64("listing_id", id)),
		id:      id,
		subs:    make(map[int]func()),
	}
	if h != nil {
		d.stopHearts = h.Subscribe(func(filter.Set) { d.notify() })
	}
	return d
}

// Load fetches the listing.
func (d *Detail) Load(ctx context.Context) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.phase = PhaseLoading
	d.err = nil
	d.mu.Unlock()
	d.notify()

	l, err := d.repo.Get(ctx, d.id)

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		d.logger.Debug("discarding stale response")
		return nil
	}
	if err != nil {
		d.phase = PhaseError
		d.err = err
	} else {
		d.phase = PhaseReady
		d.listing = l
	}
	d.mu.Unlock()
	d.notify()
	return err
}

// ToggleHeart flips the heart on the listing.
func (d *Detail) ToggleHeart(ctx context.Context) (bool, error) {
	if d.hearts == nil {
		_, err := requireUser(nil, "heart listing")
		return false, err
	}
	hearted, err := d.hearts.Toggle(ctx, d.id)
	d.setNotice(err, "")
	return hearted, err
}

// RequestToBuy asks the seller for the listing. While a request is in
// flight further calls fail with client.ErrRequestInFlight. The listing
// moves to pending locally and is rolled back if the request fails.
func (d *Detail) RequestToBuy(ctx context.Context, message, contact string) (*client.BuyResult, error) {
	const op = "request to buy"
	uid, err := requireUser(d.session, op)
	if err != nil {
		d.setNotice(err, "")
		return nil, err
	}

	d.mu.Lock()
	switch {
	case d.buying:
		d.mu.Unlock()
		return nil, client.ErrRequestInFlight
	case d.listing == nil:
		d.mu.Unlock()
		return nil, &client.Error{Kind: client.KindInvalid, Op: op, Reason: "listing not loaded"}
	case d.listing.SellerID == uid:
		d.mu.Unlock()
		return nil, &client.Error{Kind: client.KindInvalid, Op: op, Reason: "you cannot buy your own listing"}
	case d.listing.Status != model.StatusAvailable:
		d.mu.Unlock()
		err := &client.Error{Kind: client.KindNotAvailable, Op: op, Reason: client.ReasonNotAvailable}
		d.setNotice(err, "")
		return nil, err
	}
	d.buying = true
	tx, shown := d.pending.Begin(d.id, d.listing.Clone(), func(l model.Listing) model.Listing {
		l = l.Clone()
		l.Status = model.StatusPending
		l.BuyerID = &uid
		return l
	})
	d.listing = &shown
	d.notice = ""
	d.mu.Unlock()
	d.notify()

	res, err := d.repo.RequestToBuy(ctx, d.id, client.BuyRequest{
		BuyerID:     uid,
		Message:     message,
		ContactInfo: contact,
	})

	d.mu.Lock()
	var (
		settled model.Listing
		ok      bool
	)
	if err != nil {
		settled, ok = tx.Revert()
	} else {
		settled, ok = tx.Commit(nil)
	}
	if ok {
		d.listing = &settled
	}
	d.buying = false
	d.mu.Unlock()

	switch {
	case err != nil:
		d.setNotice(err, "")
		d.logger.Warn("purchase request failed", zap.Error(err))
		return nil, err
	case res.Partial():
		d.setNotice(nil, "Request recorded, but the seller could not be emailed")
	default:
		d.setNotice(nil, "Purchase request sent to the seller")
	}
	return res, nil
}

// Snapshot returns the current state.
func (d *Detail) Snapshot() DetailSnapshot {
	hearted := d.hearts != nil && d.hearts.Has(d.id)
	uid, authed := int64(0), false
	if d.session != nil {
		uid, authed = d.session.UserID()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s := DetailSnapshot{
		Phase:   d.phase,
		Hearted: hearted,
		Buying:  d.buying,
		Err:     d.err,
		Message: Message(d.err),
		Notice:  d.notice,
	}
	if d.listing != nil {
		cp := d.listing.Clone()
		s.Listing = &cp
		s.IsOwner = authed && cp.SellerID == uid
		s.CanBuy = authed && !s.IsOwner && !d.buying && cp.Status == model.StatusAvailable
	}
	return s
}

// Subscribe calls fn after every state change.
func (d *Detail) Subscribe(fn func()) (cancel func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

// Close releases subscriptions.
func (d *Detail) Close() {
	if d.stopHearts != nil {
		d.stopHearts()
	}
	d.mu.Lock()
	clear(d.subs)
	d.mu.Unlock()
}

func (d *Detail) setNotice(err error, ok string) {
	d.mu.Lock()
	if err != nil {
		d.notice = Message(err)
	} else {
		d.notice = ok
	}
	d.mu.Unlock()
	d.notify()
}

func (d *Detail) notify() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
