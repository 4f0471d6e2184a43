// Package view holds the per-screen state machines. Each controller owns a
// local copy of the listings it shows, re-derives the visible subset with
// the filter package, and applies mutations optimistically.
package view

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/imaging"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/optimistic"
)

// Repository is the backend surface the controllers use. *client.Client
// implements it.
type Repository interface {
	List(ctx context.Context, f client.ListFilters) ([]model.Listing, error)
	Get(ctx context.Context, id int64) (*model.Listing, error)
	Create(ctx context.Context, d client.CreateListing) (*model.Listing, error)
	Update(ctx context.Context, id int64, p client.ListingPatch) (*model.Listing, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Status, error)
	Delete(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, files []imaging.File) ([]string, error)
	UserListings(ctx context.Context, userID int64) ([]model.Listing, error)
	BuyerListings(ctx context.Context, buyerID int64) ([]model.Listing, error)
	RequestToBuy(ctx context.Context, id int64, br client.BuyRequest) (*client.BuyResult, error)
}

// Session identifies the current user. *session.Store implements it.
type Session interface {
	UserID() (int64, bool)
}

// Hearts is the heart reconciliation set. *hearts.Reconciler implements it.
type Hearts interface {
	filter.Membership
	Seed(ctx context.Context)
	Refresh(ctx context.Context) []model.Listing
	Toggle(ctx context.Context, id int64) (bool, error)
	Set() filter.Set
	Subscribe(fn func(filter.Set)) (cancel func())
}

// Phase is the load state of a controller.
type Phase int

// Controller phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// Snapshot is an immutable copy of a list controller's state.
type Snapshot struct {
	Phase        Phase
	Listings     []model.Listing // full fetched sequence
	Visible      []model.Listing
	Empty        filter.EmptyReason
	EmptyMessage string
	Criteria     filter.Criteria
	Err          error  // load error, set in PhaseError
	Message      string // user text for Err
	// MutationErr is the last failed local mutation, already rolled back.
	MutationErr     error
	MutationMessage string
}

// Option configures a controller.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// list is the state machine shared by the list screens.
type list struct {
	logger  *zap.Logger
	hearted func() filter.Set // nil when the screen ignores hearts

	mu          sync.Mutex
	phase       Phase
	listings    []model.Listing
	criteria    filter.Criteria
	err         error
	mutationErr error
	gen         uint64
	pending     optimistic.Tracker[int64, entry]
	subs        map[int]func()
	nextSub     int
}

func newList(logger *zap.Logger, criteria filter.Criteria) *list {
	return &list{
		logger:   logger,
		criteria: criteria,
		subs:     make(map[int]func()),
	}
}

// load moves to Loading, runs fetch and applies its result only if no
// newer load has started meanwhile. Stale results are dropped and nil is
// returned for them.
func (l *list) load(ctx context.Context, op string, fetch func(context.Context) ([]model.Listing, error)) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.phase = PhaseLoading
	l.err = nil
	l.mu.Unlock()
	l.notify()

	listings, err := fetch(ctx)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.logger.Debug("discarding stale response", zap.String("op", op), zap.Uint64("generation", gen))
		return nil
	}
	if err != nil {
		l.phase = PhaseError
		l.err = err
	} else {
		l.phase = PhaseReady
		l.listings = listings
		l.mutationErr = nil
	}
	l.mu.Unlock()
	l.notify()

	if err != nil {
		l.logger.Warn("load failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// fail puts the controller in the error phase without a request, e.g. when
// there is no session. Any load in flight becomes stale.
func (l *list) fail(err error) error {
	l.mu.Lock()
	l.gen++
	l.phase = PhaseError
	l.err = err
	l.mu.Unlock()
	l.notify()
	return err
}

func (l *list) setCriteria(c filter.Criteria) {
	l.mu.Lock()
	l.criteria = c
	l.mu.Unlock()
	l.notify()
}

func (l *list) currentCriteria() filter.Criteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria
}

// entry remembers one listing and its position for rollback.
type entry struct {
	listing model.Listing
	index   int
	present bool
}

// with returns the entry after change, which works on listing ids.
func (e entry) with(change func([]model.Listing) []model.Listing) entry {
	if !e.present {
		return e
	}
	out := change([]model.Listing{e.listing.Clone()})
	if len(out) == 0 {
		return entry{index: e.index}
	}
	return entry{listing: out[0], index: e.index, present: true}
}

func (l *list) entryLocked(id int64) entry {
	i := indexOf(l.listings, id)
	if i < 0 {
		return entry{index: len(l.listings)}
	}
	return entry{listing: l.listings[i].Clone(), index: i, present: true}
}

func (l *list) restoreLocked(id int64, e entry) {
	i := indexOf(l.listings, id)
	switch {
	case e.present && i >= 0:
		l.listings[i] = e.listing
	case e.present:
		at := min(e.index, len(l.listings))
		l.listings = slices.Insert(slices.Clone(l.listings), at, e.listing)
	case i >= 0:
		l.listings = slices.Delete(slices.Clone(l.listings), i, i+1)
	}
}

// mutate applies change to the local copy of listing id, then confirms with
// the server. confirm may return a settle function that brings the listing
// in line with the server's answer; without one the change is kept as
// issued. A rejected change is undone, while other changes of the same
// listing that are still pending or already accepted stay visible.
func (l *list) mutate(ctx context.Context, op string, id int64, change func([]model.Listing) []model.Listing, confirm func(context.Context) (func(*model.Listing), error)) error {
	l.mu.Lock()
	tx, shown := l.pending.Begin(id, l.entryLocked(id), func(e entry) entry { return e.with(change) })
	l.restoreLocked(id, shown)
	l.mutationErr = nil
	l.mu.Unlock()
	l.notify()

	settle, err := confirm(ctx)

	l.mu.Lock()
	var ok bool
	if err != nil {
		shown, ok = tx.Revert()
		l.mutationErr = err
	} else {
		shown, ok = tx.Commit(func(e entry) entry {
			if settle == nil {
				return e.with(change)
			}
			return e.with(updateID(id, settle))
		})
	}
	if ok {
		l.restoreLocked(id, shown)
	}
	l.mu.Unlock()
	l.notify()

	if err != nil {
		l.logger.Warn("mutation rolled back", zap.String("op", op), zap.Int64("listing_id", id), zap.Error(err))
	}
	return err
}

func (l *list) snapshot() Snapshot {
	var set filter.Set
	if l.hearted != nil {
		set = l.hearted()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	listings := slices.Clone(l.listings)
	if listings == nil {
		listings = []model.Listing{}
	}
	res := filter.Project(listings, l.criteria, set)
	s := Snapshot{
		Phase:       l.phase,
		Listings:    listings,
		Visible:     res.Visible,
		Criteria:    l.criteria,
		Err:         l.err,
		Message:     Message(l.err),
		MutationErr: l.mutationErr,
	}
	s.MutationMessage = Message(l.mutationErr)
	if l.phase == PhaseReady {
		s.Empty = res.Empty
		s.EmptyMessage = filter.Message(res.Empty, l.criteria)
	}
	return s
}

func (l *list) subscribe(fn func()) (cancel func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *list) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (l *list) close() {
	l.mu.Lock()
	clear(l.subs)
	l.mu.Unlock()
}

func indexOf(ls []model.Listing, id int64) int {
	return slices.IndexFunc(ls, func(l model.Listing) bool { return l.ID == id })
}

func removeID(id int64) func([]model.Listing) []model.Listing {
	return func(ls []model.Listing) []model.Listing {
		if i := indexOf(ls, id); i >= 0 {
			return slices.Delete(ls, i, i+1)
		}
		return ls
	}
}

func updateID(id int64, fn func(*model.Listing)) func([]model.Listing) []model.Listing {
	return func(ls []model.Listing) []model.Listing {
		if i := indexOf(ls, id); i >= 0 {
			fn(&ls[i])
		}
		return ls
	}
}

func requireUser(s Session, op string) (int64, error) {
	if s != nil {
		if id, ok := s.UserID(); ok {
			return id, nil
		}
	}
	return 0, &client.Error{Kind: client.KindAuthRequired, Op: op, Reason: "please log in"}
}
