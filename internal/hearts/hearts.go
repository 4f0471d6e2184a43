// Package hearts keeps the session's hearted listing ids in sync with the
// backend, applying toggles optimistically.
package hearts

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/optimistic"
)

// Remote is the part of the repository client the reconciler needs.
type Remote interface {
	Heart(ctx context.Context, id int64) error
	Unheart(ctx context.Context, id int64) error
	ListHearted(ctx context.Context) []model.Listing
}

// Reconciler holds the hearted id set. It is safe for concurrent use and
// satisfies filter.Membership.
type Reconciler struct {
	remote Remote
	logger *zap.Logger
	// pending tracks in-flight toggles per listing id.
	pending optimistic.Tracker[int64, bool]

	mu      sync.Mutex
	ids     filter.Set
	seeded  bool
	subs    map[int]func(filter.Set)
	nextSub int
}

// New creates an empty reconciler.
func New(remote Remote, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		remote: remote,
		logger: logger,
		ids:    filter.NewSet(),
		subs:   make(map[int]func(filter.Set)),
	}
}

// Seed loads the hearted set from the backend the first time it is called.
// Later calls are no-ops until Clear.
func (r *Reconciler) Seed(ctx context.Context) {
	r.mu.Lock()
	seeded := r.seeded
	r.mu.Unlock()
	if seeded {
		return
	}
	r.Refresh(ctx)
}

// Refresh replaces the set with the backend's and returns the hearted
// listings. Toggles still in flight keep their optimistic state.
func (r *Reconciler) Refresh(ctx context.Context) []model.Listing {
	listings := r.remote.ListHearted(ctx)

	r.mu.Lock()
	next := filter.NewSet()
	for _, l := range listings {
		next[l.ID] = struct{}{}
	}
	for id := range r.ids {
		if r.pendingLocked(id) {
			next[id] = struct{}{}
		}
	}
	for id := range next {
		if r.pendingLocked(id) && !r.ids.Has(id) {
			delete(next, id)
		}
	}
	r.ids = next
	r.seeded = true
	r.mu.Unlock()

	r.logger.Debug("hearted set refreshed", zap.Int("count", len(listings)))
	r.notify()
	return listings
}

// Toggle flips membership of id: the local set changes immediately and
// subscribers are notified, then the backend is called. If the call fails
// its change is undone and the client error is returned; membership falls
// back to the last state the backend confirmed, with any newer toggle still
// in flight applied on top. The result is the membership after the call.
func (r *Reconciler) Toggle(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	was := r.ids.Has(id)
	target := !was
	tx, shown := r.pending.Begin(id, was, func(bool) bool { return target })
	r.setLocked(id, shown)
	r.mu.Unlock()
	r.notify()

	var err error
	if target {
		err = r.remote.Heart(ctx, id)
	} else {
		err = r.remote.Unheart(ctx, id)
	}

	r.mu.Lock()
	var ok bool
	if err != nil {
		shown, ok = tx.Revert()
	} else {
		shown, ok = tx.Commit(nil)
	}
	if ok {
		r.setLocked(id, shown)
	}
	hearted := r.ids.Has(id)
	r.mu.Unlock()
	r.notify()

	if err != nil {
		r.logger.Debug("heart toggle reverted", zap.Int64("listing_id", id), zap.Error(err))
		return hearted, err
	}
	return target, nil
}

// Has reports whether id is hearted.
func (r *Reconciler) Has(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids.Has(id)
}

// IDs returns the hearted ids in ascending order.
func (r *Reconciler) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Set returns a copy of the hearted set.
func (r *Reconciler) Set() filter.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocked()
}

// Subscribe calls fn with a copy of the set after every change.
func (r *Reconciler) Subscribe(fn func(filter.Set)) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Clear empties the set, e.g. on logout. The next Seed fetches again.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	r.ids = filter.NewSet()
	r.seeded = false
	r.mu.Unlock()
	r.pending.Reset()
	r.notify()
}

func (r *Reconciler) setLocked(id int64, hearted bool) {
	if hearted {
		r.ids[id] = struct{}{}
	} else {
		delete(r.ids, id)
	}
}

// pendingLocked reports whether a toggle of id is in flight.
func (r *Reconciler) pendingLocked(id int64) bool {
	return r.pending.Pending(id)
}

func (r *Reconciler) copyLocked() filter.Set {
	cp := make(filter.Set, len(r.ids))
	for id := range r.ids {
		cp[id] = struct{}{}
	}
	return cp
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	set := r.copyLocked()
	fns := make([]func(filter.Set), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(set)
	}
}
