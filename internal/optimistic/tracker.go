package optimistic

import (
	"slices"
	"sync"
)

// Tracker holds the pending changes of every entity keyed by K. The zero
// value is ready to use and it is safe for concurrent use. The apply and
// confirm functions run with the tracker locked and must not call back
// into it.
type Tracker[K comparable, V any] struct {
	mu      sync.Mutex
	next    uint64
	entries map[K]*tracked[V]
}

type tracked[V any] struct {
	baseline V
	// confirmed is the token of the newest change the server accepted.
	// Pending changes issued before it are superseded and not replayed.
	confirmed uint64
	pending   []change[V]
}

type change[V any] struct {
	token uint64
	apply func(V) V
}

// Begin records a change of k and returns its transaction together with
// the value to show, which is apply(current). current becomes the
// confirmed baseline when no other change of k is pending.
func (t *Tracker[K, V]) Begin(k K, current V, apply func(V) V) (*Tx[K, V], V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries == nil {
		t.entries = make(map[K]*tracked[V])
	}
	e, ok := t.entries[k]
	if !ok {
		e = &tracked[V]{baseline: current}
		t.entries[k] = e
	}
	t.next++
	e.pending = append(e.pending, change[V]{token: t.next, apply: apply})
	return &Tx[K, V]{tracker: t, key: k, token: t.next}, apply(current)
}

// Pending reports whether a change of k is waiting for the server.
func (t *Tracker[K, V]) Pending(k K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[k]
	return ok
}

// Reset forgets every entity. Transactions still open resolve to false.
func (t *Tracker[K, V]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
}

func (t *Tracker[K, V]) resolve(k K, token uint64, accepted bool, confirm func(V) V) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero V
	e, ok := t.entries[k]
	if !ok {
		return zero, false
	}
	i := slices.IndexFunc(e.pending, func(c change[V]) bool { return c.token == token })
	if i < 0 {
		return zero, false
	}
	c := e.pending[i]
	e.pending = slices.Delete(e.pending, i, i+1)

	if accepted && token > e.confirmed {
		if confirm == nil {
			confirm = c.apply
		}
		e.baseline = confirm(e.baseline)
		e.confirmed = token
	}

	v := e.baseline
	for _, p := range e.pending {
		if p.token > e.confirmed {
			v = p.apply(v)
		}
	}
	if len(e.pending) == 0 {
		delete(t.entries, k)
	}
	return v, true
}
