// Package optimistic implements local-first updates that are rolled back
// when the server rejects them.
//
// A Tracker remembers, per entity, the last value the server confirmed and
// the changes still waiting for an answer. The value to show is always that
// baseline with the pending changes replayed in issue order, so a rejected
// change disappears whatever order the answers arrive in.
package optimistic

import "sync"

// Phase is the state of a transaction.
type Phase int

// Transaction phases.
const (
	Applied Phase = iota
	Committed
	Reverted
)

func (p Phase) String() string {
	switch p {
	case Applied:
		return "applied"
	case Committed:
		return "committed"
	case Reverted:
		return "reverted"
	}
	return "unknown"
}

// Tx is one optimistic change of one entity: applied when Begin returns,
// then committed or reverted exactly once. Later calls are ignored.
type Tx[K comparable, V any] struct {
	tracker *Tracker[K, V]
	key     K
	token   uint64

	mu    sync.Mutex
	phase Phase
}

// Phase returns the current phase.
func (t *Tx[K, V]) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Commit records that the server accepted the change. confirm maps the
// baseline to the server's new value; nil means the change is applied to
// it as issued. It returns the value to show now, and false if the
// transaction was already finished or the tracker was reset meanwhile.
func (t *Tx[K, V]) Commit(confirm func(V) V) (V, bool) {
	if !t.finish(Committed) {
		var zero V
		return zero, false
	}
	return t.tracker.resolve(t.key, t.token, true, confirm)
}

// Revert drops the change. It returns the value to show now: the confirmed
// baseline plus whatever other changes are still pending. The bool is false
// if the transaction was already finished or the tracker was reset.
func (t *Tx[K, V]) Revert() (V, bool) {
	if !t.finish(Reverted) {
		var zero V
		return zero, false
	}
	return t.tracker.resolve(t.key, t.token, false, nil)
}

func (t *Tx[K, V]) finish(p Phase) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != Applied {
		return false
	}
	t.phase = p
	return true
}
