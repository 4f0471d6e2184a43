package hearts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRemote struct {
	mu       sync.Mutex
	hearted  []model.Listing
	lists    atomic.Int32
	heartErr error
	unErr    error
	// entered, when set, receives a release channel from every heart or
	// unheart call, which then blocks until the channel is closed.
	entered chan chan struct{}
}

func (f *fakeRemote) wait(id int64) {
	if f.entered == nil {
		return
	}
	release := make(chan struct{})
	f.entered <- release
	<-release
}

func (f *fakeRemote) Heart(ctx context.Context, id int64) error {
	f.wait(id)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heartErr
}

func (f *fakeRemote) Unheart(ctx context.Context, id int64) error {
	f.wait(id)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unErr
}

func (f *fakeRemote) ListHearted(ctx context.Context) []model.Listing {
	f.lists.Add(1)
	return f.hearted
}

func seeded(t *testing.T, remote *fakeRemote, ids ...int64) *Reconciler {
	t.Helper()
	for _, id := range ids {
		remote.hearted = append(remote.hearted, model.Listing{ID: id})
	}
	r := New(remote, nil)
	r.Seed(context.Background())
	require.ElementsMatch(t, ids, r.IDs())
	return r
}

func TestSeedOnce(t *testing.T) {
	remote := &fakeRemote{}
	r := seeded(t, remote, 2, 4)

	r.Seed(context.Background())
	assert.Equal(t, int32(1), remote.lists.Load())

	r.Clear()
	assert.Empty(t, r.IDs())
	r.Seed(context.Background())
	assert.Equal(t, int32(2), remote.lists.Load())
	assert.Equal(t, []int64{2, 4}, r.IDs())
}

func TestToggleHeart(t *testing.T) {
	r := seeded(t, &fakeRemote{})

	got, err := r.Toggle(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, r.Has(7))

	got, err = r.Toggle(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, got)
	assert.False(t, r.Has(7))
}

func TestFailingUnheartLeavesSetUnchanged(t *testing.T) {
	remote := &fakeRemote{unErr: &client.Error{Kind: client.KindHTTP, Status: 500}}
	r := seeded(t, remote, 3, 5)
	before := r.Set()

	got, err := r.Toggle(context.Background(), 5)
	assert.ErrorIs(t, err, client.ErrHTTP)
	assert.True(t, got)
	assert.Equal(t, before, r.Set())
}

func TestToggleReturnsTypedError(t *testing.T) {
	tests := []struct {
		name string
		err  *client.Error
		want error
	}{
		{"already hearted", &client.Error{Kind: client.KindAlreadyHearted, Status: 400}, client.ErrAlreadyHearted},
		{"not available", &client.Error{Kind: client.KindNotAvailable, Status: 400}, client.ErrNotAvailable},
		{"auth required", &client.Error{Kind: client.KindAuthRequired}, client.ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seeded(t, &fakeRemote{heartErr: tt.err})
			got, err := r.Toggle(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, got)
			assert.False(t, r.Has(1))
		})
	}
}

func TestToggleNotifiesOptimisticallyThenReverts(t *testing.T) {
	remote := &fakeRemote{heartErr: &client.Error{Kind: client.KindNotAvailable}}
	r := seeded(t, remote)

	var seen []bool
	cancel := r.Subscribe(func(s filter.Set) { seen = append(seen, s.Has(9)) })
	defer cancel()

	_, err := r.Toggle(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestDoubleToggleLastIssuedWins(t *testing.T) {
	remote := &fakeRemote{entered: make(chan chan struct{})}
	r := seeded(t, remote)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 4)
		first <- err
	}()
	release1 := <-remote.entered
	assert.True(t, r.Has(4), "heart should apply before the server answers")

	second := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 4)
		second <- err
	}()
	release2 := <-remote.entered
	assert.False(t, r.Has(4), "second toggle targets the optimistic state")

	close(release2)
	require.NoError(t, <-second)
	close(release1)
	assert.False(t, r.Has(4))
}

func TestStaleFailureDoesNotRevertNewerToggle(t *testing.T) {
	remote := &fakeRemote{entered: make(chan chan struct{})}
	r := seeded(t, remote)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 6)
		first <- err
	}()
	release1 := <-remote.entered

	second := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 6)
		second <- err
	}()
	release2 := <-remote.entered

	// The first (heart) call fails after the second (unheart) was issued.
	remote.mu.Lock()
	remote.heartErr = &client.Error{Kind: client.KindHTTP, Status: 500}
	remote.mu.Unlock()
	close(release1)
	assert.Error(t, <-first)

	assert.False(t, r.Has(6), "stale failure must not undo the newer toggle")

	close(release2)
	require.NoError(t, <-second)
	assert.False(t, r.Has(6))
}

func TestBothTogglesFailRestoreConfirmedState(t *testing.T) {
	remote := &fakeRemote{
		entered:  make(chan chan struct{}),
		heartErr: &client.Error{Kind: client.KindHTTP, Status: 500},
		unErr:    &client.Error{Kind: client.KindHTTP, Status: 500},
	}
	r := seeded(t, remote)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 6)
		first <- err
	}()
	release1 := <-remote.entered

	second := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 6)
		second <- err
	}()
	release2 := <-remote.entered

	// The unheart fails first while the heart is still in flight.
	close(release2)
	assert.Error(t, <-second)
	assert.True(t, r.Has(6), "the pending heart is still shown")

	close(release1)
	assert.Error(t, <-first)
	assert.False(t, r.Has(6), "no call succeeded, so 6 must not be hearted")
}

func TestRefreshKeepsInFlightToggle(t *testing.T) {
	remote := &fakeRemote{entered: make(chan chan struct{})}
	r := seeded(t, remote)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := r.Toggle(ctx, 8)
		done <- err
	}()
	release := <-remote.entered

	r.Refresh(ctx)
	assert.True(t, r.Has(8), "refresh dropped an in-flight heart")

	close(release)
	require.NoError(t, <-done)
	assert.True(t, r.Has(8))
}

func TestReconcilerIsMembership(t *testing.T) {
	var _ filter.Membership = &Reconciler{}
}
