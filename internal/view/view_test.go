package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/hearts"
	"github.com/erazemk/tigerpop/internal/imaging"
	"github.com/erazemk/tigerpop/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func visibleIDs(s Snapshot) []int64 {
	out := make([]int64, len(s.Visible))
	for i, l := range s.Visible {
		out[i] = l.ID
	}
	return out
}

func TestMarketplaceShowsOnlyAvailable(t *testing.T) {
	repo := &fakeRepo{list: func(context.Context, client.ListFilters) ([]model.Listing, error) {
		return []model.Listing{
			{ID: 1, Status: model.StatusAvailable},
			{ID: 2, Status: model.StatusSold},
			{ID: 3, Status: model.StatusPending},
		}, nil
	}}
	m := NewMarketplace(repo, nil)
	defer m.Close()

	require.NoError(t, m.Load(context.Background()))
	s := m.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Len(t, s.Listings, 3)
	assert.Equal(t, []int64{1}, visibleIDs(s))
	assert.Equal(t, []string{"List"}, repo.Calls())
}

func TestMarketplaceRemove(t *testing.T) {
	repo := &fakeRepo{list: func(context.Context, client.ListFilters) ([]model.Listing, error) {
		return []model.Listing{
			{ID: 1, Status: model.StatusAvailable},
			{ID: 2, Status: model.StatusAvailable},
		}, nil
	}}
	m := NewMarketplace(repo, nil)
	defer m.Close()
	require.NoError(t, m.Load(context.Background()))

	m.Remove(1)
	assert.Equal(t, []int64{2}, visibleIDs(m.Snapshot()))
	m.Remove(42)
	assert.Equal(t, []int64{2}, visibleIDs(m.Snapshot()))
	assert.Equal(t, []string{"List"}, repo.Calls())
}

func TestMarketplaceEmptyMessage(t *testing.T) {
	m := NewMarketplace(&fakeRepo{}, nil)
	defer m.Close()

	require.NoError(t, m.Filter(context.Background(), "", nil, "lamp"))
	s := m.Snapshot()
	assert.Empty(t, s.Visible)
	assert.Equal(t, filter.NoListings, s.Empty)
	assert.Equal(t, `No items found matching "lamp"`, s.EmptyMessage)
}

func TestMarketplaceFilterPassesCriteria(t *testing.T) {
	var got client.ListFilters
	repo := &fakeRepo{list: func(_ context.Context, f client.ListFilters) ([]model.Listing, error) {
		got = f
		return []model.Listing{
			{ID: 1, Title: "Lamp", Category: model.CategoryFurniture, Price: 1500, Status: model.StatusAvailable},
			{ID: 2, Title: "Desk", Category: model.CategoryFurniture, Price: 2500, Status: model.StatusAvailable},
		}, nil
	}}
	m := NewMarketplace(repo, nil)
	defer m.Close()

	limit := PricePresets[2]
	require.NoError(t, m.Filter(context.Background(), model.CategoryFurniture, &limit, ""))

	assert.Equal(t, model.StatusAvailable, got.Status)
	assert.Equal(t, model.CategoryFurniture, got.Category)
	assert.Equal(t, &limit, got.MaxPrice)
	assert.Equal(t, []int64{1}, visibleIDs(m.Snapshot()), "client-side projection must apply the ceiling too")
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	repo := &fakeRepo{list: func(ctx context.Context, f client.ListFilters) ([]model.Listing, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return []model.Listing{{ID: 1, Title: "old", Status: model.StatusAvailable}}, nil
		}
		return []model.Listing{{ID: 2, Title: "new", Status: model.StatusAvailable}}, nil
	}}
	m := NewMarketplace(repo, nil)
	defer m.Close()

	first := make(chan error, 1)
	go func() { first <- m.Load(context.Background()) }()
	<-started

	require.NoError(t, m.Load(context.Background()))
	close(release)
	require.NoError(t, <-first)

	s := m.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, []int64{2}, visibleIDs(s))
}

func TestLoadError(t *testing.T) {
	netErr := &client.Error{Kind: client.KindNetwork, Err: errors.New("connection refused")}
	m := NewMarketplace(&fakeRepo{list: func(context.Context, client.ListFilters) ([]model.Listing, error) {
		return nil, netErr
	}}, nil)
	defer m.Close()

	err := m.Load(context.Background())
	assert.ErrorIs(t, err, client.ErrNetwork)

	s := m.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, Message(netErr), s.Message)
	assert.Empty(t, s.EmptyMessage)
}

func TestMarketplaceHeartsRederive(t *testing.T) {
	repo := &fakeRepo{
		list: func(context.Context, client.ListFilters) ([]model.Listing, error) {
			return []model.Listing{{ID: 1, Status: model.StatusAvailable}, {ID: 2, Status: model.StatusAvailable}}, nil
		},
		listHearted: func(context.Context) []model.Listing {
			return []model.Listing{{ID: 2}}
		},
	}
	h := hearts.New(repo, nil)
	m := NewMarketplace(repo, h)
	defer m.Close()

	notified := 0
	cancel := m.Subscribe(func() { notified++ })
	defer cancel()

	require.NoError(t, m.Load(context.Background()))
	assert.True(t, h.Has(2))

	before := notified
	got, err := m.ToggleHeart(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Greater(t, notified, before, "heart change must notify the feed")
}

func sellerListings() []model.Listing {
	return []model.Listing{
		{ID: 1, Title: "Lamp", SellerID: 7, Status: model.StatusAvailable},
		{ID: 2, Title: "Desk", SellerID: 7, Status: model.StatusAvailable},
		{ID: 3, Title: "Boots", SellerID: 7, Status: model.StatusSold},
	}
}

func loadedSeller(t *testing.T, repo *fakeRepo) *SellerDashboard {
	t.Helper()
	repo.userListings = func(_ context.Context, uid int64) ([]model.Listing, error) {
		require.Equal(t, int64(7), uid)
		return sellerListings(), nil
	}
	d := NewSellerDashboard(repo, user(7))
	t.Cleanup(d.Close)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestSellerTabs(t *testing.T) {
	d := loadedSeller(t, &fakeRepo{})

	assert.Equal(t, []int64{1, 2, 3}, visibleIDs(d.Snapshot()))
	d.SetTab(filter.SellerSelling)
	assert.Equal(t, []int64{1, 2}, visibleIDs(d.Snapshot()))
	d.SetTab(filter.SellerSold)
	assert.Equal(t, []int64{3}, visibleIDs(d.Snapshot()))
}

func TestSellerAddPrepends(t *testing.T) {
	d := loadedSeller(t, &fakeRepo{})

	d.Add(model.Listing{ID: 9, Title: "Chair", SellerID: 7, Status: model.StatusAvailable})
	assert.Equal(t, []int64{9, 1, 2, 3}, visibleIDs(d.Snapshot()))
	d.SetTab(filter.SellerSold)
	assert.Equal(t, []int64{3}, visibleIDs(d.Snapshot()))
}

func TestSellerRequiresSession(t *testing.T) {
	repo := &fakeRepo{}
	d := NewSellerDashboard(repo, user(0))
	defer d.Close()

	err := d.Load(context.Background())
	assert.ErrorIs(t, err, client.ErrAuthRequired)
	assert.Equal(t, PhaseError, d.Snapshot().Phase)
	assert.Empty(t, repo.Calls())
}

func TestSellerDeleteRollsBack(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeRepo{del: func(context.Context, int64) error {
		close(started)
		<-release
		return &client.Error{Kind: client.KindForbidden, Status: 403}
	}}
	d := loadedSeller(t, repo)

	done := make(chan error, 1)
	go func() { done <- d.Delete(context.Background(), 2) }()
	<-started
	assert.Equal(t, []int64{1, 3}, visibleIDs(d.Snapshot()), "delete must apply before the server answers")

	close(release)
	err := <-done
	assert.ErrorIs(t, err, client.ErrForbidden)

	s := d.Snapshot()
	assert.Equal(t, []int64{1, 2, 3}, visibleIDs(s), "listing must return to its position")
	assert.Equal(t, "You can only change your own listings", s.MutationMessage)
	assert.Equal(t, PhaseReady, s.Phase)
}

func TestSellerMarkSold(t *testing.T) {
	d := loadedSeller(t, &fakeRepo{})
	d.SetTab(filter.SellerSelling)

	require.NoError(t, d.MarkSold(context.Background(), 1))
	assert.Equal(t, []int64{2}, visibleIDs(d.Snapshot()))

	d.SetTab(filter.SellerSold)
	assert.Equal(t, []int64{1, 3}, visibleIDs(d.Snapshot()))
}

func TestSellerSetStatusFailureRestores(t *testing.T) {
	repo := &fakeRepo{updateStatus: func(context.Context, int64, model.Status) (model.Status, error) {
		return "", &client.Error{Kind: client.KindHTTP, Status: 500, Reason: "Failed to update listing status"}
	}}
	d := loadedSeller(t, repo)

	err := d.SetStatus(context.Background(), 3, model.StatusAvailable)
	require.Error(t, err)
	s := d.Snapshot()
	assert.Equal(t, model.StatusSold, s.Listings[2].Status)
	assert.Equal(t, "Failed to update listing status", s.MutationMessage)

	assert.ErrorIs(t, d.SetStatus(context.Background(), 1, model.StatusPending), client.ErrInvalid)
}

func TestSellerSaveUsesServerCopy(t *testing.T) {
	repo := &fakeRepo{update: func(_ context.Context, id int64, p client.ListingPatch) (*model.Listing, error) {
		l := sellerListings()[0]
		p.Apply(&l)
		l.Description = "normalized by server"
		return &l, nil
	}}
	d := loadedSeller(t, repo)

	title := "Desk Lamp"
	require.NoError(t, d.Save(context.Background(), 1, client.ListingPatch{Title: &title}))

	got := d.Snapshot().Listings[0]
	assert.Equal(t, "Desk Lamp", got.Title)
	assert.Equal(t, "normalized by server", got.Description)
}

func TestSellerOlderMutationCannotOverwriteNewer(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	calls := 0
	repo := &fakeRepo{update: func(_ context.Context, id int64, p client.ListingPatch) (*model.Listing, error) {
		calls++
		l := sellerListings()[0]
		p.Apply(&l)
		if calls == 1 {
			close(firstStarted)
			<-releaseFirst
		}
		return &l, nil
	}}
	d := loadedSeller(t, repo)
	ctx := context.Background()

	first, second := "First", "Second"
	done := make(chan error, 1)
	go func() { done <- d.Save(ctx, 1, client.ListingPatch{Title: &first}) }()
	<-firstStarted

	require.NoError(t, d.Save(ctx, 1, client.ListingPatch{Title: &second}))
	close(releaseFirst)
	require.NoError(t, <-done)

	assert.Equal(t, "Second", d.Snapshot().Listings[0].Title)
}

func TestSellerOverlappingFailuresRestoreOriginal(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	repo := &fakeRepo{update: func(_ context.Context, id int64, p client.ListingPatch) (*model.Listing, error) {
		if *p.Title == "First" {
			close(firstStarted)
			<-releaseFirst
		}
		return nil, &client.Error{Kind: client.KindHTTP, Status: 500, Reason: "Failed to update listing"}
	}}
	d := loadedSeller(t, repo)
	ctx := context.Background()

	first, second := "First", "Second"
	done := make(chan error, 1)
	go func() { done <- d.Save(ctx, 1, client.ListingPatch{Title: &first}) }()
	<-firstStarted

	require.Error(t, d.Save(ctx, 1, client.ListingPatch{Title: &second}))
	assert.Equal(t, "First", d.Snapshot().Listings[0].Title, "the older edit is still pending")

	close(releaseFirst)
	require.Error(t, <-done)
	assert.Equal(t, "Lamp", d.Snapshot().Listings[0].Title)
}

func TestSellerLateStatusConfirmationIsIgnored(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	repo := &fakeRepo{updateStatus: func(_ context.Context, id int64, s model.Status) (model.Status, error) {
		if s == model.StatusSold {
			close(firstStarted)
			<-releaseFirst
		}
		return s, nil
	}}
	d := loadedSeller(t, repo)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- d.MarkSold(ctx, 1) }()
	<-firstStarted

	require.NoError(t, d.SetStatus(ctx, 1, model.StatusAvailable))
	close(releaseFirst)
	require.NoError(t, <-done)

	assert.Equal(t, model.StatusAvailable, d.Snapshot().Listings[0].Status)
}

func TestBuyerTabs(t *testing.T) {
	repo := &fakeRepo{
		buyerListings: func(_ context.Context, uid int64) ([]model.Listing, error) {
			return []model.Listing{
				{ID: 4, BuyerID: buyerOf(uid), Status: model.StatusPending},
				{ID: 5, BuyerID: buyerOf(uid), Status: model.StatusSold},
			}, nil
		},
		listHearted: func(context.Context) []model.Listing {
			return []model.Listing{{ID: 8, Status: model.StatusAvailable}, {ID: 9, Status: model.StatusAvailable}}
		},
	}
	h := hearts.New(repo, nil)
	d := NewBuyerDashboard(repo, user(3), h)
	defer d.Close()
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	assert.Equal(t, []int64{4, 5}, visibleIDs(d.Snapshot()))

	require.NoError(t, d.SetTab(ctx, filter.BuyerPending))
	assert.Equal(t, []int64{4}, visibleIDs(d.Snapshot()))
	require.NoError(t, d.SetTab(ctx, filter.BuyerPurchased))
	assert.Equal(t, []int64{5}, visibleIDs(d.Snapshot()))
	assert.Equal(t, []string{"BuyerListings"}, repo.Calls(), "tabs over the same data must not refetch")

	require.NoError(t, d.SetTab(ctx, filter.BuyerHearted))
	assert.Equal(t, []int64{8, 9}, visibleIDs(d.Snapshot()))

	got, err := d.ToggleHeart(ctx, 8)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, []int64{9}, visibleIDs(d.Snapshot()), "unhearted listing must leave the hearted tab")
}

func TestBuyerHeartedEmptyMessage(t *testing.T) {
	repo := &fakeRepo{}
	d := NewBuyerDashboard(repo, user(3), hearts.New(repo, nil))
	defer d.Close()

	require.NoError(t, d.SetTab(context.Background(), filter.BuyerHearted))
	assert.Equal(t, "You haven't hearted any items yet", d.Snapshot().EmptyMessage)
}

func TestDetailBuyGuardAndRollback(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeRepo{
		get: func(_ context.Context, id int64) (*model.Listing, error) {
			return &model.Listing{ID: id, SellerID: 1, Status: model.StatusAvailable}, nil
		},
		buy: func(context.Context, int64, client.BuyRequest) (*client.BuyResult, error) {
			close(started)
			<-release
			return nil, &client.Error{Kind: client.KindHTTP, Status: 500, Reason: "Failed to send notification"}
		},
	}
	d := NewDetail(repo, user(2), nil, 10)
	defer d.Close()
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	assert.True(t, d.Snapshot().CanBuy)

	done := make(chan error, 1)
	go func() {
		_, err := d.RequestToBuy(ctx, "", "")
		done <- err
	}()
	<-started

	s := d.Snapshot()
	assert.True(t, s.Buying)
	assert.False(t, s.CanBuy)
	assert.Equal(t, model.StatusPending, s.Listing.Status)
	assert.True(t, s.Listing.BoughtBy(2))

	_, err := d.RequestToBuy(ctx, "", "")
	assert.ErrorIs(t, err, client.ErrRequestInFlight)

	close(release)
	require.Error(t, <-done)

	s = d.Snapshot()
	assert.False(t, s.Buying)
	assert.Equal(t, model.StatusAvailable, s.Listing.Status)
	assert.Nil(t, s.Listing.BuyerID)
	assert.Equal(t, "Failed to send notification", s.Notice)
	assert.Equal(t, 1, countCalls(repo, "RequestToBuy"))
}

func TestDetailBuyPartialSuccess(t *testing.T) {
	repo := &fakeRepo{
		get: func(_ context.Context, id int64) (*model.Listing, error) {
			return &model.Listing{ID: id, SellerID: 1, Status: model.StatusAvailable}, nil
		},
		buy: func(_ context.Context, id int64, br client.BuyRequest) (*client.BuyResult, error) {
			res := &client.BuyResult{Warning: "smtp down"}
			res.Listing.Status = model.StatusPending
			return res, nil
		},
	}
	d := NewDetail(repo, user(2), nil, 10)
	defer d.Close()
	ctx := context.Background()
	require.NoError(t, d.Load(ctx))

	res, err := d.RequestToBuy(ctx, "hi", "me@x.edu")
	require.NoError(t, err)
	assert.True(t, res.Partial())

	s := d.Snapshot()
	assert.Equal(t, model.StatusPending, s.Listing.Status)
	assert.Equal(t, "Request recorded, but the seller could not be emailed", s.Notice)
	assert.False(t, s.CanBuy)
}

func TestDetailBuyRejections(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{get: func(_ context.Context, id int64) (*model.Listing, error) {
		return &model.Listing{ID: id, SellerID: 2, Status: model.StatusAvailable}, nil
	}}

	own := NewDetail(repo, user(2), nil, 1)
	defer own.Close()
	require.NoError(t, own.Load(ctx))
	assert.True(t, own.Snapshot().IsOwner)
	_, err := own.RequestToBuy(ctx, "", "")
	assert.ErrorIs(t, err, client.ErrInvalid)

	anon := NewDetail(repo, nil, nil, 1)
	defer anon.Close()
	require.NoError(t, anon.Load(ctx))
	_, err = anon.RequestToBuy(ctx, "", "")
	assert.ErrorIs(t, err, client.ErrAuthRequired)
	_, err = anon.ToggleHeart(ctx)
	assert.ErrorIs(t, err, client.ErrAuthRequired)

	assert.Zero(t, countCalls(repo, "RequestToBuy"))
}

func TestDetailNotFound(t *testing.T) {
	repo := &fakeRepo{get: func(context.Context, int64) (*model.Listing, error) {
		return nil, &client.Error{Kind: client.KindNotFound, Status: 404}
	}}
	d := NewDetail(repo, nil, nil, 404)
	defer d.Close()

	assert.ErrorIs(t, d.Load(context.Background()), client.ErrNotFound)
	s := d.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, "This listing could not be found", s.Message)
}

func countCalls(repo *fakeRepo, name string) int {
	n := 0
	for _, c := range repo.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func TestEditorCreate(t *testing.T) {
	var sent client.CreateListing
	repo := &fakeRepo{create: func(_ context.Context, d client.CreateListing) (*model.Listing, error) {
		sent = d
		return &model.Listing{ID: 11, Title: d.Title, Images: d.Images, Status: model.StatusAvailable}, nil
	}}
	e := NewEditor(repo, user(5))

	l, err := e.Create(context.Background(), Draft{
		Title:     " Lamp ",
		Price:     "$12.5",
		Category:  "Furniture",
		Condition: "like new",
		Files:     []imaging.File{{Name: "a.jpg"}, {Name: "b.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), l.ID)
	assert.Equal(t, []string{"UploadImages", "Create"}, repo.Calls())
	assert.Equal(t, client.CreateListing{
		Title:     "Lamp",
		Price:     1250,
		Category:  model.CategoryFurniture,
		Condition: model.ConditionLikeNew,
		Images:    []string{"https://img.test/a.jpg", "https://img.test/b.jpg"},
		UserID:    5,
	}, sent)
	assert.Equal(t, int64(11), e.Snapshot().Saved.ID)
}

func TestEditorUploadFailureCreatesNothing(t *testing.T) {
	repo := &fakeRepo{upload: func(context.Context, []imaging.File) ([]string, error) {
		return nil, &client.Error{Kind: client.KindInvalid, Reason: "unsupported image type"}
	}}
	e := NewEditor(repo, user(5))

	_, err := e.Create(context.Background(), Draft{
		Title: "Lamp", Price: "5", Category: "other", Condition: "good",
		Files: []imaging.File{{Name: "x.gif"}},
	})
	assert.ErrorIs(t, err, client.ErrInvalid)
	assert.Equal(t, []string{"UploadImages"}, repo.Calls())
	assert.Equal(t, "Unsupported image type", e.Snapshot().Message)
	assert.False(t, e.Snapshot().Saving)
}

func TestEditorValidation(t *testing.T) {
	repo := &fakeRepo{}
	e := NewEditor(repo, user(5))
	ctx := context.Background()

	tests := []struct {
		name  string
		draft Draft
	}{
		{"no title", Draft{Price: "1", Category: "books", Condition: "new"}},
		{"bad price", Draft{Title: "x", Price: "cheap", Category: "books", Condition: "new"}},
		{"negative", Draft{Title: "x", Price: "-1", Category: "books", Condition: "new"}},
		{"huge", Draft{Title: "x", Price: "1e20", Category: "books", Condition: "new"}},
		{"category", Draft{Title: "x", Price: "1", Category: "toys", Condition: "new"}},
		{"condition", Draft{Title: "x", Price: "1", Category: "books", Condition: "mint"}},
	}
	for _, tt := range tests {
		_, err := e.Create(ctx, tt.draft)
		assert.ErrorIs(t, err, client.ErrInvalid, tt.name)
	}
	assert.Empty(t, repo.Calls())
}

func TestEditorEditSendsOnlyChanges(t *testing.T) {
	var sent client.ListingPatch
	repo := &fakeRepo{update: func(_ context.Context, id int64, p client.ListingPatch) (*model.Listing, error) {
		sent = p
		return &model.Listing{ID: id}, nil
	}}
	e := NewEditor(repo, user(5))
	ctx := context.Background()

	orig := model.Listing{
		ID: 3, Title: "Lamp", Description: "Warm", Price: 1500,
		Category: model.CategoryFurniture, Condition: model.ConditionGood,
		Images: []string{"u1"},
	}

	d := DraftFrom(orig)
	d.Price = "20"
	d.Files = []imaging.File{{Name: "new.png"}}
	_, err := e.Edit(ctx, orig, d)
	require.NoError(t, err)

	require.NotNil(t, sent.Price)
	assert.Equal(t, model.Price(2000), *sent.Price)
	assert.Nil(t, sent.Title)
	assert.Nil(t, sent.Category)
	assert.Equal(t, []string{"u1", "https://img.test/new.png"}, sent.Images)

	// Nothing changed: no request.
	before := len(repo.Calls())
	_, err = e.Edit(ctx, orig, DraftFrom(orig))
	require.NoError(t, err)
	assert.Len(t, repo.Calls(), before)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{client.ErrRequestInFlight, "Your request is already being sent"},
		{&client.Error{Kind: client.KindAuthRequired}, "Please log in to continue"},
		{&client.Error{Kind: client.KindAlreadyHearted, Status: 400}, "You already hearted this listing"},
		{&client.Error{Kind: client.KindNotAvailable, Status: 400}, "This listing is no longer available"},
		{&client.Error{Kind: client.KindHTTP, Status: 401}, "Your session has expired, please log in again"},
		{&client.Error{Kind: client.KindHTTP, Status: 502}, "Something went wrong (status 502)"},
		{&client.Error{Kind: client.KindInvalid, Reason: "title is required"}, "Title is required"},
		{errors.New("boom"), "Boom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}
