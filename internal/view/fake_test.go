package view

import (
	"context"
	"sync"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/imaging"
	"github.com/erazemk/tigerpop/internal/model"
)

// fakeRepo is a Repository whose behaviour is set per test. Unset hooks
// succeed with empty results.
type fakeRepo struct {
	mu    sync.Mutex
	calls []string

	list          func(context.Context, client.ListFilters) ([]model.Listing, error)
	get           func(context.Context, int64) (*model.Listing, error)
	create        func(context.Context, client.CreateListing) (*model.Listing, error)
	update        func(context.Context, int64, client.ListingPatch) (*model.Listing, error)
	updateStatus  func(context.Context, int64, model.Status) (model.Status, error)
	del           func(context.Context, int64) error
	upload        func(context.Context, []imaging.File) ([]string, error)
	userListings  func(context.Context, int64) ([]model.Listing, error)
	buyerListings func(context.Context, int64) ([]model.Listing, error)
	buy           func(context.Context, int64, client.BuyRequest) (*client.BuyResult, error)

	heart       func(context.Context, int64) error
	unheart     func(context.Context, int64) error
	listHearted func(context.Context) []model.Listing
}

func (f *fakeRepo) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRepo) List(ctx context.Context, lf client.ListFilters) ([]model.Listing, error) {
	f.record("List")
	if f.list == nil {
		return []model.Listing{}, nil
	}
	return f.list(ctx, lf)
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (*model.Listing, error) {
	f.record("Get")
	if f.get == nil {
		return &model.Listing{ID: id, Status: model.StatusAvailable}, nil
	}
	return f.get(ctx, id)
}

func (f *fakeRepo) Create(ctx context.Context, d client.CreateListing) (*model.Listing, error) {
	f.record("Create")
	if f.create == nil {
		return &model.Listing{ID: 1, Title: d.Title, Status: model.StatusAvailable}, nil
	}
	return f.create(ctx, d)
}

func (f *fakeRepo) Update(ctx context.Context, id int64, p client.ListingPatch) (*model.Listing, error) {
	f.record("Update")
	if f.update == nil {
		return nil, nil
	}
	return f.update(ctx, id, p)
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, s model.Status) (model.Status, error) {
	f.record("UpdateStatus")
	if f.updateStatus == nil {
		return s, nil
	}
	return f.updateStatus(ctx, id, s)
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.record("Delete")
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

func (f *fakeRepo) UploadImages(ctx context.Context, files []imaging.File) ([]string, error) {
	f.record("UploadImages")
	if f.upload == nil {
		urls := make([]string, len(files))
		for i, file := range files {
			urls[i] = "https://img.test/" + file.Name
		}
		return urls, nil
	}
	return f.upload(ctx, files)
}

func (f *fakeRepo) UserListings(ctx context.Context, id int64) ([]model.Listing, error) {
	f.record("UserListings")
	if f.userListings == nil {
		return []model.Listing{}, nil
	}
	return f.userListings(ctx, id)
}

func (f *fakeRepo) BuyerListings(ctx context.Context, id int64) ([]model.Listing, error) {
	f.record("BuyerListings")
	if f.buyerListings == nil {
		return []model.Listing{}, nil
	}
	return f.buyerListings(ctx, id)
}

func (f *fakeRepo) RequestToBuy(ctx context.Context, id int64, br client.BuyRequest) (*client.BuyResult, error) {
	f.record("RequestToBuy")
	if f.buy == nil {
		res := &client.BuyResult{Message: "Purchase request sent successfully"}
		res.Listing.ID = id
		res.Listing.Status = model.StatusPending
		return res, nil
	}
	return f.buy(ctx, id, br)
}

func (f *fakeRepo) Heart(ctx context.Context, id int64) error {
	f.record("Heart")
	if f.heart == nil {
		return nil
	}
	return f.heart(ctx, id)
}

func (f *fakeRepo) Unheart(ctx context.Context, id int64) error {
	f.record("Unheart")
	if f.unheart == nil {
		return nil
	}
	return f.unheart(ctx, id)
}

func (f *fakeRepo) ListHearted(ctx context.Context) []model.Listing {
	f.record("ListHearted")
	if f.listHearted == nil {
		return []model.Listing{}
	}
	return f.listHearted(ctx)
}

type user int64

func (u user) UserID() (int64, bool) { return int64(u), u != 0 }

func buyerOf(id int64) *int64 { return &id }
