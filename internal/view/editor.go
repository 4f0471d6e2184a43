package view

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/imaging"
	"github.com/erazemk/tigerpop/internal/model"
)

// Draft is the raw content of the create/edit form.
type Draft struct {
	Title       string
	Description string
	Price       string // as typed, e.g. "12.50" or "$12.50"
	Category    string
	Condition   string
	Images      []string       // URLs already uploaded, in order
	Files       []imaging.File // new images, appended after Images
}

// DraftFrom fills a draft from an existing listing.
func DraftFrom(l model.Listing) Draft {
	return Draft{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price.Decimal(),
		Category:    string(l.Category),
		Condition:   string(l.Condition),
		Images:      slices.Clone(l.Images),
	}
}

type parsedDraft struct {
	title       string
	description string
	price       model.Price
	category    model.Category
	condition   model.Condition
}

func (d Draft) parse(op string) (parsedDraft, error) {
	var p parsedDraft
	p.title = strings.TrimSpace(d.Title)
	p.description = strings.TrimSpace(d.Description)
	if p.title == "" {
		return p, invalidDraft(op, "title is required")
	}

	price, err := model.ParsePrice(d.Price)
	if errors.Is(err, model.ErrPriceRange) {
		return p, invalidDraft(op, "price is too large")
	}
	if err != nil {
		return p, invalidDraft(op, "price must be a number")
	}
	if price < 0 {
		return p, invalidDraft(op, "price must not be negative")
	}
	p.price = price

	if p.category, err = model.ParseCategory(d.Category); err != nil {
		return p, invalidDraft(op, "choose a category")
	}
	if p.condition, err = model.ParseCondition(d.Condition); err != nil {
		return p, invalidDraft(op, "choose a condition")
	}
	return p, nil
}

// diff returns the fields of p and images that differ from orig.
func (p parsedDraft) diff(orig model.Listing, images []string) client.ListingPatch {
	var patch client.ListingPatch
	if p.title != orig.Title {
		patch.Title = &p.title
	}
	if p.description != orig.Description {
		patch.Description = &p.description
	}
	if p.price != orig.Price {
		patch.Price = &p.price
	}
	if p.category != orig.Category {
		patch.Category = &p.category
	}
	if p.condition != orig.Condition {
		patch.Condition = &p.condition
	}
	if !slices.Equal(images, orig.Images) {
		patch.Images = images
	}
	return patch
}

func invalidDraft(op, reason string) error {
	return &client.Error{Kind: client.KindInvalid, Op: op, Reason: reason}
}

// EditorSnapshot is an immutable copy of the editor state.
type EditorSnapshot struct {
	Saving  bool
	Saved   *model.Listing
	Err     error
	Message string
}

// Editor creates and edits listings. New images are uploaded first; the
// listing is only written once every upload succeeded.
type Editor struct {
	repo    Repository
	session Session
	logger  *zap.Logger

	mu     sync.Mutex
	saving bool
	saved  *model.Listing
	err    error
}

// NewEditor creates an editor.
func NewEditor(repo Repository, s Session, opts ...Option) *Editor {
	o := buildOptions(opts)
	return &Editor{repo: repo, session: s, logger: o.logger.Named("editor")}
}

// Create validates the draft, uploads its files and creates the listing.
func (e *Editor) Create(ctx context.Context, d Draft) (*model.Listing, error) {
	const op = "create listing"
	uid, err := requireUser(e.session, op)
	if err != nil {
		return nil, e.reject(err)
	}
	p, err := d.parse(op)
	if err != nil {
		return nil, e.reject(err)
	}
	if !e.begin() {
		return nil, e.busy()
	}

	images, err := e.upload(ctx, d)
	if err != nil {
		return nil, e.finish(nil, err)
	}

	l, err := e.repo.Create(ctx, client.CreateListing{
		Title:       p.title,
		Description: p.description,
		Price:       p.price,
		Category:    p.category,
		Condition:   p.condition,
		Images:      images,
		UserID:      uid,
	})
	if err == nil {
		e.logger.Info("listing created", zap.Int64("listing_id", l.ID))
	}
	return l, e.finish(l, err)
}

// Edit sends only the fields of d that differ from orig.
func (e *Editor) Edit(ctx context.Context, orig model.Listing, d Draft) (*model.Listing, error) {
	const op = "update listing"
	if _, err := requireUser(e.session, op); err != nil {
		return nil, e.reject(err)
	}
	p, err := d.parse(op)
	if err != nil {
		return nil, e.reject(err)
	}
	if !e.begin() {
		return nil, e.busy()
	}

	images, err := e.upload(ctx, d)
	if err != nil {
		return nil, e.finish(nil, err)
	}

	patch := p.diff(orig, images)
	if patch.Empty() {
		cp := orig.Clone()
		return &cp, e.finish(&cp, nil)
	}

	l, err := e.repo.Update(ctx, orig.ID, patch)
	return l, e.finish(l, err)
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() EditorSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := EditorSnapshot{Saving: e.saving, Err: e.err, Message: Message(e.err)}
	if e.saved != nil {
		cp := e.saved.Clone()
		s.Saved = &cp
	}
	return s
}

func (e *Editor) upload(ctx context.Context, d Draft) ([]string, error) {
	images := append([]string{}, d.Images...)
	if len(d.Files) == 0 {
		return images, nil
	}
	urls, err := e.repo.UploadImages(ctx, d.Files)
	if err != nil {
		return nil, err
	}
	return append(images, urls...), nil
}

func (e *Editor) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return false
	}
	e.saving = true
	e.err = nil
	return true
}

func (e *Editor) busy() error {
	return &client.Error{Kind: client.KindInvalid, Op: "save listing", Reason: "already saving"}
}

// reject records an error found before anything was sent.
func (e *Editor) reject(err error) error {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return err
}

func (e *Editor) finish(l *model.Listing, err error) error {
	e.mu.Lock()
	e.saving = false
	e.err = err
	if err == nil {
		e.saved = l
	}
	e.mu.Unlock()
	return err
}
