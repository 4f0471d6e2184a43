package devserver

import (
	"database/sql"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/store"
)

// ListingsHandler handles listing CRUD and status endpoints.
type ListingsHandler struct {
	DB     *sql.DB
	Logger *zap.Logger
}

type createListingRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       *model.Price    `json:"price"`
	Category    model.Category  `json:"category"`
	Condition   model.Condition `json:"condition"`
	Images      []string        `json:"images"`
	UserID      int64           `json:"user_id"`
}

type updateListingRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *model.Price     `json:"price"`
	Category    *model.Category  `json:"category"`
	Condition   *model.Condition `json:"condition"`
	Images      *[]string        `json:"images"`
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

type statusResponse struct {
	ID     int64        `json:"id"`
	Status model.Status `json:"status"`
}

// List handles GET /api/listing/.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ListingFilter{
		Status:      model.Status(q.Get("status")),
		Category:    q.Get("category"),
		Search:      q.Get("search"),
		IncludeSold: q.Get("include_sold") == "true",
	}
	if f.Status != "" && !f.Status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	var ok bool
	if f.MaxPrice, ok = queryPrice(r, "max_price"); !ok {
		jsonError(w, http.StatusBadRequest, "invalid max_price")
		return
	}
	if f.MinPrice, ok = queryPrice(r, "min_price"); !ok {
		jsonError(w, http.StatusBadRequest, "invalid min_price")
		return
	}

	h.respondList(w, r, f, "Failed to fetch listings")
}

// UserListings handles GET /api/listing/user/?user_id=N.
func (h *ListingsHandler) UserListings(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "user_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	h.respondList(w, r, store.ListingFilter{SellerID: id}, "Failed to fetch user listings")
}

// BuyerListings handles GET /api/listing/buyer?buyer_id=N.
func (h *ListingsHandler) BuyerListings(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "buyer_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "buyer_id is required")
		return
	}
	h.respondList(w, r, store.ListingFilter{BuyerID: id}, "Failed to fetch buyer listings")
}

func (h *ListingsHandler) respondList(w http.ResponseWriter, r *http.Request, f store.ListingFilter, failure string) {
	listings, err := store.ListListings(r.Context(), h.DB, f)
	if err != nil {
		h.Logger.Error("listing listings", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, failure)
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Categories handles GET /api/listing/categories/.
func (h *ListingsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories)
}

// Get handles GET /api/listing/{id}/.
func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, l)
}

// Create handles POST /api/listing/.
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Price == nil {
		jsonError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if *req.Price <= 0 {
		jsonError(w, http.StatusBadRequest, "Price must be greater than 0")
		return
	}
	owner := userID(r)
	if req.UserID != 0 && req.UserID != owner {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}
	if req.Condition == "" {
		req.Condition = model.ConditionGood
	}

	l, err := store.CreateListing(r.Context(), h.DB, &model.Listing{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Images:      req.Images,
		SellerID:    owner,
	})
	if err != nil {
		h.Logger.Error("creating listing", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	h.Logger.Info("listing created", zap.Int64("id", l.ID), zap.Int64("seller", owner))
	jsonResponse(w, http.StatusCreated, l)
}

// Update handles PUT /api/listing/{id}/.
func (h *ListingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req updateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		jsonError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		jsonError(w, http.StatusBadRequest, "Price must be greater than 0")
		return
	}

	patch := store.ListingPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
	}
	if req.Images != nil {
		patch.Images = *req.Images
		patch.SetImages = true
	}
	if err := store.UpdateListing(r.Context(), h.DB, l.ID, patch); err != nil {
		h.Logger.Error("updating listing", zap.Int64("id", l.ID), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to update listing")
		return
	}

	h.respondListing(w, r, l.ID, http.StatusOK)
}

// UpdateStatus handles PATCH /api/listing/{id}/status/.
func (h *ListingsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		jsonError(w, http.StatusBadRequest, "Status is required")
		return
	}
	if req.Status != l.Status && !model.CanTransition(l.Status, req.Status) {
		jsonError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	if err := store.SetListingStatus(r.Context(), h.DB, l.ID, req.Status, nil); err != nil {
		h.Logger.Error("setting status", zap.Int64("id", l.ID), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to update listing status")
		return
	}

	h.Logger.Info("listing status changed", zap.Int64("id", l.ID),
		zap.String("from", string(l.Status)), zap.String("to", string(req.Status)))
	jsonResponse(w, http.StatusOK, statusResponse{ID: l.ID, Status: req.Status})
}

// Delete handles DELETE /api/listing/{id}/?user_id=N.
func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if id, ok := queryID(r, "user_id"); ok && id != l.SellerID {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	if err := store.DeleteListing(r.Context(), h.DB, l.ID); err != nil {
		h.Logger.Error("deleting listing", zap.Int64("id", l.ID), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}

	h.Logger.Info("listing deleted", zap.Int64("id", l.ID))
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the {id} listing, writing 400/404/500 itself when it can't.
func (h *ListingsHandler) load(w http.ResponseWriter, r *http.Request) (*model.Listing, bool) {
	return loadListing(w, r, h.DB, h.Logger)
}

// loadOwned is load plus a check that the caller is the seller.
func (h *ListingsHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Listing, bool) {
	l, ok := h.load(w, r)
	if !ok {
		return nil, false
	}
	if l.SellerID != userID(r) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return nil, false
	}
	return l, true
}

func (h *ListingsHandler) respondListing(w http.ResponseWriter, r *http.Request, id int64, status int) {
	l, err := store.GetListing(r.Context(), h.DB, id)
	if err != nil || l == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	jsonResponse(w, status, l)
}

func loadListing(w http.ResponseWriter, r *http.Request, db *sql.DB, logger *zap.Logger) (*model.Listing, bool) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return nil, false
	}
	l, err := store.GetListing(r.Context(), db, id)
	if err != nil {
		logger.Error("getting listing", zap.Int64("id", id), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to fetch listing")
		return nil, false
	}
	if l == nil {
		jsonError(w, http.StatusNotFound, "Listing not found")
		return nil, false
	}
	return l, true
}

// queryPrice parses an optional decimal price parameter.
func queryPrice(r *http.Request, key string) (*model.Price, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, true
	}
	p, err := model.ParsePrice(s)
	if err != nil {
		return nil, false
	}
	return &p, true
}
