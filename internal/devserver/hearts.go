package devserver

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/store"
)

// Reasons sent in 400 bodies. The client matches the first two; keep them
// byte-identical.
const (
	reasonNotAvailable   = "Listing is not available"
	reasonAlreadyHearted = "Listing already hearted"
	reasonNotHearted     = "Listing not hearted"
)

// HeartsHandler handles the per-user heart endpoints.
type HeartsHandler struct {
	DB     *sql.DB
	Logger *zap.Logger
}

// Heart handles POST /api/listing/{id}/heart/.
func (h *HeartsHandler) Heart(w http.ResponseWriter, r *http.Request) {
	l, ok := loadListing(w, r, h.DB, h.Logger)
	if !ok {
		return
	}
	if l.Status != model.StatusAvailable {
		jsonError(w, http.StatusBadRequest, reasonNotAvailable)
		return
	}

	added, err := store.HeartListing(r.Context(), h.DB, userID(r), l.ID)
	if err != nil {
		h.Logger.Error("hearting listing", zap.Int64("id", l.ID), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to heart listing")
		return
	}
	if !added {
		jsonError(w, http.StatusBadRequest, reasonAlreadyHearted)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Listing hearted successfully"})
}

// Unheart handles DELETE /api/listing/{id}/heart/.
func (h *HeartsHandler) Unheart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	removed, err := store.UnheartListing(r.Context(), h.DB, userID(r), id)
	if err != nil {
		h.Logger.Error("unhearting listing", zap.Int64("id", id), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to unheart listing")
		return
	}
	if !removed {
		jsonError(w, http.StatusBadRequest, reasonNotHearted)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Listing unhearted successfully"})
}

// List handles GET /api/listing/hearted/.
func (h *HeartsHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListHeartedListings(r.Context(), h.DB, userID(r))
	if err != nil {
		h.Logger.Error("listing hearted", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "Failed to fetch hearted listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}
