package devserver

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/store"
)

// Notification is what a seller is told when someone asks to buy.
type Notification struct {
	ListingID    int64
	Title        string
	Price        model.Price
	Recipient    string
	BuyerContact string
	Message      string
}

// Notifier delivers seller notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogNotifier logs notifications instead of mailing them.
func LogNotifier(logger *zap.Logger) Notifier {
	return NotifierFunc(func(_ context.Context, n Notification) error {
		logger.Info("seller notification",
			zap.Int64("listing", n.ListingID),
			zap.String("title", n.Title),
			zap.String("to", n.Recipient),
			zap.String("contact", n.BuyerContact),
			zap.String("message", n.Message),
		)
		return nil
	})
}

// PurchaseHandler handles request-to-buy.
type PurchaseHandler struct {
	DB       *sql.DB
	Notifier Notifier
	Logger   *zap.Logger
}

type buyRequest struct {
	BuyerID     int64  `json:"buyer_id"`
	Message     string `json:"message"`
	ContactInfo string `json:"contact_info"`
}

type buyResponse struct {
	Message string         `json:"message"`
	Error   string         `json:"error,omitempty"`
	Listing statusResponse `json:"listing"`
}

// Buy handles POST /api/listing/{id}/buy/. A repeated Idempotency-Key
// replays the original outcome without recording or notifying again.
func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	l, ok := loadListing(w, r, h.DB, h.Logger)
	if !ok {
		return
	}

	var req buyRequest
	if err := decodeJSON(r, &req); err != nil || req.BuyerID <= 0 {
		jsonError(w, http.StatusBadRequest, "Invalid buyer ID format")
		return
	}
	if req.BuyerID != userID(r) {
		jsonError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	prior, err := store.FindPurchaseRequest(r.Context(), h.DB, key)
	if err != nil {
		h.Logger.Error("finding purchase request", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if prior != nil {
		if prior.ListingID != l.ID || prior.BuyerID != req.BuyerID {
			jsonError(w, http.StatusBadRequest, "Idempotency key reused for a different request")
			return
		}
		h.replay(w, l)
		return
	}

	if l.SellerID == req.BuyerID {
		jsonError(w, http.StatusBadRequest, "You cannot buy your own listing")
		return
	}
	if l.Status != model.StatusAvailable {
		jsonError(w, http.StatusBadRequest, reasonNotAvailable)
		return
	}

	recorded, err := store.RecordPurchaseRequest(r.Context(), h.DB, store.PurchaseRequest{
		ListingID:      l.ID,
		BuyerID:        req.BuyerID,
		Message:        req.Message,
		ContactInfo:    req.ContactInfo,
		IdempotencyKey: key,
	})
	if err != nil {
		h.Logger.Error("recording purchase request", zap.Int64("id", l.ID), zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !recorded {
		h.replay(w, l)
		return
	}

	done := statusResponse{ID: l.ID, Status: model.StatusPending}
	if err := h.notify(r.Context(), l, req); err != nil {
		h.Logger.Error("notifying seller", zap.Int64("id", l.ID), zap.Error(err))
		jsonResponse(w, http.StatusMultiStatus, buyResponse{
			Message: "Purchase request recorded, but failed to send email",
			Error:   err.Error(),
			Listing: done,
		})
		return
	}

	jsonResponse(w, http.StatusOK, buyResponse{
		Message: "Purchase request sent successfully",
		Listing: done,
	})
}

func (h *PurchaseHandler) replay(w http.ResponseWriter, l *model.Listing) {
	h.Logger.Info("purchase request replayed", zap.Int64("id", l.ID))
	jsonResponse(w, http.StatusOK, buyResponse{
		Message: "Purchase request sent successfully",
		Listing: statusResponse{ID: l.ID, Status: l.Status},
	})
}

// notify tells the seller, preferring their email and falling back to the
// netid address. A seller with neither is logged and skipped.
func (h *PurchaseHandler) notify(ctx context.Context, l *model.Listing, req buyRequest) error {
	seller, err := store.GetUser(ctx, h.DB, l.SellerID)
	if err != nil {
		return err
	}
	recipient := ""
	switch {
	case seller == nil:
	case seller.Email != "":
		recipient = seller.Email
	case seller.NetID != "":
		recipient = seller.NetID + "@princeton.edu"
	}
	if recipient == "" {
		h.Logger.Warn("seller has no email address", zap.Int64("seller", l.SellerID))
		return nil
	}

	contact := req.ContactInfo
	if buyer, err := store.GetUser(ctx, h.DB, req.BuyerID); err == nil && buyer != nil {
		switch {
		case buyer.Email != "":
			contact = buyer.Email
		case buyer.NetID != "":
			contact = buyer.NetID + "@princeton.edu"
		}
	}
	if contact == "" {
		contact = "No contact provided"
	}

	return h.Notifier.Notify(ctx, Notification{
		ListingID:    l.ID,
		Title:        l.Title,
		Price:        l.Price,
		Recipient:    recipient,
		BuyerContact: contact,
		Message:      req.Message,
	})
}
