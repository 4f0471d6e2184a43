package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PurchaseRequest is a buyer's recorded intent to buy a listing.
type PurchaseRequest struct {
	ID             int64
	ListingID      int64
	BuyerID        int64
	Message        string
	ContactInfo    string
	IdempotencyKey string
}

// RecordPurchaseRequest stores a request and marks the listing pending for
// the buyer. It reports false when a request with the same idempotency key
// was already recorded, in which case nothing changes.
func RecordPurchaseRequest(ctx context.Context, db *sql.DB, r PurchaseRequest) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO purchase_requests (listing_id, buyer_id, message, contact_info, idempotency_key)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ListingID, r.BuyerID, r.Message, r.ContactInfo, nullIfEmpty(r.IdempotencyKey),
	)
	if err != nil {
		return false, fmt.Errorf("recording purchase request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking purchase insert: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE listings SET status = 'pending', buyer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.BuyerID, r.ListingID,
	)
	if err != nil {
		return false, fmt.Errorf("marking listing pending: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing purchase request: %w", err)
	}
	return true, nil
}

// CountPurchaseRequests returns how many requests were recorded for a listing.
func CountPurchaseRequests(ctx context.Context, db *sql.DB, listingID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchase_requests WHERE listing_id = ?`, listingID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting purchase requests: %w", err)
	}
	return n, nil
}

// FindPurchaseRequest returns the request recorded under an idempotency key,
// or nil if there is none.
func FindPurchaseRequest(ctx context.Context, db *sql.DB, key string) (*PurchaseRequest, error) {
	if key == "" {
		return nil, nil
	}
	r := &PurchaseRequest{IdempotencyKey: key}
	err := db.QueryRowContext(ctx,
		`SELECT id, listing_id, buyer_id, message, contact_info
		 FROM purchase_requests WHERE idempotency_key = ?`, key,
	).Scan(&r.ID, &r.ListingID, &r.BuyerID, &r.Message, &r.ContactInfo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding purchase request: %w", err)
	}
	return r, nil
}
