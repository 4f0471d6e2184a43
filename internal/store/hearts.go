package store

import (
	"context"
	"database/sql"
	"fmt"
)

// HeartListing records that userID hearted listingID. It reports false if
// the heart already existed.
func HeartListing(ctx context.Context, db *sql.DB, userID, listingID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hearted_listings (user_id, listing_id) VALUES (?, ?)`,
		userID, listingID,
	)
	if err != nil {
		return false, fmt.Errorf("hearting listing: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking heart insert: %w", err)
	}
	return n > 0, nil
}

// UnheartListing removes a heart. It reports false if there was none.
func UnheartListing(ctx context.Context, db *sql.DB, userID, listingID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM hearted_listings WHERE user_id = ? AND listing_id = ?`,
		userID, listingID,
	)
	if err != nil {
		return false, fmt.Errorf("unhearting listing: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking heart delete: %w", err)
	}
	return n > 0, nil
}
