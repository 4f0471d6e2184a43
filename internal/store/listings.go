package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/tigerpop/internal/model"
)

// ListingFilter narrows ListListings. Zero values mean "no filter".
type ListingFilter struct {
	Status      model.Status
	Category    string
	MaxPrice    *model.Price
	MinPrice    *model.Price
	Search      string
	IncludeSold bool
	SellerID    int64
	BuyerID     int64
}

// ListingPatch carries the fields of a partial update. Nil fields are left unchanged.
type ListingPatch struct {
	Title       *string
	Description *string
	Price       *model.Price
	Category    *model.Category
	Condition   *model.Condition
	Images      []string
	SetImages   bool
}

const listingColumns = `l.id, l.title, l.description, l.price_cents, l.category, l.condition,
	l.status, l.user_id, u.netid, l.buyer_id, l.created_at, l.updated_at`

const listingFrom = ` FROM listings l LEFT JOIN users u ON u.id = l.user_id`

func scanListing(row interface{ Scan(...any) error }) (*model.Listing, error) {
	l := &model.Listing{}
	var netid sql.NullString
	var buyer sql.NullInt64
	var created, updated time.Time
	var price int64
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &price, &l.Category, &l.Condition,
		&l.Status, &l.SellerID, &netid, &buyer, &created, &updated); err != nil {
		return nil, err
	}
	l.Price = model.Price(price)
	l.SellerNetID = netid.String
	if buyer.Valid {
		id := buyer.Int64
		l.BuyerID = &id
	}
	l.CreatedAt = model.Timestamp{Time: created}
	l.UpdatedAt = model.Timestamp{Time: updated}
	l.Images = []string{}
	return l, nil
}

// CreateListing inserts a listing with status available and its images in order.
func CreateListing(ctx context.Context, db *sql.DB, l *model.Listing) (*model.Listing, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO listings (title, description, price_cents, category, condition, status, user_id)
		 VALUES (?, ?, ?, ?, ?, 'available', ?)`,
		l.Title, l.Description, int64(l.Price), l.Category, l.Condition, l.SellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting listing id: %w", err)
	}

	if err := replaceImages(ctx, tx, id, l.Images); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing listing: %w", err)
	}

	return GetListing(ctx, db, id)
}

func replaceImages(ctx context.Context, tx *sql.Tx, listingID int64, urls []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = ?`, listingID); err != nil {
		return fmt.Errorf("clearing images: %w", err)
	}
	for i, u := range urls {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO listing_images (listing_id, position, url) VALUES (?, ?, ?)`,
			listingID, i, u,
		)
		if err != nil {
			return fmt.Errorf("adding image %d: %w", i, err)
		}
	}
	return nil
}

// GetListing returns a listing by ID, or nil if it does not exist.
func GetListing(ctx context.Context, db *sql.DB, id int64) (*model.Listing, error) {
	l, err := scanListing(db.QueryRowContext(ctx,
		`SELECT `+listingColumns+listingFrom+` WHERE l.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}

	if err := loadImages(ctx, db, []*model.Listing{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// ListListings returns listings matching f, newest first.
func ListListings(ctx context.Context, db *sql.DB, f ListingFilter) ([]model.Listing, error) {
	var where []string
	var args []any

	switch {
	case f.Status != "":
		where = append(where, "l.status = ?")
		args = append(args, f.Status)
	case !f.IncludeSold && f.SellerID == 0 && f.BuyerID == 0:
		where = append(where, "l.status != 'sold'")
	}
	if f.Category != "" {
		where = append(where, "l.category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if f.MaxPrice != nil {
		where = append(where, "l.price_cents <= ?")
		args = append(args, int64(*f.MaxPrice))
	}
	if f.MinPrice != nil {
		where = append(where, "l.price_cents >= ?")
		args = append(args, int64(*f.MinPrice))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(l.title LIKE ? OR l.description LIKE ?)")
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	if f.SellerID != 0 {
		where = append(where, "l.user_id = ?")
		args = append(args, f.SellerID)
	}
	if f.BuyerID != 0 {
		where = append(where, "l.buyer_id = ?")
		args = append(args, f.BuyerID)
	}

	query := `SELECT ` + listingColumns + listingFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.created_at DESC, l.id DESC"

	return queryListings(ctx, db, query, args...)
}

// ListHeartedListings returns the listings a user has hearted.
func ListHeartedListings(ctx context.Context, db *sql.DB, userID int64) ([]model.Listing, error) {
	return queryListings(ctx, db,
		`SELECT `+listingColumns+listingFrom+`
		 JOIN hearted_listings h ON h.listing_id = l.id
		 WHERE h.user_id = ?
		 ORDER BY h.created_at DESC, l.id DESC`, userID,
	)
}

func queryListings(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Listing, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}

	var ptrs []*model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		ptrs = append(ptrs, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := loadImages(ctx, db, ptrs); err != nil {
		return nil, err
	}

	listings := make([]model.Listing, 0, len(ptrs))
	for _, l := range ptrs {
		listings = append(listings, *l)
	}
	return listings, nil
}

// loadImages fills Images for each listing, ordered by position.
func loadImages(ctx context.Context, db *sql.DB, listings []*model.Listing) error {
	for _, l := range listings {
		rows, err := db.QueryContext(ctx,
			`SELECT url FROM listing_images WHERE listing_id = ? ORDER BY position`, l.ID,
		)
		if err != nil {
			return fmt.Errorf("getting images: %w", err)
		}
		for rows.Next() {
			var u string
			if err := rows.Scan(&u); err != nil {
				rows.Close()
				return fmt.Errorf("scanning image: %w", err)
			}
			l.Images = append(l.Images, u)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateListing applies a partial update.
func UpdateListing(ctx context.Context, db *sql.DB, id int64, p ListingPatch) error {
	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Price != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, int64(*p.Price))
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Condition != nil {
		sets = append(sets, "condition = ?")
		args = append(args, *p.Condition)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	args = append(args, id)
	if _, err := tx.ExecContext(ctx,
		`UPDATE listings SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	); err != nil {
		return fmt.Errorf("updating listing: %w", err)
	}

	if p.SetImages {
		if err := replaceImages(ctx, tx, id, p.Images); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetListingStatus changes a listing's status. A non-nil buyerID is recorded as the buyer.
func SetListingStatus(ctx context.Context, db *sql.DB, id int64, status model.Status, buyerID *int64) error {
	var err error
	if buyerID != nil {
		_, err = db.ExecContext(ctx,
			`UPDATE listings SET status = ?, buyer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, *buyerID, id,
		)
	} else {
		_, err = db.ExecContext(ctx,
			`UPDATE listings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("setting listing status: %w", err)
	}
	return nil
}

// DeleteListing removes a listing together with its images and hearts.
func DeleteListing(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}
	return nil
}
