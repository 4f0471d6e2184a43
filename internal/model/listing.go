package model

import (
	"fmt"
	"strings"
)

// Listing represents a sellable item on the marketplace.
type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	Category    Category  `json:"category"`
	Condition   Condition `json:"condition,omitempty"`
	Status      Status    `json:"status"`
	Images      []string  `json:"images"`
	SellerID    int64     `json:"user_id"`
	SellerNetID string    `json:"user_netid,omitempty"`
	BuyerID     *int64    `json:"buyer_id,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Cover returns the cover image URL, or "" when the listing has no images.
func (l *Listing) Cover() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// BoughtBy reports whether userID is recorded as the listing's buyer.
func (l *Listing) BoughtBy(userID int64) bool {
	return l.BuyerID != nil && *l.BuyerID == userID
}

// Clone returns a deep copy so callers can mutate it without aliasing.
func (l Listing) Clone() Listing {
	if l.Images != nil {
		l.Images = append([]string(nil), l.Images...)
	}
	if l.BuyerID != nil {
		id := *l.BuyerID
		l.BuyerID = &id
	}
	return l
}

// Status is the sale state of a listing.
type Status string

// Listing statuses.
const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	}
	return false
}

// CanTransition reports whether a listing may move from one status to another.
// The purchase flow moves forward (available, pending, sold); a seller may
// also jump straight to sold or put the listing back on the market.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	switch to {
	case StatusPending:
		return from == StatusAvailable
	case StatusSold:
		return true
	case StatusAvailable:
		return true
	}
	return false
}

// Category is one of the fixed marketplace categories.
type Category string

// Categories.
const (
	CategoryTops       Category = "tops"
	CategoryBottoms    Category = "bottoms"
	CategoryDresses    Category = "dresses"
	CategoryShoes      Category = "shoes"
	CategoryFurniture  Category = "furniture"
	CategoryAppliances Category = "appliances"
	CategoryBooks      Category = "books"
	CategoryOther      Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTops, CategoryBottoms, CategoryDresses, CategoryShoes,
	CategoryFurniture, CategoryAppliances, CategoryBooks, CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Label returns the display name, e.g. "Furniture".
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Condition describes the wear of an item.
type Condition string

// Conditions.
const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Conditions lists every condition from best to worst.
var Conditions = []Condition{
	ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor,
}

// ParseCondition matches s case-insensitively against the known conditions.
func ParseCondition(s string) (Condition, error) {
	for _, c := range Conditions {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown condition %q", s)
}
