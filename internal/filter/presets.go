package filter

import (
	"fmt"
	"strings"

	"github.com/erazemk/tigerpop/internal/model"
)

// Marketplace returns the feed criteria. Only available listings are ever
// shown there, whatever else is set.
func Marketplace(category model.Category, maxPrice *model.Price, search string) Criteria {
	return Criteria{
		Status:   model.StatusAvailable,
		Category: category,
		MaxPrice: maxPrice,
		Search:   search,
	}
}

// SellerTab is a tab of the seller dashboard.
type SellerTab string

// Seller dashboard tabs.
const (
	SellerAll     SellerTab = "all"
	SellerSelling SellerTab = "selling"
	SellerSold    SellerTab = "sold"
)

// Seller returns the criteria for a seller dashboard tab.
func Seller(tab SellerTab, userID int64) Criteria {
	c := Criteria{OwnerScope: ScopeMine, UserID: userID}
	switch tab {
	case SellerSelling:
		c.Status = model.StatusAvailable
	case SellerSold:
		c.Status = model.StatusSold
	}
	return c
}

// BuyerTab is a tab of the buyer dashboard.
type BuyerTab string

// Buyer dashboard tabs.
const (
	BuyerAll       BuyerTab = "all"
	BuyerPending   BuyerTab = "pending"
	BuyerPurchased BuyerTab = "purchased"
	BuyerHearted   BuyerTab = "hearted"
)

// Buyer returns the criteria for a buyer dashboard tab. The hearted tab
// works on the hearted listings rather than the purchases.
func Buyer(tab BuyerTab, userID int64) Criteria {
	if tab == BuyerHearted {
		return Criteria{HeartedOnly: true, UserID: userID}
	}
	c := Criteria{BuyerScope: ScopeMine, UserID: userID}
	switch tab {
	case BuyerPending:
		c.Status = model.StatusPending
	case BuyerPurchased:
		c.Status = model.StatusSold
	}
	return c
}

// Message renders the empty-state text for a projection with the given
// criteria. It returns "" when r is NotEmpty.
func Message(r EmptyReason, c Criteria) string {
	if r == NotEmpty {
		return ""
	}

	switch {
	case c.OwnerScope == ScopeMine:
		switch c.Status {
		case model.StatusAvailable:
			return "You have no listings for sale"
		case model.StatusSold:
			return "You haven't sold any items yet"
		}
		return "You have no listings yet"
	case c.HeartedOnly && c.BuyerScope != ScopeMine:
		return "You haven't hearted any items yet"
	case c.BuyerScope == ScopeMine:
		switch c.Status {
		case model.StatusPending:
			return "You don't have any pending listings"
		case model.StatusSold:
			return "You haven't purchased any items yet"
		}
		return "You don't have any listings yet"
	}

	if r == NoListings || r == ByStatus {
		r = activeFilter(c, r)
	}
	switch r {
	case BySearch:
		return fmt.Sprintf("No items found matching %q", strings.TrimSpace(c.Search))
	case ByCategory:
		return "No items found in " + c.Category.Label()
	case ByPrice:
		if c.MaxPrice != nil {
			return "No items found at or under " + c.MaxPrice.String()
		}
		return "No items found in this price range"
	}
	return "No items available in the marketplace yet"
}

// activeFilter names the most specific marketplace filter in c, or def when
// none is set. The feed is filtered server-side, so an empty feed under a
// search still reads as a search miss.
func activeFilter(c Criteria, def EmptyReason) EmptyReason {
	switch {
	case strings.TrimSpace(c.Search) != "":
		return BySearch
	case c.Category != "":
		return ByCategory
	case c.MaxPrice != nil || c.MinPrice != nil:
		return ByPrice
	}
	return def
}
