// Package filter derives the visible subset of a listing sequence.
//
// Project is pure: it never mutates or reorders its input, and applying
// the same criteria to its own output yields the same output.
package filter

import (
	"fmt"
	"strings"

	"github.com/erazemk/tigerpop/internal/model"
)

// Scope restricts listings to those related to the current user.
type Scope int

// Scopes.
const (
	ScopeAny Scope = iota
	ScopeMine
)

// Criteria are the active filters of a screen. Zero values disable a rule.
type Criteria struct {
	Status      model.Status // keep only this status
	OwnerScope  Scope        // ScopeMine keeps listings sold by UserID
	BuyerScope  Scope        // ScopeMine keeps listings bought by UserID
	UserID      int64
	HeartedOnly bool
	Category    model.Category
	MaxPrice    *model.Price // inclusive
	MinPrice    *model.Price // inclusive
	Search      string
}

// Membership answers whether a listing id is hearted.
type Membership interface {
	Has(id int64) bool
}

// Set is a plain Membership.
type Set map[int64]struct{}

// NewSet returns a set of ids.
func NewSet(ids ...int64) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// EmptyReason names the rule that left a projection empty.
type EmptyReason int

// Empty reasons, in rule order.
const (
	NotEmpty EmptyReason = iota
	NoListings
	ByStatus
	ByOwner
	ByBuyer
	ByHearted
	ByCategory
	ByPrice
	BySearch
)

func (r EmptyReason) String() string {
	switch r {
	case NotEmpty:
		return "not empty"
	case NoListings:
		return "no listings"
	case ByStatus:
		return "status"
	case ByOwner:
		return "owner"
	case ByBuyer:
		return "buyer"
	case ByHearted:
		return "hearted"
	case ByCategory:
		return "category"
	case ByPrice:
		return "price"
	case BySearch:
		return "search"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Result is the outcome of a projection.
type Result struct {
	Visible []model.Listing
	Empty   EmptyReason
}

type rule struct {
	reason EmptyReason
	active bool
	keep   func(*model.Listing) bool
}

// Project returns the listings matching every active rule of c, in input
// order. hearted may be nil when c.HeartedOnly is false.
func Project(listings []model.Listing, c Criteria, hearted Membership) Result {
	if len(listings) == 0 {
		return Result{Visible: []model.Listing{}, Empty: NoListings}
	}

	search := strings.ToLower(strings.TrimSpace(c.Search))
	rules := []rule{
		{ByStatus, c.Status != "", func(l *model.Listing) bool {
			return l.Status == c.Status
		}},
		{ByOwner, c.OwnerScope == ScopeMine, func(l *model.Listing) bool {
			return c.UserID != 0 && l.SellerID == c.UserID
		}},
		{ByBuyer, c.BuyerScope == ScopeMine, func(l *model.Listing) bool {
			return c.UserID != 0 && l.BoughtBy(c.UserID)
		}},
		{ByHearted, c.HeartedOnly, func(l *model.Listing) bool {
			return hearted != nil && hearted.Has(l.ID)
		}},
		{ByCategory, c.Category != "", func(l *model.Listing) bool {
			return strings.EqualFold(string(l.Category), string(c.Category))
		}},
		{ByPrice, c.MaxPrice != nil || c.MinPrice != nil, func(l *model.Listing) bool {
			if c.MaxPrice != nil && l.Price > *c.MaxPrice {
				return false
			}
			return c.MinPrice == nil || l.Price >= *c.MinPrice
		}},
		{BySearch, search != "", func(l *model.Listing) bool {
			return strings.Contains(strings.ToLower(l.Title), search) ||
				strings.Contains(strings.ToLower(l.Description), search)
		}},
	}

	current := listings
	for _, r := range rules {
		if !r.active {
			continue
		}
		next := make([]model.Listing, 0, len(current))
		for i := range current {
			if r.keep(&current[i]) {
				next = append(next, current[i])
			}
		}
		if len(next) == 0 {
			return Result{Visible: next, Empty: r.reason}
		}
		current = next
	}

	if len(current) == len(listings) {
		// No rule dropped anything; still hand back a private slice.
		current = append([]model.Listing(nil), listings...)
	}
	return Result{Visible: current}
}
