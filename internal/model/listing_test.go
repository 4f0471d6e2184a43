package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		expected bool
	}{
		{StatusAvailable, StatusPending, true},
		{StatusPending, StatusSold, true},
		{StatusAvailable, StatusSold, true},
		{StatusSold, StatusAvailable, true},
		{StatusPending, StatusAvailable, true},
		{StatusSold, StatusPending, false},
		{StatusAvailable, StatusAvailable, false},
		{"", StatusSold, false},
		{StatusAvailable, "reserved", false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.expected {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("  Furniture ")
	if err != nil {
		t.Fatalf("ParseCategory: %v", err)
	}
	if c != CategoryFurniture {
		t.Errorf("expected furniture, got %q", c)
	}
	if c.Label() != "Furniture" {
		t.Errorf("expected label Furniture, got %q", c.Label())
	}

	if _, err := ParseCategory("electronics"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("Like New")
	if err != nil {
		t.Fatalf("ParseCondition: %v", err)
	}
	if c != ConditionLikeNew {
		t.Errorf("expected 'like new', got %q", c)
	}
	if _, err := ParseCondition("broken"); err == nil {
		t.Error("expected error for unknown condition")
	}
}

func TestPriceRounding(t *testing.T) {
	tests := []struct {
		in       string
		expected Price
	}{
		{"12", 1200},
		{"12.5", 1250},
		{"$0.10", 10},
		{"19.999", 2000},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", tt.in, err)
		}
		if got != tt.expected {
			t.Errorf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.expected)
		}
	}

	for _, in := range []string{"abc", "", "NaN", "1e20", "-1e20", "$92233720368547758.07", "1e400"} {
		if got, err := ParsePrice(in); err == nil {
			t.Errorf("ParsePrice(%q) = %d, expected an error", in, got)
		}
	}

	if got := Price(math.MinInt64).Decimal(); got != "-92233720368547758.08" {
		t.Errorf("unexpected Decimal() for the smallest price: %s", got)
	}
}

func TestPriceJSON(t *testing.T) {
	var p Price
	if err := json.Unmarshal([]byte("0.1"), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != 10 {
		t.Errorf("expected 10 cents, got %d", p)
	}
	if err := json.Unmarshal([]byte("1e20"), &p); err == nil {
		t.Errorf("expected error for out-of-range price, got %d", p)
	}

	data, err := json.Marshal(Price(1005))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "10.05" {
		t.Errorf("expected 10.05, got %s", data)
	}
	if Price(1005).String() != "$10.05" {
		t.Errorf("unexpected String(): %s", Price(1005))
	}
}

func TestListingDecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": 7,
		"title": "Desk Lamp",
		"description": "Warm light",
		"price": 15.5,
		"category": "furniture",
		"status": "pending",
		"user_id": 3,
		"buyer_id": 9,
		"created_at": "2024-03-01T12:30:45.123456",
		"images": ["https://img/a.jpg", "https://img/b.jpg"],
		"condition": "good"
	}`

	var l Listing
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.Price != 1550 {
		t.Errorf("expected 1550 cents, got %d", l.Price)
	}
	if l.SellerID != 3 || !l.BoughtBy(9) || l.BoughtBy(3) {
		t.Errorf("unexpected seller/buyer: %d %v", l.SellerID, l.BuyerID)
	}
	if l.Cover() != "https://img/a.jpg" {
		t.Errorf("unexpected cover %q", l.Cover())
	}
	want := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)
	if !l.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, l.CreatedAt.Time)
	}
	if !l.UpdatedAt.IsZero() {
		t.Errorf("expected zero updated_at, got %v", l.UpdatedAt.Time)
	}
}

func TestListingClone(t *testing.T) {
	buyer := int64(4)
	l := Listing{ID: 1, Images: []string{"a"}, BuyerID: &buyer}
	c := l.Clone()
	c.Images[0] = "b"
	*c.BuyerID = 5

	if l.Images[0] != "a" || *l.BuyerID != 4 {
		t.Error("clone aliases the original")
	}
}
