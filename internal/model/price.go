package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Price is a currency amount in cents. The backend sends plain JSON numbers;
// they are rounded to the nearest cent on the way in.
type Price int64

// MaxPrice is the largest amount, in either direction, that converts from a
// float without losing cents.
const MaxPrice Price = 1 << 53

// ErrPriceRange is returned for amounts beyond MaxPrice.
var ErrPriceRange = errors.New("price out of range")

// PriceFromFloat rounds f to the nearest cent. Amounts beyond MaxPrice,
// NaN and infinities are rejected.
func PriceFromFloat(f float64) (Price, error) {
	cents := math.Round(f * 100)
	if math.IsNaN(cents) || math.Abs(cents) > float64(MaxPrice) {
		return 0, fmt.Errorf("%w: %v", ErrPriceRange, f)
	}
	return Price(cents), nil
}

// ParsePrice parses a decimal amount such as "12", "12.5" or "$12.50".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return PriceFromFloat(f)
}

// Decimal formats the amount with exactly two decimals, e.g. "12.50".
func (p Price) Decimal() string {
	sign := ""
	v := uint64(p)
	if p < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (p Price) String() string {
	return "$" + p.Decimal()
}

// MarshalJSON writes the price as a JSON number with two decimals.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	v, err := PriceFromFloat(f)
	if err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	*p = v
	return nil
}

// Timestamp decodes both RFC 3339 and the zone-less ISO-8601 the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON parses a JSON string; null and "" leave the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
