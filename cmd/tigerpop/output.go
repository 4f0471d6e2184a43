package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/tigerpop/internal/model"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// listingDoc is the YAML shape of a listing.
type listingDoc struct {
	ID          int64    `yaml:"id"`
	Title       string   `yaml:"title"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Condition   string   `yaml:"condition,omitempty"`
	Status      string   `yaml:"status"`
	Seller      string   `yaml:"seller,omitempty"`
	SellerID    int64    `yaml:"seller_id"`
	BuyerID     *int64   `yaml:"buyer_id,omitempty"`
	Hearted     bool     `yaml:"hearted,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Cover       string   `yaml:"cover,omitempty"`
	Images      []string `yaml:"images,omitempty"`
	Created     string   `yaml:"created,omitempty"`
}

func docOf(l model.Listing, hearted bool) listingDoc {
	d := listingDoc{
		ID:          l.ID,
		Title:       l.Title,
		Price:       l.Price.String(),
		Category:    l.Category.Label(),
		Condition:   string(l.Condition),
		Status:      string(l.Status),
		Seller:      l.SellerNetID,
		SellerID:    l.SellerID,
		BuyerID:     l.BuyerID,
		Hearted:     hearted,
		Description: l.Description,
		Cover:       l.Cover(),
		Images:      l.Images,
	}
	if !l.CreatedAt.IsZero() {
		d.Created = l.CreatedAt.Format("2006-01-02 15:04")
	}
	return d
}

// printListings writes a table (text) or a YAML sequence. empty is printed
// instead of the table when there is nothing to show.
func printListings(w io.Writer, format string, ls []model.Listing, hearted func(int64) bool, empty string) error {
	if format == formatYAML {
		docs := make([]listingDoc, 0, len(ls))
		for _, l := range ls {
			docs = append(docs, docOf(l, hearted(l.ID)))
		}
		return writeYAML(w, docs)
	}

	if len(ls) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY\tSTATUS\t")
	for _, l := range ls {
		mark := ""
		if hearted(l.ID) {
			mark = " ♥"
		}
		fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\t%s\t\n", l.ID, l.Title, mark, l.Price, l.Category.Label(), l.Status)
	}
	return tw.Flush()
}

// printListing writes one listing in full.
func printListing(w io.Writer, format string, l model.Listing, hearted bool, notes ...string) error {
	d := docOf(l, hearted)
	if format == formatYAML {
		return writeYAML(w, d)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", d.Title, d.ID)
	fmt.Fprintf(&b, "  Price:     %s\n", d.Price)
	fmt.Fprintf(&b, "  Category:  %s\n", d.Category)
	if d.Condition != "" {
		fmt.Fprintf(&b, "  Condition: %s\n", d.Condition)
	}
	fmt.Fprintf(&b, "  Status:    %s\n", d.Status)
	if d.Seller != "" {
		fmt.Fprintf(&b, "  Seller:    %s\n", d.Seller)
	}
	if hearted {
		b.WriteString("  Hearted:   yes\n")
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "\n  %s\n", d.Description)
	}
	if d.Cover != "" {
		fmt.Fprintf(&b, "  Cover:     %s\n", d.Cover)
	}
	for i, img := range d.Images[min(1, len(d.Images)):] {
		fmt.Fprintf(&b, "  Image %d:   %s\n", i+2, img)
	}
	for _, n := range notes {
		if n != "" {
			fmt.Fprintf(&b, "\n%s\n", n)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// printValue writes v as YAML, or msg in text mode.
func printValue(w io.Writer, format string, v any, msg string) error {
	if format == formatYAML {
		return writeYAML(w, v)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
