package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/view"
)

func newListCmd(a *app) *cobra.Command {
	var category, maxPrice, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List what is for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cat model.Category
			if category != "" {
				c, err := model.ParseCategory(category)
				if err != nil {
					return err
				}
				cat = c
			}
			var ceiling *model.Price
			if maxPrice != "" {
				p, err := model.ParsePrice(maxPrice)
				if err != nil {
					return err
				}
				ceiling = &p
			}

			m := view.NewMarketplace(a.client, a.hearts, a.viewOpts()...)
			defer m.Close()
			if err := m.Filter(cmd.Context(), cat, ceiling, search); err != nil {
				return fail(err)
			}
			s := m.Snapshot()
			return printListings(a.out, a.format, s.Visible, a.hearts.Has, s.EmptyMessage)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "price ceiling, inclusive (e.g. 15 or 15.50)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "text to find in title or description")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a.hearts.Seed(cmd.Context())

			d := view.NewDetail(a.client, a.session, a.hearts, id, a.viewOpts()...)
			defer d.Close()
			if err := d.Load(cmd.Context()); err != nil {
				return fail(err)
			}
			s := d.Snapshot()
			hint := ""
			switch {
			case s.IsOwner:
				hint = "This is your listing."
			case s.CanBuy:
				hint = fmt.Sprintf("Request to buy with: tigerpop buy %d", id)
			}
			return printListing(a.out, a.format, *s.Listing, s.Hearted, hint)
		},
	}
}

func newHeartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "heart <id>",
		Short: "Heart or unheart a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a.hearts.Seed(cmd.Context())

			d := view.NewDetail(a.client, a.session, a.hearts, id, a.viewOpts()...)
			defer d.Close()
			hearted, err := d.ToggleHeart(cmd.Context())
			if err != nil {
				return fail(err)
			}
			msg := "Unhearted"
			if hearted {
				msg = "Hearted"
			}
			return printValue(a.out, a.format, map[string]any{"id": id, "hearted": hearted},
				fmt.Sprintf("%s listing %d", msg, id))
		},
	}
}

func newBuyCmd(a *app) *cobra.Command {
	var message, contact string
	cmd := &cobra.Command{
		Use:   "buy <id>",
		Short: "Ask the seller to buy a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			d := view.NewDetail(a.client, a.session, a.hearts, id, a.viewOpts()...)
			defer d.Close()
			if err := d.Load(cmd.Context()); err != nil {
				return fail(err)
			}
			res, err := d.RequestToBuy(cmd.Context(), message, contact)
			if err != nil {
				return fail(err)
			}
			return printValue(a.out, a.format, res, d.Snapshot().Notice)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", client.DefaultBuyMessage, "message to the seller")
	cmd.Flags().StringVar(&contact, "contact", client.DefaultBuyContact, "how the seller can reach you")
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories the backend offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := a.client.Categories(cmd.Context())
			if err != nil {
				return fail(err)
			}
			if a.format == formatYAML {
				return writeYAML(a.out, cats)
			}
			for _, c := range cats {
				fmt.Fprintf(a.out, "%-12s %s\n", c, c.Label())
			}
			return nil
		},
	}
}

func newPurchasesCmd(a *app) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "purchases",
		Short: "Show what you asked to buy, bought or hearted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := filter.BuyerTab(tab)
			switch t {
			case filter.BuyerAll, filter.BuyerPending, filter.BuyerPurchased, filter.BuyerHearted:
			default:
				return fmt.Errorf("unknown tab %q (want all, pending, purchased or hearted)", tab)
			}

			d := view.NewBuyerDashboard(a.client, a.session, a.hearts, a.viewOpts()...)
			defer d.Close()
			if t == filter.BuyerHearted {
				if err := d.SetTab(cmd.Context(), t); err != nil {
					return fail(err)
				}
			} else {
				if err := d.Load(cmd.Context()); err != nil {
					return fail(err)
				}
				d.SetTab(cmd.Context(), t)
			}
			s := d.Snapshot()
			return printListings(a.out, a.format, s.Visible, a.hearts.Has, s.EmptyMessage)
		},
	}
	cmd.Flags().StringVarP(&tab, "tab", "t", string(filter.BuyerAll), "all, pending, purchased or hearted")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid listing id %q", s)
	}
	return id, nil
}
