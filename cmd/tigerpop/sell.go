package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erazemk/tigerpop/internal/filter"
	"github.com/erazemk/tigerpop/internal/imaging"
	"github.com/erazemk/tigerpop/internal/model"
	"github.com/erazemk/tigerpop/internal/view"
)

// draftFlags are the listing fields settable from the command line.
type draftFlags struct {
	title, description, price, category, condition string
	images                                         []string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&f.price, "price", "p", "", "price, e.g. 12.50")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category")
	cmd.Flags().StringVar(&f.condition, "condition", "", "condition: new, like new, good, fair or poor")
	cmd.Flags().StringSliceVarP(&f.images, "image", "i", nil, "image file to upload (jpg or png, repeatable)")
}

// apply copies the flags that were given onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d *view.Draft) error {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("title", &d.Title, f.title)
	set("description", &d.Description, f.description)
	set("price", &d.Price, f.price)
	set("category", &d.Category, f.category)
	set("condition", &d.Condition, f.condition)

	files, err := readImages(f.images)
	if err != nil {
		return err
	}
	d.Files = files
	return nil
}

// readImages loads image files from disk, keeping only their base names.
func readImages(paths []string) ([]imaging.File, error) {
	files := make([]imaging.File, 0, len(paths))
	for _, p := range paths {
		if err := imaging.CheckName(p); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		files = append(files, imaging.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

func newCreateCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Put an item up for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := view.Draft{Condition: string(model.ConditionGood)}
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			e := view.NewEditor(a.client, a.session, a.viewOpts()...)
			l, err := e.Create(cmd.Context(), d)
			if err != nil {
				return fail(err)
			}
			return printListing(a.out, a.format, *l, false, fmt.Sprintf("Listing %d created.", l.ID))
		},
	}
	f.register(cmd)
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("price")
	cmd.MarkFlagRequired("category")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var f draftFlags
	var clearImages bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change one of your listings",
		Long:  "Only the fields given as flags change. New images are appended to the existing ones.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			orig, err := a.client.Get(cmd.Context(), id)
			if err != nil {
				return fail(err)
			}

			d := view.DraftFrom(*orig)
			if clearImages {
				d.Images = []string{}
			}
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			e := view.NewEditor(a.client, a.session, a.viewOpts()...)
			l, err := e.Edit(cmd.Context(), *orig, d)
			if err != nil {
				return fail(err)
			}
			return printListing(a.out, a.format, *l, false, "Saved.")
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&clearImages, "clear-images", false, "drop the existing images")
	return cmd
}

// sellerDashboard loads the dashboard of the logged-in seller.
func sellerDashboard(cmd *cobra.Command, a *app) (*view.SellerDashboard, error) {
	d := view.NewSellerDashboard(a.client, a.session, a.viewOpts()...)
	if err := d.Load(cmd.Context()); err != nil {
		d.Close()
		return nil, fail(err)
	}
	return d, nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := sellerDashboard(cmd, a)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Delete(cmd.Context(), id); err != nil {
				return fail(err)
			}
			return printValue(a.out, a.format, map[string]any{"id": id, "deleted": true},
				fmt.Sprintf("Listing %d deleted", id))
		},
	}
}

// newStatusCmd builds "sold" (mark sold) and "relist" (back to available).
func newStatusCmd(a *app, name string) *cobra.Command {
	status, short := model.StatusSold, "Mark one of your listings as sold"
	if name == "relist" {
		status, short = model.StatusAvailable, "Put one of your listings back on the market"
	}
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := sellerDashboard(cmd, a)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.SetStatus(cmd.Context(), id, status); err != nil {
				return fail(err)
			}
			return printValue(a.out, a.format, map[string]any{"id": id, "status": status},
				fmt.Sprintf("Listing %d is now %s", id, status))
		},
	}
}

func newMineCmd(a *app) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Show your listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := filter.SellerTab(tab)
			switch t {
			case filter.SellerAll, filter.SellerSelling, filter.SellerSold:
			default:
				return fmt.Errorf("unknown tab %q (want all, selling or sold)", tab)
			}
			d, err := sellerDashboard(cmd, a)
			if err != nil {
				return err
			}
			defer d.Close()
			d.SetTab(t)
			s := d.Snapshot()
			return printListings(a.out, a.format, s.Visible, func(int64) bool { return false }, s.EmptyMessage)
		},
	}
	cmd.Flags().StringVarP(&tab, "tab", "t", string(filter.SellerAll), "all, selling or sold")
	return cmd
}
