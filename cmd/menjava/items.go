package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/api"
	"github.com/erazemk/menjava/internal/app"
	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/policy"
	"github.com/erazemk/menjava/internal/render"
)

const msgContactHidden = "Only the person who claimed this item can see the owner's contact details"

func newItemsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Browse, claim and post items",
	}
	cmd.AddCommand(newItemsListCmd(a))
	cmd.AddCommand(newItemsShowCmd(a))
	cmd.AddCommand(newItemsClaimCmd(a))
	cmd.AddCommand(newItemsUnclaimCmd(a))
	cmd.AddCommand(newItemsContactCmd(a))
	cmd.AddCommand(newItemsPostCmd(a))
	cmd.AddCommand(newItemsEditCmd(a))
	cmd.AddCommand(newItemsDeleteCmd(a))
	return cmd
}

func newItemsListCmd(a *App) *cobra.Command {
	var f api.Filter
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered",
		Long: strings.TrimSpace(`
Lists items. Only one filter applies, in this order:
--search (with --location), --category, --location, --available.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Category = model.Category(strings.ToUpper(strings.TrimSpace(category)))
			listing, err := a.browse().Load(cmd.Context(), f)
			if err != nil {
				return reported(err)
			}

			heading := fmt.Sprintf("Items (%s): %d available, %d claimed", app.Describe(f), len(listing.Available), len(listing.Claimed))
			if listing.Stale {
				heading += ", saved " + listing.FetchedAt.Local().Format("2006-01-02 15:04")
			}
			writeOut(cmd, heading)
			writeOut(cmd, render.ItemList(listing.All, a.session.CurrentIdentity(), render.CardOptions{}))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.Search, "search", "", "search titles and descriptions")
	fl.StringVar(&category, "category", "", "category, e.g. BOOKS")
	fl.StringVar(&f.Location, "location", "", "sub-county")
	fl.BoolVar(&f.AvailableOnly, "available", false, "only items that can still be claimed")
	return cmd
}

// loadItem fetches an item for a command, reporting failures.
func (a *App) loadItem(cmd *cobra.Command, id string) (*model.Item, error) {
	item, stale, err := a.browse().Show(cmd.Context(), strings.TrimSpace(id))
	if err != nil {
		return nil, a.fail(err, "Failed to load item")
	}
	if stale {
		a.notifier.Error("Backend unreachable, showing the saved copy")
	}
	return item, nil
}

func (a *App) card(item *model.Item) string {
	return render.ItemCard(item, a.session.CurrentIdentity(), render.CardOptions{ImageURL: a.client.Items().ImageURL})
}

func newItemsShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.loadItem(cmd, args[0])
			if err != nil {
				return err
			}
			writeOut(cmd, a.card(item))
			return nil
		},
	}
}

func newItemsClaimCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <item-id>",
		Short: "Claim an available item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], (*claim.Coordinator).Claim)
		},
	}
}

func newItemsUnclaimCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unclaim <item-id>",
		Short: "Give back an item you claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, args[0], (*claim.Coordinator).Unclaim)
		},
	}
}

// transition runs a claim or unclaim and prints the item as it now stands.
// The saved copy is refreshed after a success and after a re-synced rejection.
func (a *App) transition(cmd *cobra.Command, id string, run func(*claim.Coordinator, context.Context, *model.Item) error) error {
	item, err := a.loadItem(cmd, id)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	browse := a.browse()
	coord := a.claims(func() { browse.Remember(ctx, item) })
	if err := run(coord, ctx, item); err != nil {
		if model.CheckInvariants(item) == nil {
			browse.Remember(ctx, item)
		}
		return reported(err)
	}
	writeOut(cmd, a.card(item))
	return nil
}

func newItemsContactCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "contact <item-id>",
		Short: "Show the owner's contact details of an item you claimed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.loadItem(cmd, args[0])
			if err != nil {
				return err
			}
			contact, ok := policy.ContactDetails(item, a.session.CurrentIdentity())
			if !ok {
				a.notifier.Error(msgContactHidden)
				return reported(fmt.Errorf("%w: %s", model.ErrUnauthorized, msgContactHidden))
			}
			writeOut(cmd, render.ContactBlock(contact))
			return nil
		},
	}
}

func newItemsPostCmd(a *App) *cobra.Command {
	var d model.Draft
	var itemType string
	var images []string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new item with 1 to 5 photos",
		Example: strings.TrimSpace(`
menjava items post --title "Bookshelf" --category FURNITURE --location Bobasi --image front.jpg
menjava items post --title "Maths textbooks" --category BOOKS --location Bonchari \
  --type exchange --exchange-for "English set book" --image a.png --image b.webp
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Type = model.ItemType(strings.ToUpper(itemType))
			d.Category = model.Category(strings.ToUpper(strings.TrimSpace(string(d.Category))))
			uploads, closeAll, err := openImages(images)
			if err != nil {
				return a.fail(err, "Failed to read images")
			}
			defer closeAll()
			d.Images = uploads

			item, err := a.poster().Post(cmd.Context(), &d)
			if err != nil {
				return reported(err)
			}
			if item != nil {
				writeOut(cmd, a.card(item))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Title, "title", "", "item title")
	f.StringVar(&d.Description, "description", "", "item description")
	f.StringVar((*string)(&d.Category), "category", "", "category, e.g. FURNITURE")
	f.StringVar(&d.Location, "location", "", "sub-county")
	f.StringVar(&itemType, "type", "free", "free or exchange")
	f.StringVar(&d.ExchangeFor, "exchange-for", "", "what you want in exchange")
	f.StringArrayVar(&images, "image", nil, "photo file (jpeg, png, gif or webp); repeat for more")
	return cmd
}

// openImages opens photo files as uploads. The returned func closes them.
func openImages(paths []string) ([]model.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	uploads := make([]model.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening image: %w", err)
		}
		files = append(files, f)

		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		uploads = append(uploads, model.Upload{Name: filepath.Base(p), MIME: mimeType, Data: f})
	}
	return uploads, closeAll, nil
}

func newItemsEditCmd(a *App) *cobra.Command {
	var title, description, category, location, itemType, exchangeFor string
	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Edit one of your items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.loadItem(cmd, args[0])
			if err != nil {
				return err
			}

			var u model.ItemUpdate
			f := cmd.Flags()
			if f.Changed("title") {
				u.Title = &title
			}
			if f.Changed("description") {
				u.Description = &description
			}
			if f.Changed("category") {
				c := model.Category(strings.ToUpper(category))
				u.Category = &c
			}
			if f.Changed("location") {
				u.Location = &location
			}
			if f.Changed("type") {
				t := model.ItemType(strings.ToUpper(itemType))
				u.Type = &t
			}
			if f.Changed("exchange-for") {
				u.ExchangeFor = &exchangeFor
			}

			if err := a.poster().Edit(cmd.Context(), item, &u); err != nil {
				return reported(err)
			}
			writeOut(cmd, a.card(item))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVar(&description, "description", "", "new description")
	f.StringVar(&category, "category", "", "new category")
	f.StringVar(&location, "location", "", "new sub-county")
	f.StringVar(&itemType, "type", "", "free or exchange")
	f.StringVar(&exchangeFor, "exchange-for", "", "what you want in exchange")
	return cmd
}

func newItemsDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete one of your items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.loadItem(cmd, args[0])
			if err != nil {
				return err
			}
			return reported(a.dashboard().Delete(cmd.Context(), nil, item))
		},
	}
}
