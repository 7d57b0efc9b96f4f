package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/policy"
)

// CardOptions tune an item card.
type CardOptions struct {
	// Now anchors relative dates. Zero means time.Now().
	Now time.Time
	// ImageURL resolves photo ids. Nil prints only the photo count.
	ImageURL func(id string) string
	// Busy marks an item with a claim or unclaim in flight.
	Busy bool
}

// ItemCard renders one item for viewer, who may be nil. The owner's contact
// details appear only when policy allows it.
func ItemCard(item *model.Item, viewer *model.Identity, opts CardOptions) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(item.Title), CategoryBadge(item.Category))
	b.WriteString(mutedStyle.Render("#"+item.ID) + " ")
	if item.Type == model.TypeExchange {
		fmt.Fprintf(&b, "Exchange for: %s\n", item.ExchangeFor)
	} else {
		b.WriteString("Free\n")
	}
	if item.Description != "" {
		b.WriteString(item.Description + "\n")
	}

	meta := []string{item.Location}
	if name := item.PostedBy.Name; name != "" {
		meta = append(meta, "posted by "+name)
	}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, humanize.RelTime(item.CreatedAt, now, "ago", "from now"))
	}
	b.WriteString(mutedStyle.Render(strings.Join(meta, " · ")) + "\n")

	status := StatusBadge(item.Status)
	if n := len(item.ImageIDs); n > 0 {
		status += " " + mutedStyle.Render(english.Plural(n, "photo", "photos"))
	}
	b.WriteString(status + "\n")
	if opts.ImageURL != nil {
		for _, id := range item.ImageIDs {
			b.WriteString(mutedStyle.Render("  "+opts.ImageURL(id)) + "\n")
		}
	}

	if actions := Actions(item, viewer, opts.Busy); len(actions) > 0 {
		b.WriteString("Actions: " + strings.Join(actions, ", ") + "\n")
	}

	if contact, ok := policy.ContactDetails(item, viewer); ok {
		b.WriteString(ContactBlock(contact) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Actions lists the controls offered to viewer. A busy item offers none of
// the claim controls.
func Actions(item *model.Item, viewer *model.Identity, busy bool) []string {
	var actions []string
	switch {
	case busy:
		actions = append(actions, "working…")
	case policy.CanClaim(item, viewer):
		actions = append(actions, "claim")
	case policy.CanUnclaim(item, viewer):
		actions = append(actions, "unclaim")
	}
	if policy.CanEdit(item, viewer) {
		actions = append(actions, "edit")
	}
	if policy.CanDelete(item, viewer) {
		actions = append(actions, "delete")
	}
	return actions
}

// ContactBlock renders an owner's contact details.
func ContactBlock(owner model.UserRef) string {
	lines := []string{titleStyle.Render("Contact " + nonEmpty(owner.Name, "the owner"))}
	for _, field := range []struct{ label, value string }{
		{"Phone", owner.Phone},
		{"Address", owner.Address},
		{"Email", owner.Email},
	} {
		if field.value != "" {
			lines = append(lines, field.label+": "+field.value)
		}
	}
	return contactStyle.Render(strings.Join(lines, "\n"))
}

// ItemList renders items as cards separated by blank lines.
func ItemList(items []model.Item, viewer *model.Identity, opts CardOptions) string {
	if len(items) == 0 {
		return mutedStyle.Render("No items found.")
	}
	cards := make([]string, 0, len(items))
	for i := range items {
		cards = append(cards, ItemCard(&items[i], viewer, opts))
	}
	return strings.Join(cards, "\n\n")
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
