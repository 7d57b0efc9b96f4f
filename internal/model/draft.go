package model

import (
	"fmt"
	"io"
	"strings"
)

// Image count limits for a new item.
const (
	MinImages = 1
	MaxImages = 5
)

// Upload is one photo attached to a new item.
type Upload struct {
	Name string
	MIME string
	Data io.Reader
}

// Draft is a new item before it is posted.
type Draft struct {
	Title       string
	Description string
	Category    Category
	Location    string
	Type        ItemType
	ExchangeFor string
	Images      []Upload
}

// ValidateImageCount enforces the 1..5 photo rule.
func ValidateImageCount(n int) error {
	if n < MinImages {
		return ValidationErrors{"images": "Please upload at least 1 image"}
	}
	if n > MaxImages {
		return ValidationErrors{"images": fmt.Sprintf("Maximum %d images allowed", MaxImages)}
	}
	return nil
}

// Validate checks the draft and normalizes the exchange fields in place.
func (d *Draft) Validate() error {
	errs := ValidationErrors{}

	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		errs["title"] = "Title is required"
	}

	d.Category = Category(strings.ToUpper(string(d.Category)))
	if d.Category == "" {
		errs["category"] = "Please select a category"
	} else if !ValidCategory(d.Category) {
		errs["category"] = fmt.Sprintf("Unknown category %q", d.Category)
	}

	d.Location = strings.TrimSpace(d.Location)
	if d.Location == "" {
		errs["location"] = "Please select a location"
	}

	d.Type = ItemType(strings.ToUpper(string(d.Type)))
	switch d.Type {
	case "", TypeFree:
		d.Type = TypeFree
		d.ExchangeFor = ""
	case TypeExchange:
		d.ExchangeFor = strings.TrimSpace(d.ExchangeFor)
		if d.ExchangeFor == "" {
			errs["exchangeFor"] = "Please specify what you want in exchange"
		}
	default:
		errs["type"] = fmt.Sprintf("Unknown item type %q", d.Type)
	}

	if err := ValidateImageCount(len(d.Images)); err != nil {
		errs["images"] = err.(ValidationErrors)["images"]
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ItemUpdate is an owner's edit of an existing item. Nil fields are unchanged.
type ItemUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Type        *ItemType `json:"type,omitempty"`
	ExchangeFor *string   `json:"exchangeFor,omitempty"`
}

// Validate checks an edit against the item it applies to.
func (u *ItemUpdate) Validate(current *Item) error {
	errs := ValidationErrors{}

	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs["title"] = "Title is required"
	}
	if u.Category != nil && !ValidCategory(*u.Category) {
		errs["category"] = fmt.Sprintf("Unknown category %q", *u.Category)
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs["location"] = "Please select a location"
	}

	itemType := current.Type
	if u.Type != nil {
		itemType = *u.Type
	}
	exchangeFor := current.ExchangeFor
	if u.ExchangeFor != nil {
		exchangeFor = *u.ExchangeFor
	}
	switch itemType {
	case TypeExchange:
		if strings.TrimSpace(exchangeFor) == "" {
			errs["exchangeFor"] = "Please specify what you want in exchange"
		}
	case TypeFree, "":
		if u.Type != nil {
			empty := ""
			u.ExchangeFor = &empty
		}
	default:
		errs["type"] = fmt.Sprintf("Unknown item type %q", itemType)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
