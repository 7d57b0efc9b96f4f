package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item is a listed item as seen by the client.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	Location    string    `json:"location"`
	Type        ItemType  `json:"type,omitempty"`
	ExchangeFor string    `json:"exchangeFor,omitempty"`
	Status      Status    `json:"status"`
	PostedBy    UserRef   `json:"postedBy"`
	ClaimedBy   *UserRef  `json:"claimedBy,omitempty"`
	ImageIDs    []string  `json:"imageIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserRef is the owner or claimer of an item. Contact fields are reference data.
type UserRef struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Status is the availability of an item.
type Status string

// Item statuses.
const (
	StatusAvailable Status = "AVAILABLE"
	StatusClaimed   Status = "CLAIMED"
)

// ItemType tells whether an item is given away or exchanged.
type ItemType string

// Item types.
const (
	TypeFree     ItemType = "FREE"
	TypeExchange ItemType = "EXCHANGE"
)

// Category groups items for browsing.
type Category string

// Item categories.
const (
	CategoryBooks       Category = "BOOKS"
	CategoryFurniture   Category = "FURNITURE"
	CategoryElectronics Category = "ELECTRONICS"
	CategoryClothing    Category = "CLOTHING"
	CategoryToys        Category = "TOYS"
	CategoryKitchen     Category = "KITCHEN"
	CategoryGarden      Category = "GARDEN"
	CategorySports      Category = "SPORTS"
	CategoryOther       Category = "OTHER"
)

// Categories lists all categories in display order.
var Categories = []Category{
	CategoryBooks,
	CategoryFurniture,
	CategoryElectronics,
	CategoryClothing,
	CategoryToys,
	CategoryKitchen,
	CategoryGarden,
	CategorySports,
	CategoryOther,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Available reports whether the item can be claimed.
func (i *Item) Available() bool {
	return i.Status == StatusAvailable
}

// IsOwner reports whether identity posted the item.
func IsOwner(item *Item, identity *Identity) bool {
	if item == nil || identity == nil || identity.ID == "" {
		return false
	}
	return item.PostedBy.ID == identity.ID
}

// IsClaimer reports whether identity currently holds the claim on the item.
func IsClaimer(item *Item, identity *Identity) bool {
	if item == nil || identity == nil || identity.ID == "" || item.ClaimedBy == nil {
		return false
	}
	return item.ClaimedBy.ID == identity.ID
}

// CheckInvariants verifies the status/claimer pairing, the self-claim rule and
// the exchange fields.
func CheckInvariants(item *Item) error {
	switch item.Status {
	case StatusClaimed:
		if item.ClaimedBy == nil || item.ClaimedBy.ID == "" {
			return fmt.Errorf("%w: claimed item %s has no claimer", ErrInvalidState, item.ID)
		}
		if item.ClaimedBy.ID == item.PostedBy.ID {
			return fmt.Errorf("%w: item %s is claimed by its owner", ErrInvalidState, item.ID)
		}
	case StatusAvailable:
		if item.ClaimedBy != nil {
			return fmt.Errorf("%w: available item %s has a claimer", ErrInvalidState, item.ID)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidState, item.Status)
	}

	switch item.Type {
	case TypeExchange:
		if strings.TrimSpace(item.ExchangeFor) == "" {
			return fmt.Errorf("%w: exchange item %s has nothing to exchange for", ErrInvalidState, item.ID)
		}
	case TypeFree:
		if item.ExchangeFor != "" {
			return fmt.Errorf("%w: free item %s has an exchange request", ErrInvalidState, item.ID)
		}
	}
	return nil
}

// rawUser is a user record as the backend sends it.
type rawUser struct {
	ID               json.RawMessage `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	Location         string          `json:"location"`
	Role             string          `json:"role"`
	Suspended        bool            `json:"suspended"`
	SuspensionReason string          `json:"suspensionReason"`
}

// rawItem is an item record as the backend sends it.
type rawItem struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Location    string            `json:"location"`
	Type        string            `json:"type"`
	ExchangeFor string            `json:"exchangeFor"`
	Status      string            `json:"status"`
	PostedBy    *rawUser          `json:"postedBy"`
	ClaimedBy   *rawUser          `json:"claimedBy"`
	ImageIDs    []json.RawMessage `json:"imageIds"`
	CreatedAt   json.RawMessage   `json:"createdAt"`
}

// Normalize converts a backend item record into an Item.
func Normalize(raw []byte) (*Item, error) {
	var r rawItem
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return r.item()
}

// NormalizeList converts a JSON array of backend item records.
func NormalizeList(raw []byte) ([]Item, error) {
	var records []rawItem
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	items := make([]Item, 0, len(records))
	for i := range records {
		item, err := records[i].item()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *rawItem) item() (*Item, error) {
	id, err := opaqueID(r.ID)
	if err != nil || id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	if r.Status == "" {
		return nil, fmt.Errorf("%w: item %s: missing status", ErrMalformedRecord, id)
	}
	if r.PostedBy == nil {
		return nil, fmt.Errorf("%w: item %s: missing postedBy.id", ErrMalformedRecord, id)
	}
	owner, err := r.PostedBy.ref()
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: missing postedBy.id", ErrMalformedRecord, id)
	}

	item := &Item{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Category:    Category(strings.ToUpper(r.Category)),
		Location:    r.Location,
		Type:        ItemType(strings.ToUpper(r.Type)),
		ExchangeFor: r.ExchangeFor,
		Status:      Status(strings.ToUpper(r.Status)),
		PostedBy:    owner,
	}

	switch item.Status {
	case StatusClaimed:
		if r.ClaimedBy == nil {
			return nil, fmt.Errorf("%w: item %s: claimed without claimedBy.id", ErrMalformedRecord, id)
		}
		claimer, err := r.ClaimedBy.ref()
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: claimed without claimedBy.id", ErrMalformedRecord, id)
		}
		item.ClaimedBy = &claimer
	case StatusAvailable:
		// Status wins over a stale claimer.
	default:
		return nil, fmt.Errorf("%w: item %s: unknown status %q", ErrMalformedRecord, id, r.Status)
	}

	if item.Type == TypeFree {
		item.ExchangeFor = ""
	}

	for _, rawImage := range r.ImageIDs {
		imageID, err := opaqueID(rawImage)
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: bad image id", ErrMalformedRecord, id)
		}
		if imageID != "" {
			item.ImageIDs = append(item.ImageIDs, imageID)
		}
	}

	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %v", ErrMalformedRecord, id, err)
	}
	item.CreatedAt = createdAt

	return item, nil
}

func (u *rawUser) ref() (UserRef, error) {
	id, err := opaqueID(u.ID)
	if err != nil {
		return UserRef{}, err
	}
	if id == "" {
		return UserRef{}, fmt.Errorf("empty id")
	}
	return UserRef{
		ID:      id,
		Name:    u.Name,
		Phone:   u.Phone,
		Address: u.Address,
		Email:   u.Email,
	}, nil
}

// opaqueID turns a JSON string or number into an identifier string.
// A missing or null value yields "".
func opaqueID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id is neither string nor number: %s", raw)
	}
	return n.String(), nil
}

// timestampLayouts are the createdAt formats seen from the backend.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("createdAt is not a string: %s", raw)
	}
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized createdAt %q", s)
}
