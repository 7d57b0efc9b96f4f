package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DashboardStats are the counters on a user's personal dashboard.
type DashboardStats struct {
	TotalPostedItems  int `json:"totalPostedItems"`
	AvailableItems    int `json:"availableItems"`
	ClaimedItemsCount int `json:"claimedItemsCount"`
	TotalClaimedItems int `json:"totalClaimedItems"`
}

// Notification is a message for the signed-in user.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// SplitByStatus partitions items into available and claimed, keeping order.
func SplitByStatus(items []Item) (available, claimed []Item) {
	for _, item := range items {
		switch item.Status {
		case StatusAvailable:
			available = append(available, item)
		case StatusClaimed:
			claimed = append(claimed, item)
		}
	}
	return available, claimed
}

type rawNotification struct {
	ID        json.RawMessage `json:"id"`
	Message   string          `json:"message"`
	IsRead    bool            `json:"isRead"`
	Read      bool            `json:"read"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// NormalizeNotifications converts a JSON array of notification records.
// A body that is not an array yields no notifications.
func NormalizeNotifications(raw []byte) ([]Notification, error) {
	var records []rawNotification
	if err := json.Unmarshal(raw, &records); err != nil {
		var probe any
		if json.Unmarshal(raw, &probe) == nil {
			return []Notification{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	out := make([]Notification, 0, len(records))
	for i, r := range records {
		id, err := opaqueID(r.ID)
		if err != nil || id == "" {
			return nil, fmt.Errorf("record %d: %w: missing id", i, ErrMalformedRecord)
		}
		createdAt, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w: %v", i, ErrMalformedRecord, err)
		}
		out = append(out, Notification{
			ID:        id,
			Message:   r.Message,
			IsRead:    r.IsRead || r.Read,
			CreatedAt: createdAt,
		})
	}
	return out, nil
}
