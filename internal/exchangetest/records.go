package exchangetest

import "time"

// User is a backend account.
type User struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	Address          string
	Location         string
	Role             string
	PasswordHash     string
	SuspensionReason string
	Deleted          bool
}

// Item is a backend listing.
type Item struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Location    string
	Type        string
	ExchangeFor string
	Status      string
	OwnerID     int64
	ClaimerID   int64
	ImageIDs    []int64
	CreatedAt   time.Time
}

type notification struct {
	ID        int64
	UserID    int64
	Message   string
	Read      bool
	CreatedAt time.Time
}

// Wire shapes. IDs are JSON numbers and timestamps have no zone, as a
// typical Java backend sends them.

type userJSON struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	Location         string `json:"location,omitempty"`
	Role             string `json:"role"`
	Suspended        bool   `json:"suspended"`
	SuspensionReason string `json:"suspensionReason,omitempty"`
}

type itemJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	ExchangeFor *string   `json:"exchangeFor"`
	Status      string    `json:"status"`
	PostedBy    userJSON  `json:"postedBy"`
	ClaimedBy   *userJSON `json:"claimedBy"`
	ImageIDs    []int64   `json:"imageIds"`
	CreatedAt   string    `json:"createdAt"`
}

type notificationJSON struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

const localDateTime = "2006-01-02T15:04:05"

func (u *User) json() userJSON {
	return userJSON{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Address:          u.Address,
		Location:         u.Location,
		Role:             u.Role,
		Suspended:        u.SuspensionReason != "",
		SuspensionReason: u.SuspensionReason,
	}
}
