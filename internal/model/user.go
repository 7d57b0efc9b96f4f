package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Role tags an identity.
type Role string

// Roles.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is a signed-in user or admin.
type Identity struct {
	ID               string `json:"id"`
	Role             Role   `json:"role"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	Location         string `json:"location,omitempty"`
	Suspended        bool   `json:"suspended,omitempty"`
	SuspensionReason string `json:"suspensionReason,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Ref returns the identity as an item owner/claimer reference.
func (i *Identity) Ref() UserRef {
	return UserRef{
		ID:      i.ID,
		Name:    i.Name,
		Phone:   i.Phone,
		Address: i.Address,
		Email:   i.Email,
	}
}

// NormalizeIdentity converts a backend user or admin record into an Identity.
// A missing role means a regular user.
func NormalizeIdentity(raw []byte) (*Identity, error) {
	var u rawUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return u.identity()
}

// NormalizeIdentities converts a JSON array of user records.
func NormalizeIdentities(raw []byte) ([]Identity, error) {
	var records []rawUser
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	users := make([]Identity, 0, len(records))
	for i := range records {
		u, err := records[i].identity()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		users = append(users, *u)
	}
	return users, nil
}

func (u *rawUser) identity() (*Identity, error) {
	id, err := opaqueID(u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	role := Role(strings.ToUpper(strings.TrimPrefix(u.Role, "ROLE_")))
	if role == "" {
		role = RoleUser
	}

	return &Identity{
		ID:               id,
		Role:             role,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Address:          u.Address,
		Location:         u.Location,
		Suspended:        u.Suspended || u.SuspensionReason != "",
		SuspensionReason: u.SuspensionReason,
	}, nil
}

// SignupRequest is the registration form.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Location        string `json:"location"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

var (
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
	passwordSpecial    = regexp.MustCompile(`[!@#$%^&*()_+\-={}\[\]:;"'<>,.?/]`)
	kenyanPhonePattern = regexp.MustCompile(`^(\+254|0)7\d{8}$`)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks length and the special-character rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || !passwordSpecial.MatchString(password) {
		return errors.New("password must be at least 8 characters and include a special character")
	}
	return nil
}

// Validate checks the form in the order the fields are presented and reports
// the first problem.
func (r *SignupRequest) Validate() error {
	fail := func(field, msg string) error {
		return ValidationErrors{field: msg}
	}

	if !emailPattern.MatchString(r.Email) {
		return fail("email", "Please enter a valid email address")
	}
	if r.Password != r.ConfirmPassword {
		return fail("confirmPassword", "Passwords do not match")
	}
	if ValidatePassword(r.Password) != nil {
		return fail("password", "Password must be 8+ characters and include at least one special character")
	}
	if !kenyanPhonePattern.MatchString(r.Phone) {
		return fail("phone", "Enter a valid Kenyan phone number e.g. +254712345678 or 0712345678")
	}
	if strings.TrimSpace(r.Location) == "" {
		return fail("location", "Please select your location")
	}
	if strings.TrimSpace(r.Address) == "" {
		return fail("address", "Please select or enter your address")
	}
	return nil
}
