package model

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Client-side errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrMalformedRecord  = errors.New("malformed record")
	ErrRemoteFailure    = errors.New("remote failure")
	ErrBusy             = errors.New("request already in progress")
	ErrValidation       = errors.New("validation failed")
)

// RemoteError is a failed backend call. Status is 0 for transport errors.
// Item is set when the rejection carries the backend's current copy of the item.
type RemoteError struct {
	Status  int
	Message string
	Item    *Item
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("remote failure: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("remote failure: %d %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("remote failure: %d %s", e.Status, http.StatusText(e.Status))
	}
}

// Is makes errors.Is(err, ErrRemoteFailure) true for every RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Conflict reports whether the backend rejected the call because the item
// changed underneath the client.
func (e *RemoteError) Conflict() bool {
	return e.Status == http.StatusConflict || e.Item != nil
}

// Rejected reports whether the backend refused the call on its merits: a
// conflict or any other 4xx except 401. The client's copy may be stale then.
func (e *RemoteError) Rejected() bool {
	if e.Conflict() {
		return true
	}
	return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusUnauthorized
}

// Unauthenticated reports whether the backend rejected the credentials.
func (e *RemoteError) Unauthenticated() bool {
	return e.Status == http.StatusUnauthorized
}

// MessageOr returns the human-readable message from err when it carries one,
// else fallback.
func MessageOr(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	var suspended *SuspendedError
	if errors.As(err, &suspended) && suspended.Message != "" {
		return suspended.Message
	}
	return fallback
}

// ValidationErrors maps a form field to its problem.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// SuspendedError is returned by login for a suspended account.
type SuspendedError struct {
	Message string
	Reason  string
	User    *Identity
}

func (e *SuspendedError) Error() string {
	if e.Reason != "" {
		return "account suspended: " + e.Reason
	}
	return "account suspended"
}

// Unwrap lets callers treat a suspension as an authorization failure.
func (e *SuspendedError) Unwrap() error {
	return ErrUnauthorized
}
