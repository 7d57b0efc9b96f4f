// Package app holds the use cases behind each screen: browsing, the personal
// dashboard, posting and the admin console.
package app

import (
	"errors"
	"log/slog"

	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/model"
)

// Notifier shows user-visible feedback.
type Notifier = claim.Notifier

// Identities exposes the signed-in user and admin.
type Identities interface {
	User() *model.Identity
	Admin() *model.Identity
}

// User-visible messages.
const (
	msgLoginRequired      = "Please login to continue"
	msgAdminRequired      = "Admin login required"
	msgDashboardFailed    = "Failed to load dashboard"
	msgPostedFailed       = "Failed to fetch your posted items"
	msgClaimedFailed      = "Failed to fetch your claimed items"
	msgDeleteOwnOnly      = "You can only delete your own items"
	msgDeleted            = "Item deleted successfully"
	msgDeleteFailed       = "Failed to delete item"
	msgItemsFailed        = "Failed to fetch items"
	msgUsersFailed        = "Failed to fetch users"
	msgReasonRequired     = "Suspension reason is required"
	msgSuspended          = "User suspended"
	msgSuspendFailed      = "Failed to suspend user"
	msgUnsuspended        = "User unsuspended"
	msgUnsuspendFailed    = "Failed to unsuspend user"
	msgUserDeleted        = "User deleted"
	msgUserDeleteFailed   = "Failed to delete user"
	msgPosted             = "Item posted successfully!"
	msgPostFailed         = "Failed to post item"
	msgEditOwnOnly        = "You can only edit your own items"
	msgUpdated            = "Item updated successfully"
	msgUpdateFailed       = "Failed to update item"
	msgLoadItemsFailed    = "Failed to load items"
	msgShowingCachedItems = "Backend unreachable, showing saved items"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// unreachable reports whether err is a transport failure, as opposed to a
// reply from the backend.
func unreachable(err error) bool {
	var remote *model.RemoteError
	return errors.As(err, &remote) && remote.Status == 0
}

// validationMessage returns the first problem of a validation error, in
// field order.
func validationMessage(err error) (string, bool) {
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}
	for _, field := range validationOrder {
		if msg, ok := verrs[field]; ok {
			return msg, true
		}
	}
	for _, msg := range verrs {
		return msg, true
	}
	return "", false
}

var validationOrder = []string{"title", "category", "location", "type", "exchangeFor", "images", "reason"}
