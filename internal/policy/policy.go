// Package policy decides what a viewer may see and do with an item.
package policy

import "github.com/erazemk/menjava/internal/model"

// CanSeeContactDetails reports whether the viewer may see the owner's phone,
// address and email. Only the current claimer can, and never an admin.
func CanSeeContactDetails(item *model.Item, viewer *model.Identity) bool {
	if item == nil || viewer.IsAdmin() {
		return false
	}
	return item.Status == model.StatusClaimed && model.IsClaimer(item, viewer)
}

// ContactDetails returns the owner's contact block when the viewer may see it.
func ContactDetails(item *model.Item, viewer *model.Identity) (model.UserRef, bool) {
	if !CanSeeContactDetails(item, viewer) {
		return model.UserRef{}, false
	}
	return item.PostedBy, true
}

// CanClaim reports whether the claim control is offered to the viewer.
func CanClaim(item *model.Item, viewer *model.Identity) bool {
	if item == nil || viewer == nil || viewer.IsAdmin() {
		return false
	}
	return item.Status == model.StatusAvailable && !model.IsOwner(item, viewer)
}

// CanUnclaim reports whether the unclaim control is offered to the viewer.
func CanUnclaim(item *model.Item, viewer *model.Identity) bool {
	if item == nil {
		return false
	}
	return item.Status == model.StatusClaimed && model.IsClaimer(item, viewer)
}

// CanEdit reports whether the viewer may edit the item.
func CanEdit(item *model.Item, viewer *model.Identity) bool {
	return !viewer.IsAdmin() && model.IsOwner(item, viewer)
}

// CanDelete reports whether the viewer may delete the item. Owners and admins can.
func CanDelete(item *model.Item, viewer *model.Identity) bool {
	if item == nil {
		return false
	}
	return viewer.IsAdmin() || model.IsOwner(item, viewer)
}
