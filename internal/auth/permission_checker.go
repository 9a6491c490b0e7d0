package auth

import (
	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

var ErrNotOwner = internal.NewForbiddenError("Sin permisos", internal.ErrCodeNotOwner)

// RequireAdmin gates every admin-only operation.
func RequireAdmin(actor *internal.Principal) error {
	if actor == nil || !actor.IsAdmin {
		return internal.ErrAdminRequired
	}
	return nil
}

// CanDeleteEntry allows the owner or any admin.
func CanDeleteEntry(actor *internal.Principal, entry timesheet.Entry) error {
	if actor == nil {
		return ErrNotOwner
	}
	if actor.IsAdmin || entry.UserEmail == actor.Email {
		return nil
	}
	return ErrNotOwner
}

func CanDeleteProject(actor *internal.Principal) error {
	return RequireAdmin(actor)
}
