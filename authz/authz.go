// Package authz is the single place permission rules live; handlers never
// re-derive role checks ad hoc.
package authz

import (
	"github.com/google/uuid"

	"github.com/cafedesk/pos-backend/models"
)

type Action string

const (
	ActionSetOrderStatus Action = "order:set_status"
	ActionRateOrder      Action = "order:rate"
	ActionViewOrder      Action = "order:view"
	ActionManageMenu     Action = "menu:manage"
	ActionManageTables   Action = "tables:manage"
	ActionManageUsers    Action = "users:manage"
	ActionViewReports    Action = "reports:view"
	ActionUploadImage    Action = "upload:image"
)

// Actor is the authenticated principal as supplied by the identity layer.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func (a Actor) isStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleStaff
}

// Can decides whether the actor may perform action on the resource owned by
// owner (nil for unowned resources).
func Can(actor Actor, action Action, owner *uuid.UUID) bool {
	switch action {
	case ActionRateOrder:
		// only the original customer may rate
		return owner != nil && *owner == actor.ID
	case ActionViewOrder:
		if actor.isStaff() {
			return true
		}
		return owner != nil && *owner == actor.ID
	case ActionSetOrderStatus, ActionManageMenu, ActionManageTables, ActionUploadImage:
		return actor.isStaff()
	case ActionManageUsers, ActionViewReports:
		return actor.Role == models.RoleAdmin
	default:
		return false
	}
}
