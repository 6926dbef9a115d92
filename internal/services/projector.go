package services

import (
	"fmt"
	"time"

	"github.com/aarondl/null/v8"

	"equiptrack/internal/entities"
	"equiptrack/pkg/constants"
)

// ProjectApproval applies a fully approved request onto one of its items
// and returns the updated copy. Pure overwrite of the tracking block, no
// deltas, so replaying it yields the same result.
//
// Borrow: the item leaves the store and is pinned to the requester; the
// target location and date come from the request, with fallbacks when the
// requester left them empty.
//
// Return: the item goes back to its permanent storage slot. The request's
// target location is advisory only and deliberately ignored here.
func ProjectApproval(req entities.MovementRequest, item entities.InventoryItem, now time.Time) entities.InventoryItem {
	today := now.Format(constants.MovementDateLayout)

	switch req.Type {
	case constants.RequestTypeBorrow:
		item.EquipmentStatus = fmt.Sprintf(constants.EquipmentStatusBorrowedBy, req.StaffName)
		item.PersonInCharge = null.StringFrom(req.StaffName)

		if req.TargetLocation.Valid && req.TargetLocation.String != "" {
			item.CurrentLocation = req.TargetLocation.String
		} else {
			item.CurrentLocation = constants.FallbackSite
		}

		if req.TargetDate.Valid && req.TargetDate.String != "" {
			item.LastMovementDate = null.StringFrom(req.TargetDate.String)
		} else {
			item.LastMovementDate = null.StringFrom(today)
		}

	case constants.RequestTypeReturn:
		item.EquipmentStatus = constants.EquipmentStatusInStore
		item.PersonInCharge = null.String{}
		item.CurrentLocation = item.Location
		item.LastMovementDate = null.StringFrom(today)
	}

	return item
}
