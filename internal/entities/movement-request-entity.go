package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"equiptrack/pkg/types"
)

// RequestItem is the snapshot taken at submission time. It deliberately
// does not follow later edits of the item record.
type RequestItem struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
	SerialNo    string `json:"serialNo"`
}

// MovementRequest is one batch of items a staff member wants to borrow or
// return. Status moves through the lifecycle table; terminal requests are
// immutable.
type MovementRequest struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	StaffID   string        `json:"staffId"`
	StaffName string        `json:"staffName"`
	Base      string        `json:"base"`
	Items     []RequestItem `json:"items"`
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`

	StorekeeperID   null.String `json:"storekeeperId"`
	ManagerID       null.String `json:"managerId"`
	RejectionReason null.String `json:"rejectionReason"`

	TargetLocation null.String `json:"targetLocation"`
	TargetDate     null.String `json:"targetDate"`

	types.BaseEntity
}
