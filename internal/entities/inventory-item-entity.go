package entities

import (
	"github.com/aarondl/null/v8"

	"equiptrack/pkg/types"
)

// InventoryItem is one physical asset. The descriptive columns come from
// the Excel master list and are never touched by the request lifecycle;
// only the tracking block below changes when a request is approved.
type InventoryItem struct {
	ID            string `json:"id"`
	ItemNo        string `json:"no"`
	Description   string `json:"description"`
	Maker         string `json:"maker"`
	RangeCapacity string `json:"range"`
	TypeModel     string `json:"type_model"`
	SerialNo      string `json:"serial_no"`
	UnitPrice     string `json:"unit_price"`
	PurchaseDate  string `json:"purchase_date"`
	PONo          string `json:"po_no"`
	Quantity      int    `json:"quantity"`
	AssetNo       string `json:"asset_no"`

	// Permanent storage slot; the restock target on return.
	Location string `json:"location"`

	Status         string `json:"status"`
	SEMSCategory   string `json:"sems_category"`
	PhysicalStatus string `json:"physical_status"`
	Remarks        string `json:"remarks"`

	// Tracking block, owned by the projector.
	EquipmentStatus  string      `json:"equipment_status"`
	CurrentLocation  string      `json:"current_location"`
	PersonInCharge   null.String `json:"person_in_charge"`
	LastMovementDate null.String `json:"last_movement_date"`

	Base string `json:"base"`

	types.BaseEntity
}

// IsLentOut reports whether the item is currently in somebody's hands.
// Invariant: PersonInCharge is set exactly when the item is lent out.
func (i InventoryItem) IsLentOut() bool {
	return i.PersonInCharge.Valid && i.PersonInCharge.String != ""
}
