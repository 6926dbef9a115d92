package dto

import "equiptrack/internal/entities"

type InventoryItemDTO struct {
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
	Location      string `json:"location"`

	Status         string `json:"status"`
	SEMSCategory   string `json:"sems_category"`
	PhysicalStatus string `json:"physical_status"`
	Remarks        string `json:"remarks"`

	EquipmentStatus  string  `json:"equipment_status"`
	CurrentLocation  string  `json:"current_location"`
	PersonInCharge   *string `json:"person_in_charge"`
	LastMovementDate *string `json:"last_movement_date"`

	Base string `json:"base"`
}

// UpdateInventoryItemDTO is a partial patch; nil fields stay untouched.
// The tracking block (equipment status, current location, PIC) is owned by
// the projector and is not editable here.
type UpdateInventoryItemDTO struct {
	Description    *string `json:"description" validate:"omitempty,min=1"`
	Maker          *string `json:"maker"`
	RangeCapacity  *string `json:"range"`
	TypeModel      *string `json:"type_model"`
	SerialNo       *string `json:"serial_no"`
	UnitPrice      *string `json:"unit_price"`
	PurchaseDate   *string `json:"purchase_date"`
	PONo           *string `json:"po_no"`
	Quantity       *int    `json:"quantity" validate:"omitempty,min=0"`
	AssetNo        *string `json:"asset_no"`
	Location       *string `json:"location"`
	Status         *string `json:"status"`
	SEMSCategory   *string `json:"sems_category"`
	PhysicalStatus *string `json:"physical_status"`
	Remarks        *string `json:"remarks"`
}

type ImportResultDTO struct {
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Base       string `json:"base"`
	SourceFile string `json:"source_file"`
	Durable    bool   `json:"durable"`
}

func InventoryItemToDTO(item entities.InventoryItem) InventoryItemDTO {
	d := InventoryItemDTO{
		ID:              item.ID,
		ItemNo:          item.ItemNo,
		Description:     item.Description,
		Maker:           item.Maker,
		RangeCapacity:   item.RangeCapacity,
		TypeModel:       item.TypeModel,
		SerialNo:        item.SerialNo,
		UnitPrice:       item.UnitPrice,
		PurchaseDate:    item.PurchaseDate,
		PONo:            item.PONo,
		Quantity:        item.Quantity,
		AssetNo:         item.AssetNo,
		Location:        item.Location,
		Status:          item.Status,
		SEMSCategory:    item.SEMSCategory,
		PhysicalStatus:  item.PhysicalStatus,
		Remarks:         item.Remarks,
		EquipmentStatus: item.EquipmentStatus,
		CurrentLocation: item.CurrentLocation,
		Base:            item.Base,
	}
	if item.PersonInCharge.Valid {
		pic := item.PersonInCharge.String
		d.PersonInCharge = &pic
	}
	if item.LastMovementDate.Valid {
		date := item.LastMovementDate.String
		d.LastMovementDate = &date
	}
	return d
}
