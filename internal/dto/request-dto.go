package dto

import (
	"equiptrack/internal/entities"
	"equiptrack/pkg/constants"
)

type SubmitRequestDTO struct {
	ItemIDs        []string `json:"item_ids" validate:"required,min=1,dive,required"`
	Type           string   `json:"type" validate:"required,request_type"`
	TargetLocation string   `json:"target_location"`
	TargetDate     string   `json:"target_date" validate:"movement_date"`
}

type DecideRequestDTO struct {
	Approve         bool   `json:"approve"`
	RejectionReason string `json:"rejection_reason"`
}

type RequestItemDTO struct {
	ItemID      string `json:"item_id"`
	Description string `json:"description"`
	SerialNo    string `json:"serial_no"`
}

type MovementRequestDTO struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	StaffID   string           `json:"staff_id"`
	StaffName string           `json:"staff_name"`
	Base      string           `json:"base"`
	Items     []RequestItemDTO `json:"items"`
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`

	StorekeeperID   *string `json:"storekeeper_id,omitempty"`
	ManagerID       *string `json:"manager_id,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	TargetLocation  *string `json:"target_location,omitempty"`
	TargetDate      *string `json:"target_date,omitempty"`

	Terminal bool `json:"terminal"`
}

// SubmitResultDTO reports the locally applied submission plus whether the
// durable write went through.
type SubmitResultDTO struct {
	Request  MovementRequestDTO `json:"request"`
	Durable  bool               `json:"durable"`
	Warnings []string           `json:"warnings,omitempty"`
}

// DecisionResultDTO reports the transition outcome. Warnings collect
// per-item projection writes that failed durably; the local view already
// reflects all of them.
type DecisionResultDTO struct {
	Request  MovementRequestDTO `json:"request"`
	Status   string             `json:"status"`
	Durable  bool               `json:"durable"`
	Warnings []string           `json:"warnings,omitempty"`
}

// MovementFormDTO is the payload handed to the external gate-pass form
// generator for a fully approved borrow request.
type MovementFormDTO struct {
	Request         MovementRequestDTO `json:"request"`
	Items           []InventoryItemDTO `json:"items"`
	StorekeeperName string             `json:"storekeeper_name"`
}

func MovementRequestToDTO(req entities.MovementRequest) MovementRequestDTO {
	d := MovementRequestDTO{
		ID:        req.ID,
		Type:      req.Type,
		StaffID:   req.StaffID,
		StaffName: req.StaffName,
		Base:      req.Base,
		Status:    req.Status,
		Timestamp: req.Timestamp.Format("2006-01-02 15:04:05"),
		Terminal:  constants.IsTerminalStatus(req.Status),
	}

	d.Items = make([]RequestItemDTO, 0, len(req.Items))
	for _, it := range req.Items {
		d.Items = append(d.Items, RequestItemDTO{
			ItemID:      it.ItemID,
			Description: it.Description,
			SerialNo:    it.SerialNo,
		})
	}

	if req.StorekeeperID.Valid {
		v := req.StorekeeperID.String
		d.StorekeeperID = &v
	}
	if req.ManagerID.Valid {
		v := req.ManagerID.String
		d.ManagerID = &v
	}
	if req.RejectionReason.Valid {
		v := req.RejectionReason.String
		d.RejectionReason = &v
	}
	if req.TargetLocation.Valid {
		v := req.TargetLocation.String
		d.TargetLocation = &v
	}
	if req.TargetDate.Valid {
		v := req.TargetDate.String
		d.TargetDate = &v
	}

	return d
}
