package constants

//============== EQUIPMENT STATUS LABELS ==============

// Free-text labels written into inventory_items.equipment_status by the
// projector. The UI and the Excel export show them verbatim.
const (
	EquipmentStatusInStore    = "In Store"
	EquipmentStatusBorrowedBy = "Borrowed by %s"
)

// Fallbacks used when a request carries no target metadata or an item
// snapshot cannot be resolved.
const (
	FallbackSite     = "Unknown Site"
	FallbackSnapshot = "Unknown"
)

// Movement dates are plain calendar dates, no time component.
const MovementDateLayout = "2006-01-02"

//============== ID PREFIXES ==============

const (
	RequestIDPrefix      = "REQ-"
	ImportedItemIDPrefix = "IMP-"
	UserIDPrefix         = "USR-"
)

//============== CACHE KEYS ==============

const (
	// Per-user dashboard snapshot. Format: dashboard:<userID>
	CacheKeyDashboard = "dashboard:%s"
)
