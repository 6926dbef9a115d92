package constants

// Request lifecycle statuses. Stored as-is in movement_requests.status.
const (
	StatusPending        = "PENDING"         // waiting for the storekeeper
	StatusPendingManager = "PENDING_MANAGER" // storekeeper approved, waiting for the base manager
	StatusApproved       = "APPROVED"        // fully approved, inventory updated
	StatusRejected       = "REJECTED"
)

// Terminal statuses: once a request lands here it can never change again.
var TerminalStatuses = []string{
	StatusApproved,
	StatusRejected,
}

func IsTerminalStatus(code string) bool {
	for _, s := range TerminalStatuses {
		if s == code {
			return true
		}
	}
	return false
}

const (
	RequestTypeBorrow = "BORROW"
	RequestTypeReturn = "RETURN"
)
