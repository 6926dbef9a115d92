package dto

// DashboardStatsDTO is role-shaped: only the counters relevant to the
// caller's role are filled in.
type DashboardStatsDTO struct {
	Role string `json:"role"`
	Base string `json:"base"`

	// Staff
	MyPendingRequests int `json:"my_pending_requests,omitempty"`
	MyBorrowedItems   int `json:"my_borrowed_items,omitempty"`

	// Storekeeper / manager
	PendingApprovals int `json:"pending_approvals,omitempty"`
	ItemsInBase      int `json:"items_in_base,omitempty"`
	ItemsInStore     int `json:"items_in_store,omitempty"`

	// Admin
	TotalRequests int `json:"total_requests,omitempty"`
	TotalItems    int `json:"total_items,omitempty"`
	TotalUsers    int `json:"total_users,omitempty"`
}
