package constants

const (
	RoleAdmin       = "ADMIN"
	RoleStaff       = "STAFF"
	RoleStorekeeper = "STOREKEEPER"
	RoleBaseManager = "BASE_MANAGER"
)

var AllRoles = []string{RoleAdmin, RoleStaff, RoleStorekeeper, RoleBaseManager}

// Roles allowed to call the decide endpoint at all. Which transition a role
// may actually perform is decided by the transition table, not here.
var ApproverRoles = []string{RoleAdmin, RoleStorekeeper, RoleBaseManager}

func IsApproverRole(code string) bool {
	for _, r := range ApproverRoles {
		if r == code {
			return true
		}
	}
	return false
}
