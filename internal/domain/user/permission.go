package user

type Permission string

const (
	// Leave Requests
	PermissionLeaveViewOwn        Permission = "leave.view_own"
	PermissionLeaveCreate         Permission = "leave.create"
	PermissionLeaveViewAll        Permission = "leave.view_all"
	PermissionLeaveApproveManager Permission = "leave.approve_manager"
	PermissionLeaveApproveHR      Permission = "leave.approve_hr"

	// Leave Balances
	PermissionLeaveBalanceViewAll Permission = "leave.balance_view_all"
	PermissionLeaveManageBalances Permission = "leave.manage_balances"

	// Leave Types
	PermissionLeaveViewTypes   Permission = "leave.view_types"
	PermissionLeaveManageTypes Permission = "leave.manage_types"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApproveManager,
		PermissionLeaveApproveHR,
		PermissionLeaveBalanceViewAll,
		PermissionLeaveManageBalances,
		PermissionLeaveViewTypes,
		PermissionLeaveManageTypes,
	},
	RoleHR: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApproveHR,
		PermissionLeaveBalanceViewAll,
		PermissionLeaveManageBalances,
		PermissionLeaveViewTypes,
		PermissionLeaveManageTypes,
	},
	RoleManager: {
		// Manager approves the first stage and views team data
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApproveManager,
		PermissionLeaveBalanceViewAll,
		PermissionLeaveViewTypes,
	},
	RoleEmployee: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewTypes,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
