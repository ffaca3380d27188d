package auth

// Permission names gate route groups at the boundary. Roles expand to a
// fixed permission set once, at token validation, instead of role checks
// scattered through handlers.
const (
	PermEmployeeViewAll    = "employees:view_all"
	PermEmployeeManage     = "employees:manage"
	PermEmployeeDelete     = "employees:delete"
	PermEmployeeDeactivate = "employees:deactivate"

	PermAttendanceViewAll = "attendance:view_all"
	PermAttendanceMark    = "attendance:mark"

	PermLeaveViewAll = "leave:view_all"
	PermLeaveReview  = "leave:review"

	PermPayrollViewAll  = "payroll:view_all"
	PermPayrollManage   = "payroll:manage"
	PermPayrollGenerate = "payroll:generate"

	PermDashboardAdmin = "dashboard:admin"
)

var hrPermissions = []string{
	PermEmployeeViewAll,
	PermEmployeeManage,
	PermAttendanceViewAll,
	PermAttendanceMark,
	PermLeaveViewAll,
	PermLeaveReview,
	PermPayrollViewAll,
	PermPayrollManage,
	PermDashboardAdmin,
}

var adminPermissions = append([]string{
	PermEmployeeDelete,
	PermEmployeeDeactivate,
	PermPayrollGenerate,
}, hrPermissions...)

// PermissionsForRole returns the capability set for a role. Employees carry
// no cross-employee permissions; everything self-service is allowed by
// authentication alone.
func PermissionsForRole(role Role) []string {
	switch role {
	case RoleAdmin:
		perms := make([]string, len(adminPermissions))
		copy(perms, adminPermissions)
		return perms
	case RoleHR:
		perms := make([]string, len(hrPermissions))
		copy(perms, hrPermissions)
		return perms
	default:
		return nil
	}
}
