package enums

// AdminRole scopes what a back-office user may do. Only admins manage other
// back-office accounts.
type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin"
	AdminRoleStaff AdminRole = "staff"
)

func (r AdminRole) IsValid() bool {
	return r == AdminRoleAdmin || r == AdminRoleStaff
}

// ParseAdminRole treats blank input as staff.
func ParseAdminRole(value string) (AdminRole, error) {
	if value == "" {
		return AdminRoleStaff, nil
	}
	return parseKnown("admin role", value, []AdminRole{AdminRoleAdmin, AdminRoleStaff})
}
