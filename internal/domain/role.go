package domain

// Role enumerates the account roles recognized by the service.
//
// The set is closed: access rules match on it exhaustively and any value
// outside it is denied everywhere.
type Role string

const (
	RoleManager    Role = "MANAGER"
	RoleSpecialist Role = "SPECIALIST"
	RoleOperator   Role = "OPERATOR"
	RoleClient     Role = "CLIENT"
)

// KnownRoles lists every role the service accepts, in display order.
func KnownRoles() []Role {
	return []Role{RoleManager, RoleSpecialist, RoleOperator, RoleClient}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleSpecialist, RoleOperator, RoleClient:
		return true
	default:
		return false
	}
}

// IsStaff reports whether r belongs to workshop personnel rather than a
// customer account.
func (r Role) IsStaff() bool {
	return r == RoleManager || r == RoleOperator || r == RoleSpecialist
}
