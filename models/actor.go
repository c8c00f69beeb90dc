package models

// Roles supplied by the authentication middleware. The core trusts these
// verbatim.
const (
	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleDriver     = "DRIVER"
)

// Actor is the authenticated identity passed explicitly into every core
// call. Never read from ambient state.
type Actor struct {
	UserID int
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}
