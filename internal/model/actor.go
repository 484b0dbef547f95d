package model

// Roles carried in the access token's "role" claim.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Actor is the authenticated caller of an operation. It is resolved by the
// authentication middleware and never computed by the booking core.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
