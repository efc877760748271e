package models

// Roles issued by the identity provider.
const (
	RoleFarmer   = "farmer"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleGuest    = "guest"
)

// Principal is the authenticated caller. Handlers build it from the verified
// token and pass it into every service call; services never reach into the
// request context for identity.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
