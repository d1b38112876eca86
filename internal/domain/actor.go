package domain

import "github.com/google/uuid"

type Role string

const (
	RoleCompany          Role = "company"
	RoleTransporter      Role = "transporter"
	RoleFreightForwarder Role = "freight-forwarder"
	RoleAdmin            Role = "admin"
)

var AllRoles = []Role{RoleCompany, RoleTransporter, RoleFreightForwarder, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleCompany, RoleTransporter, RoleFreightForwarder, RoleAdmin:
		return true
	}
	return false
}

// IsProvider reports whether the role may respond to quote requests.
func (r Role) IsProvider() bool {
	return r == RoleTransporter || r == RoleFreightForwarder
}

// IsRequester reports whether the role may post quote requests.
func (r Role) IsRequester() bool {
	return r == RoleCompany
}

// Actor is the authenticated caller of an operation. It is decoded once per
// request and passed explicitly to every service call.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}
