package actor

import "errors"

// ErrForbidden is returned before any mutation when a role check fails.
var ErrForbidden = errors.New("actor: staff role required")

type Role string

const (
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Actor identifies who is performing an operation. Authentication happens
// upstream; this core only checks the role it is handed.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsStaff() bool { return a.Role == RoleStaff }
