package auth

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Identity is a resolved session identity. It is constructed only through
// AdminIdentity or OperatorIdentity, so an operator without a unit is not a
// representable state.
type Identity struct {
	id       string
	name     string
	username string
	role     Role
	unit     string
}

// AdminIdentity builds an admin identity. Admins are not scoped to a unit.
func AdminIdentity(id, name, username string) Identity {
	return Identity{id: id, name: name, username: username, role: RoleAdmin}
}

// OperatorIdentity builds an operator identity scoped to unit.
func OperatorIdentity(id, name, username, unit string) (Identity, error) {
	if unit == "" {
		return Identity{}, fmt.Errorf("operator %s has no assigned unit", username)
	}
	return Identity{id: id, name: name, username: username, role: RoleOperator, unit: unit}, nil
}

func (i Identity) ID() string       { return i.id }
func (i Identity) Name() string     { return i.name }
func (i Identity) Username() string { return i.username }
func (i Identity) Role() Role       { return i.role }

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool { return i.role == RoleAdmin }

// Unit returns the operator's organizational unit. Empty for admins.
func (i Identity) Unit() string { return i.unit }
