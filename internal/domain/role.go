// Package domain holds the appointment lifecycle and role-permission rules
// shared by the API server and the dashboard client.
package domain

// Role enum
type Role string

const (
	RoleUser   Role = "User"
	RoleDoctor Role = "Doctor"
	RoleAdmin  Role = "Admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies who is attempting an action.
type Actor struct {
	ID   string
	Role Role
}
