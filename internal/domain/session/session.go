// Package session describes the authenticated operator behind a request.
package session

type Role string

const (
	RoleAdmin  Role = "administrador"
	RoleSeller Role = "vendedor"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleSeller }

// Session is attached to every mutating call and recorded on the transaction trail.
type Session struct {
	UserID string
	Name   string
	Role   Role
}

func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
