package models

// UserRole is the role claim carried by access tokens.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleOrganizer  UserRole = "organizer"
	RoleInstructor UserRole = "instructor"
	RolePlayer     UserRole = "player"
)

// ResultManagers may generate brackets, confirm rosters and submit results.
var ResultManagers = []UserRole{RoleOrganizer, RoleInstructor, RoleAdmin}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleInstructor, RolePlayer:
		return true
	}
	return false
}
