package entity

// Role is the fixed set of user roles, ordered by privilege level.
type Role string

const (
	RoleUser       Role = "user"
	RoleJury       Role = "jury"
	RoleOrganiser  Role = "organiser"
	RoleHost       Role = "host"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Subrole refines a user's role for exhibition features.
type Subrole string

const (
	SubroleNone      Subrole = ""
	SubroleFaculty   Subrole = "faculty"
	SubrolePoster    Subrole = "poster"
	SubroleVisitor   Subrole = "visitor"
	SubroleExhibitor Subrole = "exhibitor"
)

var roleLevels = map[Role]int{
	RoleUser:       1,
	RoleJury:       2,
	RoleOrganiser:  3,
	RoleHost:       4,
	RoleSupervisor: 5,
	RoleAdmin:      6,
	RoleSuperAdmin: 7,
}

// Level returns the privilege level of the role; unknown roles rank below
// every valid role.
func (r Role) Level() int { return roleLevels[r] }

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool { return roleLevels[r] != 0 }

// AtLeast reports whether r has at least the privilege of min.
func (r Role) AtLeast(min Role) bool { return r.Level() >= min.Level() }

// MemberRoles are the roles a host member may carry.
var MemberRoles = []Role{RoleHost, RoleOrganiser, RoleJury}

// ValidMemberRole reports whether r may be assigned through host membership.
func ValidMemberRole(r Role) bool {
	for _, m := range MemberRoles {
		if r == m {
			return true
		}
	}
	return false
}

// ValidSubrole reports whether s is one of the fixed subroles.
func ValidSubrole(s Subrole) bool {
	switch s {
	case SubroleNone, SubroleFaculty, SubrolePoster, SubroleVisitor, SubroleExhibitor:
		return true
	}
	return false
}
