package domain

// Role is the closed set of account roles. Authorization boundaries compare
// against these constants only.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleCommon Role = "COMMON"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCommon:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
