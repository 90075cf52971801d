package permission

// Role is one of the closed set of principal roles.
type Role string

const (
	// RoleAdmin is the superuser role. Permission checks always pass for it.
	RoleAdmin Role = "admin"
	// RoleTrader can read, write, trade, and view.
	RoleTrader Role = "trader"
	// RoleViewer can read and view only.
	RoleViewer Role = "viewer"
)

// Valid reports whether the role belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrader, RoleViewer:
		return true
	}
	return false
}

// Defaults returns the capability set granted to a role when a session is
// created without an explicit permission override.
func Defaults(r Role) Set {
	switch r {
	case RoleAdmin:
		return All()
	case RoleTrader:
		return NewSet(CapRead, CapWrite, CapTrade, CapView)
	case RoleViewer:
		return NewSet(CapRead, CapView)
	}
	return 0
}
