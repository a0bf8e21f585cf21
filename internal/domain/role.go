package domain

// Role is the application-level role stored on the Profile row. The JWT role
// claim is never trusted; handlers always read the role resolved from the
// database by the auth middleware.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleLandlord    Role = "landlord"
	RoleTenant      Role = "tenant"
	RoleMaintenance Role = "maintenance"
)

// ValidRoles returns every role the platform knows about.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleLandlord, RoleTenant, RoleMaintenance}
}

func (r Role) IsValid() bool {
	for _, valid := range ValidRoles() {
		if r == valid {
			return true
		}
	}
	return false
}

// NavEntry is one navigation affordance rendered in the shared chrome.
type NavEntry struct {
	Route string `json:"route"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// LandingRoute maps a role to its dashboard landing route. Total over Role:
// every known role has its own dashboard, anything else falls back to the
// generic one. This is the single source of truth for role routing; pages
// must not re-derive it.
func (r Role) LandingRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleLandlord:
		return "/landlord/dashboard"
	case RoleTenant:
		return "/tenant/dashboard"
	case RoleMaintenance:
		return "/maintenance/dashboard"
	default:
		return "/dashboard"
	}
}

// NavEntries returns the navigation set for a role. Unknown roles get the
// public default set.
func (r Role) NavEntries() []NavEntry {
	switch r {
	case RoleAdmin:
		return []NavEntry{
			{Route: "/admin/dashboard", Label: "Dashboard", Icon: "dashboard"},
			{Route: "/admin/listings", Label: "Listings", Icon: "home"},
			{Route: "/admin/users", Label: "Users", Icon: "people"},
			{Route: "/admin/maintenance", Label: "Maintenance", Icon: "build"},
			{Route: "/settings", Label: "Settings", Icon: "settings"},
		}
	case RoleLandlord:
		return []NavEntry{
			{Route: "/landlord/dashboard", Label: "Dashboard", Icon: "dashboard"},
			{Route: "/landlord/listings", Label: "My Properties", Icon: "home"},
			{Route: "/landlord/listings/new", Label: "List a Property", Icon: "add"},
			{Route: "/landlord/viewings", Label: "Viewings", Icon: "calendar"},
			{Route: "/settings", Label: "Settings", Icon: "settings"},
		}
	case RoleTenant:
		return []NavEntry{
			{Route: "/tenant/dashboard", Label: "Dashboard", Icon: "dashboard"},
			{Route: "/search", Label: "Search", Icon: "search"},
			{Route: "/tenant/maintenance", Label: "Maintenance", Icon: "build"},
			{Route: "/tenant/viewings", Label: "Viewings", Icon: "calendar"},
			{Route: "/settings", Label: "Settings", Icon: "settings"},
		}
	case RoleMaintenance:
		return []NavEntry{
			{Route: "/maintenance/dashboard", Label: "Dashboard", Icon: "dashboard"},
			{Route: "/maintenance/requests", Label: "Requests", Icon: "build"},
			{Route: "/settings", Label: "Settings", Icon: "settings"},
		}
	default:
		return []NavEntry{
			{Route: "/dashboard", Label: "Dashboard", Icon: "dashboard"},
			{Route: "/search", Label: "Search", Icon: "search"},
		}
	}
}
