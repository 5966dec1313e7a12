package enum

// ── Group A: Borderline (CHECK constrained in DB) ──

const (
	UserRoleSuperAdmin      = "SUPER_ADMIN"
	UserRoleAdmin           = "ADMIN"
	UserRoleRestaurantOwner = "RESTAURANT_OWNER"
	UserRoleStaff           = "STAFF"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	ARFormatGLB  = "GLB"
	ARFormatUSDZ = "USDZ"
)

// DashboardRoles may sign in to the admin dashboard.
var DashboardRoles = []string{UserRoleSuperAdmin, UserRoleAdmin, UserRoleRestaurantOwner, UserRoleStaff}

// CatalogRoles may edit the menu.
var CatalogRoles = []string{UserRoleSuperAdmin, UserRoleAdmin, UserRoleRestaurantOwner}

// UserManagerRoles may manage dashboard accounts.
var UserManagerRoles = []string{UserRoleSuperAdmin, UserRoleAdmin}

func IsValidUserRole(s string) bool {
	switch s {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRoleRestaurantOwner, UserRoleStaff:
		return true
	}
	return false
}
