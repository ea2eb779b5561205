package utils

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	GuestPermission     = "guest"
)

func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest config-level permission the invoker
// holds. The per-role moderation gate stored in each guild's database is
// checked separately through the actor.
func CheckPermission(userRoleIDs []string, userID string, adminRoleIDs, developerUserIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}
	for _, roleID := range userRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}
	return GuestPermission
}
