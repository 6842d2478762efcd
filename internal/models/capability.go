package models

// Capability names a permission checked by Account.Can.
type Capability string

const (
	CapabilityManageAccounts  Capability = "accounts:manage"
	CapabilityViewAnalytics   Capability = "analytics:view"
	CapabilityReadAnyUpload   Capability = "uploads:read_any"
	CapabilityViewQuizAnswers Capability = "quiz:view_answers"
)

// RoleCapabilities maps roles to the capabilities they grant.
var RoleCapabilities = map[AccountRole][]Capability{
	RoleAdmin: {
		CapabilityManageAccounts,
		CapabilityViewAnalytics,
		CapabilityReadAnyUpload,
		CapabilityViewQuizAnswers,
	},
	RoleOperator: {},
}

// RoleHas reports whether role grants capability. Unknown roles grant nothing.
func RoleHas(role AccountRole, capability Capability) bool {
	for _, granted := range RoleCapabilities[role] {
		if granted == capability {
			return true
		}
	}
	return false
}
