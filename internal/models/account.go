package models

import "time"

// AccountRole represents the roles an account can hold.
type AccountRole string

const (
	RoleOperator AccountRole = "OPERATOR"
	RoleAdmin    AccountRole = "ADMIN"
)

// AccountStatus is the approval state gating compliance and quiz features.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// PlaceholderRestaurantName is assigned to accounts created by identity exchange.
const PlaceholderRestaurantName = "Pending Setup"

// Account represents a restaurant operator stored in the users table.
type Account struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	RestaurantName string        `db:"restaurant_name" json:"restaurant_name"`
	Role           AccountRole   `db:"role" json:"role"`
	Status         AccountStatus `db:"status" json:"status"`
	ApprovedAt     *time.Time    `db:"approved_at" json:"approved_at"`
	ApprovedBy     *string       `db:"approved_by" json:"approved_by"`
	Version        int           `db:"version" json:"version"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// IsApproved reports whether the account may use compliance and quiz features.
func (a *Account) IsApproved() bool {
	return a != nil && a.Status == StatusApproved
}

// Can reports whether the account's role grants capability.
func (a *Account) Can(capability Capability) bool {
	if a == nil {
		return false
	}
	return RoleHas(a.Role, capability)
}

// ProfileField enumerates the columns an account may change on itself.
type ProfileField string

const (
	ProfileFieldName           ProfileField = "name"
	ProfileFieldRestaurantName ProfileField = "restaurant_name"
)

// ProfileFields lists every self-updatable field in column order.
var ProfileFields = []ProfileField{ProfileFieldName, ProfileFieldRestaurantName}

// IsProfileField reports whether key names a self-updatable field.
func IsProfileField(key string) bool {
	for _, field := range ProfileFields {
		if string(field) == key {
			return true
		}
	}
	return false
}

// ProfilePatch is a validated set of profile changes keyed by field.
type ProfilePatch map[ProfileField]string

// StatusChange describes an administrative status transition.
type StatusChange struct {
	Status     AccountStatus
	ApprovedAt *time.Time
	ApprovedBy *string
}
