package models

import "time"

type AdminRole string

const (
	RoleRoot       AdminRole = "ROOT"
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
	RoleManager    AdminRole = "MANAGER"
)

func (r AdminRole) Allowed() bool {
	return r == RoleRoot || r == RoleSuperAdmin || r == RoleManager
}

// AdminUser is a row of the admin roster.
type AdminUser struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      AdminRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminIdentity is what the authorization gate hands to the core. It is used
// only to stamp createdBy/approvedBy/audit fields.
type AdminIdentity struct {
	UID  string    `json:"uid"`
	Role AdminRole `json:"role"`
}
