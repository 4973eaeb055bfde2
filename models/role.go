package models

import "strings"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleStaff      Role = "STAFF"
)

var Roles = []Role{RoleAdmin, RoleSupervisor, RoleStaff}

// ParseRole accepts any casing and returns the canonical role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleStaff:
		return true
	}
	return false
}

// Capability names one guarded action.
type Capability string

const (
	CapManageRosters       Capability = "manage_rosters"
	CapManageAssignments   Capability = "manage_assignments"
	CapManageUsers         Capability = "manage_users"
	CapManageNotifications Capability = "manage_notifications"
	CapBroadcast           Capability = "broadcast"
	CapViewAnyInbox        Capability = "view_any_inbox"
)

var capabilities = map[Capability][]Role{
	CapManageRosters:       {RoleAdmin, RoleSupervisor},
	CapManageAssignments:   {RoleAdmin, RoleSupervisor},
	CapManageUsers:         {RoleAdmin},
	CapManageNotifications: {RoleAdmin, RoleSupervisor},
	CapBroadcast:           {RoleAdmin},
	CapViewAnyInbox:        {RoleAdmin, RoleSupervisor},
}

// Can is the single authorization check used by middlewares, controllers
// and the socket handler.
func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}
