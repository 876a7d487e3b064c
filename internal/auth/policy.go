package auth

import (
	"slices"

	"auditdesk/pkg/types"
)

// Action names an operation that only some roles may perform. Operations
// without an Action are open to every authenticated user.
type Action string

const (
	ActionManageClients     Action = "clients:manage"
	ActionDeleteClient      Action = "clients:delete"
	ActionCreateProject     Action = "projects:create"
	ActionSetProjectStatus  Action = "projects:status"
	ActionManageTeam        Action = "projects:team"
	ActionDeleteProject     Action = "projects:delete"
	ActionBuildChecklist    Action = "checklists:build"
	ActionRegisterUser      Action = "users:register"
	ActionListStoredObjects Action = "documents:objects"
)

var policy = map[Action][]types.Role{
	ActionManageClients:     {types.RoleAdmin, types.RolePartner},
	ActionDeleteClient:      {types.RoleAdmin},
	ActionCreateProject:     {types.RoleAdmin, types.RolePartner},
	ActionSetProjectStatus:  {types.RoleAdmin, types.RolePartner, types.RoleSeniorAuditor},
	ActionManageTeam:        {types.RoleAdmin, types.RolePartner},
	ActionDeleteProject:     {types.RoleAdmin},
	ActionBuildChecklist:    {types.RoleAdmin, types.RolePartner, types.RoleSeniorAuditor},
	ActionRegisterUser:      {types.RoleAdmin},
	ActionListStoredObjects: {types.RoleAdmin, types.RolePartner},
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role types.Role, action Action) bool {
	roles, ok := policy[action]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}

// RolesFor returns the allow-list for action.
func RolesFor(action Action) []types.Role {
	return slices.Clone(policy[action])
}
