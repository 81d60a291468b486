package models

// Permission is a capability granted to a role
type Permission string

const (
	PermViewProjects      Permission = "projects.view"
	PermManageProjects    Permission = "projects.manage"
	PermDeleteProjects    Permission = "projects.delete"
	PermManagePages       Permission = "pages.manage"
	PermManageAssignments Permission = "assignments.manage"
	PermManageTeam        Permission = "team.manage"
	PermUpdateStatus      Permission = "status.update"
	PermManageIssues      Permission = "issues.manage"
	PermManageAssets      Permission = "assets.manage"
	PermLogTime           Permission = "time.log"
	PermManageEnvironment Permission = "environments.manage"
)

var rolePermissions = map[Role][]Permission{
	RoleProjectLead: {
		PermViewProjects, PermManageProjects, PermManagePages, PermManageAssignments,
		PermManageTeam, PermUpdateStatus, PermManageIssues, PermManageAssets, PermLogTime,
	},
	RoleQA: {
		PermViewProjects, PermUpdateStatus, PermManageIssues, PermManageAssets, PermLogTime,
	},
	RoleATTester: {
		PermViewProjects, PermUpdateStatus, PermManageIssues, PermLogTime,
	},
	RoleFTTester: {
		PermViewProjects, PermUpdateStatus, PermManageIssues, PermLogTime,
	},
	RoleClient: {
		PermViewProjects,
	},
}

// Permissions returns the permission set of a role. Admin holds every permission.
func (r Role) Permissions() map[Permission]bool {
	set := make(map[Permission]bool)
	if r == RoleAdmin {
		for _, perms := range rolePermissions {
			for _, p := range perms {
				set[p] = true
			}
		}
		set[PermDeleteProjects] = true
		set[PermManageEnvironment] = true
		return set
	}
	for _, p := range rolePermissions[r] {
		set[p] = true
	}
	return set
}
