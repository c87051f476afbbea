package authz

import "go-opshub/internal/common/models"

// none fills the modules a role has no business in. Scope none is
// authoritative even if an actions list were present.
func none() models.Permission {
	return models.Permission{Actions: []models.Action{}, Scope: models.ScopeNone}
}

func perm(scope models.Scope, actions ...models.Action) models.Permission {
	return models.Permission{Actions: actions, Scope: scope}
}

// SystemRolePermissions returns the seeded permission map for a system
// role tag. All seven modules are always present.
func SystemRolePermissions(tag models.SystemRoleTag) models.RolePermissions {
	switch tag {
	case models.RoleSuperuser:
		full := models.RolePermissions{}
		for _, m := range models.AllModules {
			full[m] = perm(models.ScopeGlobal, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete)
		}
		return full
	case models.RoleFinanceIncharge:
		return models.RolePermissions{
			models.ModuleFinance:       perm(models.ScopeGlobal, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
			models.ModuleDocuments:     perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleProjects:      perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleAssets:        perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleTasks:         perm(models.ScopeProject, models.ActionRead),
			models.ModuleAnnouncements: perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleRBAC:          none(),
		}
	case models.RoleProjectManager:
		return models.RolePermissions{
			models.ModuleFinance:       perm(models.ScopeOwn, models.ActionCreate, models.ActionRead),
			models.ModuleDocuments:     perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
			models.ModuleProjects:      perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate),
			models.ModuleAssets:        perm(models.ScopeProject, models.ActionRead, models.ActionUpdate),
			models.ModuleTasks:         perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
			models.ModuleAnnouncements: perm(models.ScopeGlobal, models.ActionCreate, models.ActionRead),
			models.ModuleRBAC:          none(),
		}
	case models.RoleQAManager:
		return models.RolePermissions{
			models.ModuleFinance:       perm(models.ScopeOwn, models.ActionCreate, models.ActionRead),
			models.ModuleDocuments:     perm(models.ScopeProject, models.ActionRead),
			models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead),
			models.ModuleAssets:        perm(models.ScopeOwn, models.ActionRead),
			models.ModuleTasks:         perm(models.ScopeProject, models.ActionRead, models.ActionUpdate),
			models.ModuleAnnouncements: perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleRBAC:          none(),
		}
	case models.RoleAnalyst:
		return models.RolePermissions{
			models.ModuleFinance:       perm(models.ScopeOwn, models.ActionCreate, models.ActionRead),
			models.ModuleDocuments:     perm(models.ScopeProject, models.ActionRead),
			models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead),
			models.ModuleAssets:        perm(models.ScopeOwn, models.ActionRead),
			models.ModuleTasks:         perm(models.ScopeProject, models.ActionRead),
			models.ModuleAnnouncements: perm(models.ScopeGlobal, models.ActionRead),
			models.ModuleRBAC:          none(),
		}
	}
	empty := models.RolePermissions{}
	for _, m := range models.AllModules {
		empty[m] = none()
	}
	return empty
}

// SystemRoleName is the display name for a seeded system role.
func SystemRoleName(tag models.SystemRoleTag) string {
	switch tag {
	case models.RoleSuperuser:
		return "Super User"
	case models.RoleFinanceIncharge:
		return "Finance In-charge"
	case models.RoleProjectManager:
		return "Project Manager"
	case models.RoleQAManager:
		return "QA Manager"
	case models.RoleAnalyst:
		return "Analyst"
	}
	return string(tag)
}

// ProjectRoleTemplate describes one of the four default project roles
// seeded at project creation.
type ProjectRoleTemplate struct {
	Name        string
	Description string
	Color       string
	Permissions models.RolePermissions
}

// ProjectAdminRoleName identifies the template assigned to the creating
// manager's team member entry.
const ProjectAdminRoleName = "Project Admin"

// DefaultProjectRoles returns the four templates created with every
// project. All of them are IsDefault and therefore protected from
// deletion and renaming.
func DefaultProjectRoles() []ProjectRoleTemplate {
	return []ProjectRoleTemplate{
		{
			Name:        ProjectAdminRoleName,
			Description: "Full control over this project's work items",
			Color:       "#d32f2f",
			Permissions: models.RolePermissions{
				models.ModuleFinance:       perm(models.ScopeProject, models.ActionRead),
				models.ModuleDocuments:     perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
				models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead, models.ActionUpdate),
				models.ModuleAssets:        perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
				models.ModuleTasks:         perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete),
				models.ModuleAnnouncements: perm(models.ScopeProject, models.ActionCreate, models.ActionRead),
				models.ModuleRBAC:          none(),
			},
		},
		{
			Name:        "Developer",
			Description: "Creates and progresses tasks and documents",
			Color:       "#1976d2",
			Permissions: models.RolePermissions{
				models.ModuleFinance:       none(),
				models.ModuleDocuments:     perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate),
				models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead),
				models.ModuleAssets:        perm(models.ScopeProject, models.ActionRead),
				models.ModuleTasks:         perm(models.ScopeProject, models.ActionCreate, models.ActionRead, models.ActionUpdate),
				models.ModuleAnnouncements: perm(models.ScopeProject, models.ActionRead),
				models.ModuleRBAC:          none(),
			},
		},
		{
			Name:        "Reviewer",
			Description: "Reviews and updates existing work items",
			Color:       "#388e3c",
			Permissions: models.RolePermissions{
				models.ModuleFinance:       none(),
				models.ModuleDocuments:     perm(models.ScopeProject, models.ActionRead),
				models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead),
				models.ModuleAssets:        perm(models.ScopeProject, models.ActionRead),
				models.ModuleTasks:         perm(models.ScopeProject, models.ActionRead, models.ActionUpdate),
				models.ModuleAnnouncements: perm(models.ScopeProject, models.ActionRead),
				models.ModuleRBAC:          none(),
			},
		},
		{
			Name:        "Observer",
			Description: "Read-only visibility into the project",
			Color:       "#757575",
			Permissions: models.RolePermissions{
				models.ModuleFinance:       none(),
				models.ModuleDocuments:     perm(models.ScopeProject, models.ActionRead),
				models.ModuleProjects:      perm(models.ScopeProject, models.ActionRead),
				models.ModuleAssets:        perm(models.ScopeProject, models.ActionRead),
				models.ModuleTasks:         perm(models.ScopeProject, models.ActionRead),
				models.ModuleAnnouncements: perm(models.ScopeProject, models.ActionRead),
				models.ModuleRBAC:          none(),
			},
		},
	}
}
