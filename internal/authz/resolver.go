package authz

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
)

// Resolver is the portal's authorization decision core. It is a pure
// function set over already-loaded user/role/project data: callers perform
// all I/O and hand the materialized documents in. Every check is
// fail-closed, returning false on any missing input, and no check ever
// returns an error.
//
// The permission model is additive across its two tiers: a system role
// grant is never reduced by project context, and a project role can only
// add capability within its project's boundary.
type Resolver struct {
	superAdmins map[string]struct{}
}

// NewResolver builds a resolver with the configured super-admin email
// allow-list. The list is fixed after construction; rotating admins means
// restarting with new configuration, not editing code.
func NewResolver(cfg *config.Config) *Resolver {
	r := &Resolver{superAdmins: make(map[string]struct{}, len(cfg.SuperAdmins))}
	for _, email := range cfg.SuperAdmins {
		r.superAdmins[email] = struct{}{}
	}
	return r
}

// IsSuperAdmin reports whether the user bypasses all other authorization:
// either their email is on the allow-list or they carry the superuser role
// tag. Every other check consults this first.
func (r *Resolver) IsSuperAdmin(user *models.User) bool {
	if user == nil {
		return false
	}
	if _, ok := r.superAdmins[user.Email]; ok {
		return true
	}
	return user.Role == models.RoleSuperuser
}

// HasPermission is the system-level check: does the user's system role
// grant the action on the module. Scope is deliberately not consulted
// here; it governs which records a query surfaces, not whether the action
// is permitted at all.
func (r *Resolver) HasPermission(user *models.User, role *models.Role, module models.Module, action models.Action) bool {
	if r.IsSuperAdmin(user) {
		return true
	}
	if user == nil || role == nil {
		return false
	}
	perm, ok := role.Permissions[module]
	if !ok {
		return false
	}
	return perm.Allows(action)
}

// HasProjectPermission is the additive two-tier check. System grants win
// unconditionally, for every project, including ones the user is not a
// member of. Only when the system tier denies does the project tier get a
// say, and it requires membership plus a resolvable project role granting
// the action.
func (r *Resolver) HasProjectPermission(user *models.User, role *models.Role, module models.Module, action models.Action, project *models.Project, projectRoles []models.ProjectRole) bool {
	if r.HasPermission(user, role, module, action) {
		return true
	}
	projectRole := r.GetUserProjectRole(user, project, projectRoles)
	if projectRole == nil {
		return false
	}
	perm, ok := projectRole.Permissions[module]
	if !ok {
		return false
	}
	return perm.Allows(action)
}

// GetUserProjectRole resolves the user's project role in this project.
// A missing membership, an unset ProjectRoleID, or an ID pointing at a
// deleted role all resolve to nil, never an error.
func (r *Resolver) GetUserProjectRole(user *models.User, project *models.Project, projectRoles []models.ProjectRole) *models.ProjectRole {
	if user == nil || project == nil || len(projectRoles) == 0 {
		return nil
	}
	member := project.Member(user.ID.Hex())
	if member == nil || member.ProjectRoleID == nil {
		return nil
	}
	for i := range projectRoles {
		if projectRoles[i].ID.Hex() == *member.ProjectRoleID {
			return &projectRoles[i]
		}
	}
	return nil
}

// CanAccessProject reports whether the user may see the project at all.
// Finance in-charge has blanket access to every project; this is a
// deliberate business rule, not an oversight.
func (r *Resolver) CanAccessProject(user *models.User, projectID string) bool {
	if r.IsSuperAdmin(user) {
		return true
	}
	if user == nil {
		return false
	}
	if user.Role == models.RoleFinanceIncharge {
		return true
	}
	return user.HasProject(projectID)
}

// CanManageProject is stricter than CanAccessProject: it requires the
// project-manager role plus membership. Plain membership, or the finance
// blanket access, is not sufficient to manage.
func (r *Resolver) CanManageProject(user *models.User, projectID string) bool {
	if r.IsSuperAdmin(user) {
		return true
	}
	if user == nil {
		return false
	}
	return user.Role == models.RoleProjectManager && user.HasProject(projectID)
}

// CanAccessSensitiveData gates coarse UI-level surfaces such as salary
// fields on expenses. It is not a substitute for the module/action check
// on the underlying mutation; both are enforced.
func (r *Resolver) CanAccessSensitiveData(user *models.User) bool {
	return r.isSuperAdminOrFinance(user)
}

// CanAccessAllProjects reports whether project listings skip membership
// filtering for this user.
func (r *Resolver) CanAccessAllProjects(user *models.User) bool {
	return r.isSuperAdminOrFinance(user)
}

// CanAccessGlobalAssets reports whether asset listings include assets
// outside the user's own projects.
func (r *Resolver) CanAccessGlobalAssets(user *models.User) bool {
	return r.isSuperAdminOrFinance(user)
}

func (r *Resolver) isSuperAdminOrFinance(user *models.User) bool {
	if r.IsSuperAdmin(user) {
		return true
	}
	if user == nil {
		return false
	}
	return user.Role == models.RoleFinanceIncharge
}
