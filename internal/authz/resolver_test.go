package authz

import (
	"testing"

	"go-opshub/internal/common/models"
	"go-opshub/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestResolver(superAdmins ...string) *Resolver {
	return NewResolver(&config.Config{SuperAdmins: superAdmins})
}

func testUser(email string, tag models.SystemRoleTag, projects ...string) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Role:     tag,
		Projects: projects,
		IsActive: true,
	}
}

func grantRole(tag models.SystemRoleTag, module models.Module, actions ...models.Action) *models.Role {
	perms := models.RolePermissions{}
	for _, m := range models.AllModules {
		perms[m] = models.Permission{Actions: []models.Action{}, Scope: models.ScopeNone}
	}
	perms[module] = models.Permission{Actions: actions, Scope: models.ScopeProject}
	return &models.Role{
		ID:          primitive.NewObjectID(),
		Tag:         tag,
		Name:        SystemRoleName(tag),
		IsSystem:    true,
		Permissions: perms,
	}
}

func projectWith(members ...models.TeamMember) *models.Project {
	return &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        "Apollo",
		Status:      "active",
		TeamMembers: members,
	}
}

func TestIsSuperAdmin(t *testing.T) {
	r := newTestResolver("root@x.com")

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"nil user", nil, false},
		{"allow-listed email with lowly role", testUser("root@x.com", models.RoleAnalyst), true},
		{"superuser tag with plain email", testUser("someone@x.com", models.RoleSuperuser), true},
		{"plain analyst", testUser("analyst@x.com", models.RoleAnalyst), false},
		{"finance in-charge is not super admin", testUser("fin@x.com", models.RoleFinanceIncharge), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.IsSuperAdmin(tt.user); got != tt.want {
				t.Errorf("IsSuperAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	r := newTestResolver("root@x.com")
	role := grantRole(models.RoleAnalyst, models.ModuleTasks, models.ActionRead, models.ActionUpdate)

	tests := []struct {
		name   string
		user   *models.User
		role   *models.Role
		module models.Module
		action models.Action
		want   bool
	}{
		{"granted action", testUser("a@x.com", models.RoleAnalyst), role, models.ModuleTasks, models.ActionRead, true},
		{"second granted action", testUser("a@x.com", models.RoleAnalyst), role, models.ModuleTasks, models.ActionUpdate, true},
		{"action not in list", testUser("a@x.com", models.RoleAnalyst), role, models.ModuleTasks, models.ActionDelete, false},
		{"module with empty actions", testUser("a@x.com", models.RoleAnalyst), role, models.ModuleFinance, models.ActionRead, false},
		{"nil role denies", testUser("a@x.com", models.RoleAnalyst), nil, models.ModuleTasks, models.ActionRead, false},
		{"nil user denies", nil, role, models.ModuleTasks, models.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.HasPermission(tt.user, tt.role, tt.module, tt.action); got != tt.want {
				t.Errorf("HasPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Super admins pass every module/action pair even with no role loaded.
func TestHasPermissionSuperAdminMonotonic(t *testing.T) {
	r := newTestResolver("root@x.com")
	admin := testUser("root@x.com", models.RoleAnalyst)

	for _, m := range models.AllModules {
		for _, a := range []models.Action{models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete} {
			if !r.HasPermission(admin, nil, m, a) {
				t.Errorf("super admin denied %s:%s", m, a)
			}
		}
	}
}

// A role missing a module's entry denies rather than erroring.
func TestHasPermissionAbsentModuleEntry(t *testing.T) {
	r := newTestResolver()
	role := &models.Role{ID: primitive.NewObjectID(), Permissions: models.RolePermissions{}}
	user := testUser("a@x.com", models.RoleAnalyst)

	if r.HasPermission(user, role, models.ModuleTasks, models.ActionRead) {
		t.Error("expected deny for role with no entry for module")
	}
}

func TestHasProjectPermissionAdditivity(t *testing.T) {
	r := newTestResolver()

	// System role grants documents:create. The user is NOT a member of the
	// project, but system grants apply to every project.
	user := testUser("pm@x.com", models.RoleProjectManager, "p1")
	role := grantRole(models.RoleProjectManager, models.ModuleDocuments, models.ActionCreate)
	project := projectWith() // no members at all

	if !r.HasProjectPermission(user, role, models.ModuleDocuments, models.ActionCreate, project, nil) {
		t.Error("system grant must apply to every project, membership or not")
	}
}

func TestHasProjectPermissionProjectRoleOnlyGrant(t *testing.T) {
	r := newTestResolver()

	user := testUser("dev@x.com", models.RoleAnalyst)
	role := grantRole(models.RoleAnalyst, models.ModuleAnnouncements, models.ActionRead) // nothing for tasks:update

	projectRole := models.ProjectRole{
		ID:   primitive.NewObjectID(),
		Name: "Developer",
		Permissions: models.RolePermissions{
			models.ModuleTasks: {Actions: []models.Action{models.ActionRead, models.ActionUpdate}, Scope: models.ScopeProject},
		},
	}
	roleID := projectRole.ID.Hex()
	project := projectWith(models.TeamMember{
		UserID:        user.ID.Hex(),
		Role:          "member",
		ProjectRoleID: &roleID,
	})

	if !r.HasProjectPermission(user, role, models.ModuleTasks, models.ActionUpdate, project, []models.ProjectRole{projectRole}) {
		t.Error("project role granting tasks:update must allow")
	}
	if r.HasProjectPermission(user, role, models.ModuleTasks, models.ActionDelete, project, []models.ProjectRole{projectRole}) {
		t.Error("project role without tasks:delete must deny")
	}
}

func TestHasProjectPermissionDenials(t *testing.T) {
	r := newTestResolver()
	user := testUser("dev@x.com", models.RoleAnalyst)
	role := grantRole(models.RoleAnalyst, models.ModuleAnnouncements, models.ActionRead)

	projectRole := models.ProjectRole{
		ID: primitive.NewObjectID(),
		Permissions: models.RolePermissions{
			models.ModuleTasks: {Actions: []models.Action{models.ActionUpdate}, Scope: models.ScopeProject},
		},
	}
	roleID := projectRole.ID.Hex()
	danglingID := primitive.NewObjectID().Hex()

	tests := []struct {
		name         string
		project      *models.Project
		projectRoles []models.ProjectRole
	}{
		{"nil project", nil, []models.ProjectRole{projectRole}},
		{"nil project roles", projectWith(models.TeamMember{UserID: user.ID.Hex(), ProjectRoleID: &roleID}), nil},
		{"user not a member", projectWith(models.TeamMember{UserID: "someone-else", ProjectRoleID: &roleID}), []models.ProjectRole{projectRole}},
		{"member without project role", projectWith(models.TeamMember{UserID: user.ID.Hex()}), []models.ProjectRole{projectRole}},
		{"dangling project role reference", projectWith(models.TeamMember{UserID: user.ID.Hex(), ProjectRoleID: &danglingID}), []models.ProjectRole{projectRole}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r.HasProjectPermission(user, role, models.ModuleTasks, models.ActionUpdate, tt.project, tt.projectRoles) {
				t.Error("expected deny")
			}
		})
	}
}

func TestGetUserProjectRole(t *testing.T) {
	r := newTestResolver()
	user := testUser("dev@x.com", models.RoleAnalyst)

	projectRole := models.ProjectRole{ID: primitive.NewObjectID(), Name: "Reviewer"}
	roleID := projectRole.ID.Hex()
	project := projectWith(models.TeamMember{UserID: user.ID.Hex(), ProjectRoleID: &roleID})

	got := r.GetUserProjectRole(user, project, []models.ProjectRole{projectRole})
	if got == nil || got.Name != "Reviewer" {
		t.Fatalf("GetUserProjectRole() = %v, want Reviewer", got)
	}

	if r.GetUserProjectRole(nil, project, []models.ProjectRole{projectRole}) != nil {
		t.Error("nil user must resolve to nil")
	}
	if r.GetUserProjectRole(user, nil, []models.ProjectRole{projectRole}) != nil {
		t.Error("nil project must resolve to nil")
	}
	if r.GetUserProjectRole(user, project, nil) != nil {
		t.Error("empty role list must resolve to nil")
	}
}

func TestCanAccessProject(t *testing.T) {
	r := newTestResolver("root@x.com")

	tests := []struct {
		name      string
		user      *models.User
		projectID string
		want      bool
	}{
		{"nil user", nil, "p1", false},
		{"super admin anywhere", testUser("root@x.com", models.RoleAnalyst), "p9", true},
		{"finance in-charge without membership", testUser("fin@x.com", models.RoleFinanceIncharge), "p1", true},
		{"member", testUser("dev@x.com", models.RoleAnalyst, "p1", "p2"), "p2", true},
		{"non-member", testUser("dev@x.com", models.RoleAnalyst, "p1"), "p3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanAccessProject(tt.user, tt.projectID); got != tt.want {
				t.Errorf("CanAccessProject() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageProject(t *testing.T) {
	r := newTestResolver("root@x.com")

	tests := []struct {
		name      string
		user      *models.User
		projectID string
		want      bool
	}{
		{"nil user", nil, "p1", false},
		{"super admin", testUser("root@x.com", models.RoleAnalyst), "p1", true},
		{"pm with membership", testUser("pm@x.com", models.RoleProjectManager, "p1"), "p1", true},
		{"pm without membership", testUser("pm@x.com", models.RoleProjectManager, "p2"), "p1", false},
		{"finance in-charge never manages", testUser("fin@x.com", models.RoleFinanceIncharge, "p1"), "p1", false},
		{"plain member never manages", testUser("dev@x.com", models.RoleAnalyst, "p1"), "p1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanManageProject(tt.user, tt.projectID); got != tt.want {
				t.Errorf("CanManageProject() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregatePredicates(t *testing.T) {
	r := newTestResolver("root@x.com")

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"nil user", nil, false},
		{"super admin", testUser("root@x.com", models.RoleAnalyst), true},
		{"superuser tag", testUser("boss@x.com", models.RoleSuperuser), true},
		{"finance in-charge", testUser("fin@x.com", models.RoleFinanceIncharge), true},
		{"project manager", testUser("pm@x.com", models.RoleProjectManager), false},
		{"analyst", testUser("a@x.com", models.RoleAnalyst), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanAccessSensitiveData(tt.user); got != tt.want {
				t.Errorf("CanAccessSensitiveData() = %v, want %v", got, tt.want)
			}
			if got := r.CanAccessAllProjects(tt.user); got != tt.want {
				t.Errorf("CanAccessAllProjects() = %v, want %v", got, tt.want)
			}
			if got := r.CanAccessGlobalAssets(tt.user); got != tt.want {
				t.Errorf("CanAccessGlobalAssets() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The worked scenario from the design discussion: a project manager with
// no project role entry resolves documents:create through the system tier.
func TestProjectManagerSystemFallback(t *testing.T) {
	r := newTestResolver()

	user := testUser("pm@x.com", models.RoleProjectManager, "p1")
	role := grantRole(models.RoleProjectManager, models.ModuleDocuments, models.ActionCreate, models.ActionRead)
	project := projectWith(models.TeamMember{UserID: user.ID.Hex(), Role: "manager"})

	if !r.HasProjectPermission(user, role, models.ModuleDocuments, models.ActionCreate, project, []models.ProjectRole{}) {
		t.Error("system role grant must resolve without a project role")
	}
}

func TestDefaultProjectRoleTemplates(t *testing.T) {
	templates := DefaultProjectRoles()
	if len(templates) != 4 {
		t.Fatalf("expected 4 default templates, got %d", len(templates))
	}

	wantNames := []string{ProjectAdminRoleName, "Developer", "Reviewer", "Observer"}
	for i, want := range wantNames {
		if templates[i].Name != want {
			t.Errorf("template %d = %q, want %q", i, templates[i].Name, want)
		}
		for _, m := range models.AllModules {
			if _, ok := templates[i].Permissions[m]; !ok {
				t.Errorf("template %q missing module %s", templates[i].Name, m)
			}
		}
	}
}

func TestSystemRolePermissionsComplete(t *testing.T) {
	for _, tag := range models.AllSystemRoleTags {
		perms := SystemRolePermissions(tag)
		for _, m := range models.AllModules {
			if _, ok := perms[m]; !ok {
				t.Errorf("role %s missing module %s", tag, m)
			}
		}
	}
}
