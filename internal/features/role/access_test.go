package role

import (
	"context"
	"testing"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeUserFinder struct {
	users map[string]*models.User
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

type fakeProjectFinder struct {
	project *models.Project
	roles   []models.ProjectRole
}

func (f *fakeProjectFinder) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if f.project == nil {
		return nil, mongo.ErrNoDocuments
	}
	return f.project, nil
}

func (f *fakeProjectFinder) FindRolesByProject(ctx context.Context, projectID string) ([]models.ProjectRole, error) {
	return f.roles, nil
}

func analystRole() *models.Role {
	return &models.Role{
		ID:       primitive.NewObjectID(),
		Tag:      models.RoleAnalyst,
		Name:     "Analyst",
		IsSystem: true,
		Permissions: models.RolePermissions{
			models.ModuleTasks: {Actions: []models.Action{models.ActionRead}, Scope: models.ScopeProject},
		},
	}
}

func TestCheckPermissionUnknownUserDenies(t *testing.T) {
	svc := NewAccessService(
		&fakeUserFinder{},
		newFakeRoleRepo(),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckPermission(context.Background(), primitive.NewObjectID().Hex(), models.ModuleTasks, models.ActionRead)
	if err != nil {
		t.Fatalf("CheckPermission() error = %v", err)
	}
	if allowed {
		t.Error("unknown user must be denied, not erred")
	}
}

func TestCheckPermissionInactiveUserDenies(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: false}
	role := analystRole()
	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(role),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckPermission(context.Background(), user.ID.Hex(), models.ModuleTasks, models.ActionRead)
	if err != nil {
		t.Fatalf("CheckPermission() error = %v", err)
	}
	if allowed {
		t.Error("deactivated user must be denied")
	}
}

func TestCheckPermissionGrantedByRoleDocument(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	role := analystRole()
	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(role),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckPermission(context.Background(), user.ID.Hex(), models.ModuleTasks, models.ActionRead)
	if err != nil {
		t.Fatalf("CheckPermission() error = %v", err)
	}
	if !allowed {
		t.Error("role document grant must allow the action")
	}
}

func TestCheckPermissionDanglingRoleTagDenies(t *testing.T) {
	// No role document matches the user's tag: user gets no system grants
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckPermission(context.Background(), user.ID.Hex(), models.ModuleTasks, models.ActionRead)
	if err != nil {
		t.Fatalf("CheckPermission() error = %v", err)
	}
	if allowed {
		t.Error("user whose role tag has no document must be denied")
	}
}

func TestCheckProjectPermissionSystemGrantSkipsProjectLoad(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	role := analystRole()
	// Project finder would error; the system grant must decide first
	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(role),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckProjectPermission(context.Background(), user.ID.Hex(), primitive.NewObjectID().Hex(), models.ModuleTasks, models.ActionRead)
	if err != nil {
		t.Fatalf("CheckProjectPermission() error = %v", err)
	}
	if !allowed {
		t.Error("system grant must apply to any project")
	}
}

func TestCheckProjectPermissionProjectRoleAdds(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	projectID := primitive.NewObjectID()
	roleID := primitive.NewObjectID()
	roleIDHex := roleID.Hex()

	finder := &fakeProjectFinder{
		project: &models.Project{
			ID: projectID,
			TeamMembers: []models.TeamMember{{
				UserID:        user.ID.Hex(),
				ProjectRoleID: &roleIDHex,
			}},
		},
		roles: []models.ProjectRole{{
			ID:        roleID,
			ProjectID: projectID,
			Name:      "Developer",
			Permissions: models.RolePermissions{
				models.ModuleTasks: {Actions: []models.Action{models.ActionCreate}, Scope: models.ScopeProject},
			},
		}},
	}

	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(analystRole()),
		finder,
		authz.NewResolver(&config.Config{}),
	)

	// Analyst has no tasks:create system grant; the project role supplies it
	allowed, err := svc.CheckProjectPermission(context.Background(), user.ID.Hex(), projectID.Hex(), models.ModuleTasks, models.ActionCreate)
	if err != nil {
		t.Fatalf("CheckProjectPermission() error = %v", err)
	}
	if !allowed {
		t.Error("project role grant must allow the action inside its project")
	}
}

func TestCheckProjectPermissionMissingProjectDenies(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	svc := NewAccessService(
		&fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}},
		newFakeRoleRepo(analystRole()),
		&fakeProjectFinder{},
		authz.NewResolver(&config.Config{}),
	)

	allowed, err := svc.CheckProjectPermission(context.Background(), user.ID.Hex(), primitive.NewObjectID().Hex(), models.ModuleTasks, models.ActionCreate)
	if err != nil {
		t.Fatalf("CheckProjectPermission() error = %v", err)
	}
	if allowed {
		t.Error("missing project must deny, not err")
	}
}
