package role

import (
	"context"
	"errors"
	"testing"

	"go-opshub/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRoleRepo struct {
	roles   map[string]*models.Role
	deleted []string
	updates map[string]bson.M
}

func newFakeRoleRepo(roles ...*models.Role) *fakeRoleRepo {
	repo := &fakeRoleRepo{
		roles:   make(map[string]*models.Role),
		updates: make(map[string]bson.M),
	}
	for _, r := range roles {
		repo.roles[r.ID.Hex()] = r
	}
	return repo
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *models.Role) error {
	f.roles[role.ID.Hex()] = role
	return nil
}

func (f *fakeRoleRepo) FindByID(ctx context.Context, id string) (*models.Role, error) {
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeRoleRepo) FindByTag(ctx context.Context, tag models.SystemRoleTag) (*models.Role, error) {
	for _, r := range f.roles {
		if r.Tag == tag {
			return r, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoleRepo) Update(ctx context.Context, id string, update bson.M) error {
	f.updates[id] = update
	return nil
}

func (f *fakeRoleRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.roles, id)
	return nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func TestDeleteSystemRoleProtected(t *testing.T) {
	systemRole := &models.Role{
		ID:       primitive.NewObjectID(),
		Name:     "Super User",
		Tag:      models.RoleSuperuser,
		IsSystem: true,
	}
	repo := newFakeRoleRepo(systemRole)
	svc := NewRoleService(repo, noopAudit{})

	err := svc.DeleteRole(context.Background(), systemRole.ID.Hex())
	if !errors.Is(err, ErrSystemRoleProtected) {
		t.Fatalf("DeleteRole() error = %v, want ErrSystemRoleProtected", err)
	}
	if err.Error() != "Cannot delete system roles" {
		t.Errorf("error message = %q", err.Error())
	}
	if len(repo.deleted) != 0 {
		t.Error("system role must not reach the repository delete")
	}
}

func TestDeleteCustomRole(t *testing.T) {
	custom := &models.Role{ID: primitive.NewObjectID(), Name: "Contractor"}
	repo := newFakeRoleRepo(custom)
	svc := NewRoleService(repo, noopAudit{})

	if err := svc.DeleteRole(context.Background(), custom.ID.Hex()); err != nil {
		t.Fatalf("DeleteRole() error = %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Error("custom role delete must reach the repository")
	}
}

func TestUpdateSystemRoleDropsName(t *testing.T) {
	systemRole := &models.Role{
		ID:       primitive.NewObjectID(),
		Name:     "Analyst",
		Tag:      models.RoleAnalyst,
		IsSystem: true,
	}
	repo := newFakeRoleRepo(systemRole)
	svc := NewRoleService(repo, noopAudit{})

	err := svc.UpdateRole(context.Background(), systemRole.ID.Hex(), &UpdateRoleRequest{
		Name:        "Renamed",
		Description: "still the analyst role",
	})
	if err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	update := repo.updates[systemRole.ID.Hex()]
	if _, ok := update["name"]; ok {
		t.Error("name must be stripped from system role updates")
	}
	if update["description"] != "still the analyst role" {
		t.Error("description update must survive")
	}
}

func TestUpdateCustomRoleKeepsName(t *testing.T) {
	custom := &models.Role{ID: primitive.NewObjectID(), Name: "Contractor"}
	repo := newFakeRoleRepo(custom)
	svc := NewRoleService(repo, noopAudit{})

	if err := svc.UpdateRole(context.Background(), custom.ID.Hex(), &UpdateRoleRequest{Name: "Vendor"}); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	if repo.updates[custom.ID.Hex()]["name"] != "Vendor" {
		t.Error("custom role rename must be applied")
	}
}

func TestCreateRoleCompletesPermissionMap(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := NewRoleService(repo, noopAudit{})

	role, err := svc.CreateRole(context.Background(), &CreateRoleRequest{
		Name: "Contractor",
		Permissions: models.RolePermissions{
			models.ModuleTasks: {Actions: []models.Action{models.ActionRead}, Scope: models.ScopeProject},
		},
	})
	if err != nil {
		t.Fatalf("CreateRole() error = %v", err)
	}

	for _, m := range models.AllModules {
		perm, ok := role.Permissions[m]
		if !ok {
			t.Fatalf("module %s missing from stored permissions", m)
		}
		if m != models.ModuleTasks && perm.Scope != models.ScopeNone {
			t.Errorf("omitted module %s should default to scope none, got %s", m, perm.Scope)
		}
	}
}
