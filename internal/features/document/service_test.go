package document

import (
	"context"
	"testing"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeDocRepo struct {
	docs       map[string]*Document
	lastFilter bson.M
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*Document)}
}

func (f *fakeDocRepo) Create(ctx context.Context, doc *Document) error {
	doc.ID = primitive.NewObjectID()
	f.docs[doc.ID.Hex()] = doc
	return nil
}

func (f *fakeDocRepo) FindByID(ctx context.Context, id string) (*Document, error) {
	if d, ok := f.docs[id]; ok {
		return d, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeDocRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Document, int64, error) {
	f.lastFilter = filter
	var out []Document
	for _, d := range f.docs {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDocRepo) Update(ctx context.Context, id string, update bson.M) error { return nil }

func (f *fakeDocRepo) Delete(ctx context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

type fakeAccess struct {
	user *models.User
	res  *authz.Resolver
}

func (f *fakeAccess) CheckPermission(ctx context.Context, userID string, module models.Module, action models.Action) (bool, error) {
	return false, nil
}

func (f *fakeAccess) CheckProjectPermission(ctx context.Context, userID string, projectID string, module models.Module, action models.Action) (bool, error) {
	return false, nil
}

func (f *fakeAccess) LoadUser(ctx context.Context, userID string) (*models.User, *models.Role, error) {
	return f.user, nil, nil
}

func (f *fakeAccess) Resolver() *authz.Resolver { return f.res }

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func TestListDocumentsScopesRegularUsers(t *testing.T) {
	repo := newFakeDocRepo()
	access := &fakeAccess{
		user: &models.User{Role: models.RoleAnalyst, Projects: []string{"p1"}, IsActive: true},
		res:  authz.NewResolver(&config.Config{}),
	}
	svc := NewDocumentService(repo, access, noopAudit{}, zap.NewNop())

	_, _, err := svc.ListDocuments(context.Background(), "u1", "", 1, 20)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	if _, ok := repo.lastFilter["$or"]; !ok {
		t.Error("regular users must get a scoped filter")
	}
}

func TestListDocumentsUnscopedForSuperAdmin(t *testing.T) {
	repo := newFakeDocRepo()
	access := &fakeAccess{
		user: &models.User{Email: "root@corp.test", Role: models.RoleAnalyst, IsActive: true},
		res:  authz.NewResolver(&config.Config{SuperAdmins: []string{"root@corp.test"}}),
	}
	svc := NewDocumentService(repo, access, noopAudit{}, zap.NewNop())

	_, _, err := svc.ListDocuments(context.Background(), "u1", "", 1, 20)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	if _, ok := repo.lastFilter["$or"]; ok {
		t.Error("super admins must see the full document listing")
	}
}
