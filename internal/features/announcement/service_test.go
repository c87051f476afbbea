package announcement

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeAnnRepo struct {
	anns map[string]*Announcement
}

func newFakeAnnRepo(anns ...*Announcement) *fakeAnnRepo {
	repo := &fakeAnnRepo{anns: make(map[string]*Announcement)}
	for _, a := range anns {
		repo.anns[a.ID.Hex()] = a
	}
	return repo
}

func (f *fakeAnnRepo) Create(ctx context.Context, ann *Announcement) error {
	ann.ID = primitive.NewObjectID()
	f.anns[ann.ID.Hex()] = ann
	return nil
}

func (f *fakeAnnRepo) FindByID(ctx context.Context, id string) (*Announcement, error) {
	if a, ok := f.anns[id]; ok {
		return a, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeAnnRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Announcement, int64, error) {
	var out []Announcement
	for _, a := range f.anns {
		if st, ok := filter["status"]; ok && a.Status != st {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAnnRepo) Update(ctx context.Context, id string, update bson.M) error {
	a, ok := f.anns[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := update["status"]; ok {
		a.Status = v.(string)
	}
	return nil
}

func (f *fakeAnnRepo) Delete(ctx context.Context, id string) error {
	delete(f.anns, id)
	return nil
}

func (f *fakeAnnRepo) ExpirePast(ctx context.Context, now time.Time) ([]Announcement, error) {
	var expired []Announcement
	for _, a := range f.anns {
		if a.Status == StatusPublished && a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			a.Status = StatusExpired
			expired = append(expired, *a)
		}
	}
	return expired, nil
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

func newTestService(repo *fakeAnnRepo) AnnouncementService {
	access := &fakeAccess{
		user: &models.User{DisplayName: "Ops", Role: models.RoleAnalyst, IsActive: true},
		res:  authz.NewResolver(&config.Config{}),
	}
	return NewAnnouncementService(repo, access, NewHub(zap.NewNop()), noopAudit{})
}

func TestPublishAnnouncement(t *testing.T) {
	ann := &Announcement{ID: primitive.NewObjectID(), Title: "Maintenance window", Status: StatusDraft}
	repo := newFakeAnnRepo(ann)
	svc := newTestService(repo)

	published, err := svc.PublishAnnouncement(context.Background(), ann.ID.Hex())
	if err != nil {
		t.Fatalf("PublishAnnouncement() error = %v", err)
	}
	if published.Status != StatusPublished {
		t.Errorf("status = %q, want published", published.Status)
	}
	if published.PublishedAt == nil {
		t.Error("published_at must be set")
	}
}

func TestPublishAnnouncementTwice(t *testing.T) {
	ann := &Announcement{ID: primitive.NewObjectID(), Status: StatusPublished}
	repo := newFakeAnnRepo(ann)
	svc := newTestService(repo)

	_, err := svc.PublishAnnouncement(context.Background(), ann.ID.Hex())
	if !errors.Is(err, ErrAlreadyPublished) {
		t.Fatalf("PublishAnnouncement() error = %v, want ErrAlreadyPublished", err)
	}
}

func TestExpirePast(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	stale := &Announcement{ID: primitive.NewObjectID(), Status: StatusPublished, ExpiresAt: &past}
	live := &Announcement{ID: primitive.NewObjectID(), Status: StatusPublished, ExpiresAt: &future}
	forever := &Announcement{ID: primitive.NewObjectID(), Status: StatusPublished}
	repo := newFakeAnnRepo(stale, live, forever)
	svc := newTestService(repo)

	n, err := svc.ExpirePast(context.Background())
	if err != nil {
		t.Fatalf("ExpirePast() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d announcements, want 1", n)
	}
	if stale.Status != StatusExpired {
		t.Error("stale announcement must be expired")
	}
	if live.Status != StatusPublished || forever.Status != StatusPublished {
		t.Error("unexpired announcements must stay published")
	}
}

func TestCreateAnnouncementDefaults(t *testing.T) {
	repo := newFakeAnnRepo()
	svc := newTestService(repo)

	ann, err := svc.CreateAnnouncement(context.Background(), &CreateAnnouncementRequest{
		Title: "Welcome",
		Body:  "The portal is live.",
	}, primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("CreateAnnouncement() error = %v", err)
	}
	if ann.Status != StatusDraft {
		t.Errorf("status = %q, want draft", ann.Status)
	}
	if ann.Severity != "info" {
		t.Errorf("severity = %q, want info", ann.Severity)
	}
	if ann.AuthorName != "Ops" {
		t.Errorf("author name = %q", ann.AuthorName)
	}
}
