package announcement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/role"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrAlreadyPublished = errors.New("announcement is already published")

type AnnouncementService interface {
	CreateAnnouncement(ctx context.Context, req *CreateAnnouncementRequest, authorID string) (*Announcement, error)
	GetAnnouncement(ctx context.Context, id string) (*Announcement, error)
	ListAnnouncements(ctx context.Context, status string, page, limit int64) ([]Announcement, int64, error)
	UpdateAnnouncement(ctx context.Context, id string, req *UpdateAnnouncementRequest) error
	PublishAnnouncement(ctx context.Context, id string) (*Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
	ExpirePast(ctx context.Context) (int, error)
}

type AnnouncementServiceImpl struct {
	Repo         AnnouncementRepository
	Access       role.AccessService
	Hub          *Hub
	AuditService audit.AuditService
}

func NewAnnouncementService(repo AnnouncementRepository, access role.AccessService, hub *Hub, auditService audit.AuditService) AnnouncementService {
	return &AnnouncementServiceImpl{
		Repo:         repo,
		Access:       access,
		Hub:          hub,
		AuditService: auditService,
	}
}

func (s *AnnouncementServiceImpl) CreateAnnouncement(ctx context.Context, req *CreateAnnouncementRequest, authorID string) (*Announcement, error) {
	author, _, err := s.Access.LoadUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("author %s not found", authorID)
	}

	severity := req.Severity
	if severity == "" {
		severity = "info"
	}

	now := time.Now()
	ann := &Announcement{
		Title:      req.Title,
		Body:       req.Body,
		Severity:   severity,
		ProjectID:  req.ProjectID,
		Status:     StatusDraft,
		CreatedBy:  authorID,
		AuthorName: author.DisplayName,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Repo.Create(ctx, ann); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "announcement", ann.ID.Hex(), map[string]models.Change{
		"title": {New: ann.Title},
	})
	return ann, nil
}

func (s *AnnouncementServiceImpl) GetAnnouncement(ctx context.Context, id string) (*Announcement, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *AnnouncementServiceImpl) ListAnnouncements(ctx context.Context, status string, page, limit int64) ([]Announcement, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *AnnouncementServiceImpl) UpdateAnnouncement(ctx context.Context, id string, req *UpdateAnnouncementRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Body != "" {
		update["body"] = req.Body
	}
	if req.Severity != "" {
		update["severity"] = req.Severity
	}
	if req.ExpiresAt != nil {
		update["expires_at"] = req.ExpiresAt
	}

	if err := s.Repo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "announcement", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

// PublishAnnouncement flips a draft live and pushes it to every connected
// client.
func (s *AnnouncementServiceImpl) PublishAnnouncement(ctx context.Context, id string) (*Announcement, error) {
	ann, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ann.Status == StatusPublished {
		return nil, ErrAlreadyPublished
	}

	now := time.Now()
	if err := s.Repo.Update(ctx, id, bson.M{
		"status":       StatusPublished,
		"published_at": now,
		"updated_at":   now,
	}); err != nil {
		return nil, err
	}
	ann.Status = StatusPublished
	ann.PublishedAt = &now

	s.Hub.Broadcast(&Event{Type: "published", Announcement: ann})

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "announcement", id, map[string]models.Change{
		"status": {Old: StatusDraft, New: StatusPublished},
	})
	return ann, nil
}

func (s *AnnouncementServiceImpl) DeleteAnnouncement(ctx context.Context, id string) error {
	ann, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "announcement", id, map[string]models.Change{
		"title": {Old: ann.Title},
	})
	return nil
}

// ExpirePast is run by the scheduler. Every expired announcement is
// announced on the socket so clients can drop it.
func (s *AnnouncementServiceImpl) ExpirePast(ctx context.Context) (int, error) {
	expired, err := s.Repo.ExpirePast(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for i := range expired {
		expired[i].Status = StatusExpired
		s.Hub.Broadcast(&Event{Type: "expired", Announcement: &expired[i]})
	}
	return len(expired), nil
}
