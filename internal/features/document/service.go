package document

import (
	"context"
	"os"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/role"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type DocumentService interface {
	SaveDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, userID, projectID string, page, limit int64) ([]Document, int64, error)
	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) error
	DeleteDocument(ctx context.Context, id string) error
}

type DocumentServiceImpl struct {
	Repo         DocumentRepository
	Access       role.AccessService
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewDocumentService(repo DocumentRepository, access role.AccessService, auditService audit.AuditService, logger *zap.Logger) DocumentService {
	return &DocumentServiceImpl{
		Repo:         repo,
		Access:       access,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *DocumentServiceImpl) SaveDocument(ctx context.Context, doc *Document) error {
	if err := s.Repo.Create(ctx, doc); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "document", doc.ID.Hex(), map[string]models.Change{
		"title": {New: doc.Title},
	})
	return nil
}

func (s *DocumentServiceImpl) GetDocument(ctx context.Context, id string) (*Document, error) {
	return s.Repo.FindByID(ctx, id)
}

// ListDocuments limits regular users to documents they uploaded, documents
// with no project, and documents in their projects. Super admins see all.
func (s *DocumentServiceImpl) ListDocuments(ctx context.Context, userID, projectID string, page, limit int64) ([]Document, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	user, _, err := s.Access.LoadUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, 0, nil
	}

	filter := bson.M{}
	if !s.Access.Resolver().CanAccessAllProjects(user) {
		filter["$or"] = []bson.M{
			{"uploaded_by": userID},
			{"project_id": ""},
			{"project_id": bson.M{"$in": user.Projects}},
		}
	}
	if projectID != "" {
		filter["project_id"] = projectID
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *DocumentServiceImpl) UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Tags != nil {
		update["tags"] = req.Tags
	}

	if err := s.Repo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "document", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

// DeleteDocument removes the metadata first, then the file. A leftover
// file on disk is logged, not fatal.
func (s *DocumentServiceImpl) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	if doc.Path != "" {
		if err := os.Remove(doc.Path); err != nil && !os.IsNotExist(err) {
			s.Logger.Warn("orphaned document file",
				zap.String("path", doc.Path),
				zap.Error(err))
		}
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "document", id, map[string]models.Change{
		"title": {Old: doc.Title},
	})
	return nil
}
