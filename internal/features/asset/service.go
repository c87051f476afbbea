package asset

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/role"

	"go.mongodb.org/mongo-driver/bson"
)

type AssetService interface {
	CreateAsset(ctx context.Context, req *CreateAssetRequest) (*Asset, error)
	GetAsset(ctx context.Context, id string) (*Asset, error)
	ListAssets(ctx context.Context, userID string, category, status string, page, limit int64) ([]Asset, int64, error)
	UpdateAsset(ctx context.Context, id string, req *UpdateAssetRequest) error
	DeleteAsset(ctx context.Context, id string) error
	AssignAsset(ctx context.Context, id, userID string) error
	ReleaseAsset(ctx context.Context, id string) error
}

type AssetServiceImpl struct {
	Repo         AssetRepository
	Users        role.UserFinder
	Access       role.AccessService
	AuditService audit.AuditService
}

func NewAssetService(repo AssetRepository, users role.UserFinder, access role.AccessService, auditService audit.AuditService) AssetService {
	return &AssetServiceImpl{
		Repo:         repo,
		Users:        users,
		Access:       access,
		AuditService: auditService,
	}
}

func (s *AssetServiceImpl) CreateAsset(ctx context.Context, req *CreateAssetRequest) (*Asset, error) {
	if existing, err := s.Repo.FindByTag(ctx, req.Tag); err == nil && existing != nil {
		return nil, fmt.Errorf("asset tag %q already in use", req.Tag)
	}

	now := time.Now()
	asset := &Asset{
		Tag:           req.Tag,
		Name:          req.Name,
		Category:      req.Category,
		SerialNumber:  req.SerialNumber,
		Status:        StatusAvailable,
		ProjectID:     req.ProjectID,
		PurchaseDate:  req.PurchaseDate,
		PurchasePrice: req.PurchasePrice,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.Create(ctx, asset); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "asset", asset.ID.Hex(), map[string]models.Change{
		"tag": {New: asset.Tag},
	})
	return asset, nil
}

func (s *AssetServiceImpl) GetAsset(ctx context.Context, id string) (*Asset, error) {
	return s.Repo.FindByID(ctx, id)
}

// ListAssets shows the whole inventory to globally cleared roles. Other
// users see assets assigned to them or attached to their projects.
func (s *AssetServiceImpl) ListAssets(ctx context.Context, userID string, category, status string, page, limit int64) ([]Asset, int64, error) {
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
	if !s.Access.Resolver().CanAccessGlobalAssets(user) {
		filter["$or"] = []bson.M{
			{"assigned_to": userID},
			{"project_id": bson.M{"$in": user.Projects}},
		}
	}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		filter["status"] = status
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *AssetServiceImpl) UpdateAsset(ctx context.Context, id string, req *UpdateAssetRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Category != "" {
		update["category"] = req.Category
	}
	if req.Status != "" {
		if req.Status == StatusAssigned {
			return fmt.Errorf("use the assign operation to hand out assets")
		}
		update["status"] = req.Status
	}
	if req.ProjectID != "" {
		update["project_id"] = req.ProjectID
	}
	if req.Notes != "" {
		update["notes"] = req.Notes
	}

	if err := s.Repo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "asset", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

func (s *AssetServiceImpl) DeleteAsset(ctx context.Context, id string) error {
	asset, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "asset", id, map[string]models.Change{
		"tag": {Old: asset.Tag},
	})
	return nil
}

func (s *AssetServiceImpl) AssignAsset(ctx context.Context, id, userID string) error {
	asset, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if asset.Status != StatusAvailable {
		return ErrNotAvailable
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	now := time.Now()
	if err := s.Repo.Update(ctx, id, bson.M{
		"status":           StatusAssigned,
		"assigned_to":      userID,
		"assigned_to_name": user.DisplayName,
		"assigned_at":      now,
		"updated_at":       now,
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "asset", id, map[string]models.Change{
		"assigned_to": {New: userID},
	})
	return nil
}

func (s *AssetServiceImpl) ReleaseAsset(ctx context.Context, id string) error {
	asset, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if asset.Status != StatusAssigned {
		return ErrNotAssigned
	}

	if err := s.Repo.Update(ctx, id, bson.M{
		"status":           StatusAvailable,
		"assigned_to":      "",
		"assigned_to_name": "",
		"assigned_at":      nil,
		"updated_at":       time.Now(),
	}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "asset", id, map[string]models.Change{
		"assigned_to": {Old: asset.AssignedTo},
	})
	return nil
}
