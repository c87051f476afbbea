package role

import (
	"context"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleService interface {
	CreateRole(ctx context.Context, req *CreateRoleRequest) (*models.Role, error)
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest) error
	DeleteRole(ctx context.Context, id string) error
}

type RoleServiceImpl struct {
	RoleRepo     RoleRepository
	AuditService audit.AuditService
}

func NewRoleService(roleRepo RoleRepository, auditService audit.AuditService) RoleService {
	return &RoleServiceImpl{
		RoleRepo:     roleRepo,
		AuditService: auditService,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, req *CreateRoleRequest) (*models.Role, error) {
	role := &models.Role{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Permissions: completePermissions(req.Permissions),
		IsSystem:    false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.RoleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "role", role.ID.Hex(), map[string]models.Change{
		"name": {New: role.Name},
	})

	return role, nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	return s.RoleRepo.FindByID(ctx, id)
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.RoleRepo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest) error {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Permissions != nil {
		update["permissions"] = completePermissions(req.Permissions)
	}
	// System roles keep their name; the field is dropped silently
	if req.Name != "" && !role.IsSystem {
		update["name"] = req.Name
	}

	if err := s.RoleRepo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "role", id, map[string]models.Change{
		"permissions": {Old: role.Permissions, New: req.Permissions},
	})

	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return ErrSystemRoleProtected
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "role", id, map[string]models.Change{
		"name": {Old: role.Name},
	})

	return nil
}

// completePermissions fills any omitted module with an explicit no-access
// entry so stored roles always carry all seven modules.
func completePermissions(perms models.RolePermissions) models.RolePermissions {
	out := models.RolePermissions{}
	for _, m := range models.AllModules {
		if p, ok := perms[m]; ok {
			out[m] = p
		} else {
			out[m] = models.Permission{Actions: []models.Action{}, Scope: models.ScopeNone}
		}
	}
	return out
}
