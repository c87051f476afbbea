package user

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	CreateUser(ctx context.Context, email, password, displayName string, role models.SystemRoleTag) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id string, update bson.M) error
	UpdateUserRole(ctx context.Context, id string, role models.SystemRoleTag) error
	SetUserActive(ctx context.Context, id string, active bool) error
	DeleteUser(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, email, password, displayName string, role models.SystemRoleTag) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown system role: %s", role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
		Role:        role,
		Projects:    []string{},
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "user", user.ID.Hex(), map[string]models.Change{
		"email": {New: email},
		"role":  {New: role},
	})

	return user, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.UserRepo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, update bson.M) error {
	// Role and active flag go through their dedicated operations
	delete(update, "role")
	delete(update, "is_active")
	delete(update, "password")
	update["updated_at"] = time.Now()

	if err := s.UserRepo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

func (s *UserServiceImpl) UpdateUserRole(ctx context.Context, id string, role models.SystemRoleTag) error {
	if !role.Valid() {
		return fmt.Errorf("unknown system role: %s", role)
	}

	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Update(ctx, id, bson.M{"role": role, "updated_at": time.Now()}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, map[string]models.Change{
		"role": {Old: user.Role, New: role},
	})
	return nil
}

func (s *UserServiceImpl) SetUserActive(ctx context.Context, id string, active bool) error {
	if err := s.UserRepo.Update(ctx, id, bson.M{"is_active": active, "updated_at": time.Now()}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "user", id, map[string]models.Change{
		"is_active": {New: active},
	})
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "user", id, map[string]models.Change{
		"email": {Old: user.Email},
	})
	return nil
}
