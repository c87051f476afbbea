package auth

import (
	"context"
	"errors"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/user"
	"go-opshub/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, email, password, displayName string, role models.SystemRoleTag) (*models.User, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	UserService  user.UserService
	AuditService audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, userService user.UserService, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		UserService:  userService,
		AuditService: auditService,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !u.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	_ = s.UserRepo.Update(ctx, u.ID.Hex(), bson.M{"last_login": now})
	u.LastLogin = &now

	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "user", u.ID.Hex(), nil)

	return token, u, nil
}

func (s *AuthServiceImpl) Register(ctx context.Context, email, password, displayName string, role models.SystemRoleTag) (*models.User, error) {
	if role == "" {
		role = models.RoleAnalyst
	}
	return s.UserService.CreateUser(ctx, email, password, displayName, role)
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}
