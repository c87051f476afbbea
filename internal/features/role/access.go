package role

import (
	"context"
	"errors"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// UserFinder is the slice of the user repository the access layer needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ProjectFinder loads a project and its roles for the two-tier check.
type ProjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindRolesByProject(ctx context.Context, projectID string) ([]models.ProjectRole, error)
}

// AccessService loads the documents an authorization decision needs and
// delegates the decision itself to the pure resolver. Missing documents
// deny; only infrastructure failures surface as errors.
type AccessService interface {
	CheckPermission(ctx context.Context, userID string, module models.Module, action models.Action) (bool, error)
	CheckProjectPermission(ctx context.Context, userID string, projectID string, module models.Module, action models.Action) (bool, error)
	LoadUser(ctx context.Context, userID string) (*models.User, *models.Role, error)
	Resolver() *authz.Resolver
}

type AccessServiceImpl struct {
	UserRepo    UserFinder
	RoleRepo    RoleRepository
	ProjectRepo ProjectFinder
	resolver    *authz.Resolver
}

func NewAccessService(userRepo UserFinder, roleRepo RoleRepository, projectRepo ProjectFinder, resolver *authz.Resolver) AccessService {
	return &AccessServiceImpl{
		UserRepo:    userRepo,
		RoleRepo:    roleRepo,
		ProjectRepo: projectRepo,
		resolver:    resolver,
	}
}

func (s *AccessServiceImpl) Resolver() *authz.Resolver {
	return s.resolver
}

// LoadUser fetches the user and their system role document. A user whose
// role tag has no matching role document gets a nil role, which the
// resolver treats as "no system grants".
func (s *AccessServiceImpl) LoadUser(ctx context.Context, userID string) (*models.User, *models.Role, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	role, err := s.RoleRepo.FindByTag(ctx, user.Role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user, nil, nil
		}
		return nil, nil, err
	}
	return user, role, nil
}

func (s *AccessServiceImpl) CheckPermission(ctx context.Context, userID string, module models.Module, action models.Action) (bool, error) {
	user, role, err := s.LoadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || !user.IsActive {
		return false, nil
	}
	return s.resolver.HasPermission(user, role, module, action), nil
}

func (s *AccessServiceImpl) CheckProjectPermission(ctx context.Context, userID string, projectID string, module models.Module, action models.Action) (bool, error) {
	user, role, err := s.LoadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || !user.IsActive {
		return false, nil
	}

	// System grants decide without touching the project at all
	if s.resolver.HasPermission(user, role, module, action) {
		return true, nil
	}

	project, err := s.ProjectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}

	projectRoles, err := s.ProjectRepo.FindRolesByProject(ctx, projectID)
	if err != nil {
		return false, err
	}

	return s.resolver.HasProjectPermission(user, role, module, action, project, projectRoles), nil
}
