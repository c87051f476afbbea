package project

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/authz"
	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"
	"go-opshub/internal/features/role"
	"go-opshub/internal/features/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest, creatorID string) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string, page, limit int64) ([]models.Project, int64, error)
	UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) error
	DeleteProject(ctx context.Context, id string) error

	AddMember(ctx context.Context, projectID string, req *AddMemberRequest) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	AssignMemberRole(ctx context.Context, projectID, userID, projectRoleID string) error
	GetMemberRole(ctx context.Context, projectID, userID string) (*models.ProjectRole, error)

	ListProjectRoles(ctx context.Context, projectID string) ([]models.ProjectRole, error)
	CreateProjectRole(ctx context.Context, projectID string, req *CreateProjectRoleRequest) (*models.ProjectRole, error)
	UpdateProjectRole(ctx context.Context, roleID string, req *UpdateProjectRoleRequest) error
	DeleteProjectRole(ctx context.Context, projectID, roleID string) error
}

type ProjectServiceImpl struct {
	Repo         ProjectRepository
	UserRepo     user.UserRepository
	Access       role.AccessService
	AuditService audit.AuditService
}

func NewProjectService(repo ProjectRepository, userRepo user.UserRepository, access role.AccessService, auditService audit.AuditService) ProjectService {
	return &ProjectServiceImpl{
		Repo:         repo,
		UserRepo:     userRepo,
		Access:       access,
		AuditService: auditService,
	}
}

// CreateProject seeds the four default project roles and assigns the
// creating manager the Project Admin role on their membership entry. The
// repository makes the whole bootstrap atomic.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req *CreateProjectRequest, creatorID string) (*models.Project, error) {
	creator, err := s.UserRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load creator: %w", err)
	}

	projectID := primitive.NewObjectID()
	now := time.Now()

	var roles []models.ProjectRole
	var adminRole *models.ProjectRole
	for _, tmpl := range authz.DefaultProjectRoles() {
		pr := models.ProjectRole{
			ID:          primitive.NewObjectID(),
			ProjectID:   projectID,
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Color:       tmpl.Color,
			IsDefault:   true,
			Permissions: tmpl.Permissions,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		roles = append(roles, pr)
		if tmpl.Name == authz.ProjectAdminRoleName {
			adminRole = &roles[len(roles)-1]
		}
	}

	adminRoleID := adminRole.ID.Hex()
	project := &models.Project{
		ID:          projectID,
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
		ManagerID:   creatorID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TeamMembers: []models.TeamMember{{
			UserID:          creatorID,
			UserName:        creator.DisplayName,
			Role:            "manager",
			ProjectRoleID:   &adminRoleID,
			ProjectRoleName: adminRole.Name,
			JoinedAt:        now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.CreateWithDefaults(ctx, project, roles, creatorID); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "project", projectID.Hex(), map[string]models.Change{
		"name": {New: req.Name},
	})

	return project, nil
}

func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.Repo.FindByID(ctx, id)
}

// ListProjects returns the projects the user may see. Super admins and
// finance in-charge see everything; everyone else is filtered to projects
// they are a member of.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context, userID string, page, limit int64) ([]models.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	u, _, err := s.Access.LoadUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if u == nil {
		return nil, 0, nil
	}

	filter := bson.M{}
	if !s.Access.Resolver().CanAccessAllProjects(u) {
		var ids []primitive.ObjectID
		for _, pid := range u.Projects {
			if oid, err := primitive.ObjectIDFromHex(pid); err == nil {
				ids = append(ids, oid)
			}
		}
		filter = bson.M{"$or": []bson.M{
			{"_id": bson.M{"$in": ids}},
			{"team_members.user_id": userID},
		}}
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Status != "" {
		update["status"] = req.Status
	}
	if req.StartDate != nil {
		update["start_date"] = req.StartDate
	}
	if req.EndDate != nil {
		update["end_date"] = req.EndDate
	}

	if err := s.Repo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "project", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id string) error {
	project, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	// Drop the project from every member's list
	for _, m := range project.TeamMembers {
		_ = s.UserRepo.RemoveProject(ctx, m.UserID, id)
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "project", id, map[string]models.Change{
		"name": {Old: project.Name},
	})
	return nil
}

func (s *ProjectServiceImpl) AddMember(ctx context.Context, projectID string, req *AddMemberRequest) error {
	project, err := s.Repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	if project.Member(req.UserID) != nil {
		return ErrAlreadyMember
	}

	member, err := s.UserRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	legacyRole := req.Role
	if legacyRole == "" {
		legacyRole = "member"
	}

	members := append(project.TeamMembers, models.TeamMember{
		UserID:   req.UserID,
		UserName: member.DisplayName,
		Role:     legacyRole,
		JoinedAt: time.Now(),
	})

	if err := s.Repo.SetMembers(ctx, projectID, members); err != nil {
		return err
	}
	if err := s.UserRepo.AddProject(ctx, req.UserID, projectID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionMember, "project", projectID, map[string]models.Change{
		"member_added": {New: req.UserID},
	})
	return nil
}

func (s *ProjectServiceImpl) RemoveMember(ctx context.Context, projectID, userID string) error {
	project, err := s.Repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	var members []models.TeamMember
	found := false
	for _, m := range project.TeamMembers {
		if m.UserID == userID {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		return fmt.Errorf("user %s is not a team member", userID)
	}

	if err := s.Repo.SetMembers(ctx, projectID, members); err != nil {
		return err
	}
	if err := s.UserRepo.RemoveProject(ctx, userID, projectID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionMember, "project", projectID, map[string]models.Change{
		"member_removed": {Old: userID},
	})
	return nil
}

// AssignMemberRole sets or clears a member's project role. The role must
// belong to this project.
func (s *ProjectServiceImpl) AssignMemberRole(ctx context.Context, projectID, userID, projectRoleID string) error {
	project, err := s.Repo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	member := project.Member(userID)
	if member == nil {
		return fmt.Errorf("user %s is not a team member", userID)
	}

	if projectRoleID == "" {
		member.ProjectRoleID = nil
		member.ProjectRoleName = ""
	} else {
		pr, err := s.Repo.FindRoleByID(ctx, projectRoleID)
		if err != nil {
			return fmt.Errorf("project role not found: %w", err)
		}
		if pr.ProjectID != project.ID {
			return fmt.Errorf("project role %s belongs to a different project", projectRoleID)
		}
		member.ProjectRoleID = &projectRoleID
		member.ProjectRoleName = pr.Name
	}

	if err := s.Repo.SetMembers(ctx, projectID, project.TeamMembers); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionMember, "project", projectID, map[string]models.Change{
		"member_role": {New: projectRoleID},
	})
	return nil
}

func (s *ProjectServiceImpl) GetMemberRole(ctx context.Context, projectID, userID string) (*models.ProjectRole, error) {
	u, _, err := s.Access.LoadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	project, err := s.Repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	roles, err := s.Repo.FindRolesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.Access.Resolver().GetUserProjectRole(u, project, roles), nil
}

func (s *ProjectServiceImpl) ListProjectRoles(ctx context.Context, projectID string) ([]models.ProjectRole, error) {
	return s.Repo.FindRolesByProject(ctx, projectID)
}

func (s *ProjectServiceImpl) CreateProjectRole(ctx context.Context, projectID string, req *CreateProjectRoleRequest) (*models.ProjectRole, error) {
	projectOID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	pr := &models.ProjectRole{
		ID:          primitive.NewObjectID(),
		ProjectID:   projectOID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsDefault:   false,
		Permissions: completePermissions(req.Permissions),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.Repo.CreateRole(ctx, pr); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "project_role", pr.ID.Hex(), map[string]models.Change{
		"name": {New: pr.Name},
	})
	return pr, nil
}

func (s *ProjectServiceImpl) UpdateProjectRole(ctx context.Context, roleID string, req *UpdateProjectRoleRequest) error {
	pr, err := s.Repo.FindRoleByID(ctx, roleID)
	if err != nil {
		return err
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Color != "" {
		update["color"] = req.Color
	}
	if req.Permissions != nil {
		update["permissions"] = completePermissions(req.Permissions)
	}
	// Default roles keep their name; the field is dropped silently
	if req.Name != "" && !pr.IsDefault {
		update["name"] = req.Name
	}

	if err := s.Repo.UpdateRole(ctx, roleID, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "project_role", roleID, map[string]models.Change{
		"permissions": {Old: pr.Permissions, New: req.Permissions},
	})
	return nil
}

func (s *ProjectServiceImpl) DeleteProjectRole(ctx context.Context, projectID, roleID string) error {
	pr, err := s.Repo.FindRoleByID(ctx, roleID)
	if err != nil {
		return err
	}

	if pr.IsDefault {
		return ErrDefaultRoleProtected
	}

	if err := s.Repo.DeleteRole(ctx, roleID); err != nil {
		return err
	}
	// Best effort: the resolver degrades dangling references anyway
	_ = s.Repo.ClearRoleRefs(ctx, projectID, roleID)

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "project_role", roleID, map[string]models.Change{
		"name": {Old: pr.Name},
	})
	return nil
}

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
