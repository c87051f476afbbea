package project

import (
	"errors"
	"time"

	"go-opshub/internal/common/models"
)

// ErrDefaultRoleProtected is returned when a delete targets one of the
// four seeded project roles. The message is part of the API contract.
var ErrDefaultRoleProtected = errors.New("Cannot delete default project roles")

var ErrAlreadyMember = errors.New("user is already a team member")

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // manager, lead, member, viewer
}

type AssignMemberRoleRequest struct {
	ProjectRoleID string `json:"project_role_id"` // empty clears the assignment
}

type CreateProjectRoleRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Color       string                 `json:"color"`
	Permissions models.RolePermissions `json:"permissions"`
}

type UpdateProjectRoleRequest struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Color       string                 `json:"color,omitempty"`
	Permissions models.RolePermissions `json:"permissions,omitempty"`
}
