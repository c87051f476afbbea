package role

import (
	"errors"

	"go-opshub/internal/common/models"
)

// ErrSystemRoleProtected is returned when a delete targets a seeded system
// role. The message is part of the API contract consumed by the UI.
var ErrSystemRoleProtected = errors.New("Cannot delete system roles")

type CreateRoleRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Permissions models.RolePermissions `json:"permissions"`
}

type UpdateRoleRequest struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Permissions models.RolePermissions `json:"permissions,omitempty"`
}
