package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	CurrentUserKey ContextKey = "current_user"
)

// Module is a functional area of the portal subject to independent
// permission grants. The set is closed: extending it means updating the
// permission map of every stored role.
type Module string

const (
	ModuleFinance       Module = "finance"
	ModuleDocuments     Module = "documents"
	ModuleProjects      Module = "projects"
	ModuleAssets        Module = "assets"
	ModuleTasks         Module = "tasks"
	ModuleAnnouncements Module = "announcements"
	ModuleRBAC          Module = "rbac"
)

// AllModules lists every module in a stable order. Role editors and the
// seeders use it to keep permission maps complete.
var AllModules = []Module{
	ModuleFinance,
	ModuleDocuments,
	ModuleProjects,
	ModuleAssets,
	ModuleTasks,
	ModuleAnnouncements,
	ModuleRBAC,
}

// Action is a CRUD operation on a module.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Scope qualifies how broadly a granted action applies. It never decides
// whether an action is allowed; it drives record-visibility filters in the
// repositories.
type Scope string

const (
	ScopeNone    Scope = "none"
	ScopeOwn     Scope = "own"
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

// Permission is one module's grant on a role: the allowed actions plus the
// breadth those actions apply at.
type Permission struct {
	Actions []Action `json:"actions" bson:"actions"`
	Scope   Scope    `json:"scope" bson:"scope"`
}

// Allows reports whether the permission lists the given action.
func (p Permission) Allows(action Action) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// RolePermissions maps every module to its permission. Stored roles always
// carry all seven modules.
type RolePermissions map[Module]Permission

// SystemRoleTag is the closed set of system-level role references carried
// on a user document.
type SystemRoleTag string

const (
	RoleSuperuser       SystemRoleTag = "superuser"
	RoleFinanceIncharge SystemRoleTag = "finance_incharge"
	RoleProjectManager  SystemRoleTag = "project_manager"
	RoleQAManager       SystemRoleTag = "qa_manager"
	RoleAnalyst         SystemRoleTag = "analyst"
)

var AllSystemRoleTags = []SystemRoleTag{
	RoleSuperuser,
	RoleFinanceIncharge,
	RoleProjectManager,
	RoleQAManager,
	RoleAnalyst,
}

// Valid reports whether the tag is one of the known system roles.
func (t SystemRoleTag) Valid() bool {
	for _, tag := range AllSystemRoleTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Role is a system-level role document. Seeded roles are marked IsSystem
// and are protected from deletion and renaming.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tag         SystemRoleTag      `bson:"tag,omitempty" json:"tag,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	IsSystem    bool               `bson:"is_system" json:"is_system"`
	Permissions RolePermissions    `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProjectRole is a per-project role, assignable to that project's team
// members. It adds capability within the project boundary on top of the
// member's system role. IsDefault marks one of the four seeded templates,
// which cannot be deleted or renamed.
type ProjectRole struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Color       string             `bson:"color" json:"color"`
	IsDefault   bool               `bson:"is_default" json:"is_default"`
	Permissions RolePermissions    `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// TeamMember links a user to a project. ProjectRoleID is an optional weak
// reference: a dangling or missing ID means the member falls back to
// system permissions only.
type TeamMember struct {
	UserID          string    `bson:"user_id" json:"user_id"`
	UserName        string    `bson:"user_name" json:"user_name"`
	Role            string    `bson:"role" json:"role"` // manager, lead, member, viewer (legacy, coarse)
	ProjectRoleID   *string   `bson:"project_role_id,omitempty" json:"project_role_id,omitempty"`
	ProjectRoleName string    `bson:"project_role_name,omitempty" json:"project_role_name,omitempty"`
	JoinedAt        time.Time `bson:"joined_at" json:"joined_at"`
}

type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"` // active, on_hold, completed, archived
	ManagerID   string             `bson:"manager_id" json:"manager_id"`
	TeamMembers []TeamMember       `bson:"team_members" json:"team_members"`
	StartDate   *time.Time         `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate     *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Member returns the team member entry for the given user ID, or nil.
// At most one entry exists per user.
func (p *Project) Member(userID string) *TeamMember {
	for i := range p.TeamMembers {
		if p.TeamMembers[i].UserID == userID {
			return &p.TeamMembers[i]
		}
	}
	return nil
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	Role        SystemRoleTag      `bson:"role" json:"role"`
	Projects    []string           `bson:"projects" json:"projects"` // Project IDs the user is a system-level member of
	IsActive    bool               `bson:"is_active" json:"is_active"`
	LastLogin   *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasProject reports whether the project ID is in the user's membership list.
func (u *User) HasProject(projectID string) bool {
	for _, id := range u.Projects {
		if id == projectID {
			return true
		}
	}
	return false
}

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionMember   AuditAction = "MEMBER"
	AuditActionCron     AuditAction = "CRON"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"record_id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
