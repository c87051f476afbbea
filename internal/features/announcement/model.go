package announcement

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusExpired   = "expired"
)

type Announcement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body" json:"body"`
	Severity    string             `bson:"severity" json:"severity"` // info, warning, critical
	ProjectID   string             `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	AuthorName  string             `bson:"author_name" json:"author_name"`
	PublishedAt *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type CreateAnnouncementRequest struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Severity  string     `json:"severity"`
	ProjectID string     `json:"project_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type UpdateAnnouncementRequest struct {
	Title     string     `json:"title,omitempty"`
	Body      string     `json:"body,omitempty"`
	Severity  string     `json:"severity,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Event is what goes out on the announcement socket.
type Event struct {
	Type         string        `json:"type"` // published, expired
	Announcement *Announcement `json:"announcement"`
}
