package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	ProjectID    string             `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Filename     string             `bson:"filename" json:"filename"` // original name
	StoredName   string             `bson:"stored_name" json:"-"`
	Path         string             `bson:"path" json:"-"`
	Size         int64              `bson:"size" json:"size"`
	MimeType     string             `bson:"mime_type" json:"mime_type"`
	UploadedBy   string             `bson:"uploaded_by" json:"uploaded_by"`
	UploaderName string             `bson:"uploader_name" json:"uploader_name"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type UpdateDocumentRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
