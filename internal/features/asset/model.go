package asset

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusAvailable   = "available"
	StatusAssigned    = "assigned"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

var (
	ErrNotAvailable = errors.New("asset is not available for assignment")
	ErrNotAssigned  = errors.New("asset is not currently assigned")
)

type Asset struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tag            string             `bson:"tag" json:"tag"` // inventory tag, unique
	Name           string             `bson:"name" json:"name"`
	Category       string             `bson:"category" json:"category"` // laptop, monitor, phone, license, furniture, other
	SerialNumber   string             `bson:"serial_number,omitempty" json:"serial_number,omitempty"`
	Status         string             `bson:"status" json:"status"`
	ProjectID      string             `bson:"project_id,omitempty" json:"project_id,omitempty"`
	AssignedTo     string             `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssignedToName string             `bson:"assigned_to_name,omitempty" json:"assigned_to_name,omitempty"`
	AssignedAt     *time.Time         `bson:"assigned_at,omitempty" json:"assigned_at,omitempty"`
	PurchaseDate   *time.Time         `bson:"purchase_date,omitempty" json:"purchase_date,omitempty"`
	PurchasePrice  float64            `bson:"purchase_price,omitempty" json:"purchase_price,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

type CreateAssetRequest struct {
	Tag           string     `json:"tag"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	SerialNumber  string     `json:"serial_number"`
	ProjectID     string     `json:"project_id"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice float64    `json:"purchase_price"`
	Notes         string     `json:"notes"`
}

type UpdateAssetRequest struct {
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
	Status    string `json:"status,omitempty"` // available, maintenance, retired
	ProjectID string `json:"project_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type AssignAssetRequest struct {
	UserID string `json:"user_id"`
}
