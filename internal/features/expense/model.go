package expense

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged" // pending too long, needs attention
)

var ErrAlreadyDecided = errors.New("expense has already been decided")

type Expense struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID     string             `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"` // travel, equipment, software, meals, other
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	Status        string             `bson:"status" json:"status"`
	SubmittedBy   string             `bson:"submitted_by" json:"submitted_by"`
	SubmitterName string             `bson:"submitter_name" json:"submitter_name"`
	DecidedBy     string             `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecidedAt     *time.Time         `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecisionNote  string             `bson:"decision_note,omitempty" json:"decision_note,omitempty"`
	AutoApproved  bool               `bson:"auto_approved" json:"auto_approved"`
	PolicyName    string             `bson:"policy_name,omitempty" json:"policy_name,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// ApprovalPolicy is a small script evaluated against each submitted
// expense. The script sees the expense fields as variables and must set
// `approve` to true for the expense to skip manual review. Policies run in
// priority order; the first one that approves wins.
type ApprovalPolicy struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Expression  string             `bson:"expression" json:"expression"`
	Priority    int                `bson:"priority" json:"priority"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type SubmitExpenseRequest struct {
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type DecideExpenseRequest struct {
	Note string `json:"note"`
}

type CreatePolicyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Expression  string `json:"expression"`
	Priority    int    `json:"priority"`
}

type UpdatePolicyRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
