package task

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Board columns, in display order.
const (
	StatusBacklog    = "backlog"
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

var BoardStatuses = []string{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}

var ErrInvalidStatus = errors.New("invalid task status")

// Tasks within a column are ordered by a float position. New tasks are
// appended a fixed gap past the last one; moves drop the task halfway
// between its new neighbours, so reorders touch a single document.
const positionGap = 1024.0

type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID    primitive.ObjectID `bson:"project_id" json:"project_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Status       string             `bson:"status" json:"status"`
	Position     float64            `bson:"position" json:"position"`
	Priority     string             `bson:"priority,omitempty" json:"priority,omitempty"` // low, medium, high, urgent
	AssigneeID   string             `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	AssigneeName string             `bson:"assignee_name,omitempty" json:"assignee_name,omitempty"`
	DueDate      *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CreatedBy    string             `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func ValidStatus(status string) bool {
	for _, s := range BoardStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"` // defaults to backlog
	Priority    string     `json:"priority"`
	AssigneeID  string     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"` // empty string unassigns
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// MoveTaskRequest repositions a task on the board. BeforeTaskID names the
// task it should land in front of; empty means append to the column.
type MoveTaskRequest struct {
	Status       string `json:"status"`
	BeforeTaskID string `json:"before_task_id"`
}
