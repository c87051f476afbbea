package task

import (
	"context"
	"fmt"
	"time"

	"go-opshub/internal/common/models"
	"go-opshub/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserFinder resolves assignee display names.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, projectID string, req *CreateTaskRequest, creatorID string) (*Task, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	ListBoard(ctx context.Context, projectID string) (map[string][]Task, error)
	UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) error
	MoveTask(ctx context.Context, id string, req *MoveTaskRequest) error
	DeleteTask(ctx context.Context, id string) error
}

type TaskServiceImpl struct {
	Repo         TaskRepository
	Users        UserFinder
	AuditService audit.AuditService
}

func NewTaskService(repo TaskRepository, users UserFinder, auditService audit.AuditService) TaskService {
	return &TaskServiceImpl{
		Repo:         repo,
		Users:        users,
		AuditService: auditService,
	}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, projectID string, req *CreateTaskRequest, creatorID string) (*Task, error) {
	projectOID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusBacklog
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	max, err := s.Repo.MaxPosition(ctx, projectID, status)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &Task{
		ProjectID:   projectOID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Position:    max + positionGap,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.AssigneeID != "" {
		assignee, err := s.Users.FindByID(ctx, req.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("load assignee: %w", err)
		}
		task.AssigneeID = req.AssigneeID
		task.AssigneeName = assignee.DisplayName
	}

	if err := s.Repo.Create(ctx, task); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, "task", task.ID.Hex(), map[string]models.Change{
		"title": {New: task.Title},
	})
	return task, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id string) (*Task, error) {
	return s.Repo.FindByID(ctx, id)
}

// ListBoard groups a project's tasks by column, each column sorted by
// position. Empty columns are present so the client always sees the full
// board shape.
func (s *TaskServiceImpl) ListBoard(ctx context.Context, projectID string) (map[string][]Task, error) {
	tasks, err := s.Repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	board := make(map[string][]Task, len(BoardStatuses))
	for _, status := range BoardStatuses {
		board[status] = []Task{}
	}
	for _, t := range tasks {
		board[t.Status] = append(board[t.Status], t)
	}
	return board, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) error {
	update := bson.M{"updated_at": time.Now()}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Priority != "" {
		update["priority"] = req.Priority
	}
	if req.DueDate != nil {
		update["due_date"] = req.DueDate
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			update["assignee_id"] = ""
			update["assignee_name"] = ""
		} else {
			assignee, err := s.Users.FindByID(ctx, *req.AssigneeID)
			if err != nil {
				return fmt.Errorf("load assignee: %w", err)
			}
			update["assignee_id"] = *req.AssigneeID
			update["assignee_name"] = assignee.DisplayName
		}
	}

	if err := s.Repo.Update(ctx, id, update); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "task", id, map[string]models.Change{
		"fields": {New: update},
	})
	return nil
}

// MoveTask changes a task's column and slot. The new position is the
// midpoint between the target neighbours, so only the moved document is
// written.
func (s *TaskServiceImpl) MoveTask(ctx context.Context, id string, req *MoveTaskRequest) error {
	if !ValidStatus(req.Status) {
		return ErrInvalidStatus
	}

	task, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	projectID := task.ProjectID.Hex()

	var position float64
	if req.BeforeTaskID == "" {
		max, err := s.Repo.MaxPosition(ctx, projectID, req.Status)
		if err != nil {
			return err
		}
		position = max + positionGap
	} else {
		before, err := s.Repo.FindByID(ctx, req.BeforeTaskID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return fmt.Errorf("target task not found")
			}
			return err
		}
		if before.ProjectID != task.ProjectID || before.Status != req.Status {
			return fmt.Errorf("target task is not in the destination column")
		}
		prev, err := s.Repo.NextAfter(ctx, projectID, req.Status, before.Position)
		if err != nil {
			return err
		}
		if prev == nil || prev.ID == task.ID {
			position = before.Position / 2
		} else {
			position = (prev.Position + before.Position) / 2
		}
	}

	oldStatus := task.Status
	if err := s.Repo.Update(ctx, id, bson.M{
		"status":     req.Status,
		"position":   position,
		"updated_at": time.Now(),
	}); err != nil {
		return err
	}

	if oldStatus != req.Status {
		_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "task", id, map[string]models.Change{
			"status": {Old: oldStatus, New: req.Status},
		})
	}
	return nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	task, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "task", id, map[string]models.Change{
		"title": {Old: task.Title},
	})
	return nil
}
