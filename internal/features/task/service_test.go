package task

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go-opshub/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeTaskRepo struct {
	tasks map[string]*Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*Task)}
}

func (f *fakeTaskRepo) add(projectID primitive.ObjectID, title, status string, position float64) *Task {
	t := &Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Position:  position,
	}
	f.tasks[t.ID.Hex()] = t
	return t
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *Task) error {
	task.ID = primitive.NewObjectID()
	f.tasks[task.ID.Hex()] = task
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id string) (*Task, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeTaskRepo) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.ProjectID.Hex() == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeTaskRepo) ListByStatus(ctx context.Context, projectID, status string) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.ProjectID.Hex() == projectID && t.Status == status {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, id string, update bson.M) error {
	t, ok := f.tasks[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := update["status"]; ok {
		t.Status = v.(string)
	}
	if v, ok := update["position"]; ok {
		t.Position = v.(float64)
	}
	if v, ok := update["title"]; ok {
		t.Title = v.(string)
	}
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) MaxPosition(ctx context.Context, projectID, status string) (float64, error) {
	max := 0.0
	for _, t := range f.tasks {
		if t.ProjectID.Hex() == projectID && t.Status == status && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (f *fakeTaskRepo) NextAfter(ctx context.Context, projectID, status string, position float64) (*Task, error) {
	var best *Task
	for _, t := range f.tasks {
		if t.ProjectID.Hex() != projectID || t.Status != status || t.Position >= position {
			continue
		}
		if best == nil || t.Position > best.Position {
			best = t
		}
	}
	return best, nil
}

type fakeUsers struct{}

func (fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{DisplayName: "Sam"}, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func TestCreateTaskAppendsToColumn(t *testing.T) {
	projectID := primitive.NewObjectID()
	repo := newFakeTaskRepo()
	repo.add(projectID, "First", StatusTodo, positionGap)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	task, err := svc.CreateTask(context.Background(), projectID.Hex(), &CreateTaskRequest{
		Title:  "Second",
		Status: StatusTodo,
	}, primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if task.Position != 2*positionGap {
		t.Errorf("position = %v, want %v", task.Position, 2*positionGap)
	}
	if task.Status != StatusTodo {
		t.Errorf("status = %q", task.Status)
	}
}

func TestCreateTaskDefaultsToBacklog(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	task, err := svc.CreateTask(context.Background(), primitive.NewObjectID().Hex(), &CreateTaskRequest{
		Title: "Unsorted",
	}, primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Status != StatusBacklog {
		t.Errorf("status = %q, want backlog", task.Status)
	}
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), fakeUsers{}, noopAudit{})

	_, err := svc.CreateTask(context.Background(), primitive.NewObjectID().Hex(), &CreateTaskRequest{
		Title:  "Nope",
		Status: "archived",
	}, primitive.NewObjectID().Hex())
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("CreateTask() error = %v, want ErrInvalidStatus", err)
	}
}

func TestMoveTaskBetweenNeighbours(t *testing.T) {
	projectID := primitive.NewObjectID()
	repo := newFakeTaskRepo()
	a := repo.add(projectID, "A", StatusTodo, 1024)
	b := repo.add(projectID, "B", StatusTodo, 2048)
	moving := repo.add(projectID, "C", StatusBacklog, 1024)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	err := svc.MoveTask(context.Background(), moving.ID.Hex(), &MoveTaskRequest{
		Status:       StatusTodo,
		BeforeTaskID: b.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	got := repo.tasks[moving.ID.Hex()]
	if got.Status != StatusTodo {
		t.Errorf("status = %q, want todo", got.Status)
	}
	want := (a.Position + b.Position) / 2
	if got.Position != want {
		t.Errorf("position = %v, want %v", got.Position, want)
	}
}

func TestMoveTaskToColumnHead(t *testing.T) {
	projectID := primitive.NewObjectID()
	repo := newFakeTaskRepo()
	head := repo.add(projectID, "Head", StatusReview, 1024)
	moving := repo.add(projectID, "C", StatusBacklog, 1024)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	err := svc.MoveTask(context.Background(), moving.ID.Hex(), &MoveTaskRequest{
		Status:       StatusReview,
		BeforeTaskID: head.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	got := repo.tasks[moving.ID.Hex()]
	if got.Position >= head.Position {
		t.Errorf("moved task position %v must sort before %v", got.Position, head.Position)
	}
}

func TestMoveTaskAppend(t *testing.T) {
	projectID := primitive.NewObjectID()
	repo := newFakeTaskRepo()
	tail := repo.add(projectID, "Tail", StatusDone, 4096)
	moving := repo.add(projectID, "C", StatusBacklog, 1024)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	err := svc.MoveTask(context.Background(), moving.ID.Hex(), &MoveTaskRequest{Status: StatusDone})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	got := repo.tasks[moving.ID.Hex()]
	if got.Position <= tail.Position {
		t.Errorf("appended task position %v must sort after %v", got.Position, tail.Position)
	}
}

func TestMoveTaskRejectsForeignTarget(t *testing.T) {
	repo := newFakeTaskRepo()
	moving := repo.add(primitive.NewObjectID(), "C", StatusBacklog, 1024)
	foreign := repo.add(primitive.NewObjectID(), "Other", StatusTodo, 1024)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	err := svc.MoveTask(context.Background(), moving.ID.Hex(), &MoveTaskRequest{
		Status:       StatusTodo,
		BeforeTaskID: foreign.ID.Hex(),
	})
	if err == nil {
		t.Fatal("moving before a task in another project must fail")
	}
}

func TestListBoardIncludesEmptyColumns(t *testing.T) {
	projectID := primitive.NewObjectID()
	repo := newFakeTaskRepo()
	repo.add(projectID, "A", StatusTodo, 1024)
	svc := NewTaskService(repo, fakeUsers{}, noopAudit{})

	board, err := svc.ListBoard(context.Background(), projectID.Hex())
	if err != nil {
		t.Fatalf("ListBoard() error = %v", err)
	}

	if len(board) != len(BoardStatuses) {
		t.Fatalf("board has %d columns, want %d", len(board), len(BoardStatuses))
	}
	for _, status := range BoardStatuses {
		if _, ok := board[status]; !ok {
			t.Errorf("column %q missing from board", status)
		}
	}
	if len(board[StatusTodo]) != 1 {
		t.Errorf("todo column has %d tasks, want 1", len(board[StatusTodo]))
	}
}
