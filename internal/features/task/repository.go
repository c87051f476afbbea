package task

import (
	"context"

	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	ListByStatus(ctx context.Context, projectID, status string) ([]Task, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	MaxPosition(ctx context.Context, projectID, status string) (float64, error)
	NextAfter(ctx context.Context, projectID, status string, position float64) (*Task, error)
}

type TaskRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTaskRepository(db *database.MongodbDB) TaskRepository {
	return &TaskRepositoryImpl{
		Collection: db.DB.Collection("tasks"),
	}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *Task) error {
	res, err := r.Collection.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		task.ID = oid
	}
	return nil
}

func (r *TaskRepositoryImpl) FindByID(ctx context.Context, id string) (*Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Collection.Find(ctx,
		bson.M{"project_id": objectID},
		options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) ListByStatus(ctx context.Context, projectID, status string) ([]Task, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Collection.Find(ctx,
		bson.M{"project_id": objectID, "status": status},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// MaxPosition returns the highest position in a column, 0 when empty.
func (r *TaskRepositoryImpl) MaxPosition(ctx context.Context, projectID, status string) (float64, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return 0, err
	}

	var task Task
	err = r.Collection.FindOne(ctx,
		bson.M{"project_id": objectID, "status": status},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	return task.Position, nil
}

// NextAfter returns the first task in the column strictly before the given
// position, or nil when the slot is at the head of the column.
func (r *TaskRepositoryImpl) NextAfter(ctx context.Context, projectID, status string, position float64) (*Task, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	var task Task
	err = r.Collection.FindOne(ctx,
		bson.M{"project_id": objectID, "status": status, "position": bson.M{"$lt": position}},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}
