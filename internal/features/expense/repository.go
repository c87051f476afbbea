package expense

import (
	"context"
	"time"

	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExpenseRepository interface {
	Create(ctx context.Context, exp *Expense) error
	FindByID(ctx context.Context, id string) (*Expense, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]Expense, int64, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	FlagPendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	CreatePolicy(ctx context.Context, policy *ApprovalPolicy) error
	FindPolicyByID(ctx context.Context, id string) (*ApprovalPolicy, error)
	ListActivePolicies(ctx context.Context) ([]ApprovalPolicy, error)
	ListPolicies(ctx context.Context) ([]ApprovalPolicy, error)
	UpdatePolicy(ctx context.Context, id string, update bson.M) error
	DeletePolicy(ctx context.Context, id string) error
}

type ExpenseRepositoryImpl struct {
	Expenses *mongo.Collection
	Policies *mongo.Collection
}

func NewExpenseRepository(db *database.MongodbDB) ExpenseRepository {
	return &ExpenseRepositoryImpl{
		Expenses: db.DB.Collection("expenses"),
		Policies: db.DB.Collection("approval_policies"),
	}
}

func (r *ExpenseRepositoryImpl) Create(ctx context.Context, exp *Expense) error {
	res, err := r.Expenses.InsertOne(ctx, exp)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		exp.ID = oid
	}
	return nil
}

func (r *ExpenseRepositoryImpl) FindByID(ctx context.Context, id string) (*Expense, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var exp Expense
	if err := r.Expenses.FindOne(ctx, bson.M{"_id": objectID}).Decode(&exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Expense, int64, error) {
	total, err := r.Expenses.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.Expenses.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var expenses []Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *ExpenseRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Expenses.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *ExpenseRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Expenses.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// FlagPendingOlderThan marks stale pending expenses for attention and
// returns how many were flagged.
func (r *ExpenseRepositoryImpl) FlagPendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.Expenses.UpdateMany(ctx,
		bson.M{"status": StatusPending, "created_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": StatusFlagged, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *ExpenseRepositoryImpl) CreatePolicy(ctx context.Context, policy *ApprovalPolicy) error {
	res, err := r.Policies.InsertOne(ctx, policy)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		policy.ID = oid
	}
	return nil
}

func (r *ExpenseRepositoryImpl) FindPolicyByID(ctx context.Context, id string) (*ApprovalPolicy, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var policy ApprovalPolicy
	if err := r.Policies.FindOne(ctx, bson.M{"_id": objectID}).Decode(&policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *ExpenseRepositoryImpl) ListActivePolicies(ctx context.Context) ([]ApprovalPolicy, error) {
	return r.listPolicies(ctx, bson.M{"is_active": true})
}

func (r *ExpenseRepositoryImpl) ListPolicies(ctx context.Context) ([]ApprovalPolicy, error) {
	return r.listPolicies(ctx, bson.M{})
}

func (r *ExpenseRepositoryImpl) listPolicies(ctx context.Context, filter bson.M) ([]ApprovalPolicy, error) {
	cursor, err := r.Policies.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "priority", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var policies []ApprovalPolicy
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *ExpenseRepositoryImpl) UpdatePolicy(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Policies.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *ExpenseRepositoryImpl) DeletePolicy(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Policies.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
