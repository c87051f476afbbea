package announcement

import (
	"context"
	"time"

	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, ann *Announcement) error
	FindByID(ctx context.Context, id string) (*Announcement, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]Announcement, int64, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	ExpirePast(ctx context.Context, now time.Time) ([]Announcement, error)
}

type AnnouncementRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAnnouncementRepository(db *database.MongodbDB) AnnouncementRepository {
	return &AnnouncementRepositoryImpl{
		Collection: db.DB.Collection("announcements"),
	}
}

func (r *AnnouncementRepositoryImpl) Create(ctx context.Context, ann *Announcement) error {
	res, err := r.Collection.InsertOne(ctx, ann)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ann.ID = oid
	}
	return nil
}

func (r *AnnouncementRepositoryImpl) FindByID(ctx context.Context, id string) (*Announcement, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var ann Announcement
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ann); err != nil {
		return nil, err
	}
	return &ann, nil
}

func (r *AnnouncementRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Announcement, int64, error) {
	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.Collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var anns []Announcement
	if err := cursor.All(ctx, &anns); err != nil {
		return nil, 0, err
	}
	return anns, total, nil
}

func (r *AnnouncementRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *AnnouncementRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// ExpirePast flips published announcements whose expiry has passed and
// returns them so the caller can notify clients.
func (r *AnnouncementRepositoryImpl) ExpirePast(ctx context.Context, now time.Time) ([]Announcement, error) {
	filter := bson.M{
		"status":     StatusPublished,
		"expires_at": bson.M{"$ne": nil, "$lt": now},
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var expired []Announcement
	if err := cursor.All(ctx, &expired); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	_, err = r.Collection.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": StatusExpired, "updated_at": now}})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
