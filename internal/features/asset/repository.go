package asset

import (
	"context"

	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	FindByID(ctx context.Context, id string) (*Asset, error)
	FindByTag(ctx context.Context, tag string) (*Asset, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]Asset, int64, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
}

type AssetRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAssetRepository(db *database.MongodbDB) AssetRepository {
	return &AssetRepositoryImpl{
		Collection: db.DB.Collection("assets"),
	}
}

func (r *AssetRepositoryImpl) Create(ctx context.Context, asset *Asset) error {
	res, err := r.Collection.InsertOne(ctx, asset)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		asset.ID = oid
	}
	return nil
}

func (r *AssetRepositoryImpl) FindByID(ctx context.Context, id string) (*Asset, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var asset Asset
	if err := r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepositoryImpl) FindByTag(ctx context.Context, tag string) (*Asset, error) {
	var asset Asset
	if err := r.Collection.FindOne(ctx, bson.M{"tag": tag}).Decode(&asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Asset, int64, error) {
	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.Collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "tag", Value: 1}}).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var assets []Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func (r *AssetRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *AssetRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
