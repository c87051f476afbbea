package project

import (
	"context"
	"errors"
	"strings"

	"go-opshub/internal/common/models"
	"go-opshub/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectRepository interface {
	CreateWithDefaults(ctx context.Context, project *models.Project, roles []models.ProjectRole, managerID string) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter bson.M, limit, offset int64) ([]models.Project, int64, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	SetMembers(ctx context.Context, id string, members []models.TeamMember) error

	FindRolesByProject(ctx context.Context, projectID string) ([]models.ProjectRole, error)
	FindRoleByID(ctx context.Context, roleID string) (*models.ProjectRole, error)
	CreateRole(ctx context.Context, role *models.ProjectRole) error
	UpdateRole(ctx context.Context, roleID string, update bson.M) error
	DeleteRole(ctx context.Context, roleID string) error
	ClearRoleRefs(ctx context.Context, projectID, roleID string) error
}

type ProjectRepositoryImpl struct {
	client   *mongo.Client
	Projects *mongo.Collection
	Roles    *mongo.Collection
	Users    *mongo.Collection
}

func NewProjectRepository(mongodb *database.MongodbDB) ProjectRepository {
	return &ProjectRepositoryImpl{
		client:   mongodb.Client,
		Projects: mongodb.DB.Collection("projects"),
		Roles:    mongodb.DB.Collection("project_roles"),
		Users:    mongodb.DB.Collection("users"),
	}
}

// CreateWithDefaults inserts the project, its four default roles, and the
// creating manager's membership list entry in one multi-document
// transaction. Standalone mongod has no replica-set transactions; in that
// case the writes run sequentially and the first failure is surfaced.
func (r *ProjectRepositoryImpl) CreateWithDefaults(ctx context.Context, project *models.Project, roles []models.ProjectRole, managerID string) error {
	insert := func(ctx context.Context) error {
		if _, err := r.Projects.InsertOne(ctx, project); err != nil {
			return err
		}
		for i := range roles {
			if _, err := r.Roles.InsertOne(ctx, &roles[i]); err != nil {
				return err
			}
		}
		managerOID, err := primitive.ObjectIDFromHex(managerID)
		if err != nil {
			return err
		}
		_, err = r.Users.UpdateOne(ctx,
			bson.M{"_id": managerOID},
			bson.M{"$addToSet": bson.M{"projects": project.ID.Hex()}})
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, insert(sc)
	})
	if err != nil && isTransactionUnsupported(err) {
		return insert(ctx)
	}
	return err
}

// Standalone servers reject transactions with IllegalOperation (code 20).
func isTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 20 && strings.Contains(cmdErr.Message, "Transaction")
	}
	return false
}

func (r *ProjectRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var project models.Project
	err = r.Projects.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) List(ctx context.Context, filter bson.M, limit, offset int64) ([]models.Project, int64, error) {
	total, err := r.Projects.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.Projects.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Projects.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	if _, err = r.Projects.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return err
	}
	_, err = r.Roles.DeleteMany(ctx, bson.M{"project_id": objectID})
	return err
}

func (r *ProjectRepositoryImpl) SetMembers(ctx context.Context, id string, members []models.TeamMember) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Projects.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"team_members": members}})
	return err
}

func (r *ProjectRepositoryImpl) FindRolesByProject(ctx context.Context, projectID string) ([]models.ProjectRole, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Roles.Find(ctx, bson.M{"project_id": objectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []models.ProjectRole
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *ProjectRepositoryImpl) FindRoleByID(ctx context.Context, roleID string) (*models.ProjectRole, error) {
	objectID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return nil, err
	}

	var role models.ProjectRole
	err = r.Roles.FindOne(ctx, bson.M{"_id": objectID}).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *ProjectRepositoryImpl) CreateRole(ctx context.Context, role *models.ProjectRole) error {
	_, err := r.Roles.InsertOne(ctx, role)
	return err
}

func (r *ProjectRepositoryImpl) UpdateRole(ctx context.Context, roleID string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return err
	}
	_, err = r.Roles.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	return err
}

func (r *ProjectRepositoryImpl) DeleteRole(ctx context.Context, roleID string) error {
	objectID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return err
	}
	_, err = r.Roles.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// ClearRoleRefs eagerly clears member entries pointing at a deleted role.
// The resolver tolerates dangling references either way; this just keeps
// the member list tidy for the UI.
func (r *ProjectRepositoryImpl) ClearRoleRefs(ctx context.Context, projectID, roleID string) error {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return err
	}
	_, err = r.Projects.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$unset": bson.M{
			"team_members.$[m].project_role_id":   "",
			"team_members.$[m].project_role_name": "",
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"m.project_role_id": roleID}},
		}),
	)
	return err
}
