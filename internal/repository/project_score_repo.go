package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ethicscore/internal/model"
)

// ProjectScoreRepo handles MongoDB operations for project rollups, keyed by
// (projectId, role, includesCombined). The all-roles rollup is stored with an
// empty role.
type ProjectScoreRepo interface {
	Upsert(ctx context.Context, score *model.ProjectScore) error
	Get(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error)
}

type projectScoreRepo struct {
	collection *mongo.Collection
}

// NewProjectScoreRepo creates a new project score repository with indexes
func NewProjectScoreRepo(db *mongo.Database) ProjectScoreRepo {
	repo := &projectScoreRepo{
		collection: db.Collection(projectScoresCollection),
	}
	createIndex(context.Background(), repo.collection, bson.D{
		{Key: "projectId", Value: 1},
		{Key: "role", Value: 1},
		{Key: "includesCombined", Value: 1},
	}, true)
	return repo
}

func (r *projectScoreRepo) Upsert(ctx context.Context, score *model.ProjectScore) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, projectScoreKey(score.ProjectID, score.Role, score.IncludesCombined), score, opts)
	return err
}

func projectScoreKey(projectID, role string, includeCombined bool) bson.M {
	return bson.M{"projectId": projectID, "role": role, "includesCombined": includeCombined}
}

func (r *projectScoreRepo) Get(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	var score model.ProjectScore
	err := r.collection.FindOne(ctx, projectScoreKey(projectID, role, includeCombined)).Decode(&score)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}
