package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ethicscore/internal/model"
)

// ScoreRepo handles MongoDB operations for derived scores. There is at most
// one Score per (projectId, userId, questionnaireKey); a recompute replaces it.
type ScoreRepo interface {
	Upsert(ctx context.Context, score *model.Score) error
	Get(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Score, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Score, error)
	ListByUser(ctx context.Context, projectID, userID string) ([]*model.Score, error)
}

type scoreRepo struct {
	collection *mongo.Collection
}

// NewScoreRepo creates a new score repository with indexes
func NewScoreRepo(db *mongo.Database) ScoreRepo {
	repo := &scoreRepo{
		collection: db.Collection(scoresCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *scoreRepo) ensureIndexes(ctx context.Context) {
	createIndex(ctx, r.collection, bson.D{
		{Key: "projectId", Value: 1},
		{Key: "userId", Value: 1},
		{Key: "questionnaireKey", Value: 1},
	}, true)
	createIndex(ctx, r.collection, bson.D{
		{Key: "projectId", Value: 1},
		{Key: "role", Value: 1},
	}, false)
}

func (r *scoreRepo) Upsert(ctx context.Context, score *model.Score) error {
	filter := bson.M{
		"projectId":        score.ProjectID,
		"userId":           score.UserID,
		"questionnaireKey": score.QuestionnaireKey,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, score, opts)
	return err
}

func (r *scoreRepo) Get(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Score, error) {
	var score model.Score
	filter := bson.M{"projectId": projectID, "userId": userID, "questionnaireKey": questionnaireKey}
	err := r.collection.FindOne(ctx, filter).Decode(&score)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *scoreRepo) ListByProject(ctx context.Context, projectID string) ([]*model.Score, error) {
	return r.find(ctx, bson.M{"projectId": projectID})
}

func (r *scoreRepo) ListByUser(ctx context.Context, projectID, userID string) ([]*model.Score, error) {
	return r.find(ctx, bson.M{"projectId": projectID, "userId": userID})
}

func (r *scoreRepo) find(ctx context.Context, filter bson.M) ([]*model.Score, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "userId", Value: 1},
		{Key: "questionnaireKey", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scores []*model.Score
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
