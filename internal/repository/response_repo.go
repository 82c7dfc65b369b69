package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ethicscore/internal/model"
)

// ResponseRepo handles MongoDB operations for evaluator responses.
// A response is keyed by (projectId, userId, questionnaireKey).
type ResponseRepo interface {
	SaveDraft(ctx context.Context, response *model.Response) error
	// MarkSubmitted flips a draft to submitted. It reports false when no
	// draft was found, i.e. the response is missing or already submitted.
	MarkSubmitted(ctx context.Context, projectID, userID, questionnaireKey string, at time.Time) (bool, error)
	Get(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Response, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository with indexes
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	repo := &responseRepo{
		collection: db.Collection(responsesCollection),
	}
	createIndex(context.Background(), repo.collection, bson.D{
		{Key: "projectId", Value: 1},
		{Key: "userId", Value: 1},
		{Key: "questionnaireKey", Value: 1},
	}, true)
	return repo
}

func responseKey(projectID, userID, questionnaireKey string) bson.M {
	return bson.M{"projectId": projectID, "userId": userID, "questionnaireKey": questionnaireKey}
}

func (r *responseRepo) SaveDraft(ctx context.Context, response *model.Response) error {
	response.UpdatedAt = time.Now().UTC()

	filter := responseKey(response.ProjectID, response.UserID, response.QuestionnaireKey)
	filter["status"] = model.ResponseDraft

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, response, opts)
	if mongo.IsDuplicateKeyError(err) {
		// the only document for this key is no longer a draft
		return ErrNotDraft
	}
	return err
}

func (r *responseRepo) MarkSubmitted(ctx context.Context, projectID, userID, questionnaireKey string, at time.Time) (bool, error) {
	filter := responseKey(projectID, userID, questionnaireKey)
	filter["status"] = model.ResponseDraft

	result, err := r.collection.UpdateOne(ctx, filter, submitUpdate(at))
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// submitUpdate applies the submit transition to a blank response and sets
// the fields it touched
func submitUpdate(at time.Time) bson.M {
	var submitted model.Response
	submitted.Submit(at)
	return bson.M{"$set": bson.M{
		"status":      submitted.Status,
		"submittedAt": submitted.SubmittedAt,
		"updatedAt":   submitted.UpdatedAt,
	}}
}

func (r *responseRepo) Get(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error) {
	var response model.Response
	err := r.collection.FindOne(ctx, responseKey(projectID, userID, questionnaireKey)).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) ListByProject(ctx context.Context, projectID string) ([]*model.Response, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.Response
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}
