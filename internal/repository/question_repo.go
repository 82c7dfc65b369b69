package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ethicscore/internal/model"
)

// CatalogReader is the read side of the question catalog. Missing
// questionnaires come back as nil, nil.
type CatalogReader interface {
	GetQuestionnaire(ctx context.Context, key string) (*model.Questionnaire, error)
	GetQuestions(ctx context.Context, questionnaireKey string) ([]model.Question, error)
}

// CatalogRepo handles MongoDB operations for questionnaires and questions
type CatalogRepo interface {
	CatalogReader

	UpsertQuestionnaire(ctx context.Context, questionnaire *model.Questionnaire) error
	UpsertQuestion(ctx context.Context, question *model.Question) error
	ListQuestionnaires(ctx context.Context) ([]model.Questionnaire, error)
	GetAllQuestions(ctx context.Context) ([]model.Question, error)
}

type catalogRepo struct {
	questionnaires *mongo.Collection
	questions      *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository with indexes
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	repo := &catalogRepo{
		questionnaires: db.Collection(questionnairesCollection),
		questions:      db.Collection(questionsCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *catalogRepo) ensureIndexes(ctx context.Context) {
	createIndex(ctx, r.questionnaires, bson.D{{Key: "key", Value: 1}}, true)
	createIndex(ctx, r.questions, bson.D{
		{Key: "questionnaireKey", Value: 1},
		{Key: "order", Value: 1},
	}, false)
	createIndex(ctx, r.questions, bson.D{
		{Key: "questionnaireKey", Value: 1},
		{Key: "code", Value: 1},
	}, true)
}

func (r *catalogRepo) UpsertQuestionnaire(ctx context.Context, questionnaire *model.Questionnaire) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.questionnaires.ReplaceOne(ctx, bson.M{"key": questionnaire.Key}, questionnaire, opts)
	return err
}

func (r *catalogRepo) UpsertQuestion(ctx context.Context, question *model.Question) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.questions.ReplaceOne(ctx, bson.M{"_id": question.ID}, question, opts)
	return err
}

func (r *catalogRepo) GetQuestionnaire(ctx context.Context, key string) (*model.Questionnaire, error) {
	var questionnaire model.Questionnaire
	err := r.questionnaires.FindOne(ctx, bson.M{"key": key}).Decode(&questionnaire)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

func (r *catalogRepo) ListQuestionnaires(ctx context.Context) ([]model.Questionnaire, error) {
	opts := options.Find().SetSort(bson.D{{Key: "key", Value: 1}})
	cursor, err := r.questionnaires.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questionnaires []model.Questionnaire
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}
	return questionnaires, nil
}

func (r *catalogRepo) GetQuestions(ctx context.Context, questionnaireKey string) ([]model.Question, error) {
	return r.findQuestions(ctx, bson.M{"questionnaireKey": questionnaireKey})
}

func (r *catalogRepo) GetAllQuestions(ctx context.Context) ([]model.Question, error) {
	return r.findQuestions(ctx, bson.M{})
}

func (r *catalogRepo) findQuestions(ctx context.Context, filter bson.M) ([]model.Question, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "questionnaireKey", Value: 1},
		{Key: "order", Value: 1},
		{Key: "code", Value: 1},
	})
	cursor, err := r.questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
