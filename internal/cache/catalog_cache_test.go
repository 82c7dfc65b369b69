package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicscore/internal/model"
)

type countingCatalog struct {
	questionnaireCalls int
	questionCalls      int
	err                error
}

func (f *countingCatalog) GetQuestionnaire(_ context.Context, key string) (*model.Questionnaire, error) {
	f.questionnaireCalls++
	if f.err != nil {
		return nil, f.err
	}
	if key == "missing" {
		return nil, nil
	}
	return &model.Questionnaire{Key: key, Version: 1}, nil
}

func (f *countingCatalog) GetQuestions(_ context.Context, questionnaireKey string) ([]model.Question, error) {
	f.questionCalls++
	if f.err != nil {
		return nil, f.err
	}
	if questionnaireKey == "missing" {
		return nil, nil
	}
	return []model.Question{{ID: questionnaireKey + ":Q1", Code: "Q1", QuestionnaireKey: questionnaireKey}}, nil
}

func TestCatalogCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	delegate := &countingCatalog{}
	c := NewCatalogCache(delegate, 4, time.Minute)

	for i := 0; i < 3; i++ {
		q, err := c.GetQuestionnaire(ctx, "general-v1")
		require.NoError(t, err)
		assert.Equal(t, "general-v1", q.Key)

		questions, err := c.GetQuestions(ctx, "general-v1")
		require.NoError(t, err)
		assert.Len(t, questions, 1)
	}
	assert.Equal(t, 1, delegate.questionnaireCalls)
	assert.Equal(t, 1, delegate.questionCalls)
}

func TestCatalogCache_Expiry(t *testing.T) {
	ctx := context.Background()
	delegate := &countingCatalog{}
	c := NewCatalogCache(delegate, 4, time.Minute)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.GetQuestions(ctx, "general-v1")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = c.GetQuestions(ctx, "general-v1")
	require.NoError(t, err)
	assert.Equal(t, 1, delegate.questionCalls)

	now = now.Add(time.Minute)
	_, err = c.GetQuestions(ctx, "general-v1")
	require.NoError(t, err)
	assert.Equal(t, 2, delegate.questionCalls)
}

func TestCatalogCache_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	delegate := &countingCatalog{}
	c := NewCatalogCache(delegate, 4, time.Minute)

	for i := 0; i < 2; i++ {
		q, err := c.GetQuestionnaire(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, q)

		questions, err := c.GetQuestions(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, questions)
	}
	assert.Equal(t, 2, delegate.questionnaireCalls)
	assert.Equal(t, 2, delegate.questionCalls)
}

func TestCatalogCache_ErrorsPassThrough(t *testing.T) {
	boom := errors.New("mongo down")
	c := NewCatalogCache(&countingCatalog{err: boom}, 0, 0)

	_, err := c.GetQuestionnaire(context.Background(), "general-v1")
	assert.ErrorIs(t, err, boom)
	_, err = c.GetQuestions(context.Background(), "general-v1")
	assert.ErrorIs(t, err, boom)
}

func TestCatalogCache_Purge(t *testing.T) {
	ctx := context.Background()
	delegate := &countingCatalog{}
	c := NewCatalogCache(delegate, 4, time.Minute)

	_, err := c.GetQuestionnaire(ctx, "general-v1")
	require.NoError(t, err)
	c.Purge()
	_, err = c.GetQuestionnaire(ctx, "general-v1")
	require.NoError(t, err)
	assert.Equal(t, 2, delegate.questionnaireCalls)
}
