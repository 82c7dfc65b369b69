package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"ethicscore/internal/model"
	"ethicscore/internal/repository"
)

const (
	defaultCatalogCacheSize = 128
	defaultCatalogCacheTTL  = 10 * time.Minute
)

type questionnaireEntry struct {
	questionnaire *model.Questionnaire
	storedAt      time.Time
}

type questionsEntry struct {
	questions []model.Question
	storedAt  time.Time
}

// CatalogCache is an in-process LRU in front of the catalog store. Catalog
// entries are immutable per version, so a short TTL is enough to pick up
// newly seeded questionnaires.
type CatalogCache struct {
	delegate       repository.CatalogReader
	questionnaires *lru.Cache[string, questionnaireEntry]
	questions      *lru.Cache[string, questionsEntry]
	ttl            time.Duration
	now            func() time.Time
}

// NewCatalogCache wraps delegate with LRU caches. Zero size or TTL fall back
// to defaults.
func NewCatalogCache(delegate repository.CatalogReader, size int, ttl time.Duration) *CatalogCache {
	if size <= 0 {
		size = defaultCatalogCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCatalogCacheTTL
	}
	// lru.New only fails on a non-positive size
	questionnaires, _ := lru.New[string, questionnaireEntry](size)
	questions, _ := lru.New[string, questionsEntry](size)
	return &CatalogCache{
		delegate:       delegate,
		questionnaires: questionnaires,
		questions:      questions,
		ttl:            ttl,
		now:            time.Now,
	}
}

func (c *CatalogCache) GetQuestionnaire(ctx context.Context, key string) (*model.Questionnaire, error) {
	if entry, ok := c.questionnaires.Get(key); ok && c.fresh(entry.storedAt) {
		return entry.questionnaire, nil
	}
	questionnaire, err := c.delegate.GetQuestionnaire(ctx, key)
	if err != nil || questionnaire == nil {
		return questionnaire, err
	}
	c.questionnaires.Add(key, questionnaireEntry{questionnaire: questionnaire, storedAt: c.now()})
	return questionnaire, nil
}

func (c *CatalogCache) GetQuestions(ctx context.Context, questionnaireKey string) ([]model.Question, error) {
	if entry, ok := c.questions.Get(questionnaireKey); ok && c.fresh(entry.storedAt) {
		return entry.questions, nil
	}
	questions, err := c.delegate.GetQuestions(ctx, questionnaireKey)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		c.questions.Add(questionnaireKey, questionsEntry{questions: questions, storedAt: c.now()})
	}
	return questions, nil
}

// Purge drops every cached entry
func (c *CatalogCache) Purge() {
	c.questionnaires.Purge()
	c.questions.Purge()
}

func (c *CatalogCache) fresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.ttl
}
