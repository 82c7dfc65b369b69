package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ethicscore/internal/cache"
	"ethicscore/internal/catalog"
	"ethicscore/internal/model"
	"ethicscore/internal/repository"
	"ethicscore/internal/scoring"
)

type memCatalog struct {
	questionnaires map[string]model.Questionnaire
	questions      map[string][]model.Question
}

func newSampleCatalog() *memCatalog {
	c := &memCatalog{
		questionnaires: make(map[string]model.Questionnaire),
		questions:      make(map[string][]model.Question),
	}
	for _, q := range catalog.Questionnaires() {
		c.questionnaires[q.Key] = q
		c.questions[q.Key] = catalog.QuestionsFor(q.Key)
	}
	return c
}

func (c *memCatalog) GetQuestionnaire(_ context.Context, key string) (*model.Questionnaire, error) {
	q, ok := c.questionnaires[key]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (c *memCatalog) GetQuestions(_ context.Context, key string) ([]model.Question, error) {
	return c.questions[key], nil
}

type memResponses struct {
	mu   sync.Mutex
	docs map[string]model.Response
}

func newMemResponses() *memResponses {
	return &memResponses{docs: make(map[string]model.Response)}
}

func tupleKey(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "|"
	}
	return key
}

func (r *memResponses) SaveDraft(_ context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tupleKey(response.ProjectID, response.UserID, response.QuestionnaireKey)
	if existing, ok := r.docs[key]; ok && existing.IsSubmitted() {
		return repository.ErrNotDraft
	}
	r.docs[key] = *response
	return nil
}

func (r *memResponses) MarkSubmitted(_ context.Context, projectID, userID, questionnaireKey string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tupleKey(projectID, userID, questionnaireKey)
	doc, ok := r.docs[key]
	if !ok || doc.IsSubmitted() {
		return false, nil
	}
	doc.Submit(at)
	r.docs[key] = doc
	return true, nil
}

func (r *memResponses) Get(_ context.Context, projectID, userID, questionnaireKey string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[tupleKey(projectID, userID, questionnaireKey)]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (r *memResponses) ListByProject(_ context.Context, projectID string) ([]*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Response
	for _, doc := range r.docs {
		doc := doc
		if doc.ProjectID == projectID {
			out = append(out, &doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return tupleKey(out[i].UserID, out[i].QuestionnaireKey) < tupleKey(out[j].UserID, out[j].QuestionnaireKey)
	})
	return out, nil
}

type memScores struct {
	mu   sync.Mutex
	docs map[string]*model.Score
}

func newMemScores() *memScores {
	return &memScores{docs: make(map[string]*model.Score)}
}

func (r *memScores) Upsert(_ context.Context, score *model.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[tupleKey(score.ProjectID, score.UserID, score.QuestionnaireKey)] = score
	return nil
}

func (r *memScores) Get(_ context.Context, projectID, userID, questionnaireKey string) (*model.Score, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[tupleKey(projectID, userID, questionnaireKey)], nil
}

func (r *memScores) ListByProject(_ context.Context, projectID string) ([]*model.Score, error) {
	return r.list(func(s *model.Score) bool { return s.ProjectID == projectID }), nil
}

func (r *memScores) ListByUser(_ context.Context, projectID, userID string) ([]*model.Score, error) {
	return r.list(func(s *model.Score) bool { return s.ProjectID == projectID && s.UserID == userID }), nil
}

func (r *memScores) list(match func(*model.Score) bool) []*model.Score {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Score
	for _, s := range r.docs {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return tupleKey(out[i].UserID, out[i].QuestionnaireKey) < tupleKey(out[j].UserID, out[j].QuestionnaireKey)
	})
	return out
}

type memProjectScores struct {
	docs map[string]*model.ProjectScore
}

func (r *memProjectScores) Upsert(_ context.Context, score *model.ProjectScore) error {
	r.docs[tupleKey(score.ProjectID, score.Role, strconv.FormatBool(score.IncludesCombined))] = score
	return nil
}

func (r *memProjectScores) Get(_ context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	return r.docs[tupleKey(projectID, role, strconv.FormatBool(includeCombined))], nil
}

type memProjectCache struct {
	docs        map[string]*model.ProjectScore
	invalidated []string
}

func (c *memProjectCache) Get(_ context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	return c.docs[tupleKey(projectID, role, strconv.FormatBool(includeCombined))], nil
}

func (c *memProjectCache) Set(_ context.Context, score *model.ProjectScore) error {
	c.docs[tupleKey(score.ProjectID, score.Role, strconv.FormatBool(score.IncludesCombined))] = score
	return nil
}

func (c *memProjectCache) Invalidate(_ context.Context, projectID string) error {
	c.invalidated = append(c.invalidated, projectID)
	for k, v := range c.docs {
		if v.ProjectID == projectID {
			delete(c.docs, k)
		}
	}
	return nil
}

type memHotspotIndex struct {
	entries map[string][]model.HotspotQuestion
}

func (h *memHotspotIndex) Replace(_ context.Context, projectID string, hotspots []model.HotspotQuestion) error {
	h.entries[projectID] = hotspots
	return nil
}

func (h *memHotspotIndex) GetTop(_ context.Context, projectID string, limit int) ([]cache.HotspotEntry, error) {
	var out []cache.HotspotEntry
	for i, hs := range h.entries[projectID] {
		if i >= limit {
			break
		}
		out = append(out, cache.HotspotEntry{QuestionID: hs.QuestionID, QuestionCode: hs.QuestionCode, MeanRisk: hs.MeanRisk, Rank: i + 1})
	}
	return out, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) BroadcastToProject(projectID, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, projectID+":"+msgType)
}

type testEnv struct {
	catalog       *memCatalog
	responses     *memResponses
	scores        *memScores
	projectScores *memProjectScores
	projectCache  *memProjectCache
	hotspots      *memHotspotIndex
	broadcaster   *recordingBroadcaster
	scoreSvc      *ScoreService
	responseSvc   *ResponseService
}

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	canon, err := scoring.NewCanonicalizer(nil)
	require.NoError(t, err)

	env := &testEnv{
		catalog:       newSampleCatalog(),
		responses:     newMemResponses(),
		scores:        newMemScores(),
		projectScores: &memProjectScores{docs: make(map[string]*model.ProjectScore)},
		projectCache:  &memProjectCache{docs: make(map[string]*model.ProjectScore)},
		hotspots:      &memHotspotIndex{entries: make(map[string][]model.HotspotQuestion)},
		broadcaster:   &recordingBroadcaster{},
	}
	env.scoreSvc = NewScoreService(scoring.NewEngine(canon), env.catalog, env.responses, env.scores,
		env.projectScores, env.projectCache, env.hotspots, scoring.DefaultHotspotThreshold, nil)
	env.scoreSvc.now = func() time.Time { return fixedNow }
	env.scoreSvc.SetBroadcaster(env.broadcaster)

	env.responseSvc = NewResponseService(env.responses, env.catalog, env.scoreSvc, nil)
	env.responseSvc.now = func() time.Time { return fixedNow }
	return env
}

// answerAll answers every question of a questionnaire with choice, falling
// back to a matching value for numeric and open text questions
func answerAll(questions []model.Question, choice string, safety float64) []model.Answer {
	answers := make([]model.Answer, 0, len(questions))
	for _, q := range questions {
		a := model.Answer{QuestionID: q.ID, QuestionCode: q.Code}
		switch q.AnswerType {
		case model.AnswerNumeric:
			a.Answer = model.NumericAnswer(safety)
		case model.AnswerOpenText:
			a.Answer = model.TextAnswer("reviewed")
			a.SafetyValue = &safety
		default:
			a.Answer = model.ChoiceAnswer(choice)
		}
		answers = append(answers, a)
	}
	return answers
}

func draftFor(projectID, userID, role, questionnaireKey string, answers []model.Answer) *model.Response {
	return &model.Response{
		ProjectID:        projectID,
		UserID:           userID,
		Role:             role,
		QuestionnaireKey: questionnaireKey,
		Answers:          answers,
	}
}
