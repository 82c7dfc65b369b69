package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ethicscore/internal/cache"
	"ethicscore/internal/metrics"
	"ethicscore/internal/model"
	"ethicscore/internal/repository"
	"ethicscore/internal/scoring"
)

// ScoreService computes and persists Scores, ProjectScores and hotspots.
// Every computation reads persisted state only, so repeating a call with
// unchanged inputs overwrites the stored result with an identical one.
type ScoreService struct {
	engine        *scoring.Engine
	catalog       repository.CatalogReader
	responses     repository.ResponseRepo
	scores        repository.ScoreRepo
	projectScores repository.ProjectScoreRepo
	projectCache  cache.ProjectScoreCache
	hotspotIndex  cache.HotspotIndex
	broadcaster   Broadcaster
	threshold     float64
	logger        *slog.Logger
	now           func() time.Time
}

// NewScoreService creates a new score service
func NewScoreService(
	engine *scoring.Engine,
	catalog repository.CatalogReader,
	responses repository.ResponseRepo,
	scores repository.ScoreRepo,
	projectScores repository.ProjectScoreRepo,
	projectCache cache.ProjectScoreCache,
	hotspotIndex cache.HotspotIndex,
	threshold float64,
	logger *slog.Logger,
) *ScoreService {
	if threshold < 0 || threshold > 1 {
		threshold = scoring.DefaultHotspotThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		engine:        engine,
		catalog:       catalog,
		responses:     responses,
		scores:        scores,
		projectScores: projectScores,
		projectCache:  projectCache,
		hotspotIndex:  hotspotIndex,
		threshold:     threshold,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetBroadcaster sets the broadcaster for dashboard updates
func (s *ScoreService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ComputeScore recomputes and stores one evaluator's Score for a questionnaire
func (s *ScoreService) ComputeScore(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Score, error) {
	started := time.Now()

	response, err := s.responses.Get(ctx, projectID, userID, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("response %s/%s/%s: %w", projectID, userID, questionnaireKey, ErrNotFound)
	}

	questionnaire, err := s.catalog.GetQuestionnaire(ctx, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load questionnaire: %w", err)
	}
	if questionnaire == nil {
		return nil, fmt.Errorf("questionnaire %s: %w", questionnaireKey, ErrNotFound)
	}
	questions, err := s.catalog.GetQuestions(ctx, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	version := response.QuestionnaireVersion
	if version == 0 {
		version = questionnaire.Version
	}
	score := s.engine.ComputeScore(scoring.ScoreInput{
		ProjectID:            projectID,
		UserID:               userID,
		Role:                 response.Role,
		QuestionnaireKey:     questionnaireKey,
		QuestionnaireVersion: version,
		Questions:            questions,
		Answers:              response.Answers,
	}, s.now())

	if err := s.scores.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("store score: %w", err)
	}

	metrics.RecordIssues(score.Issues)
	metrics.ObserveCompute(metrics.KindScore, started)
	s.logger.Info("score computed",
		"project_id", projectID,
		"user_id", userID,
		"questionnaire", questionnaireKey,
		"n", score.Totals.N,
		"issues", len(score.Issues),
	)
	s.broadcast(projectID, EventScoreUpdated, score)
	return score, nil
}

// ComputeCombinedScore merges every stored questionnaire Score of one
// evaluator into the synthetic combined Score
func (s *ScoreService) ComputeCombinedScore(ctx context.Context, projectID, userID string) (*model.Score, error) {
	started := time.Now()

	scores, err := s.scores.ListByUser(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	var keys []string
	for _, sc := range scores {
		if !sc.IsCombined() {
			keys = append(keys, sc.QuestionnaireKey)
		}
	}
	infos, err := s.loadQuestionnaireInfos(ctx, keys)
	if err != nil {
		return nil, err
	}

	combined := s.engine.CombineScores(projectID, userID, scores, infos, s.now())
	if err := s.scores.Upsert(ctx, combined); err != nil {
		return nil, fmt.Errorf("store combined score: %w", err)
	}

	metrics.ObserveCompute(metrics.KindCombined, started)
	s.logger.Info("combined score computed",
		"project_id", projectID,
		"user_id", userID,
		"sources", combined.Sources,
		"superseded", combined.Superseded,
		"n", combined.Totals.N,
	)
	s.broadcast(projectID, EventScoreUpdated, combined)
	return combined, nil
}

// loadQuestionnaireInfos fetches questionnaire definitions and question codes
// concurrently
func (s *ScoreService) loadQuestionnaireInfos(ctx context.Context, keys []string) (map[string]scoring.QuestionnaireInfo, error) {
	results := make([]scoring.QuestionnaireInfo, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			questionnaire, err := s.catalog.GetQuestionnaire(gctx, key)
			if err != nil {
				return fmt.Errorf("load questionnaire %s: %w", key, err)
			}
			questions, err := s.catalog.GetQuestions(gctx, key)
			if err != nil {
				return fmt.Errorf("load questions %s: %w", key, err)
			}
			codes := make([]string, 0, len(questions))
			for _, q := range questions {
				codes = append(codes, q.Code)
			}
			results[i] = scoring.QuestionnaireInfo{Questionnaire: questionnaire, QuestionCodes: codes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	infos := make(map[string]scoring.QuestionnaireInfo, len(keys))
	for i, key := range keys {
		infos[key] = results[i]
	}
	return infos, nil
}

// ComputeProjectScore recomputes, stores and caches the project rollup for
// role (empty for all roles)
func (s *ScoreService) ComputeProjectScore(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	started := time.Now()

	scores, err := s.scores.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	project := s.engine.AggregateProject(projectID, scores, scoring.ProjectOptions{
		Role:            role,
		IncludeCombined: includeCombined,
	}, s.now())

	if err := s.projectScores.Upsert(ctx, project); err != nil {
		return nil, fmt.Errorf("store project score: %w", err)
	}
	if err := s.projectCache.Set(ctx, project); err != nil {
		s.logger.Warn("failed to cache project score", "project_id", projectID, "role", role, "error", err)
	}

	metrics.ObserveCompute(metrics.KindProject, started)
	s.logger.Info("project score computed",
		"project_id", projectID,
		"role", role,
		"evaluators", project.Evaluators,
		"n", project.Totals.N,
	)
	s.broadcast(projectID, EventProjectScoreUpdated, project)
	return project, nil
}

// GetProjectScore returns the cached rollup, then the stored one, and
// computes it when neither exists. Rollups over combined Scores are kept
// apart from rollups over per-questionnaire Scores.
func (s *ScoreService) GetProjectScore(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	cached, err := s.projectCache.Get(ctx, projectID, role, includeCombined)
	if err != nil {
		s.logger.Warn("project score cache read failed", "project_id", projectID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	stored, err := s.projectScores.Get(ctx, projectID, role, includeCombined)
	if err != nil {
		return nil, fmt.Errorf("load project score: %w", err)
	}
	if stored != nil {
		if err := s.projectCache.Set(ctx, stored); err != nil {
			s.logger.Warn("failed to cache project score", "project_id", projectID, "error", err)
		}
		return stored, nil
	}
	return s.ComputeProjectScore(ctx, projectID, role, includeCombined)
}

// InvalidateProject drops cached rollups after a project's Scores changed
func (s *ScoreService) InvalidateProject(ctx context.Context, projectID string) {
	if err := s.projectCache.Invalidate(ctx, projectID); err != nil {
		s.logger.Warn("failed to invalidate project cache", "project_id", projectID, "error", err)
	}
}

// GetHotspots flags low-safety questions across every evaluator of a project.
// An empty questionnaireKey covers all questionnaires and refreshes the
// project's hotspot index. A nil threshold uses the configured one; zero
// is a real cutoff that keeps only fully unsafe questions.
func (s *ScoreService) GetHotspots(ctx context.Context, projectID, questionnaireKey string, threshold *float64) ([]model.HotspotQuestion, error) {
	started := time.Now()
	cutoff := s.threshold
	if threshold != nil {
		cutoff = *threshold
	}

	scores, err := s.scores.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	if questionnaireKey != "" {
		filtered := scores[:0:0]
		for _, sc := range scores {
			if sc.QuestionnaireKey == questionnaireKey {
				filtered = append(filtered, sc)
			}
		}
		scores = filtered
	}

	hotspots := scoring.DetectHotspots(scores, cutoff)
	if questionnaireKey == "" {
		if err := s.hotspotIndex.Replace(ctx, projectID, hotspots); err != nil {
			s.logger.Warn("failed to refresh hotspot index", "project_id", projectID, "error", err)
		}
	}

	metrics.ObserveCompute(metrics.KindHotspots, started)
	return hotspots, nil
}

// TopHotspots reads the hotspot index written by the last project-wide
// GetHotspots call
func (s *ScoreService) TopHotspots(ctx context.Context, projectID string, limit int) ([]cache.HotspotEntry, error) {
	return s.hotspotIndex.GetTop(ctx, projectID, limit)
}

// ListScores returns the stored Scores of a project. Combined Scores are
// only included on request.
func (s *ScoreService) ListScores(ctx context.Context, projectID string, includeCombined bool) ([]*model.Score, error) {
	scores, err := s.scores.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Score, 0, len(scores))
	for _, sc := range scores {
		if sc.IsCombined() && !includeCombined {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

// RecomputeFilter narrows RecomputeProject. Empty fields match everything.
type RecomputeFilter struct {
	UserID           string
	QuestionnaireKey string
	Role             string
}

// RecomputeSummary reports what RecomputeProject touched
type RecomputeSummary struct {
	Scores   int `json:"scores"`
	Combined int `json:"combined"`
}

// RecomputeProject recomputes every submitted response matching the filter,
// then the affected combined Scores and the project rollup
func (s *ScoreService) RecomputeProject(ctx context.Context, projectID string, filter RecomputeFilter) (*RecomputeSummary, error) {
	responses, err := s.responses.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	summary := &RecomputeSummary{}
	users := make(map[string]bool)
	for _, r := range responses {
		if !r.IsSubmitted() {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.QuestionnaireKey != "" && r.QuestionnaireKey != filter.QuestionnaireKey {
			continue
		}
		if filter.Role != "" && r.Role != filter.Role {
			continue
		}
		if _, err := s.ComputeScore(ctx, projectID, r.UserID, r.QuestionnaireKey); err != nil {
			return summary, err
		}
		summary.Scores++
		users[r.UserID] = true
	}

	userIDs := make([]string, 0, len(users))
	for u := range users {
		userIDs = append(userIDs, u)
	}
	sort.Strings(userIDs)
	for _, u := range userIDs {
		if _, err := s.ComputeCombinedScore(ctx, projectID, u); err != nil {
			return summary, err
		}
		summary.Combined++
	}

	s.InvalidateProject(ctx, projectID)
	if _, err := s.ComputeProjectScore(ctx, projectID, filter.Role, false); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *ScoreService) broadcast(projectID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToProject(projectID, msgType, payload)
	}
}
