package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicscore/internal/catalog"
	"ethicscore/internal/model"
)

func submitAll(t *testing.T, env *testEnv, projectID, userID, role, key, choice string, safety float64) *model.Score {
	t.Helper()
	ctx := context.Background()
	answers := answerAll(catalog.QuestionsFor(key), choice, safety)
	require.NoError(t, env.responseSvc.SaveDraft(ctx, draftFor(projectID, userID, role, key, answers)))
	score, err := env.responseSvc.Submit(ctx, projectID, userID, key)
	require.NoError(t, err)
	return score
}

func TestComputeScore_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)

	first, err := env.scoreSvc.ComputeScore(ctx, "p1", "u1", catalog.TechnicalKey)
	require.NoError(t, err)
	second, err := env.scoreSvc.ComputeScore(ctx, "p1", "u1", catalog.TechnicalKey)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	scores, err := env.scores.ListByUser(ctx, "p1", "u1")
	require.NoError(t, err)
	count := 0
	for _, s := range scores {
		if s.QuestionnaireKey == catalog.TechnicalKey {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeScore_MissingResponse(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scoreSvc.ComputeScore(context.Background(), "p1", "u1", catalog.GeneralKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComputeCombinedScore_NoDoubleCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleLegal, catalog.GeneralKey, "partially", 0.5)
	legal := submitAll(t, env, "p1", "u1", catalog.RoleLegal, catalog.LegalKey, "partially", 0.5)

	combined, err := env.scoreSvc.ComputeCombinedScore(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, legal.Totals.N, combined.Totals.N)
	assert.Equal(t, []string{catalog.GeneralKey}, combined.Superseded)
	assert.Equal(t, []string{catalog.LegalKey}, combined.Sources)
}

func TestComputeProjectScore_CachedReadThrough(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	score := submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)

	project, err := env.scoreSvc.GetProjectScore(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, project.Evaluators)
	assert.Equal(t, score.Totals.N, project.Totals.N)
	assert.InDelta(t, score.Totals.OverallRisk, project.Totals.OverallRisk, 1e-9)
	assert.Contains(t, env.broadcaster.events, "p1:"+EventProjectScoreUpdated)

	cached, err := env.projectCache.Get(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Same(t, project, cached)

	// served from the store after the cache is dropped
	env.scoreSvc.InvalidateProject(ctx, "p1")
	again, err := env.scoreSvc.GetProjectScore(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Same(t, project, again)
}

func TestComputeProjectScore_Role(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)
	submitAll(t, env, "p1", "u2", catalog.RoleLegal, catalog.LegalKey, "yes", 1)

	all, err := env.scoreSvc.ComputeProjectScore(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Evaluators)
	assert.Equal(t, 50, all.Totals.N)

	legal, err := env.scoreSvc.ComputeProjectScore(ctx, "p1", catalog.RoleLegal, false)
	require.NoError(t, err)
	assert.Equal(t, 1, legal.Evaluators)
	assert.Equal(t, 30, legal.Totals.N)
	assert.Equal(t, 0.0, legal.Totals.OverallRisk)

	combined, err := env.scoreSvc.ComputeProjectScore(ctx, "p1", "", true)
	require.NoError(t, err)
	assert.Equal(t, 50, combined.Totals.N)
}

func TestGetProjectScore_CombinedKeptApart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)
	submitAll(t, env, "p1", "u2", catalog.RoleLegal, catalog.LegalKey, "yes", 1)

	combined, err := env.scoreSvc.ComputeProjectScore(ctx, "p1", "", true)
	require.NoError(t, err)
	require.True(t, combined.IncludesCombined)

	plain, err := env.scoreSvc.GetProjectScore(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.NotSame(t, combined, plain)
	assert.False(t, plain.IncludesCombined)

	again, err := env.scoreSvc.GetProjectScore(ctx, "p1", "", true)
	require.NoError(t, err)
	assert.Same(t, combined, again)

	// both survive in the store once the cache is dropped
	env.scoreSvc.InvalidateProject(ctx, "p1")
	stored, err := env.scoreSvc.GetProjectScore(ctx, "p1", "", false)
	require.NoError(t, err)
	assert.Same(t, plain, stored)
}

func TestGetHotspots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)
	submitAll(t, env, "p1", "u2", catalog.RoleLegal, catalog.LegalKey, "yes", 1)

	hotspots, err := env.scoreSvc.GetHotspots(ctx, "p1", "", nil)
	require.NoError(t, err)
	assert.Len(t, hotspots, 20)
	for _, h := range hotspots {
		assert.Equal(t, catalog.TechnicalKey, h.QuestionnaireKey)
		assert.Equal(t, 0.0, h.MeanSafety)
	}
	assert.Len(t, env.hotspots.entries["p1"], 20)

	top, err := env.scoreSvc.TopHotspots(ctx, "p1", 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, hotspots[0].QuestionID, top[0].QuestionID)

	legalOnly, err := env.scoreSvc.GetHotspots(ctx, "p1", catalog.LegalKey, nil)
	require.NoError(t, err)
	assert.Empty(t, legalOnly)
	// a filtered query leaves the project index alone
	assert.Len(t, env.hotspots.entries["p1"], 20)
}

func TestGetHotspots_ZeroThreshold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// technical questions end up at mean safety 0.5, legal ones at 0
	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)
	submitAll(t, env, "p1", "u3", catalog.RoleTechnical, catalog.TechnicalKey, "yes", 1)
	submitAll(t, env, "p1", "u2", catalog.RoleLegal, catalog.LegalKey, "no", 0)

	byDefault, err := env.scoreSvc.GetHotspots(ctx, "p1", "", nil)
	require.NoError(t, err)
	assert.Len(t, byDefault, 50)

	zero := 0.0
	unsafeOnly, err := env.scoreSvc.GetHotspots(ctx, "p1", "", &zero)
	require.NoError(t, err)
	assert.Len(t, unsafeOnly, 30)
	for _, h := range unsafeOnly {
		assert.Equal(t, catalog.LegalKey, h.QuestionnaireKey)
		assert.Equal(t, 0.0, h.MeanSafety)
	}
}

func TestListScores(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)

	scores, err := env.scoreSvc.ListScores(ctx, "p1", false)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, catalog.TechnicalKey, scores[0].QuestionnaireKey)

	withCombined, err := env.scoreSvc.ListScores(ctx, "p1", true)
	require.NoError(t, err)
	assert.Len(t, withCombined, 2)
}

func TestRecomputeProject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.TechnicalKey, "no", 0)
	submitAll(t, env, "p1", "u1", catalog.RoleTechnical, catalog.GeneralKey, "no", 0)
	submitAll(t, env, "p1", "u2", catalog.RoleLegal, catalog.LegalKey, "yes", 1)
	// drafts are not recomputed
	require.NoError(t, env.responseSvc.SaveDraft(ctx, draftFor("p1", "u3", catalog.RoleLegal, catalog.LegalKey, nil)))

	summary, err := env.scoreSvc.RecomputeProject(ctx, "p1", RecomputeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Scores)
	assert.Equal(t, 2, summary.Combined)

	summary, err = env.scoreSvc.RecomputeProject(ctx, "p1", RecomputeFilter{UserID: "u1", QuestionnaireKey: catalog.GeneralKey})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scores)
	assert.Equal(t, 1, summary.Combined)
}
