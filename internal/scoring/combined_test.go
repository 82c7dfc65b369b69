package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicscore/internal/catalog"
	"ethicscore/internal/model"
)

// answerAll answers every question with a mid-range value
func answerAll(questions []model.Question) []model.Answer {
	answers := make([]model.Answer, 0, len(questions))
	for _, q := range questions {
		a := model.Answer{QuestionID: q.ID, QuestionCode: q.Code}
		switch q.AnswerType {
		case model.AnswerNumeric:
			a.Answer = model.NumericAnswer(0.5)
		case model.AnswerOpenText:
			a.Answer = model.TextAnswer("reviewed")
			a.SafetyValue = f64(0.5)
		default:
			a.Answer = model.ChoiceAnswer("partially")
		}
		answers = append(answers, a)
	}
	return answers
}

func catalogInfos(questionnaires []model.Questionnaire) map[string]QuestionnaireInfo {
	infos := make(map[string]QuestionnaireInfo, len(questionnaires))
	for i := range questionnaires {
		qn := &questionnaires[i]
		var codes []string
		for _, q := range catalog.QuestionsFor(qn.Key) {
			codes = append(codes, q.Code)
		}
		infos[qn.Key] = QuestionnaireInfo{Questionnaire: qn, QuestionCodes: codes}
	}
	return infos
}

func scoreCatalog(t *testing.T, e *Engine, userID, role, key string) *model.Score {
	t.Helper()
	questions := catalog.QuestionsFor(key)
	require.NotEmpty(t, questions)
	return e.ComputeScore(ScoreInput{
		ProjectID:            "p1",
		UserID:               userID,
		Role:                 role,
		QuestionnaireKey:     key,
		QuestionnaireVersion: 1,
		Questions:            questions,
		Answers:              answerAll(questions),
	}, testNow)
}

func TestCombineScores_SupersededGeneral(t *testing.T) {
	e := newTestEngine(t)

	general := scoreCatalog(t, e, "u1", catalog.RoleLegal, catalog.GeneralKey)
	legal := scoreCatalog(t, e, "u1", catalog.RoleLegal, catalog.LegalKey)
	require.Equal(t, 12, general.Totals.N)
	require.Equal(t, 30, legal.Totals.N)

	combined := e.CombineScores("p1", "u1", []*model.Score{general, legal}, catalogInfos(catalog.Questionnaires()), testNow)

	assert.True(t, combined.IsCombined())
	assert.Equal(t, legal.Totals.N, combined.Totals.N)
	assert.InDelta(t, legal.Totals.OverallRisk, combined.Totals.OverallRisk, 1e-9)
	assert.Equal(t, []string{catalog.LegalKey}, combined.Sources)
	assert.Equal(t, []string{catalog.GeneralKey}, combined.Superseded)
	assert.Equal(t, catalog.RoleLegal, combined.Role)
	assert.Empty(t, combined.Issues)
}

func TestCombineScores_SubsetHeuristic(t *testing.T) {
	e := newTestEngine(t)

	questionnaires := catalog.Questionnaires()
	for i := range questionnaires {
		questionnaires[i].Supersedes = nil
	}

	general := scoreCatalog(t, e, "u1", catalog.RoleLegal, catalog.GeneralKey)
	legal := scoreCatalog(t, e, "u1", catalog.RoleLegal, catalog.LegalKey)
	combined := e.CombineScores("p1", "u1", []*model.Score{legal, general}, catalogInfos(questionnaires), testNow)

	assert.Equal(t, 30, combined.Totals.N)
	assert.Equal(t, []string{catalog.GeneralKey}, combined.Superseded)
}

func TestCombineScores_DistinctQuestionnairesAdd(t *testing.T) {
	e := newTestEngine(t)

	general := scoreCatalog(t, e, "u2", catalog.RoleTechnical, catalog.GeneralKey)
	technical := scoreCatalog(t, e, "u2", catalog.RoleTechnical, catalog.TechnicalKey)

	combined := e.CombineScores("p1", "u2", []*model.Score{general, technical}, catalogInfos(catalog.Questionnaires()), testNow)

	assert.Equal(t, general.Totals.N+technical.Totals.N, combined.Totals.N)
	assert.Equal(t, []string{catalog.GeneralKey, catalog.TechnicalKey}, combined.Sources)
	assert.Empty(t, combined.Superseded)
	assert.Equal(t, catalog.RoleTechnical, combined.Role)
}

func TestCombineScores_MutualSupersedeKeepsBoth(t *testing.T) {
	e := newTestEngine(t)

	questionnaires := []model.Questionnaire{
		{Key: "a-v1", Role: "x", Supersedes: []string{"b-v1"}},
		{Key: "b-v1", Role: "x", Supersedes: []string{"a-v1"}},
	}
	infos := map[string]QuestionnaireInfo{
		"a-v1": {Questionnaire: &questionnaires[0]},
		"b-v1": {Questionnaire: &questionnaires[1]},
	}

	qa := testQuestion("A", "Privacy", 1, 4)
	qa.QuestionnaireKey = "a-v1"
	qb := testQuestion("B", "Privacy", 1, 4)
	qb.QuestionnaireKey = "b-v1"
	a := e.ComputeScore(ScoreInput{ProjectID: "p1", UserID: "u1", QuestionnaireKey: "a-v1", Questions: []model.Question{qa},
		Answers: []model.Answer{{QuestionID: "A", Answer: model.ChoiceAnswer("no")}}}, testNow)
	b := e.ComputeScore(ScoreInput{ProjectID: "p1", UserID: "u1", QuestionnaireKey: "b-v1", Questions: []model.Question{qb},
		Answers: []model.Answer{{QuestionID: "B", Answer: model.ChoiceAnswer("no")}}}, testNow)

	combined := e.CombineScores("p1", "u1", []*model.Score{a, b}, infos, testNow)
	assert.Equal(t, 2, combined.Totals.N)
	assert.Equal(t, 8.0, combined.ByPrinciple[model.PrinciplePrivacy].Risk)
}

func TestCombineScores_IgnoresPreviousCombined(t *testing.T) {
	e := newTestEngine(t)

	general := scoreCatalog(t, e, "u1", "", catalog.GeneralKey)
	first := e.CombineScores("p1", "u1", []*model.Score{general}, catalogInfos(catalog.Questionnaires()), testNow)
	second := e.CombineScores("p1", "u1", []*model.Score{general, first}, catalogInfos(catalog.Questionnaires()), testNow)

	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.ByPrinciple, second.ByPrinciple)
}

func TestCombineScores_Empty(t *testing.T) {
	e := newTestEngine(t)

	combined := e.CombineScores("p1", "u1", nil, nil, testNow)
	assert.Equal(t, 0, combined.Totals.N)
	require.Len(t, combined.Issues, 1)
	assert.Equal(t, model.IssueNoAnswerableData, combined.Issues[0].Kind)
}
