package scoring

import (
	"fmt"
	"sort"
	"time"

	"ethicscore/internal/model"
)

// Engine holds the only configuration the scoring functions need. It keeps
// no state between calls.
type Engine struct {
	canon *Canonicalizer
}

// NewEngine creates a scoring engine
func NewEngine(canon *Canonicalizer) *Engine {
	return &Engine{canon: canon}
}

// Canonicalizer returns the principle canonicalizer used by the engine
func (e *Engine) Canonicalizer() *Canonicalizer {
	return e.canon
}

// ScoreInput is everything needed to score one (project, evaluator, questionnaire)
type ScoreInput struct {
	ProjectID            string
	UserID               string
	Role                 string
	QuestionnaireKey     string
	QuestionnaireVersion int
	Questions            []model.Question
	Answers              []model.Answer
}

// ComputeScore normalizes, canonicalizes and buckets every answer. A bad
// answer is recorded as an Issue and the rest are still scored; zero eligible
// answers yields an empty Score carrying a NoAnswerableData issue.
func (e *Engine) ComputeScore(in ScoreInput, now time.Time) *model.Score {
	byID := make(map[string]*model.Question, len(in.Questions))
	byCode := make(map[string]*model.Question, len(in.Questions))
	for i := range in.Questions {
		q := &in.Questions[i]
		byID[q.ID] = q
		if q.Code != "" {
			byCode[q.Code] = q
		}
	}

	// One answer per question; a later entry replaces an earlier one
	latest := make(map[string]int, len(in.Answers))
	var issues []model.Issue
	var missing []int
	for i := range in.Answers {
		a := &in.Answers[i]
		q := byID[a.QuestionID]
		if q == nil && a.QuestionCode != "" {
			q = byCode[a.QuestionCode]
		}
		if q == nil {
			if a.HasResponse() {
				missing = append(missing, i)
			}
			continue
		}
		latest[q.ID] = i
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return in.Answers[missing[i]].QuestionID < in.Answers[missing[j]].QuestionID
	})
	for _, i := range missing {
		a := &in.Answers[i]
		err := fmt.Errorf("question id %q: %w", a.QuestionID, ErrMissingQuestionDefinition)
		issues = append(issues, issueFromError(err, in.QuestionnaireKey, a))
	}

	questions := make([]*model.Question, 0, len(in.Questions))
	for i := range in.Questions {
		questions = append(questions, &in.Questions[i])
	}
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		if questions[i].Code != questions[j].Code {
			return questions[i].Code < questions[j].Code
		}
		return questions[i].ID < questions[j].ID
	})

	contribs := make([]model.QuestionContribution, 0, len(latest))
	unanswered := 0
	for _, q := range questions {
		idx, ok := latest[q.ID]
		if !ok || !in.Answers[idx].HasResponse() {
			unanswered++
			continue
		}
		a := &in.Answers[idx]
		c, issue, ok := e.contribute(in.QuestionnaireKey, a, q)
		if issue != nil {
			issues = append(issues, *issue)
		}
		if ok {
			contribs = append(contribs, c)
		}
	}

	return e.assemble(model.Score{
		ProjectID:            in.ProjectID,
		UserID:               in.UserID,
		Role:                 in.Role,
		QuestionnaireKey:     in.QuestionnaireKey,
		QuestionnaireVersion: in.QuestionnaireVersion,
		ComputedAt:           now,
	}, contribs, issues, unanswered)
}

// contribute scores one answered question. ok is false when the answer is
// excluded; issue is set when the exclusion or a clamp must be reported.
func (e *Engine) contribute(questionnaireKey string, a *model.Answer, q *model.Question) (model.QuestionContribution, *model.Issue, bool) {
	norm, ok, err := Normalize(a, q)
	if err != nil {
		issue := issueFromError(err, questionnaireKey, a)
		return model.QuestionContribution{}, &issue, false
	}
	if !ok {
		return model.QuestionContribution{}, nil, false
	}

	principle, err := e.canon.ResolveQuestion(q)
	if err != nil {
		issue := issueFromError(err, questionnaireKey, a)
		return model.QuestionContribution{}, &issue, false
	}

	method := q.Method()
	c := model.QuestionContribution{
		QuestionID:       q.ID,
		QuestionCode:     q.Code,
		QuestionnaireKey: questionnaireKey,
		PrincipleKey:     principle,
		Order:            q.Order,
		Importance:       norm.Importance,
		Safety:           norm.Safety,
		Contribution:     Contribution(method, norm.Importance, norm.Safety),
		Method:           method,
	}

	var issue *model.Issue
	if norm.Clamped {
		issue = &model.Issue{
			Kind:             model.IssueClampedNumeric,
			QuestionnaireKey: questionnaireKey,
			QuestionID:       q.ID,
			QuestionCode:     q.Code,
			Detail:           fmt.Sprintf("numeric answer %v clamped to %v", *a.Answer.Number, norm.Safety),
		}
	}
	return c, issue, true
}

// assemble fills the derived fields of a Score from its contributions
func (e *Engine) assemble(score model.Score, contribs []model.QuestionContribution, issues []model.Issue, unanswered int) *model.Score {
	sortContributions(contribs)
	byPrinciple, totals := breakdown(contribs)
	totals.Unanswered = unanswered

	if len(contribs) == 0 {
		issues = append(issues, model.Issue{
			Kind:             model.IssueNoAnswerableData,
			QuestionnaireKey: score.QuestionnaireKey,
			Detail:           ErrNoAnswerableData.Error(),
		})
	}
	if issues == nil {
		issues = []model.Issue{}
	}

	score.Totals = totals
	score.ByPrinciple = byPrinciple
	score.ByQuestion = contribs
	score.Issues = issues
	return &score
}
