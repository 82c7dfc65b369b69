package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ethicscore/internal/metrics"
	"ethicscore/internal/model"
	"ethicscore/internal/repository"
)

// ResponseService stores evaluator drafts and runs the one-way submit
type ResponseService struct {
	responses repository.ResponseRepo
	catalog   repository.CatalogReader
	scores    *ScoreService
	logger    *slog.Logger
	now       func() time.Time
}

// NewResponseService creates a new response service
func NewResponseService(responses repository.ResponseRepo, catalog repository.CatalogReader, scores *ScoreService, logger *slog.Logger) *ResponseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseService{
		responses: responses,
		catalog:   catalog,
		scores:    scores,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SaveDraft creates or replaces the draft for (project, user, questionnaire).
// A submitted response can no longer be changed.
func (s *ResponseService) SaveDraft(ctx context.Context, draft *model.Response) error {
	draft.Status = model.ResponseDraft
	draft.SubmittedAt = nil
	if err := Validate(draft); err != nil {
		return err
	}

	questionnaire, err := s.catalog.GetQuestionnaire(ctx, draft.QuestionnaireKey)
	if err != nil {
		return fmt.Errorf("load questionnaire: %w", err)
	}
	if questionnaire == nil {
		return fmt.Errorf("questionnaire %s: %w", draft.QuestionnaireKey, ErrNotFound)
	}
	if draft.QuestionnaireVersion == 0 {
		draft.QuestionnaireVersion = questionnaire.Version
	}

	existing, err := s.responses.Get(ctx, draft.ProjectID, draft.UserID, draft.QuestionnaireKey)
	if err != nil {
		return fmt.Errorf("load response: %w", err)
	}
	if existing != nil && existing.IsSubmitted() {
		return ErrAlreadySubmitted
	}

	if err := s.responses.SaveDraft(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrNotDraft) {
			return ErrAlreadySubmitted
		}
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Get returns one stored response
func (s *ResponseService) Get(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Response, error) {
	response, err := s.responses.Get(ctx, projectID, userID, questionnaireKey)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, ErrNotFound
	}
	return response, nil
}

// Submit validates the draft, marks it submitted and computes the evaluator's
// questionnaire and combined Scores. A validation failure leaves the draft
// untouched.
func (s *ResponseService) Submit(ctx context.Context, projectID, userID, questionnaireKey string) (*model.Score, error) {
	response, err := s.responses.Get(ctx, projectID, userID, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if response == nil {
		return nil, ErrNotFound
	}
	if response.IsSubmitted() {
		metrics.RecordSubmission("duplicate")
		return nil, ErrAlreadySubmitted
	}

	questions, err := s.catalog.GetQuestions(ctx, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions for %s: %w", questionnaireKey, ErrNotFound)
	}
	if problems := validateSubmission(response, questions); len(problems) > 0 {
		metrics.RecordSubmission("invalid")
		return nil, &SubmissionError{Problems: problems}
	}

	ok, err := s.responses.MarkSubmitted(ctx, projectID, userID, questionnaireKey, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	if !ok {
		metrics.RecordSubmission("duplicate")
		return nil, ErrAlreadySubmitted
	}
	metrics.RecordSubmission("accepted")
	s.logger.Info("response submitted", "project_id", projectID, "user_id", userID, "questionnaire", questionnaireKey)

	score, err := s.scores.ComputeScore(ctx, projectID, userID, questionnaireKey)
	if err != nil {
		return nil, fmt.Errorf("compute score: %w", err)
	}
	if _, err := s.scores.ComputeCombinedScore(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("compute combined score: %w", err)
	}
	s.scores.InvalidateProject(ctx, projectID)
	return score, nil
}

// validateSubmission lists required questions without content and answers
// that reference no known question
func validateSubmission(response *model.Response, questions []model.Question) []string {
	byID := make(map[string]bool, len(questions))
	byCode := make(map[string]string, len(questions))
	for _, q := range questions {
		byID[q.ID] = true
		if q.Code != "" {
			byCode[q.Code] = q.ID
		}
	}

	answered := make(map[string]bool, len(response.Answers))
	var problems []string
	for _, a := range response.Answers {
		id := a.QuestionID
		if !byID[id] {
			if mapped, ok := byCode[a.QuestionCode]; ok {
				id = mapped
			} else {
				problems = append(problems, fmt.Sprintf("answer references unknown question %q", a.QuestionID))
				continue
			}
		}
		if a.HasResponse() {
			answered[id] = true
		}
	}

	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			problems = append(problems, fmt.Sprintf("required question %s is unanswered", q.Code))
		}
	}
	return problems
}
