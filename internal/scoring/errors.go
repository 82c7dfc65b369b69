package scoring

import (
	"errors"
	"fmt"

	"ethicscore/internal/model"
)

var (
	ErrInvalidChoiceKey          = errors.New("answer references an option not present on its question")
	ErrUnmappedPrinciple         = errors.New("principle label has no canonical mapping")
	ErrMissingQuestionDefinition = errors.New("answer references an unknown question")
	ErrNoAnswerableData          = errors.New("no answerable data")
	ErrInvalidAnswerValue        = errors.New("answer value does not fit its question type")
)

// issueKinds maps sentinel errors to the issue kind recorded on a Score
var issueKinds = map[error]model.IssueKind{
	ErrInvalidChoiceKey:          model.IssueInvalidChoiceKey,
	ErrUnmappedPrinciple:         model.IssueUnmappedPrinciple,
	ErrMissingQuestionDefinition: model.IssueMissingQuestionDefinition,
	ErrNoAnswerableData:          model.IssueNoAnswerableData,
	ErrInvalidAnswerValue:        model.IssueInvalidAnswerValue,
}

// issueFromError turns a per-answer error into a recorded Issue
func issueFromError(err error, questionnaireKey string, a *model.Answer) model.Issue {
	kind := model.IssueKind("Unknown")
	for sentinel, k := range issueKinds {
		if errors.Is(err, sentinel) {
			kind = k
			break
		}
	}
	return model.Issue{
		Kind:             kind,
		QuestionnaireKey: questionnaireKey,
		QuestionID:       a.QuestionID,
		QuestionCode:     a.QuestionCode,
		Detail:           err.Error(),
	}
}

func invalidChoice(q *model.Question, key string) error {
	return fmt.Errorf("question %s option %q: %w", q.Code, key, ErrInvalidChoiceKey)
}
