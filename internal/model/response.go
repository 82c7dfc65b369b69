package model

import "time"

type ResponseStatus string

const (
	ResponseDraft     ResponseStatus = "draft"
	ResponseSubmitted ResponseStatus = "submitted"
)

// Response holds one evaluator's answers to one questionnaire for a project.
// Keyed by (projectId, userId, questionnaireKey); mutable until submitted.
type Response struct {
	ProjectID            string         `json:"projectId" bson:"projectId" validate:"required"`
	UserID               string         `json:"userId" bson:"userId" validate:"required"`
	Role                 string         `json:"role" bson:"role" validate:"required"`
	QuestionnaireKey     string         `json:"questionnaireKey" bson:"questionnaireKey" validate:"required"`
	QuestionnaireVersion int            `json:"questionnaireVersion" bson:"questionnaireVersion" validate:"gte=0"`
	Answers              []Answer       `json:"answers" bson:"answers" validate:"dive"`
	Status               ResponseStatus `json:"status" bson:"status" validate:"oneof=draft submitted"`
	SubmittedAt          *time.Time     `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	UpdatedAt            time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// IsSubmitted reports whether the one-way submit transition has happened
func (r *Response) IsSubmitted() bool {
	return r.Status == ResponseSubmitted
}

// Submit marks the response as submitted
func (r *Response) Submit(now time.Time) {
	r.Status = ResponseSubmitted
	r.SubmittedAt = &now
	r.UpdatedAt = now
}
