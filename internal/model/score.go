package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// CombinedQuestionnaireKey marks the synthetic per-evaluator Score that
// merges every questionnaire the evaluator answered for a project.
const CombinedQuestionnaireKey = "__combined__"

// IssueKind classifies why an answer was excluded or flagged
type IssueKind string

const (
	IssueInvalidChoiceKey          IssueKind = "InvalidChoiceKey"
	IssueUnmappedPrinciple         IssueKind = "UnmappedPrinciple"
	IssueMissingQuestionDefinition IssueKind = "MissingQuestionDefinition"
	IssueNoAnswerableData          IssueKind = "NoAnswerableData"
	IssueClampedNumeric            IssueKind = "ClampedNumeric"
	IssueInvalidAnswerValue        IssueKind = "InvalidAnswerValue"
)

// Issue records an excluded or flagged answer for operator follow-up
type Issue struct {
	Kind             IssueKind `json:"kind" bson:"kind"`
	QuestionnaireKey string    `json:"questionnaireKey,omitempty" bson:"questionnaireKey,omitempty"`
	QuestionID       string    `json:"questionId,omitempty" bson:"questionId,omitempty"`
	QuestionCode     string    `json:"questionCode,omitempty" bson:"questionCode,omitempty"`
	Detail           string    `json:"detail" bson:"detail"`
}

// Totals are the evaluator-level figures of a Score
type Totals struct {
	N           int     `json:"n" bson:"n"`
	Unanswered  int     `json:"unanswered" bson:"unanswered"`
	OverallRisk float64 `json:"overallRisk" bson:"overallRisk"` // sum of contributions
	AvgRisk     float64 `json:"avgRisk" bson:"avgRisk"`
	AvgSafety   float64 `json:"avgSafety" bson:"avgSafety"`
}

// PrincipleStats is one principle bucket. Risk is the sum of contributions
// and Avg is Risk / N.
type PrincipleStats struct {
	N         int     `json:"n" bson:"n"`
	Risk      float64 `json:"risk" bson:"risk"`
	Avg       float64 `json:"avg" bson:"avg"`
	Min       float64 `json:"min" bson:"min"`
	Max       float64 `json:"max" bson:"max"`
	AvgSafety float64 `json:"avgSafety" bson:"avgSafety"`
}

// PrincipleBreakdown maps canonical principles to their bucket
type PrincipleBreakdown map[Principle]PrincipleStats

// MarshalBSONValue writes buckets in canonical order so a recomputed Score
// produces the same stored bytes.
func (b PrincipleBreakdown) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := bson.D{}
	for _, p := range CanonicalPrinciples {
		if stats, ok := b[p]; ok {
			doc = append(doc, bson.E{Key: string(p), Value: stats})
		}
	}
	return bson.MarshalValue(doc)
}

// QuestionContribution is one answered question's normalized result
type QuestionContribution struct {
	QuestionID       string        `json:"questionId" bson:"questionId"`
	QuestionCode     string        `json:"questionCode" bson:"questionCode"`
	QuestionnaireKey string        `json:"questionnaireKey" bson:"questionnaireKey"`
	PrincipleKey     Principle     `json:"principleKey" bson:"principleKey"`
	Order            int           `json:"order" bson:"order"`
	Importance       float64       `json:"importance" bson:"importance"`
	Safety           float64       `json:"safety" bson:"safety"` // also the performance value
	Contribution     float64       `json:"contribution" bson:"contribution"`
	Method           ScoringMethod `json:"method" bson:"method"`
}

// Score is the derived result for one (project, evaluator, questionnaire).
// Never hand-edited; recomputation replaces the stored document.
type Score struct {
	ProjectID            string                 `json:"projectId" bson:"projectId"`
	UserID               string                 `json:"userId" bson:"userId"`
	Role                 string                 `json:"role" bson:"role"`
	QuestionnaireKey     string                 `json:"questionnaireKey" bson:"questionnaireKey"`
	QuestionnaireVersion int                    `json:"questionnaireVersion" bson:"questionnaireVersion"`
	Totals               Totals                 `json:"totals" bson:"totals"`
	ByPrinciple          PrincipleBreakdown     `json:"byPrinciple" bson:"byPrinciple"`
	ByQuestion           []QuestionContribution `json:"byQuestion" bson:"byQuestion"`
	Issues               []Issue                `json:"issues" bson:"issues"`
	Sources              []string               `json:"sources,omitempty" bson:"sources,omitempty"`
	Superseded           []string               `json:"superseded,omitempty" bson:"superseded,omitempty"`
	ComputedAt           time.Time              `json:"computedAt" bson:"computedAt"`
}

// IsCombined reports whether this is the synthetic cross-questionnaire Score
func (s *Score) IsCombined() bool {
	return s.QuestionnaireKey == CombinedQuestionnaireKey
}

// HotspotQuestion is a question whose mean safety is at or below the threshold
type HotspotQuestion struct {
	QuestionID       string    `json:"questionId" bson:"questionId"`
	QuestionCode     string    `json:"questionCode" bson:"questionCode"`
	QuestionnaireKey string    `json:"questionnaireKey" bson:"questionnaireKey"`
	PrincipleKey     Principle `json:"principleKey" bson:"principleKey"`
	MeanSafety       float64   `json:"meanSafety" bson:"meanSafety"`
	MeanRisk         float64   `json:"meanRisk" bson:"meanRisk"`
	Evaluators       int       `json:"evaluators" bson:"evaluators"`
	Answers          int       `json:"answers" bson:"answers"`
}

// RanksBefore orders hotspots by mean risk desc, then question code, then
// question id
func (h HotspotQuestion) RanksBefore(o HotspotQuestion) bool {
	if h.MeanRisk != o.MeanRisk {
		return h.MeanRisk > o.MeanRisk
	}
	if h.QuestionCode != o.QuestionCode {
		return h.QuestionCode < o.QuestionCode
	}
	return h.QuestionID < o.QuestionID
}

// ProjectPrincipleStats is one principle bucket across evaluators
type ProjectPrincipleStats struct {
	N         int     `json:"n" bson:"n"`
	Count     int     `json:"count" bson:"count"` // distinct evaluators
	Risk      float64 `json:"risk" bson:"risk"`
	Avg       float64 `json:"avg" bson:"avg"`
	AvgSafety float64 `json:"avgSafety" bson:"avgSafety"`
}

// ProjectBreakdown maps canonical principles to project-level buckets
type ProjectBreakdown map[Principle]ProjectPrincipleStats

// MarshalBSONValue writes buckets in canonical order
func (b ProjectBreakdown) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := bson.D{}
	for _, p := range CanonicalPrinciples {
		if stats, ok := b[p]; ok {
			doc = append(doc, bson.E{Key: string(p), Value: stats})
		}
	}
	return bson.MarshalValue(doc)
}

// ProjectScore is the rollup over all evaluator Scores of a project,
// optionally restricted to one role. Keyed by (projectId, role).
type ProjectScore struct {
	ProjectID          string            `json:"projectId" bson:"projectId"`
	Role               string            `json:"role,omitempty" bson:"role"`
	Evaluators         int               `json:"evaluators" bson:"evaluators"`
	Scores             int               `json:"scores" bson:"scores"`
	IncludesCombined   bool              `json:"includesCombined" bson:"includesCombined"`
	Totals             Totals            `json:"totals" bson:"totals"`
	ByPrincipleOverall ProjectBreakdown  `json:"byPrincipleOverall" bson:"byPrincipleOverall"`
	TopRiskyQuestions  []HotspotQuestion `json:"topRiskyQuestions" bson:"topRiskyQuestions"`
	ComputedAt         time.Time         `json:"computedAt" bson:"computedAt"`
}
