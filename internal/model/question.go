package model

// AnswerType defines how a question is answered
type AnswerType string

const (
	AnswerSingleChoice AnswerType = "single_choice"
	AnswerMultiChoice  AnswerType = "multi_choice"
	AnswerOpenText     AnswerType = "open_text"
	AnswerNumeric      AnswerType = "numeric"
)

// ScoringMethod selects the single contribution formula used for a question
type ScoringMethod string

const (
	ScoringERC    ScoringMethod = "erc"    // importance × (1 − safety)
	ScoringDirect ScoringMethod = "direct" // safety mapped straight onto the 0-4 risk scale
)

// MaxImportance is the top of the 0-4 importance scale
const MaxImportance = 4.0

// DefaultImportance is used when neither the answer nor the question carries one
const DefaultImportance = 2.0

// Questionnaire is a versioned question set, general or role-specific
type Questionnaire struct {
	Key        string   `json:"key" bson:"key"` // e.g. "general-v1", "legal-expert-v1"
	Version    int      `json:"version" bson:"version"`
	Title      string   `json:"title" bson:"title"`
	Role       string   `json:"role,omitempty" bson:"role,omitempty"` // empty for general questionnaires
	General    bool     `json:"general" bson:"general"`
	Supersedes []string `json:"supersedes,omitempty" bson:"supersedes,omitempty"` // questionnaire keys already covered by this one
}

// SupersedesKey reports whether this questionnaire explicitly covers another
func (q *Questionnaire) SupersedesKey(key string) bool {
	for _, k := range q.Supersedes {
		if k == key {
			return true
		}
	}
	return false
}

// Option is one selectable answer of a choice question.
// AnswerScore (0-1) is current; Score (0-4) is the legacy safety level.
type Option struct {
	Key         string   `json:"key" bson:"key"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	AnswerScore *float64 `json:"answerScore,omitempty" bson:"answerScore,omitempty"`
	Score       *float64 `json:"score,omitempty" bson:"score,omitempty"`
}

// QuestionScoring holds per-question scoring settings
type QuestionScoring struct {
	Method ScoringMethod `json:"method,omitempty" bson:"method,omitempty"`
}

// Question is an immutable catalog entry, versioned via QuestionnaireVersion
type Question struct {
	ID                   string          `json:"id" bson:"_id"`
	QuestionnaireKey     string          `json:"questionnaireKey" bson:"questionnaireKey"`
	QuestionnaireVersion int             `json:"questionnaireVersion" bson:"questionnaireVersion"`
	Code                 string          `json:"code" bson:"code"`
	Text                 string          `json:"text,omitempty" bson:"text,omitempty"`
	Principle            string          `json:"principle,omitempty" bson:"principle,omitempty"`       // raw label
	PrincipleKey         string          `json:"principleKey,omitempty" bson:"principleKey,omitempty"` // canonical-ish key
	Importance           *float64        `json:"riskScore,omitempty" bson:"riskScore,omitempty"`       // 0-4
	AnswerType           AnswerType      `json:"answerType" bson:"answerType"`
	Options              []Option        `json:"options,omitempty" bson:"options,omitempty"`
	Required             bool            `json:"required" bson:"required"`
	Order                int             `json:"order" bson:"order"`
	Scoring              QuestionScoring `json:"scoring" bson:"scoring"`

	// Legacy adapter inputs from older catalog vintages
	OptionRiskMap     map[string]float64 `json:"optionRiskMap,omitempty" bson:"optionRiskMap,omitempty"`         // 0-4 risk per option key
	OptionSeverityMap map[string]float64 `json:"optionSeverityMap,omitempty" bson:"optionSeverityMap,omitempty"` // 0-1 severity per option key
}

// Method returns the scoring method, defaulting to ERC
func (q *Question) Method() ScoringMethod {
	if q.Scoring.Method == ScoringDirect {
		return ScoringDirect
	}
	return ScoringERC
}
