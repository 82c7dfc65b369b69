package model

import "strings"

// RawAnswerKind tags which payload of a RawAnswer is populated
type RawAnswerKind string

const (
	RawEmpty       RawAnswerKind = "empty"
	RawChoice      RawAnswerKind = "choice"
	RawMultiChoice RawAnswerKind = "multi_choice"
	RawText        RawAnswerKind = "text"
	RawNumeric     RawAnswerKind = "numeric"
)

// RawAnswer is a tagged variant; only the payload matching Kind is read.
type RawAnswer struct {
	Kind    RawAnswerKind `json:"kind" bson:"kind"`
	Choice  string        `json:"choiceKey,omitempty" bson:"choiceKey,omitempty"`
	Choices []string      `json:"multiChoiceKeys,omitempty" bson:"multiChoiceKeys,omitempty"`
	Text    string        `json:"text,omitempty" bson:"text,omitempty"`
	Number  *float64      `json:"numeric,omitempty" bson:"numeric,omitempty"`
}

func EmptyAnswer() RawAnswer { return RawAnswer{Kind: RawEmpty} }

func ChoiceAnswer(key string) RawAnswer { return RawAnswer{Kind: RawChoice, Choice: key} }

func MultiChoiceAnswer(keys ...string) RawAnswer {
	return RawAnswer{Kind: RawMultiChoice, Choices: keys}
}

func TextAnswer(text string) RawAnswer { return RawAnswer{Kind: RawText, Text: text} }

func NumericAnswer(v float64) RawAnswer { return RawAnswer{Kind: RawNumeric, Number: &v} }

// IsEmpty reports whether the answer carries no content. Blank keys,
// whitespace-only text, empty selections and missing numbers all count.
func (r RawAnswer) IsEmpty() bool {
	switch r.Kind {
	case RawChoice:
		return strings.TrimSpace(r.Choice) == ""
	case RawMultiChoice:
		for _, k := range r.Choices {
			if strings.TrimSpace(k) != "" {
				return false
			}
		}
		return true
	case RawText:
		return strings.TrimSpace(r.Text) == ""
	case RawNumeric:
		return r.Number == nil
	default:
		return true
	}
}

// SelectedKeys returns the non-blank keys of a multi-choice answer, each
// key once in first-seen order
func (r RawAnswer) SelectedKeys() []string {
	keys := make([]string, 0, len(r.Choices))
	seen := make(map[string]bool, len(r.Choices))
	for _, k := range r.Choices {
		trimmed := strings.TrimSpace(k)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		keys = append(keys, k)
	}
	return keys
}

// Answer is one evaluator answer inside a Response.
// SafetyValue, ScoreFinal and ScoreSuggested are externally reviewed
// safety values (0-1), read only for open text questions.
type Answer struct {
	QuestionID         string    `json:"questionId" bson:"questionId" validate:"required"`
	QuestionCode       string    `json:"questionCode,omitempty" bson:"questionCode,omitempty"`
	Answer             RawAnswer `json:"answer" bson:"answer"`
	ImportanceOverride *float64  `json:"importanceOverride,omitempty" bson:"importanceOverride,omitempty" validate:"omitempty,gte=0,lte=4"`
	SafetyValue        *float64  `json:"safetyValue,omitempty" bson:"safetyValue,omitempty" validate:"omitempty,gte=0,lte=1"`
	ScoreFinal         *float64  `json:"scoreFinal,omitempty" bson:"scoreFinal,omitempty" validate:"omitempty,gte=0,lte=1"`
	ScoreSuggested     *float64  `json:"scoreSuggested,omitempty" bson:"scoreSuggested,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// HasResponse reports whether the answer should be considered answered
func (a *Answer) HasResponse() bool {
	return !a.Answer.IsEmpty()
}
