package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ethicscore/internal/model"
)

// Normalized is the answer-type independent view of one answer.
// Every component downstream of the normalizer only sees this.
type Normalized struct {
	Importance float64 // 0-4
	Safety     float64 // 0-1, also the performance value
	Clamped    bool    // numeric input was outside [0,1]
}

// Normalize converts one answer and its question into importance and safety.
// ok is false when the answer must be skipped entirely: no content, an empty
// multi-choice selection, or open text that has not been reviewed yet.
func Normalize(a *model.Answer, q *model.Question) (n Normalized, ok bool, err error) {
	if a.Answer.IsEmpty() {
		return Normalized{}, false, nil
	}

	n.Importance = resolveImportance(a, q)

	switch q.AnswerType {
	case model.AnswerSingleChoice:
		if a.Answer.Kind != model.RawChoice {
			return Normalized{}, false, fmt.Errorf("question %s expects a single choice, got %s: %w", q.Code, a.Answer.Kind, ErrInvalidChoiceKey)
		}
		n.Safety, err = lookupSafety(q, a.Answer.Choice)
		if err != nil {
			return Normalized{}, false, err
		}

	case model.AnswerMultiChoice:
		var keys []string
		switch a.Answer.Kind {
		case model.RawMultiChoice:
			keys = a.Answer.SelectedKeys()
		case model.RawChoice:
			keys = []string{a.Answer.Choice}
		default:
			return Normalized{}, false, fmt.Errorf("question %s expects option keys, got %s: %w", q.Code, a.Answer.Kind, ErrInvalidChoiceKey)
		}
		if len(keys) == 0 {
			return Normalized{}, false, nil
		}
		sum := 0.0
		for _, k := range keys {
			s, err := lookupSafety(q, k)
			if err != nil {
				return Normalized{}, false, err
			}
			sum += s
		}
		n.Safety = sum / float64(len(keys))

	case model.AnswerNumeric:
		if a.Answer.Kind != model.RawNumeric {
			return Normalized{}, false, fmt.Errorf("question %s expects a number, got %s: %w", q.Code, a.Answer.Kind, ErrInvalidAnswerValue)
		}
		v := *a.Answer.Number
		if !isFinite(v) {
			return Normalized{}, false, fmt.Errorf("question %s numeric answer %v: %w", q.Code, v, ErrInvalidAnswerValue)
		}
		n.Safety = clamp(v, 0, 1)
		n.Clamped = n.Safety != v

	case model.AnswerOpenText:
		s, reviewed := reviewedSafety(a)
		if !reviewed {
			return Normalized{}, false, nil
		}
		if !isFinite(s) {
			return Normalized{}, false, fmt.Errorf("question %s reviewed safety %v: %w", q.Code, s, ErrInvalidAnswerValue)
		}
		n.Safety = clamp(s, 0, 1)

	default:
		return Normalized{}, false, fmt.Errorf("question %s has unknown answer type %q: %w", q.Code, q.AnswerType, ErrMissingQuestionDefinition)
	}

	return n, true, nil
}

// Contribution applies exactly one formula, chosen by the question's method
func Contribution(method model.ScoringMethod, importance, safety float64) float64 {
	if method == model.ScoringDirect {
		return model.MaxImportance * (1 - safety)
	}
	return importance * (1 - safety)
}

// resolveImportance: answer override, then question, then medium.
// Non-finite values are ignored.
func resolveImportance(a *model.Answer, q *model.Question) float64 {
	if a.ImportanceOverride != nil && isFinite(*a.ImportanceOverride) {
		return clamp(*a.ImportanceOverride, 0, model.MaxImportance)
	}
	if q.Importance != nil && isFinite(*q.Importance) {
		return clamp(*q.Importance, 0, model.MaxImportance)
	}
	return model.DefaultImportance
}

// reviewedSafety reads the human-reviewed value of an open text answer
func reviewedSafety(a *model.Answer) (float64, bool) {
	switch {
	case a.SafetyValue != nil:
		return *a.SafetyValue, true
	case a.ScoreFinal != nil:
		return *a.ScoreFinal, true
	case a.ScoreSuggested != nil:
		return *a.ScoreSuggested, true
	}
	return 0, false
}

// lookupSafety resolves an option key to its 0-1 safety. Exact key match
// wins; a folded match tolerates option-key drift between catalog edits.
func lookupSafety(q *model.Question, key string) (float64, error) {
	if opt := matchOption(q.Options, key); opt != nil {
		if s, ok := optionSafety(q, opt); ok {
			return s, nil
		}
		return 0, fmt.Errorf("question %s option %q carries no score: %w", q.Code, key, ErrInvalidChoiceKey)
	}
	// Older catalogs only carried the legacy maps
	if s, ok := legacySafety(q, key); ok {
		return s, nil
	}
	return 0, invalidChoice(q, key)
}

func matchOption(options []model.Option, key string) *model.Option {
	for i := range options {
		if options[i].Key == key {
			return &options[i]
		}
	}
	folded := foldKey(key)
	for i := range options {
		if foldKey(options[i].Key) == folded {
			return &options[i]
		}
	}
	return nil
}

// optionSafety: answerScore (0-1), legacy score (0-4), then the legacy maps
func optionSafety(q *model.Question, opt *model.Option) (float64, bool) {
	if opt.AnswerScore != nil && isFinite(*opt.AnswerScore) {
		return clamp(*opt.AnswerScore, 0, 1), true
	}
	if opt.Score != nil && isFinite(*opt.Score) {
		return clamp(*opt.Score/model.MaxImportance, 0, 1), true
	}
	return legacySafety(q, opt.Key)
}

func legacySafety(q *model.Question, key string) (float64, bool) {
	if sev, ok := lookupFolded(q.OptionSeverityMap, key); ok {
		return clamp(1-sev, 0, 1), true
	}
	if risk, ok := lookupFolded(q.OptionRiskMap, key); ok {
		return clamp(1-risk/model.MaxImportance, 0, 1), true
	}
	return 0, false
}

func lookupFolded(m map[string]float64, key string) (float64, bool) {
	if len(m) == 0 {
		return 0, false
	}
	if v, ok := m[key]; ok {
		return v, isFinite(v)
	}
	folded := foldKey(key)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if foldKey(k) == folded {
			return m[k], isFinite(m[k])
		}
	}
	return 0, false
}

// foldKey lowercases and folds whitespace and underscores into one "_"
func foldKey(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), "_")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
