package scoring

import (
	"sort"
	"time"

	"ethicscore/internal/model"
)

// QuestionnaireInfo describes a questionnaire for double-count detection
type QuestionnaireInfo struct {
	Questionnaire *model.Questionnaire
	QuestionCodes []string
}

// CombineScores merges one evaluator's questionnaire Scores into the
// synthetic combined Score. A questionnaire is left out when another merged
// questionnaire supersedes it, either explicitly or because its question
// codes are a subset of the other's.
func (e *Engine) CombineScores(projectID, userID string, scores []*model.Score, infos map[string]QuestionnaireInfo, now time.Time) *model.Score {
	candidates := make([]*model.Score, 0, len(scores))
	for _, s := range scores {
		if s != nil && !s.IsCombined() {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QuestionnaireKey < candidates[j].QuestionnaireKey
	})

	var included, superseded []*model.Score
	for _, s := range candidates {
		if supersededBy(s, candidates, infos) != "" {
			superseded = append(superseded, s)
			continue
		}
		included = append(included, s)
	}

	combined := model.Score{
		ProjectID:        projectID,
		UserID:           userID,
		Role:             combinedRole(included, infos),
		QuestionnaireKey: model.CombinedQuestionnaireKey,
		Sources:          []string{},
		ComputedAt:       now,
	}
	for _, s := range superseded {
		combined.Superseded = append(combined.Superseded, s.QuestionnaireKey)
	}

	seen := make(map[string]bool)
	var contribs []model.QuestionContribution
	var issues []model.Issue
	unanswered := 0
	for _, s := range included {
		combined.Sources = append(combined.Sources, s.QuestionnaireKey)
		unanswered += s.Totals.Unanswered
		for _, c := range s.ByQuestion {
			if seen[c.QuestionID] {
				continue
			}
			seen[c.QuestionID] = true
			if c.QuestionnaireKey == "" {
				c.QuestionnaireKey = s.QuestionnaireKey
			}
			contribs = append(contribs, c)
		}
		for _, issue := range s.Issues {
			if issue.Kind == model.IssueNoAnswerableData {
				continue
			}
			if issue.QuestionnaireKey == "" {
				issue.QuestionnaireKey = s.QuestionnaireKey
			}
			issues = append(issues, issue)
		}
	}

	return e.assemble(combined, contribs, issues, unanswered)
}

// supersededBy returns the key of the questionnaire that covers s, if any
func supersededBy(s *model.Score, all []*model.Score, infos map[string]QuestionnaireInfo) string {
	self, hasSelf := infos[s.QuestionnaireKey]
	for _, other := range all {
		if other.QuestionnaireKey == s.QuestionnaireKey {
			continue
		}
		info, ok := infos[other.QuestionnaireKey]
		if !ok || info.Questionnaire == nil {
			continue
		}
		if info.Questionnaire.SupersedesKey(s.QuestionnaireKey) {
			// two questionnaires flagging each other cancel out
			if hasSelf && self.Questionnaire != nil && self.Questionnaire.SupersedesKey(other.QuestionnaireKey) {
				continue
			}
			return other.QuestionnaireKey
		}
		if hasSelf && self.Questionnaire != nil && self.Questionnaire.General && !info.Questionnaire.General &&
			subsumes(info.QuestionCodes, self.QuestionCodes) {
			return other.QuestionnaireKey
		}
	}
	return ""
}

// subsumes reports whether outer holds every code of inner and is at least as large
func subsumes(outer, inner []string) bool {
	if len(inner) == 0 || len(outer) < len(inner) {
		return false
	}
	set := make(map[string]bool, len(outer))
	for _, c := range outer {
		set[c] = true
	}
	for _, c := range inner {
		if !set[c] {
			return false
		}
	}
	return true
}

// combinedRole prefers the role of a role-specific questionnaire
func combinedRole(included []*model.Score, infos map[string]QuestionnaireInfo) string {
	for _, s := range included {
		if info, ok := infos[s.QuestionnaireKey]; ok && info.Questionnaire != nil && !info.Questionnaire.General && s.Role != "" {
			return s.Role
		}
	}
	for _, s := range included {
		if s.Role != "" {
			return s.Role
		}
	}
	return ""
}
