package scoring

import (
	"sort"

	"ethicscore/internal/model"
)

// DefaultHotspotThreshold flags questions whose mean safety is at or below it
const DefaultHotspotThreshold = 0.5

// DetectHotspots flags every question whose mean safety across the given
// Scores is at or below threshold, highest mean risk first. Combined Scores
// are ignored so shared answers are not counted twice.
func DetectHotspots(scores []*model.Score, threshold float64) []model.HotspotQuestion {
	sources := make([]*model.Score, 0, len(scores))
	for _, s := range scores {
		if s != nil && !s.IsCombined() {
			sources = append(sources, s)
		}
	}

	ranked := rankQuestions(sources)
	hotspots := make([]model.HotspotQuestion, 0, len(ranked))
	for _, h := range ranked {
		if h.MeanSafety <= threshold {
			hotspots = append(hotspots, h)
		}
	}
	return hotspots
}

type questionAcc struct {
	hot        model.HotspotQuestion
	safety     float64
	risk       float64
	evaluators map[string]bool
}

// rankQuestions averages each question's contributions across Scores and
// sorts by mean risk desc, then question code, then question id.
func rankQuestions(scores []*model.Score) []model.HotspotQuestion {
	ordered := sortedScores(scores)

	accs := make(map[string]*questionAcc)
	var keys []string
	for _, s := range ordered {
		for _, c := range s.ByQuestion {
			acc := accs[c.QuestionID]
			if acc == nil {
				acc = &questionAcc{
					hot: model.HotspotQuestion{
						QuestionID:       c.QuestionID,
						QuestionCode:     c.QuestionCode,
						QuestionnaireKey: c.QuestionnaireKey,
						PrincipleKey:     c.PrincipleKey,
					},
					evaluators: make(map[string]bool),
				}
				accs[c.QuestionID] = acc
				keys = append(keys, c.QuestionID)
			}
			acc.safety += c.Safety
			acc.risk += c.Contribution
			acc.hot.Answers++
			acc.evaluators[s.UserID] = true
		}
	}

	out := make([]model.HotspotQuestion, 0, len(keys))
	for _, k := range keys {
		acc := accs[k]
		h := acc.hot
		h.MeanSafety = acc.safety / float64(h.Answers)
		h.MeanRisk = acc.risk / float64(h.Answers)
		h.Evaluators = len(acc.evaluators)
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RanksBefore(out[j])
	})
	return out
}

// sortedScores returns a copy ordered by evaluator then questionnaire
func sortedScores(scores []*model.Score) []*model.Score {
	out := make([]*model.Score, 0, len(scores))
	for _, s := range scores {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].QuestionnaireKey < out[j].QuestionnaireKey
	})
	return out
}
