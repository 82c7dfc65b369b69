package scoring

import (
	"sort"

	"ethicscore/internal/model"
)

// sortContributions orders contributions so every float sum below is
// accumulated in the same sequence on each run.
func sortContributions(contribs []model.QuestionContribution) {
	sort.SliceStable(contribs, func(i, j int) bool {
		a, b := contribs[i], contribs[j]
		if a.QuestionnaireKey != b.QuestionnaireKey {
			return a.QuestionnaireKey < b.QuestionnaireKey
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.QuestionCode != b.QuestionCode {
			return a.QuestionCode < b.QuestionCode
		}
		return a.QuestionID < b.QuestionID
	})
}

type accumulator struct {
	n        int
	risk     float64
	safety   float64
	min, max float64
}

func (a *accumulator) add(c model.QuestionContribution) {
	if a.n == 0 || c.Contribution < a.min {
		a.min = c.Contribution
	}
	if a.n == 0 || c.Contribution > a.max {
		a.max = c.Contribution
	}
	a.n++
	a.risk += c.Contribution
	a.safety += c.Safety
}

// breakdown groups sorted contributions by principle and derives totals.
// Only answered contributions are passed in, so n never counts skips.
func breakdown(contribs []model.QuestionContribution) (model.PrincipleBreakdown, model.Totals) {
	buckets := make(map[model.Principle]*accumulator)
	var total accumulator
	for _, c := range contribs {
		acc := buckets[c.PrincipleKey]
		if acc == nil {
			acc = &accumulator{}
			buckets[c.PrincipleKey] = acc
		}
		acc.add(c)
		total.add(c)
	}

	out := make(model.PrincipleBreakdown, len(buckets))
	for p, acc := range buckets {
		out[p] = model.PrincipleStats{
			N:         acc.n,
			Risk:      acc.risk,
			Avg:       acc.risk / float64(acc.n),
			Min:       acc.min,
			Max:       acc.max,
			AvgSafety: acc.safety / float64(acc.n),
		}
	}

	totals := model.Totals{N: total.n, OverallRisk: total.risk}
	if total.n > 0 {
		totals.AvgRisk = total.risk / float64(total.n)
		totals.AvgSafety = total.safety / float64(total.n)
	}
	return out, totals
}
