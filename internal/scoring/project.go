package scoring

import (
	"time"

	"ethicscore/internal/model"
)

// DefaultTopRiskyQuestions bounds ProjectScore.TopRiskyQuestions
const DefaultTopRiskyQuestions = 10

// ProjectOptions controls which Scores feed a project rollup
type ProjectOptions struct {
	Role string // empty means all roles
	// IncludeCombined rolls up the synthetic combined Scores instead of the
	// per-questionnaire ones. The two sets are never mixed.
	IncludeCombined bool
	TopN            int
}

// AggregateProject rolls evaluator Scores up into a project (or role) view.
// A principle only appears once some evaluator answered a question for it.
func (e *Engine) AggregateProject(projectID string, scores []*model.Score, opts ProjectOptions, now time.Time) *model.ProjectScore {
	var selected []*model.Score
	for _, s := range scores {
		if s == nil || s.ProjectID != projectID {
			continue
		}
		if s.IsCombined() != opts.IncludeCombined {
			continue
		}
		if opts.Role != "" && s.Role != opts.Role {
			continue
		}
		selected = append(selected, s)
	}
	selected = sortedScores(selected)

	type principleAcc struct {
		n          int
		risk       float64
		safety     float64
		evaluators map[string]bool
	}
	accs := make(map[model.Principle]*principleAcc)
	users := make(map[string]bool)
	var totals model.Totals
	safetySum := 0.0

	for _, s := range selected {
		users[s.UserID] = true
		totals.Unanswered += s.Totals.Unanswered
		for _, p := range model.CanonicalPrinciples {
			st, ok := s.ByPrinciple[p]
			if !ok || st.N == 0 {
				continue
			}
			acc := accs[p]
			if acc == nil {
				acc = &principleAcc{evaluators: make(map[string]bool)}
				accs[p] = acc
			}
			acc.n += st.N
			acc.risk += st.Risk
			acc.safety += st.AvgSafety * float64(st.N)
			acc.evaluators[s.UserID] = true

			totals.N += st.N
			totals.OverallRisk += st.Risk
			safetySum += st.AvgSafety * float64(st.N)
		}
	}
	if totals.N > 0 {
		totals.AvgRisk = totals.OverallRisk / float64(totals.N)
		totals.AvgSafety = safetySum / float64(totals.N)
	}

	byPrinciple := make(model.ProjectBreakdown, len(accs))
	for p, acc := range accs {
		byPrinciple[p] = model.ProjectPrincipleStats{
			N:         acc.n,
			Count:     len(acc.evaluators),
			Risk:      acc.risk,
			Avg:       acc.risk / float64(acc.n),
			AvgSafety: acc.safety / float64(acc.n),
		}
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopRiskyQuestions
	}
	top := rankQuestions(selected)
	if len(top) > topN {
		top = top[:topN]
	}

	return &model.ProjectScore{
		ProjectID:          projectID,
		Role:               opts.Role,
		Evaluators:         len(users),
		Scores:             len(selected),
		IncludesCombined:   opts.IncludeCombined,
		Totals:             totals,
		ByPrincipleOverall: byPrinciple,
		TopRiskyQuestions:  top,
		ComputedAt:         now,
	}
}
