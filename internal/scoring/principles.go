package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"ethicscore/internal/model"
)

// defaultAliases lists every principle label seen across questionnaire
// vintages and expert roles, grouped by the canonical principle it maps to.
var defaultAliases = map[model.Principle][]string{
	model.PrincipleTransparency: {
		"Transparency & Explainability",
		"Explainability",
		"Traceability",
		"Communication",
		"Interpretability",
	},
	model.PrincipleHumanAgency: {
		"Human Agency",
		"Human Oversight",
		"Oversight",
		"Human Autonomy",
		"Human Agency & Autonomy",
		"Human Oversight & Control",
		"Human-in-the-Loop",
		"Fundamental Rights",
	},
	model.PrincipleTechnicalRobust: {
		"Technical Robustness",
		"Robustness",
		"Safety",
		"Accuracy",
		"Reliability",
		"Security",
		"Resilience to Attack & Security",
		"Risk Management & Harm Prevention",
		"Risk Management",
		"Harm Prevention",
	},
	model.PrinciplePrivacy: {
		"Privacy",
		"Data Governance",
		"Data Protection",
		"Privacy & Data Protection",
		"Data Quality & Integrity",
	},
	model.PrincipleDiversityFairness: {
		"Diversity, Non-discrimination and Fairness",
		"Diversity & Fairness",
		"Fairness",
		"Non-Discrimination",
		"Bias",
		"Bias & Fairness",
		"Accessibility & Universal Design",
		"Stakeholder Participation",
	},
	model.PrincipleSocietalWellbeing: {
		"Societal & Interpersonal Wellbeing",
		"Societal & Environmental Well-Being",
		"Societal and Environmental Wellbeing",
		"Societal Well-Being",
		"Societal Wellbeing",
		"Environmental Well-Being",
		"Interpersonal Well-Being",
		"Well-Being",
		"Sustainability",
		"Social Impact",
	},
	model.PrincipleAccountability: {
		"Auditability",
		"Lawfulness & Compliance",
		"Lawfulness",
		"Legal Compliance",
		"Compliance",
		"Redress",
		"Governance & Accountability",
	},
}

// Canonicalizer maps raw principle labels onto the canonical set
type Canonicalizer struct {
	aliases map[string]model.Principle
}

// NewCanonicalizer builds a canonicalizer from the built-in alias table plus
// optional extra aliases (label -> canonical key). Extra aliases must point
// at a canonical principle.
func NewCanonicalizer(extra map[string]string) (*Canonicalizer, error) {
	aliases := make(map[string]model.Principle)
	for p, labels := range defaultAliases {
		for _, label := range labels {
			aliases[normalizeLabel(label)] = p
		}
	}
	for _, p := range model.CanonicalPrinciples {
		aliases[normalizeLabel(string(p))] = p
		aliases[normalizeLabel(p.DisplayName())] = p
	}
	for label, key := range extra {
		p := model.Principle(key)
		if !p.IsCanonical() {
			return nil, fmt.Errorf("alias %q targets %q: %w", label, key, ErrUnmappedPrinciple)
		}
		aliases[normalizeLabel(label)] = p
	}
	return &Canonicalizer{aliases: aliases}, nil
}

// Resolve maps a label to its canonical principle
func (c *Canonicalizer) Resolve(label string) (model.Principle, error) {
	if p, ok := c.aliases[normalizeLabel(label)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("label %q: %w", label, ErrUnmappedPrinciple)
}

// ResolveQuestion tries the question's principleKey, then its raw label
func (c *Canonicalizer) ResolveQuestion(q *model.Question) (model.Principle, error) {
	if q.PrincipleKey != "" {
		if p, err := c.Resolve(q.PrincipleKey); err == nil {
			return p, nil
		}
	}
	if q.Principle != "" {
		if p, err := c.Resolve(q.Principle); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("question %s (principle %q, key %q): %w", q.Code, q.Principle, q.PrincipleKey, ErrUnmappedPrinciple)
}

// Audit returns one Issue per catalog question that cannot be canonicalized
func (c *Canonicalizer) Audit(questions []model.Question) []model.Issue {
	var issues []model.Issue
	for i := range questions {
		q := &questions[i]
		if _, err := c.ResolveQuestion(q); err != nil {
			issues = append(issues, model.Issue{
				Kind:             model.IssueUnmappedPrinciple,
				QuestionnaireKey: q.QuestionnaireKey,
				QuestionID:       q.ID,
				QuestionCode:     q.Code,
				Detail:           err.Error(),
			})
		}
	}
	return issues
}

// normalizeLabel lowercases, spells "&" as "and", and turns every run of
// punctuation, separators and whitespace into a single space.
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.ReplaceAll(label, "&", " and "))
	var b strings.Builder
	space := true
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
