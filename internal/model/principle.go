package model

// Principle is a canonical ethical principle key
type Principle string

const (
	PrincipleTransparency      Principle = "transparency"
	PrincipleHumanAgency       Principle = "human_agency_oversight"
	PrincipleTechnicalRobust   Principle = "technical_robustness_safety"
	PrinciplePrivacy           Principle = "privacy_data_governance"
	PrincipleDiversityFairness Principle = "diversity_fairness"
	PrincipleSocietalWellbeing Principle = "societal_wellbeing"
	PrincipleAccountability    Principle = "accountability"
)

// CanonicalPrinciples is the fixed, ordered canonical set. Output ordering
// (stored documents, reports) follows this slice.
var CanonicalPrinciples = []Principle{
	PrincipleTransparency,
	PrincipleHumanAgency,
	PrincipleTechnicalRobust,
	PrinciplePrivacy,
	PrincipleDiversityFairness,
	PrincipleSocietalWellbeing,
	PrincipleAccountability,
}

var principleNames = map[Principle]string{
	PrincipleTransparency:      "Transparency",
	PrincipleHumanAgency:       "Human Agency & Oversight",
	PrincipleTechnicalRobust:   "Technical Robustness & Safety",
	PrinciplePrivacy:           "Privacy & Data Governance",
	PrincipleDiversityFairness: "Diversity, Non-Discrimination & Fairness",
	PrincipleSocietalWellbeing: "Societal & Interpersonal Well-Being",
	PrincipleAccountability:    "Accountability",
}

// IsCanonical reports whether p belongs to the canonical set
func (p Principle) IsCanonical() bool {
	_, ok := principleNames[p]
	return ok
}

// DisplayName returns the human readable principle name
func (p Principle) DisplayName() string {
	if name, ok := principleNames[p]; ok {
		return name
	}
	return string(p)
}
