// Package catalog holds the reference questionnaire catalog used to seed a
// local store and as the regression fixture for principle canonicalization.
package catalog

import (
	"fmt"

	"ethicscore/internal/model"
)

const (
	GeneralKey   = "general-v1"
	LegalKey     = "legal-expert-v1"
	TechnicalKey = "technical-expert-v1"

	RoleLegal     = "legal-expert"
	RoleTechnical = "technical-expert"
)

type questionDef struct {
	code       string
	text       string
	principle  string
	importance float64
	answerType model.AnswerType
	style      optionStyle
	required   bool
}

type optionStyle int

const (
	styleCurrent  optionStyle = iota // options[].answerScore
	styleLegacy04                    // options[].score on 0-4
	styleRiskMap                     // optionRiskMap
	styleSeverity                    // optionSeverityMap
	styleNone
)

var generalDefs = []questionDef{
	{"G01", "Are users informed that they interact with an AI system?", "TRANSPARENCY", 3, model.AnswerSingleChoice, styleCurrent, true},
	{"G02", "Can the system's decisions be explained to affected persons?", "Transparency & Explainability", 4, model.AnswerSingleChoice, styleLegacy04, true},
	{"G03", "Is there a human able to override the system's output?", "HUMAN AGENCY & OVERSIGHT", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"G04", "Which oversight mechanisms are in place?", "Human Oversight", 2, model.AnswerMultiChoice, styleCurrent, false},
	{"G05", "Has the system been tested against adversarial inputs?", "TECHNICAL ROBUSTNESS & SAFETY", 3, model.AnswerSingleChoice, styleRiskMap, true},
	{"G06", "Estimated share of validated test scenarios (0-1).", "Technical Robustness and Safety", 2, model.AnswerNumeric, styleNone, false},
	{"G07", "Is personal data minimised and protected?", "PRIVACY & DATA GOVERNANCE", 4, model.AnswerSingleChoice, styleSeverity, true},
	{"G08", "Describe the data retention policy.", "Privacy and Data Governance", 2, model.AnswerOpenText, styleNone, false},
	{"G09", "Has the training data been assessed for bias?", "DIVERSITY, NON-DISCRIMINATION & FAIRNESS", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"G10", "Has the societal impact been assessed?", "SOCIETAL & INTERPERSONAL WELL-BEING", 3, model.AnswerSingleChoice, styleCurrent, true},
	{"G11", "Are roles and responsibilities documented?", "ACCOUNTABILITY", 3, model.AnswerSingleChoice, styleLegacy04, true},
	{"G12", "Is there a redress mechanism for affected persons?", "Accountability", 2, model.AnswerSingleChoice, styleCurrent, false},
}

var legalDefs = []questionDef{
	{"L01", "Is there a documented legal basis for each processing activity?", "Lawfulness & Compliance", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"L02", "Has a data protection impact assessment been performed?", "Privacy & Data Protection", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"L03", "Does the system fall under a high-risk category of applicable AI regulation?", "Legal Compliance", 3, model.AnswerSingleChoice, styleRiskMap, true},
	{"L04", "Are contractual liabilities allocated between provider and deployer?", "Accountability", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"L05", "Are affected persons informed of their rights?", "Transparency", 3, model.AnswerSingleChoice, styleCurrent, true},
	{"L06", "Is automated decision-making subject to human review as required by law?", "Human Agency", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"L07", "Which anti-discrimination obligations apply?", "Non-Discrimination", 3, model.AnswerMultiChoice, styleCurrent, false},
	{"L08", "Is there a process to handle data subject requests?", "Data Governance", 2, model.AnswerSingleChoice, styleSeverity, false},
	{"L09", "Are incidents reported to authorities within required deadlines?", "Risk Management & Harm Prevention", 3, model.AnswerSingleChoice, styleCurrent, true},
	{"L10", "Is consumer protection law considered in the deployment?", "Societal Well-Being", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"L11", "Are records kept to demonstrate compliance?", "Auditability", 3, model.AnswerSingleChoice, styleLegacy04, true},
	{"L12", "Describe any pending litigation involving the system.", "Lawfulness", 2, model.AnswerOpenText, styleNone, false},
	{"L13", "Is cross-border data transfer legally covered?", "Privacy", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"L14", "Are intellectual property rights of training data respected?", "Compliance", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"L15", "Is accessibility legislation met?", "Accessibility & Universal Design", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"L16", "Are safety certifications required and obtained?", "Safety", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"L17", "Is the environmental footprint reported where required?", "Environmental Well-Being", 1, model.AnswerSingleChoice, styleCurrent, false},
	{"L18", "Legal confidence that the deployment is compliant (0-1).", "Lawfulness & Compliance", 3, model.AnswerNumeric, styleNone, false},
}

var technicalDefs = []questionDef{
	{"T01", "Are model versions and training runs traceable?", "Traceability", 3, model.AnswerSingleChoice, styleCurrent, true},
	{"T02", "Is model accuracy monitored in production?", "Accuracy", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"T03", "Is there a fallback plan when the model fails?", "Robustness", 4, model.AnswerSingleChoice, styleRiskMap, true},
	{"T04", "Which security controls protect the model endpoint?", "Security", 3, model.AnswerMultiChoice, styleCurrent, false},
	{"T05", "Are explanations generated for individual predictions?", "Explainability", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"T06", "Is data quality validated before training?", "Data Quality & Integrity", 3, model.AnswerSingleChoice, styleSeverity, true},
	{"T07", "Are fairness metrics computed per subgroup?", "Bias & Fairness", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"T08", "Can operators stop the system at any time?", "Human Oversight & Control", 4, model.AnswerSingleChoice, styleCurrent, true},
	{"T09", "Is the energy consumption of training measured?", "Sustainability", 1, model.AnswerSingleChoice, styleCurrent, false},
	{"T10", "Are logs retained for audit purposes?", "Auditability", 3, model.AnswerSingleChoice, styleLegacy04, false},
	{"T11", "Share of code paths covered by automated tests (0-1).", "Reliability", 2, model.AnswerNumeric, styleNone, false},
	{"T12", "Describe the model drift detection approach.", "Technical Robustness", 2, model.AnswerOpenText, styleNone, false},
	{"T13", "Is personal data pseudonymised in training sets?", "Data Protection", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"T14", "Are model limitations documented for users?", "Communication", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"T15", "Is there a human-in-the-loop for critical decisions?", "Human-in-the-Loop", 4, model.AnswerSingleChoice, styleCurrent, false},
	{"T16", "Has the system been red-teamed?", "Resilience to Attack & Security", 3, model.AnswerSingleChoice, styleCurrent, false},
	{"T17", "Are there mechanisms to report harmful outputs?", "Redress", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"T18", "Is the social impact of errors quantified?", "Social Impact", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"T19", "Are diverse stakeholders involved in testing?", "Stakeholder Participation", 2, model.AnswerSingleChoice, styleCurrent, false},
	{"T20", "Is interpretability tooling available to auditors?", "Interpretability", 2, model.AnswerSingleChoice, styleCurrent, false},
}

// Questionnaires returns the sample questionnaire definitions. The legal
// questionnaire repeats the general question set and supersedes it; the
// technical one does not.
func Questionnaires() []model.Questionnaire {
	return []model.Questionnaire{
		{Key: GeneralKey, Version: 1, Title: "General ethical assessment", General: true},
		{Key: LegalKey, Version: 1, Title: "Legal expert assessment", Role: RoleLegal, Supersedes: []string{GeneralKey}},
		{Key: TechnicalKey, Version: 1, Title: "Technical expert assessment", Role: RoleTechnical},
	}
}

// Questions returns every sample question across all questionnaires
func Questions() []model.Question {
	var out []model.Question
	out = append(out, build(GeneralKey, generalDefs, 0)...)
	out = append(out, build(LegalKey, generalDefs, 0)...)
	out = append(out, build(LegalKey, legalDefs, len(generalDefs))...)
	out = append(out, build(TechnicalKey, technicalDefs, 0)...)
	return out
}

// QuestionsFor returns the sample questions of one questionnaire
func QuestionsFor(questionnaireKey string) []model.Question {
	var out []model.Question
	for _, q := range Questions() {
		if q.QuestionnaireKey == questionnaireKey {
			out = append(out, q)
		}
	}
	return out
}

func build(questionnaireKey string, defs []questionDef, offset int) []model.Question {
	out := make([]model.Question, 0, len(defs))
	for i, s := range defs {
		importance := s.importance
		q := model.Question{
			ID:                   fmt.Sprintf("%s:%s", questionnaireKey, s.code),
			QuestionnaireKey:     questionnaireKey,
			QuestionnaireVersion: 1,
			Code:                 s.code,
			Text:                 s.text,
			Principle:            s.principle,
			Importance:           &importance,
			AnswerType:           s.answerType,
			Required:             s.required,
			Order:                offset + i + 1,
		}
		if s.answerType == model.AnswerSingleChoice || s.answerType == model.AnswerMultiChoice {
			applyOptions(&q, s.style)
		}
		out = append(out, q)
	}
	return out
}

// standard option ladder: key -> safety
var ladder = []struct {
	key    string
	label  string
	safety float64
}{
	{"yes", "Yes", 1},
	{"partially", "Partially", 0.5},
	{"unknown", "Don't know", 0.25},
	{"no", "No", 0},
}

func applyOptions(q *model.Question, style optionStyle) {
	for _, l := range ladder {
		opt := model.Option{Key: l.key, Label: l.label}
		safety := l.safety
		switch style {
		case styleCurrent:
			opt.AnswerScore = &safety
		case styleLegacy04:
			score := safety * model.MaxImportance
			opt.Score = &score
		case styleRiskMap:
			if q.OptionRiskMap == nil {
				q.OptionRiskMap = make(map[string]float64)
			}
			q.OptionRiskMap[l.key] = (1 - safety) * model.MaxImportance
		case styleSeverity:
			if q.OptionSeverityMap == nil {
				q.OptionSeverityMap = make(map[string]float64)
			}
			q.OptionSeverityMap[l.key] = 1 - safety
		}
		q.Options = append(q.Options, opt)
	}
}
