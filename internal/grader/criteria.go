// File path: internal/grader/criteria.go
package grader

import "strings"

// BaseCriteria is the rubric applied to every graded response.
func BaseCriteria() map[string]string {
	return map[string]string{
		"accuracy":     "Correctness of the information and concepts",
		"completeness": "Coverage of all relevant points",
		"clarity":      "Clear explanation and logical structure",
	}
}

var subjectCriteria = map[string]map[string]string{
	"math": {
		"methodology":     "Correct application of mathematical methods and procedures",
		"calculation":     "Accuracy of calculations and final answers",
		"problem_solving": "Effectiveness of the approach to solving the problem",
	},
	"science": {
		"scientific_thinking": "Application of scientific principles and methods",
		"evidence_use":        "Proper use of evidence to support claims",
		"concept_application": "Application of scientific concepts to the question",
	},
	"history": {
		"historical_context": "Understanding of the historical context",
		"source_analysis":    "Analysis and evaluation of historical sources",
		"causal_connections": "Identifying cause-and-effect relationships",
	},
	"english": {
		"grammar_usage":    "Correct grammar, spelling, and punctuation",
		"expression":       "Clarity and effectiveness of expression",
		"textual_analysis": "Depth of textual analysis and interpretation",
	},
	"programming": {
		"code_functionality": "Whether the code works as expected",
		"code_efficiency":    "Efficiency and optimization of the code",
		"coding_standards":   "Adherence to coding conventions and standards",
	},
}

var difficultyCriteria = map[string]map[string]string{
	"easy": {},
	"medium": {
		"analysis": "Depth of analysis and critical thinking",
	},
	"hard": {
		"analysis":   "Depth of analysis and critical thinking",
		"synthesis":  "Integration of concepts and information",
		"evaluation": "Critical evaluation of different perspectives",
	},
}

// BuildCriteria composes a rubric from the base criteria plus any
// subject-specific and difficulty-specific additions, with custom entries
// layered last.
func BuildCriteria(subject, difficulty string, custom map[string]string) map[string]string {
	criteria := BaseCriteria()
	if extra, ok := subjectCriteria[strings.ToLower(subject)]; ok {
		for name, desc := range extra {
			criteria[name] = desc
		}
	}
	if extra, ok := difficultyCriteria[strings.ToLower(difficulty)]; ok {
		for name, desc := range extra {
			criteria[name] = desc
		}
	}
	for name, desc := range custom {
		criteria[name] = desc
	}
	return criteria
}
