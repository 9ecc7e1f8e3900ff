package conformance

import (
	"github.com/fyrsmithlabs/acrd/internal/issue"
)

// Status is the conformance conclusion for one criterion.
type Status string

const (
	// StatusSupports means the criterion is met.
	StatusSupports Status = "supports"
	// StatusPartiallySupports means the criterion is met with exceptions.
	StatusPartiallySupports Status = "partially_supports"
	// StatusDoesNotSupport means the criterion is not met.
	StatusDoesNotSupport Status = "does_not_support"
	// StatusNotApplicable means the criterion does not apply to the product.
	StatusNotApplicable Status = "not_applicable"
)

// Rank orders statuses from worst to best. Fixing one more issue must never
// lower a criterion's rank.
func (s Status) Rank() int {
	switch s {
	case StatusDoesNotSupport:
		return 0
	case StatusPartiallySupports:
		return 1
	case StatusSupports:
		return 2
	case StatusNotApplicable:
		return 3
	default:
		return 0
	}
}

// Analysis is the evaluation of one criterion for one document.
type Analysis struct {
	CriterionID     string        `json:"criterion_id"`
	Status          Status        `json:"status"`
	Confidence      int           `json:"confidence"`
	Findings        []string      `json:"findings"`
	Recommendation  string        `json:"recommendation,omitempty"`
	FixedIssues     []issue.Issue `json:"fixed_issues,omitempty"`
	RemainingIssues []issue.Issue `json:"remaining_issues,omitempty"`
}

// DocumentEvaluation is the full evaluation of one document against an
// edition's criteria.
type DocumentEvaluation struct {
	Edition string `json:"edition"`

	// Analyses are in catalog order, one per edition criterion.
	Analyses []Analysis `json:"analyses"`

	// OverallConfidence is the mean per-criterion confidence boosted by
	// remediation progress, capped at 100.
	OverallConfidence int `json:"overall_confidence"`

	// TotalIssues and FixedIssues count the document's findings. Unmapped
	// findings are included in the total; completeness of the count is an
	// audit requirement.
	TotalIssues int `json:"total_issues"`
	FixedIssues int `json:"fixed_issues"`

	// UnmappedIssues are findings that matched no criterion. Retained,
	// never dropped.
	UnmappedIssues []issue.Issue `json:"unmapped_issues,omitempty"`
}

// AnalysisByID returns the analysis for a criterion id, if present.
func (d *DocumentEvaluation) AnalysisByID(id string) (Analysis, bool) {
	for _, a := range d.Analyses {
		if a.CriterionID == id {
			return a, true
		}
	}
	return Analysis{}, false
}

// Config carries the evaluator's heuristic constants. The confidence values
// are placeholders with no measured-accuracy basis; keep them named and
// tunable rather than inferring a formula.
type Config struct {
	// ConfidenceNoIssues applies when a criterion has no related findings.
	ConfidenceNoIssues int `koanf:"confidence_no_issues"`

	// ConfidenceAllFixed applies when every related finding is remediated.
	ConfidenceAllFixed int `koanf:"confidence_all_fixed"`

	// Per-severity confidences for the worst remaining finding.
	ConfidenceCritical int `koanf:"confidence_critical"`
	ConfidenceSerious  int `koanf:"confidence_serious"`
	ConfidenceModerate int `koanf:"confidence_moderate"`
	ConfidenceUnknown  int `koanf:"confidence_unknown"`
	ConfidenceMinor    int `koanf:"confidence_minor"`

	// MaxFindings caps the findings list per criterion.
	MaxFindings int `koanf:"max_findings"`

	// FixedBoostMax is the maximum overall-confidence boost granted when
	// every finding is fixed. The boost scales with the fixed fraction.
	FixedBoostMax int `koanf:"fixed_boost_max"`
}

// DefaultServiceConfig returns the standard heuristic constants.
func DefaultServiceConfig() *Config {
	return &Config{
		ConfidenceNoIssues: 75,
		ConfidenceAllFixed: 95,
		ConfidenceCritical: 90,
		ConfidenceSerious:  80,
		ConfidenceModerate: 70,
		ConfidenceUnknown:  60,
		ConfidenceMinor:    85,
		MaxFindings:        5,
		FixedBoostMax:      15,
	}
}
