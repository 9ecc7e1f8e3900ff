package batch

import (
	"fmt"

	"github.com/fyrsmithlabs/acrd/internal/acr"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
)

// Strategy selects how per-document conclusions combine into a composite.
type Strategy string

const (
	// StrategyConservative reports the worst conclusion any document
	// reached: one failing document fails the composite.
	StrategyConservative Strategy = "conservative"
	// StrategyOptimistic reports by majority: full support requires every
	// document, partial support requires at least half.
	StrategyOptimistic Strategy = "optimistic"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyConservative, StrategyOptimistic:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown aggregation strategy %q", s)
	}
}

// DocumentResult is one document's finished evaluation plus its identity in
// the batch.
type DocumentResult struct {
	FileName   string                          `json:"file_name"`
	JobID      string                          `json:"job_id"`
	Evaluation *conformance.DocumentEvaluation `json:"evaluation"`
}

// DocumentDetail is one document's contribution to a composite criterion.
type DocumentDetail struct {
	FileName   string               `json:"file_name"`
	JobID      string               `json:"job_id"`
	Status     acr.ConformanceLevel `json:"status"`
	IssueCount int                  `json:"issue_count"`
	Issues     []string             `json:"issues,omitempty"`
}

// AggregateCriterion is the composite conclusion for one criterion across
// every document in the batch.
type AggregateCriterion struct {
	CriterionID               string               `json:"criterion_id"`
	PerDocument               []DocumentDetail     `json:"per_document"`
	CompositeConformanceLevel acr.ConformanceLevel `json:"composite_conformance_level"`
	CompositeRemarks          string               `json:"composite_remarks"`
}

// Report is the full batch aggregation result.
type Report struct {
	Strategy      Strategy             `json:"strategy"`
	DocumentCount int                  `json:"document_count"`
	Criteria      []AggregateCriterion `json:"criteria"`
}

// CriterionByID returns the composite row for a criterion id, if present.
func (r *Report) CriterionByID(id string) (AggregateCriterion, bool) {
	for _, c := range r.Criteria {
		if c.CriterionID == id {
			return c, true
		}
	}
	return AggregateCriterion{}, false
}
