package acr

import (
	"time"

	"github.com/fyrsmithlabs/acrd/internal/attribution"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
)

// ConformanceLevel is the display form of a conformance conclusion. The
// four strings are fixed by the VPAT template; absence of a conclusion
// reads as Not Applicable.
type ConformanceLevel string

const (
	LevelSupports          ConformanceLevel = "Supports"
	LevelPartiallySupports ConformanceLevel = "Partially Supports"
	LevelDoesNotSupport    ConformanceLevel = "Does Not Support"
	LevelNotApplicable     ConformanceLevel = "Not Applicable"
)

// LevelFromStatus maps an evaluation status to its display level. Anything
// unrecognized folds into Not Applicable, matching the template's reading
// of a missing conclusion.
func LevelFromStatus(s conformance.Status) ConformanceLevel {
	switch s {
	case conformance.StatusSupports:
		return LevelSupports
	case conformance.StatusPartiallySupports:
		return LevelPartiallySupports
	case conformance.StatusDoesNotSupport:
		return LevelDoesNotSupport
	default:
		return LevelNotApplicable
	}
}

// DocumentStatus is the report lifecycle state.
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "draft"
	StatusPendingReview DocumentStatus = "pending_review"
	StatusFinal         DocumentStatus = "final"
)

// Criterion is one row of the report.
type Criterion struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Level            string           `json:"level"`
	ConformanceLevel ConformanceLevel `json:"conformance_level"`
	Remarks          string           `json:"remarks"`

	// AttributionTag records the provenance of the remarks; the formatted
	// AttributedRemarks is what renderers display. Both are disclosure
	// requirements on a final document.
	AttributionTag    attribution.Tag `json:"attribution_tag"`
	AttributedRemarks string          `json:"attributed_remarks"`
}

// ProductInfo describes the product the report covers.
type ProductInfo struct {
	Name        string    `json:"name"`
	Version     string    `json:"version,omitempty"`
	Description string    `json:"description,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at,omitempty"`
}

// Document is the full conformance report.
type Document struct {
	ID                string         `json:"id"`
	Edition           string         `json:"edition"`
	ProductInfo       ProductInfo    `json:"product_info"`
	EvaluationMethods []string       `json:"evaluation_methods"`
	Criteria          []Criterion    `json:"criteria"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Version           int            `json:"version"`
	Status            DocumentStatus `json:"status"`
}

// CriterionByID returns the report row for a criterion id, if present.
func (d *Document) CriterionByID(id string) (Criterion, bool) {
	for _, c := range d.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}
