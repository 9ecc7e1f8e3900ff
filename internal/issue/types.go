package issue

import (
	"strings"
	"time"
)

// Severity classifies how badly a finding impacts accessibility.
type Severity string

const (
	// SeverityCritical blocks access entirely for some users.
	SeverityCritical Severity = "critical"
	// SeveritySerious causes major barriers for some users.
	SeveritySerious Severity = "serious"
	// SeverityModerate causes friction but has workarounds.
	SeverityModerate Severity = "moderate"
	// SeverityMinor is a polish-level problem.
	SeverityMinor Severity = "minor"
	// SeverityUnknown is used when the upstream scanner supplied no severity.
	SeverityUnknown Severity = "unknown"
)

// Rank orders severities for worst-first comparisons. Higher is worse.
// Unknown ranks between minor and moderate: it is treated conservatively
// but never outranks a concrete serious or critical finding.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeveritySerious:
		return 3
	case SeverityModerate:
		return 2
	case SeverityUnknown:
		return 1
	case SeverityMinor:
		return 0
	default:
		return 1
	}
}

// ParseSeverity normalizes an upstream severity string. Anything
// unrecognized folds into SeverityUnknown rather than erroring; a missing
// severity is not a fault of the finding.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "serious", "high":
		return SeveritySerious
	case "moderate", "medium":
		return SeverityModerate
	case "minor", "low":
		return SeverityMinor
	default:
		return SeverityUnknown
	}
}

// Issue is one machine-detected accessibility finding.
type Issue struct {
	// Code is the scanner rule id (e.g. "image-alt", "color-contrast").
	Code string `json:"code"`

	// Severity is the normalized impact level.
	Severity Severity `json:"severity"`

	// Message is the scanner's description of the finding.
	Message string `json:"message"`

	// FilePath is the document-relative path where the finding occurred.
	FilePath string `json:"file_path,omitempty"`

	// Location is a free-form locator (page, selector, element index).
	Location string `json:"location,omitempty"`

	// ExplicitCriteria are success-criterion ids the upstream source
	// already attributed this finding to.
	ExplicitCriteria []string `json:"explicit_criteria,omitempty"`
}

// RemediationStatus tracks the lifecycle of a fix, independent of detection.
type RemediationStatus string

const (
	// RemediationOpen means a fix has been requested but not applied.
	RemediationOpen RemediationStatus = "open"
	// RemediationInProgress means a fix is being applied.
	RemediationInProgress RemediationStatus = "in_progress"
	// RemediationFixed means the fix has been applied.
	RemediationFixed RemediationStatus = "fixed"
	// RemediationVerified means the fix has been applied and re-checked.
	RemediationVerified RemediationStatus = "verified"
)

// Remediation marks one or more prior findings as addressed. A record may
// reference a single issue code, a whole criterion, or the issue list of a
// remediation task; matching honors all three.
type Remediation struct {
	// IssueCode references a single finding by rule id.
	IssueCode string `json:"issue_code,omitempty"`

	// CriterionID marks every finding under a criterion as addressed.
	CriterionID string `json:"criterion_id,omitempty"`

	// IssueCodes is the issue list of a remediation task.
	IssueCodes []string `json:"issue_codes,omitempty"`

	// Status is the remediation lifecycle state.
	Status RemediationStatus `json:"status"`

	// FixedAt is when the fix landed, if it did.
	FixedAt time.Time `json:"fixed_at,omitempty"`
}

// Resolved reports whether this record counts a finding as fixed.
func (r Remediation) Resolved() bool {
	return r.Status == RemediationFixed || r.Status == RemediationVerified
}

// Covers reports whether this record resolves the given issue when the
// issue is attributed to criterionID.
func (r Remediation) Covers(iss Issue, criterionID string) bool {
	if !r.Resolved() {
		return false
	}
	if r.IssueCode != "" && r.IssueCode == iss.Code {
		return true
	}
	if r.CriterionID != "" && r.CriterionID == criterionID {
		return true
	}
	for _, code := range r.IssueCodes {
		if code == iss.Code {
			return true
		}
	}
	return false
}
