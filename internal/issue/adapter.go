package issue

import (
	"fmt"
	"time"
)

// PayloadKind discriminates the upstream representations we accept.
type PayloadKind string

const (
	// KindRawIssue is a plain scanner finding.
	KindRawIssue PayloadKind = "raw-issue"
	// KindRemediationTask is a tracker task bundling findings with fix state.
	KindRemediationTask PayloadKind = "remediation-task"
	// KindCriterionRecord is a per-criterion summary row with nested findings.
	KindCriterionRecord PayloadKind = "criterion-record"
)

// RawPayload is the tagged union for upstream job output. Exactly one of
// the kind-specific fields is populated, selected by Kind.
type RawPayload struct {
	Kind PayloadKind `json:"kind"`

	RawIssue        *RawIssue        `json:"raw_issue,omitempty"`
	RemediationTask *RemediationTask `json:"remediation_task,omitempty"`
	CriterionRecord *CriterionRecord `json:"criterion_record,omitempty"`
}

// RawIssue is a scanner finding as emitted upstream.
type RawIssue struct {
	Code     string   `json:"code"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	FilePath string   `json:"file_path,omitempty"`
	Location string   `json:"location,omitempty"`
	Criteria []string `json:"criteria,omitempty"`
}

// RemediationTask is a tracker task: a set of findings plus their shared
// fix state.
type RemediationTask struct {
	Issues  []RawIssue `json:"issues"`
	Status  string     `json:"status"`
	FixedAt time.Time  `json:"fixed_at,omitempty"`
}

// CriterionRecord is a per-criterion summary row with nested findings.
type CriterionRecord struct {
	CriterionID string     `json:"criterion_id"`
	Issues      []RawIssue `json:"issues"`
}

// Convert normalizes one upstream payload to canonical issues and, for
// remediation tasks, the remediation records they imply. This is the only
// place upstream shapes are interpreted; an unrecognized kind is an error,
// never a guess.
func Convert(p RawPayload) ([]Issue, []Remediation, error) {
	switch p.Kind {
	case KindRawIssue:
		if p.RawIssue == nil {
			return nil, nil, fmt.Errorf("payload kind %q has no raw_issue body", p.Kind)
		}
		return []Issue{convertRaw(*p.RawIssue)}, nil, nil

	case KindRemediationTask:
		if p.RemediationTask == nil {
			return nil, nil, fmt.Errorf("payload kind %q has no remediation_task body", p.Kind)
		}
		task := p.RemediationTask
		issues := make([]Issue, 0, len(task.Issues))
		codes := make([]string, 0, len(task.Issues))
		for _, raw := range task.Issues {
			issues = append(issues, convertRaw(raw))
			codes = append(codes, raw.Code)
		}
		rem := Remediation{
			IssueCodes: codes,
			Status:     parseRemediationStatus(task.Status),
			FixedAt:    task.FixedAt,
		}
		return issues, []Remediation{rem}, nil

	case KindCriterionRecord:
		if p.CriterionRecord == nil {
			return nil, nil, fmt.Errorf("payload kind %q has no criterion_record body", p.Kind)
		}
		rec := p.CriterionRecord
		issues := make([]Issue, 0, len(rec.Issues))
		for _, raw := range rec.Issues {
			iss := convertRaw(raw)
			if rec.CriterionID != "" && !containsString(iss.ExplicitCriteria, rec.CriterionID) {
				iss.ExplicitCriteria = append(iss.ExplicitCriteria, rec.CriterionID)
			}
			issues = append(issues, iss)
		}
		return issues, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown payload kind %q", p.Kind)
	}
}

// ConvertAll normalizes a slice of payloads, failing on the first bad entry.
func ConvertAll(payloads []RawPayload) ([]Issue, []Remediation, error) {
	var issues []Issue
	var remediations []Remediation
	for i, p := range payloads {
		iss, rems, err := Convert(p)
		if err != nil {
			return nil, nil, fmt.Errorf("payload %d: %w", i, err)
		}
		issues = append(issues, iss...)
		remediations = append(remediations, rems...)
	}
	return issues, remediations, nil
}

func convertRaw(raw RawIssue) Issue {
	return Issue{
		Code:             raw.Code,
		Severity:         ParseSeverity(raw.Severity),
		Message:          raw.Message,
		FilePath:         raw.FilePath,
		Location:         raw.Location,
		ExplicitCriteria: raw.Criteria,
	}
}

func parseRemediationStatus(s string) RemediationStatus {
	switch s {
	case "fixed":
		return RemediationFixed
	case "verified":
		return RemediationVerified
	case "in_progress":
		return RemediationInProgress
	default:
		return RemediationOpen
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
