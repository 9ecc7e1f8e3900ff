// Package attribution assigns provenance tags to report remarks and formats
// the marker-prefixed text renderers display. Tagging every conclusion with
// its provenance (automated, AI-suggested, human-verified) is a disclosure
// requirement on the finished report, not cosmetic formatting.
package attribution

import "strings"

// Tag is the provenance of a remark.
type Tag string

const (
	// TagAutomated marks conclusions produced by rule-based evaluation.
	TagAutomated Tag = "AUTOMATED"
	// TagAISuggested marks conclusions drafted by an AI collaborator.
	TagAISuggested Tag = "AI_SUGGESTED"
	// TagHumanVerified marks conclusions a human reviewer signed off on.
	TagHumanVerified Tag = "HUMAN_VERIFIED"
)

// Verification statuses that count as a terminal human outcome. Any of
// these wins over AI provenance: once a human has looked, the conclusion is
// theirs regardless of who drafted it.
const (
	VerifiedPass    = "verified_pass"
	VerifiedFail    = "verified_fail"
	VerifiedPartial = "verified_partial"
)

// Marker strings are a fixed external contract: renderers and legal
// disclaimers consume them verbatim. Never localize or restyle them.
const (
	markerAutomated     = "[AUTOMATED]"
	markerAISuggested   = "[AI-SUGGESTED]"
	markerHumanVerified = "[HUMAN-VERIFIED]"

	aiReviewNotice = "AI-Suggested - Requires Review"
)

// altTextCriterionID is the criterion whose AI-suggested remarks carry an
// extra review notice (alt text is the one place AI drafts user-facing
// content wholesale).
const altTextCriterionID = "1.1.1"

// DetermineTag returns the provenance tag for a remark. Precedence is
// strict: a terminal human verification outcome always wins, then AI
// provenance, then automated. Pure function of its inputs.
func DetermineTag(verificationStatus string, isAIGenerated bool) Tag {
	switch strings.ToLower(strings.TrimSpace(verificationStatus)) {
	case VerifiedPass, VerifiedFail, VerifiedPartial:
		return TagHumanVerified
	}
	if isAIGenerated {
		return TagAISuggested
	}
	return TagAutomated
}

// IsAltTextCriterion reports whether a criterion id gets the AI review
// notice treatment.
func IsAltTextCriterion(criterionID string) bool {
	return criterionID == altTextCriterionID
}

// FormatRemark prefixes a remark with its provenance marker. For the
// alt-text criterion, AI-suggested remarks additionally carry a review
// notice between the marker and the text.
func FormatRemark(remark string, tag Tag, isAltTextCriterion bool) string {
	var b strings.Builder
	switch tag {
	case TagHumanVerified:
		b.WriteString(markerHumanVerified)
	case TagAISuggested:
		b.WriteString(markerAISuggested)
	default:
		b.WriteString(markerAutomated)
	}

	if tag == TagAISuggested && isAltTextCriterion {
		b.WriteString(" ")
		b.WriteString(aiReviewNotice)
		b.WriteString(" -")
	}

	if remark != "" {
		b.WriteString(" ")
		b.WriteString(remark)
	}
	return b.String()
}
