package conformance

import (
	"strings"
	"unicode"

	"github.com/fyrsmithlabs/acrd/internal/issue"
)

// evidence is what the decision rules see for one criterion: the related
// findings partitioned by remediation state.
type evidence struct {
	related   []issue.Issue
	fixed     []issue.Issue
	remaining []issue.Issue
}

// worstRemaining returns the highest-ranked severity among remaining
// findings, or false when nothing remains.
func (e evidence) worstRemaining() (issue.Severity, bool) {
	if len(e.remaining) == 0 {
		return "", false
	}
	worst := e.remaining[0].Severity
	for _, iss := range e.remaining[1:] {
		if iss.Severity.Rank() > worst.Rank() {
			worst = iss.Severity
		}
	}
	return worst, true
}

// decisionRule pairs a predicate with its outcome. Rules are evaluated top
// to bottom and the first match wins, which makes precedence explicit and
// each rule independently testable.
type decisionRule struct {
	name    string
	applies func(ev evidence) bool
	status  Status
	// confidence picks the constant from config; rules never carry raw
	// numbers so the constants stay in one tunable place.
	confidence func(cfg *Config) int
}

func severityIs(sev issue.Severity) func(ev evidence) bool {
	return func(ev evidence) bool {
		worst, ok := ev.worstRemaining()
		return ok && worst == sev
	}
}

// decisionRules returns the ordered rule table. Order is load-bearing:
// absence of findings beats remediation state, which beats severity; the
// severity rows are worst-first so the minor-only row is only reached when
// nothing worse remains.
func decisionRules() []decisionRule {
	return []decisionRule{
		{
			name:       "no-related-issues",
			applies:    func(ev evidence) bool { return len(ev.related) == 0 },
			status:     StatusSupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceNoIssues },
		},
		{
			name:       "all-remediated",
			applies:    func(ev evidence) bool { return len(ev.remaining) == 0 },
			status:     StatusSupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceAllFixed },
		},
		{
			name:       "critical-remaining",
			applies:    severityIs(issue.SeverityCritical),
			status:     StatusDoesNotSupport,
			confidence: func(cfg *Config) int { return cfg.ConfidenceCritical },
		},
		{
			name:       "serious-remaining",
			applies:    severityIs(issue.SeveritySerious),
			status:     StatusPartiallySupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceSerious },
		},
		{
			name:       "moderate-remaining",
			applies:    severityIs(issue.SeverityModerate),
			status:     StatusPartiallySupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceModerate },
		},
		{
			name:       "unknown-severity-remaining",
			applies:    severityIs(issue.SeverityUnknown),
			status:     StatusPartiallySupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceUnknown },
		},
		{
			name:       "minor-only-remaining",
			applies:    severityIs(issue.SeverityMinor),
			status:     StatusSupports,
			confidence: func(cfg *Config) int { return cfg.ConfidenceMinor },
		},
	}
}

// matchesCriterion reports whether a rule code references a criterion id
// once separators are stripped. Accepts the bare code ("111"), a WCAG-
// prefixed code ("wcag111", "WCAG-1.1.1"), and the code embedded between
// delimiters ("rule-1-1-1-check"). Case-insensitive.
func matchesCriterion(code, criterionID string) bool {
	target := stripSeparators(criterionID)
	if target == "" {
		return false
	}

	norm := stripSeparators(code)
	if norm == target || norm == "wcag"+target {
		return true
	}

	tokens := splitTokens(code)
	digitRun := ""
	for _, tok := range tokens {
		if tok == target || tok == "wcag"+target {
			return true
		}
		if isDigits(tok) {
			digitRun += tok
			if digitRun == target {
				return true
			}
			continue
		}
		digitRun = ""
	}
	return false
}

func stripSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
