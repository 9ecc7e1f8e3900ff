package conformance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/acrd/internal/catalog"
	"github.com/fyrsmithlabs/acrd/internal/issue"
	"github.com/fyrsmithlabs/acrd/internal/mapping"
)

const instrumentationName = "github.com/fyrsmithlabs/acrd/internal/conformance"

// Evaluator classifies a document's findings against an edition's criteria.
// It holds no per-document state and is safe for concurrent use across
// unrelated documents.
type Evaluator struct {
	config  *Config
	catalog *catalog.Catalog
	mapper  *mapping.Mapper
	logger  *zap.Logger

	// Telemetry
	tracer      trace.Tracer
	meter       metric.Meter
	evalCounter metric.Int64Counter
}

// NewEvaluator creates an evaluator.
func NewEvaluator(cfg *Config, cat *catalog.Catalog, mapper *mapping.Mapper, logger *zap.Logger) (*Evaluator, error) {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if mapper == nil {
		mapper = mapping.NewMapper()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Evaluator{
		config:  cfg,
		catalog: cat,
		mapper:  mapper,
		logger:  logger,
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
	}

	e.initMetrics()

	return e, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (e *Evaluator) initMetrics() {
	var err error

	e.evalCounter, err = e.meter.Int64Counter(
		"acrd.conformance.evaluations_total",
		metric.WithDescription("Total number of document evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		e.logger.Warn("failed to create evaluation counter", zap.Error(err))
	}
}

// EvaluateDocument evaluates every criterion of the given edition against
// the document's findings and remediation records. Output ordering follows
// the catalog, so identical inputs produce byte-identical results.
func (e *Evaluator) EvaluateDocument(ctx context.Context, edition string, issues []issue.Issue, remediations []issue.Remediation) (*DocumentEvaluation, error) {
	ctx, span := e.tracer.Start(ctx, "conformance.evaluate_document")
	defer span.End()

	span.SetAttributes(
		attribute.String("edition", edition),
		attribute.Int("issue_count", len(issues)),
		attribute.Int("remediation_count", len(remediations)),
	)

	criteria := e.catalog.CriteriaForEdition(edition)
	grouped := e.mapper.MapIssues(issues)

	eval := &DocumentEvaluation{
		Edition:        edition,
		Analyses:       make([]Analysis, 0, len(criteria)),
		TotalIssues:    len(issues),
		UnmappedIssues: grouped.Unmapped,
	}

	fixedIdx := make(map[int]struct{})
	confidenceSum := 0

	for _, crit := range criteria {
		ev, fixed := e.gatherEvidence(crit.ID, issues, remediations)
		analysis := e.analyze(crit.ID, ev)
		eval.Analyses = append(eval.Analyses, analysis)
		confidenceSum += analysis.Confidence

		for _, idx := range fixed {
			fixedIdx[idx] = struct{}{}
		}
	}

	eval.FixedIssues = len(fixedIdx)
	eval.OverallConfidence = e.overallConfidence(confidenceSum, len(criteria), eval.FixedIssues, eval.TotalIssues)

	if e.evalCounter != nil {
		e.evalCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("edition", edition),
		))
	}

	e.logger.Debug("evaluated document",
		zap.String("edition", edition),
		zap.Int("criteria", len(criteria)),
		zap.Int("issues", eval.TotalIssues),
		zap.Int("fixed", eval.FixedIssues),
		zap.Int("overall_confidence", eval.OverallConfidence),
	)

	span.SetAttributes(
		attribute.Int("criteria_count", len(criteria)),
		attribute.Int("overall_confidence", eval.OverallConfidence),
	)
	return eval, nil
}

// EvaluateCriterion evaluates a single criterion. Exposed for callers that
// re-check one criterion after an edit without re-running the document.
func (e *Evaluator) EvaluateCriterion(criterionID string, issues []issue.Issue, remediations []issue.Remediation) Analysis {
	ev, _ := e.gatherEvidence(criterionID, issues, remediations)
	return e.analyze(criterionID, ev)
}

// gatherEvidence finds the issues related to a criterion (explicit tag,
// rule table, or rule-id pattern match) and partitions them into fixed and
// remaining. The second return value holds the document indices of fixed
// issues so the caller can count distinct fixed findings across criteria.
func (e *Evaluator) gatherEvidence(criterionID string, issues []issue.Issue, remediations []issue.Remediation) (evidence, []int) {
	var ev evidence
	var fixedIdx []int

	for i, iss := range issues {
		if !e.relatedToCriterion(iss, criterionID) {
			continue
		}
		ev.related = append(ev.related, iss)

		if remediationCovers(remediations, iss, criterionID) {
			ev.fixed = append(ev.fixed, iss)
			fixedIdx = append(fixedIdx, i)
		} else {
			ev.remaining = append(ev.remaining, iss)
		}
	}
	return ev, fixedIdx
}

func (e *Evaluator) relatedToCriterion(iss issue.Issue, criterionID string) bool {
	for _, id := range iss.ExplicitCriteria {
		if id == criterionID {
			return true
		}
	}
	for _, id := range e.mapper.CriteriaForRule(iss.Code) {
		if id == criterionID {
			return true
		}
	}
	return matchesCriterion(iss.Code, criterionID)
}

// analyze runs the ordered rule table over the evidence and assembles the
// findings list and recommendation.
func (e *Evaluator) analyze(criterionID string, ev evidence) Analysis {
	analysis := Analysis{
		CriterionID:     criterionID,
		FixedIssues:     ev.fixed,
		RemainingIssues: ev.remaining,
	}

	for _, rule := range decisionRules() {
		if !rule.applies(ev) {
			continue
		}
		analysis.Status = rule.status
		analysis.Confidence = rule.confidence(e.config)
		analysis.Findings = e.buildFindings(rule.name, ev)
		analysis.Recommendation = recommendationFor(rule.name, ev)
		return analysis
	}

	// Unreachable with the standard table: the severity rows cover every
	// severity and the first two rows cover empty evidence.
	analysis.Status = StatusSupports
	analysis.Confidence = e.config.ConfidenceNoIssues
	return analysis
}

// buildFindings renders the findings list: severity-prefixed lines for
// remaining issues, worst first, capped at MaxFindings, with a fixed-count
// line prepended when remediation made partial progress.
func (e *Evaluator) buildFindings(ruleName string, ev evidence) []string {
	if len(ev.related) == 0 {
		return nil
	}
	if ruleName == "all-remediated" {
		return []string{fmt.Sprintf("All %d issue(s) have been remediated", len(ev.related))}
	}

	findings := make([]string, 0, e.config.MaxFindings)
	if len(ev.fixed) > 0 {
		findings = append(findings, fmt.Sprintf("✓ %d fixed", len(ev.fixed)))
	}

	remaining := make([]issue.Issue, len(ev.remaining))
	copy(remaining, ev.remaining)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Severity.Rank() > remaining[j].Severity.Rank()
	})

	for _, iss := range remaining {
		if len(findings) >= e.config.MaxFindings {
			break
		}
		findings = append(findings, formatFinding(iss))
	}
	return findings
}

func formatFinding(iss issue.Issue) string {
	msg := iss.Message
	if msg == "" {
		msg = iss.Code
	}
	return fmt.Sprintf("%s: %s", strings.ToUpper(string(iss.Severity)), msg)
}

func recommendationFor(ruleName string, ev evidence) string {
	switch ruleName {
	case "no-related-issues":
		return ""
	case "all-remediated":
		return "No further action required."
	case "critical-remaining":
		return fmt.Sprintf("Remediate %d remaining issue(s); critical barriers block conformance.", len(ev.remaining))
	case "minor-only-remaining":
		return "Address minor issues opportunistically."
	default:
		return fmt.Sprintf("Address %d remaining issue(s) to achieve full support.", len(ev.remaining))
	}
}

// overallConfidence is the mean per-criterion confidence boosted by up to
// FixedBoostMax, proportional to the fraction of findings fixed, capped at
// 100.
func (e *Evaluator) overallConfidence(confidenceSum, criteriaCount, fixed, total int) int {
	if criteriaCount == 0 {
		return 0
	}
	mean := confidenceSum / criteriaCount

	boost := 0
	if total > 0 {
		boost = e.config.FixedBoostMax * fixed / total
	}

	overall := mean + boost
	if overall > 100 {
		overall = 100
	}
	return overall
}

func remediationCovers(remediations []issue.Remediation, iss issue.Issue, criterionID string) bool {
	for _, r := range remediations {
		if r.Covers(iss, criterionID) {
			return true
		}
	}
	return false
}
