package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/acrd/internal/acr"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
)

const instrumentationName = "github.com/fyrsmithlabs/acrd/internal/batch"

// ErrBatchIncomplete is returned when aggregation is attempted before every
// document in the batch has a finished evaluation.
var ErrBatchIncomplete = errors.New("batch is incomplete")

// maxRemarkIssuesPerDocument caps the representative issues quoted per
// failing document in composite remarks.
const maxRemarkIssuesPerDocument = 3

// Source supplies one document's evaluation. Fetch may perform I/O; the
// aggregator parallelizes fetches and fails the batch on the first error.
type Source interface {
	// Describe identifies the document within the batch.
	Describe() (fileName, jobID string)

	// Fetch returns the document's finished evaluation.
	Fetch(ctx context.Context) (*conformance.DocumentEvaluation, error)
}

// Aggregator combines per-document evaluations into composite criteria.
// Stateless; safe for concurrent use.
type Aggregator struct {
	logger *zap.Logger

	// Telemetry
	tracer           trace.Tracer
	meter            metric.Meter
	aggregateCounter metric.Int64Counter
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Aggregator{
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	a.initMetrics()

	return a
}

// initMetrics initializes OpenTelemetry metrics.
func (a *Aggregator) initMetrics() {
	var err error

	a.aggregateCounter, err = a.meter.Int64Counter(
		"acrd.batch.aggregations_total",
		metric.WithDescription("Total number of batch aggregations"),
		metric.WithUnit("{aggregation}"),
	)
	if err != nil {
		a.logger.Warn("failed to create aggregation counter", zap.Error(err))
	}
}

// AggregateSources fetches every document's evaluation in parallel, then
// aggregates. Any fetch failure fails the whole batch.
func (a *Aggregator) AggregateSources(ctx context.Context, sources []Source, strategy Strategy) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "batch.aggregate_sources")
	defer span.End()

	span.SetAttributes(
		attribute.Int("document_count", len(sources)),
		attribute.String("strategy", string(strategy)),
	)

	docs := make([]DocumentResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			fileName, jobID := src.Describe()
			eval, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("fetch %s (job %s): %w", fileName, jobID, err)
			}
			docs[i] = DocumentResult{FileName: fileName, JobID: jobID, Evaluation: eval}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return a.Aggregate(ctx, docs, strategy)
}

// Aggregate combines finished per-document evaluations into one composite
// per criterion. Every document must carry an evaluation; an incomplete
// batch aborts before any composite is computed.
func (a *Aggregator) Aggregate(ctx context.Context, docs []DocumentResult, strategy Strategy) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "batch.aggregate")
	defer span.End()

	span.SetAttributes(
		attribute.Int("document_count", len(docs)),
		attribute.String("strategy", string(strategy)),
	)

	if _, err := ParseStrategy(string(strategy)); err != nil {
		span.RecordError(err)
		return nil, err
	}

	completed := 0
	for _, doc := range docs {
		if doc.Evaluation != nil {
			completed++
		}
	}
	if completed != len(docs) {
		err := fmt.Errorf("%w: %d of %d documents finished", ErrBatchIncomplete, completed, len(docs))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := &Report{
		Strategy:      strategy,
		DocumentCount: len(docs),
	}

	for _, id := range criterionUnion(docs) {
		composite := a.aggregateCriterion(id, docs, strategy)
		report.Criteria = append(report.Criteria, composite)
	}

	if a.aggregateCounter != nil {
		a.aggregateCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("strategy", string(strategy)),
			attribute.Int("document_count", len(docs)),
		))
	}

	a.logger.Info("aggregated batch",
		zap.Int("documents", len(docs)),
		zap.Int("criteria", len(report.Criteria)),
		zap.String("strategy", string(strategy)),
	)

	span.SetAttributes(attribute.Int("criteria_count", len(report.Criteria)))
	return report, nil
}

// criterionUnion returns every criterion id observed in any document,
// sorted for deterministic output.
func criterionUnion(docs []DocumentResult) []string {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, analysis := range doc.Evaluation.Analyses {
			seen[analysis.CriterionID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Aggregator) aggregateCriterion(criterionID string, docs []DocumentResult, strategy Strategy) AggregateCriterion {
	composite := AggregateCriterion{CriterionID: criterionID}

	for _, doc := range docs {
		analysis, ok := doc.Evaluation.AnalysisByID(criterionID)
		if !ok {
			composite.PerDocument = append(composite.PerDocument, missingDocumentDetail(doc))
			continue
		}
		composite.PerDocument = append(composite.PerDocument, DocumentDetail{
			FileName:   doc.FileName,
			JobID:      doc.JobID,
			Status:     acr.LevelFromStatus(analysis.Status),
			IssueCount: len(analysis.RemainingIssues),
			Issues:     analysis.Findings,
		})
	}

	composite.CompositeConformanceLevel = compositeLevel(composite.PerDocument, strategy)
	composite.CompositeRemarks = compositeRemarks(criterionID, composite.PerDocument)
	return composite
}

// missingDocumentDetail is the policy for a document that never evaluated a
// criterion: absence of detected issues is read as compliance. This carries
// compliance implications and is pending confirmation from domain owners;
// keep the policy in this one place.
func missingDocumentDetail(doc DocumentResult) DocumentDetail {
	return DocumentDetail{
		FileName:   doc.FileName,
		JobID:      doc.JobID,
		Status:     acr.LevelSupports,
		IssueCount: 0,
	}
}

func compositeLevel(details []DocumentDetail, strategy Strategy) acr.ConformanceLevel {
	if len(details) == 0 {
		return acr.LevelNotApplicable
	}

	allNA := true
	anyDoesNot := false
	anyPartial := false
	supports := 0
	for _, d := range details {
		if d.Status != acr.LevelNotApplicable {
			allNA = false
		}
		switch d.Status {
		case acr.LevelDoesNotSupport:
			anyDoesNot = true
		case acr.LevelPartiallySupports:
			anyPartial = true
		case acr.LevelSupports:
			supports++
		}
	}

	if allNA {
		return acr.LevelNotApplicable
	}

	switch strategy {
	case StrategyOptimistic:
		if supports == len(details) {
			return acr.LevelSupports
		}
		if supports*2 >= len(details) {
			return acr.LevelPartiallySupports
		}
		return acr.LevelDoesNotSupport
	default: // conservative
		if anyDoesNot {
			return acr.LevelDoesNotSupport
		}
		if anyPartial {
			return acr.LevelPartiallySupports
		}
		return acr.LevelSupports
	}
}

// compositeRemarks states how many documents fully support the criterion,
// then quotes up to three representative issues per failing document.
func compositeRemarks(criterionID string, details []DocumentDetail) string {
	total := len(details)
	supports := 0
	for _, d := range details {
		if d.Status == acr.LevelSupports {
			supports++
		}
	}

	percent := 0
	if total > 0 {
		percent = supports * 100 / total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d documents (%d%%) fully support criterion %s.", supports, total, percent, criterionID)

	for _, d := range details {
		if d.Status == acr.LevelSupports || d.Status == acr.LevelNotApplicable {
			continue
		}
		quoted := d.Issues
		more := 0
		if len(quoted) > maxRemarkIssuesPerDocument {
			more = len(quoted) - maxRemarkIssuesPerDocument
			quoted = quoted[:maxRemarkIssuesPerDocument]
		}
		fmt.Fprintf(&b, " %s: %s", d.FileName, strings.Join(quoted, "; "))
		if more > 0 {
			fmt.Fprintf(&b, " ...and %d more", more)
		}
	}
	return b.String()
}
