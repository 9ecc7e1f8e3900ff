package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/acrd/internal/acr"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
	"github.com/fyrsmithlabs/acrd/internal/issue"
)

func docWithStatus(name string, criterionID string, status conformance.Status, findings ...string) DocumentResult {
	return DocumentResult{
		FileName: name,
		JobID:    "job-" + name,
		Evaluation: &conformance.DocumentEvaluation{
			Edition: "vpat24-wcag",
			Analyses: []conformance.Analysis{
				{
					CriterionID: criterionID,
					Status:      status,
					Findings:    findings,
					RemainingIssues: func() []issue.Issue {
						if status == conformance.StatusSupports || status == conformance.StatusNotApplicable {
							return nil
						}
						out := make([]issue.Issue, len(findings))
						return out
					}(),
				},
			},
		},
	}
}

func TestAggregate_ScenarioC_Strategies(t *testing.T) {
	a := NewAggregator(nil)
	ctx := context.Background()

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.1.1", conformance.StatusSupports),
		docWithStatus("b.docx", "1.1.1", conformance.StatusSupports),
		docWithStatus("c.docx", "1.1.1", conformance.StatusDoesNotSupport, "CRITICAL: missing alt"),
	}

	conservative, err := a.Aggregate(ctx, docs, StrategyConservative)
	require.NoError(t, err)
	row, ok := conservative.CriterionByID("1.1.1")
	require.True(t, ok)
	assert.Equal(t, acr.LevelDoesNotSupport, row.CompositeConformanceLevel)

	optimistic, err := a.Aggregate(ctx, docs, StrategyOptimistic)
	require.NoError(t, err)
	row, ok = optimistic.CriterionByID("1.1.1")
	require.True(t, ok)
	// 2 of 3 documents support: at least half, not all.
	assert.Equal(t, acr.LevelPartiallySupports, row.CompositeConformanceLevel)
}

func TestAggregate_NotApplicableOnlyWhenAllNA(t *testing.T) {
	a := NewAggregator(nil)
	ctx := context.Background()

	allNA := []DocumentResult{
		docWithStatus("a.docx", "1.2.4", conformance.StatusNotApplicable),
		docWithStatus("b.docx", "1.2.4", conformance.StatusNotApplicable),
	}
	for _, strategy := range []Strategy{StrategyConservative, StrategyOptimistic} {
		report, err := a.Aggregate(ctx, allNA, strategy)
		require.NoError(t, err)
		row, _ := report.CriterionByID("1.2.4")
		assert.Equal(t, acr.LevelNotApplicable, row.CompositeConformanceLevel, strategy)
	}

	mixed := []DocumentResult{
		docWithStatus("a.docx", "1.2.4", conformance.StatusNotApplicable),
		docWithStatus("b.docx", "1.2.4", conformance.StatusSupports),
	}
	report, err := a.Aggregate(ctx, mixed, StrategyConservative)
	require.NoError(t, err)
	row, _ := report.CriterionByID("1.2.4")
	assert.Equal(t, acr.LevelSupports, row.CompositeConformanceLevel)
}

func TestAggregate_ConservativePrecedence(t *testing.T) {
	a := NewAggregator(nil)

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.4.3", conformance.StatusPartiallySupports, "SERIOUS: contrast"),
		docWithStatus("b.docx", "1.4.3", conformance.StatusSupports),
	}
	report, err := a.Aggregate(context.Background(), docs, StrategyConservative)
	require.NoError(t, err)
	row, _ := report.CriterionByID("1.4.3")
	assert.Equal(t, acr.LevelPartiallySupports, row.CompositeConformanceLevel)
}

func TestAggregate_MissingCriterionReadAsSupports(t *testing.T) {
	a := NewAggregator(nil)

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.1.1", conformance.StatusDoesNotSupport, "CRITICAL: x"),
		docWithStatus("b.docx", "1.4.3", conformance.StatusSupports), // never saw 1.1.1
	}
	report, err := a.Aggregate(context.Background(), docs, StrategyOptimistic)
	require.NoError(t, err)

	row, ok := report.CriterionByID("1.1.1")
	require.True(t, ok)
	require.Len(t, row.PerDocument, 2)

	var bDetail DocumentDetail
	for _, d := range row.PerDocument {
		if d.FileName == "b.docx" {
			bDetail = d
		}
	}
	assert.Equal(t, acr.LevelSupports, bDetail.Status)
	assert.Equal(t, 0, bDetail.IssueCount)
}

func TestAggregate_CompositeRemarks(t *testing.T) {
	a := NewAggregator(nil)

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.1.1", conformance.StatusSupports),
		docWithStatus("b.docx", "1.1.1", conformance.StatusDoesNotSupport,
			"CRITICAL: one", "CRITICAL: two", "SERIOUS: three", "MODERATE: four", "MINOR: five"),
	}
	report, err := a.Aggregate(context.Background(), docs, StrategyConservative)
	require.NoError(t, err)

	row, _ := report.CriterionByID("1.1.1")
	assert.Contains(t, row.CompositeRemarks, "1 of 2 documents (50%) fully support criterion 1.1.1.")
	assert.Contains(t, row.CompositeRemarks, "b.docx: CRITICAL: one; CRITICAL: two; SERIOUS: three")
	assert.Contains(t, row.CompositeRemarks, "...and 2 more")
	assert.NotContains(t, row.CompositeRemarks, "MINOR: five")
}

func TestAggregate_PerDocumentDetailAlwaysRetained(t *testing.T) {
	a := NewAggregator(nil)

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.1.1", conformance.StatusSupports),
		docWithStatus("b.docx", "1.1.1", conformance.StatusDoesNotSupport, "CRITICAL: x"),
	}
	report, err := a.Aggregate(context.Background(), docs, StrategyConservative)
	require.NoError(t, err)

	row, _ := report.CriterionByID("1.1.1")
	require.Len(t, row.PerDocument, 2)
	assert.Equal(t, "job-a.docx", row.PerDocument[0].JobID)
	assert.Equal(t, "job-b.docx", row.PerDocument[1].JobID)
}

func TestAggregate_IncompleteBatchAborts(t *testing.T) {
	a := NewAggregator(nil)

	docs := []DocumentResult{
		docWithStatus("a.docx", "1.1.1", conformance.StatusSupports),
		{FileName: "b.docx", JobID: "job-b"}, // evaluation never finished
	}
	_, err := a.Aggregate(context.Background(), docs, StrategyConservative)
	require.ErrorIs(t, err, ErrBatchIncomplete)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestAggregate_UnknownStrategy(t *testing.T) {
	a := NewAggregator(nil)
	_, err := a.Aggregate(context.Background(), nil, Strategy("majority"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown aggregation strategy")
}

// stubSource implements Source for fan-out tests.
type stubSource struct {
	name string
	eval *conformance.DocumentEvaluation
	err  error
}

func (s stubSource) Describe() (string, string) { return s.name, "job-" + s.name }

func (s stubSource) Fetch(ctx context.Context) (*conformance.DocumentEvaluation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.eval, nil
}

func TestAggregateSources_ParallelFetch(t *testing.T) {
	a := NewAggregator(nil)

	sources := make([]Source, 0, 4)
	for i := 0; i < 4; i++ {
		doc := docWithStatus(fmt.Sprintf("doc%d.docx", i), "1.1.1", conformance.StatusSupports)
		sources = append(sources, stubSource{name: doc.FileName, eval: doc.Evaluation})
	}

	report, err := a.AggregateSources(context.Background(), sources, StrategyConservative)
	require.NoError(t, err)
	assert.Equal(t, 4, report.DocumentCount)

	row, ok := report.CriterionByID("1.1.1")
	require.True(t, ok)
	assert.Equal(t, acr.LevelSupports, row.CompositeConformanceLevel)
	assert.Len(t, row.PerDocument, 4)
}

func TestAggregateSources_FetchFailureFailsBatch(t *testing.T) {
	a := NewAggregator(nil)

	boom := errors.New("upstream unavailable")
	sources := []Source{
		stubSource{name: "a.docx", eval: docWithStatus("a.docx", "1.1.1", conformance.StatusSupports).Evaluation},
		stubSource{name: "b.docx", err: boom},
	}

	_, err := a.AggregateSources(context.Background(), sources, StrategyConservative)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b.docx")
}
