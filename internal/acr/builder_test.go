package acr

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/acrd/internal/attribution"
	"github.com/fyrsmithlabs/acrd/internal/catalog"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
	"github.com/fyrsmithlabs/acrd/internal/issue"
)

const testCatalogYAML = `
criteria:
  - id: "1.1.1"
    name: "Non-text Content"
    level: "A"
    section: "1.1 Text Alternatives"
  - id: "1.4.3"
    name: "Contrast (Minimum)"
    level: "AA"
    section: "1.4 Distinguishable"
editions:
  - code: "vpat24-wcag"
    name: "Test edition"
    criteria_ids: ["1.1.1", "1.4.3"]
`

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestBuilder(t *testing.T) (*Builder, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.LoadBytes([]byte(testCatalogYAML))
	require.NoError(t, err)
	b, err := NewBuilder(cat, nil)
	require.NoError(t, err)
	b.WithClock(func() time.Time { return fixedTime }).
		WithIDFunc(func() string { return "acr-test-1" })
	return b, cat
}

func evaluate(t *testing.T, cat *catalog.Catalog, issues []issue.Issue, rems []issue.Remediation) *conformance.DocumentEvaluation {
	t.Helper()
	e, err := conformance.NewEvaluator(nil, cat, nil, nil)
	require.NoError(t, err)
	eval, err := e.EvaluateDocument(context.Background(), "vpat24-wcag", issues, rems)
	require.NoError(t, err)
	return eval
}

func TestBuild_MapsAnalysesToRows(t *testing.T) {
	b, cat := newTestBuilder(t)

	eval := evaluate(t, cat, []issue.Issue{
		{Code: "img-alt", Severity: issue.SeverityCritical, Message: "missing alt"},
	}, nil)

	doc, err := b.Build(BuildRequest{
		Edition:    "vpat24-wcag",
		Product:    ProductInfo{Name: "Widget Docs", Version: "2.1"},
		Evaluation: eval,
	})
	require.NoError(t, err)

	assert.Equal(t, "acr-test-1", doc.ID)
	assert.Equal(t, fixedTime, doc.GeneratedAt)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Criteria, 2)

	row, ok := doc.CriterionByID("1.1.1")
	require.True(t, ok)
	assert.Equal(t, LevelDoesNotSupport, row.ConformanceLevel)
	assert.Equal(t, attribution.TagAutomated, row.AttributionTag)
	assert.True(t, strings.HasPrefix(row.AttributedRemarks, "[AUTOMATED]"), row.AttributedRemarks)
	assert.Contains(t, row.Remarks, "CRITICAL: missing alt")

	clean, ok := doc.CriterionByID("1.4.3")
	require.True(t, ok)
	assert.Equal(t, LevelSupports, clean.ConformanceLevel)
	assert.NotEmpty(t, clean.AttributedRemarks)
}

func TestBuild_AttributionPrecedence(t *testing.T) {
	b, cat := newTestBuilder(t)
	eval := evaluate(t, cat, nil, nil)

	doc, err := b.Build(BuildRequest{
		Edition:    "vpat24-wcag",
		Product:    ProductInfo{Name: "Widget Docs"},
		Evaluation: eval,
		Verification: map[string]string{
			"1.1.1": attribution.VerifiedPass,
		},
		AIGenerated: map[string]bool{
			"1.1.1": true, // human verification must still win
			"1.4.3": true,
		},
	})
	require.NoError(t, err)

	verified, _ := doc.CriterionByID("1.1.1")
	assert.Equal(t, attribution.TagHumanVerified, verified.AttributionTag)
	assert.True(t, strings.HasPrefix(verified.AttributedRemarks, "[HUMAN-VERIFIED]"))

	ai, _ := doc.CriterionByID("1.4.3")
	assert.Equal(t, attribution.TagAISuggested, ai.AttributionTag)

	// A human-verified criterion adds manual verification to the methods.
	assert.Contains(t, doc.EvaluationMethods, "Manual verification")
	assert.Contains(t, doc.EvaluationMethods, "Automated accessibility testing")
}

func TestBuild_AltTextAINotice(t *testing.T) {
	b, cat := newTestBuilder(t)
	eval := evaluate(t, cat, nil, nil)

	doc, err := b.Build(BuildRequest{
		Edition:     "vpat24-wcag",
		Product:     ProductInfo{Name: "Widget Docs"},
		Evaluation:  eval,
		AIGenerated: map[string]bool{"1.1.1": true},
	})
	require.NoError(t, err)

	row, _ := doc.CriterionByID("1.1.1")
	assert.Contains(t, row.AttributedRemarks, "AI-Suggested - Requires Review")
}

func TestBuild_EditionMismatch(t *testing.T) {
	b, cat := newTestBuilder(t)
	eval := evaluate(t, cat, nil, nil)

	_, err := b.Build(BuildRequest{Edition: "vpat24-eu", Evaluation: eval})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edition")
}

func TestLevelFromStatus(t *testing.T) {
	assert.Equal(t, LevelSupports, LevelFromStatus(conformance.StatusSupports))
	assert.Equal(t, LevelPartiallySupports, LevelFromStatus(conformance.StatusPartiallySupports))
	assert.Equal(t, LevelDoesNotSupport, LevelFromStatus(conformance.StatusDoesNotSupport))
	assert.Equal(t, LevelNotApplicable, LevelFromStatus(conformance.StatusNotApplicable))
	// Absence of a conclusion reads as Not Applicable.
	assert.Equal(t, LevelNotApplicable, LevelFromStatus(conformance.Status("")))
}

func TestFinalize_RequiresAttributedRemarks(t *testing.T) {
	b, cat := newTestBuilder(t)
	eval := evaluate(t, cat, nil, nil)

	doc, err := b.Build(BuildRequest{
		Edition:    "vpat24-wcag",
		Product:    ProductInfo{Name: "Widget Docs"},
		Evaluation: eval,
	})
	require.NoError(t, err)

	require.NoError(t, Finalize(doc))
	assert.Equal(t, StatusFinal, doc.Status)
}

func TestFinalize_NamesOffendingCriteria(t *testing.T) {
	doc := &Document{
		Status: StatusDraft,
		Criteria: []Criterion{
			{ID: "1.1.1", AttributedRemarks: "[AUTOMATED] ok"},
			{ID: "1.4.3", AttributedRemarks: ""},
			{ID: "2.4.4", AttributedRemarks: "   "},
		},
	}

	err := Finalize(doc)
	require.ErrorIs(t, err, ErrMissingRemarks)
	assert.Contains(t, err.Error(), "1.4.3")
	assert.Contains(t, err.Error(), "2.4.4")
	assert.NotContains(t, err.Error(), "1.1.1,")
	assert.Equal(t, StatusDraft, doc.Status)
}
