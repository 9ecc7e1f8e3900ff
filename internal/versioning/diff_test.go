package versioning

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/acrd/internal/acr"
)

func testDocument() acr.Document {
	return acr.Document{
		ID:      "acr-1",
		Edition: "vpat24-wcag",
		ProductInfo: acr.ProductInfo{
			Name:    "Widget",
			Version: "2.0",
			Vendor:  "Acme",
		},
		Criteria: []acr.Criterion{
			{ID: "1.1.1", Name: "Non-text Content", Level: "A", ConformanceLevel: acr.LevelSupports, Remarks: "No issues detected."},
			{ID: "1.4.3", Name: "Contrast (Minimum)", Level: "AA", ConformanceLevel: acr.LevelDoesNotSupport, Remarks: "CRITICAL: low contrast"},
		},
		Status: acr.StatusDraft,
	}
}

func TestDiffDocuments_FirstVersion(t *testing.T) {
	doc := testDocument()

	changes := diffDocuments(nil, &doc)

	require.Len(t, changes, 1)
	assert.Equal(t, "document", changes[0].Field)
	assert.Nil(t, changes[0].Previous)
	assert.Equal(t, "created", changes[0].New)
}

func TestDiffDocuments_NoChanges(t *testing.T) {
	a := testDocument()
	b := testDocument()

	assert.Empty(t, diffDocuments(&a, &b))
}

func TestDiffDocuments_StatusAndEdition(t *testing.T) {
	a := testDocument()
	b := testDocument()
	b.Status = acr.StatusFinal
	b.Edition = "vpat24-508"

	changes := diffDocuments(&a, &b)
	require.Len(t, changes, 2)

	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, "draft", changes[0].Previous)
	assert.Equal(t, "final", changes[0].New)

	assert.Equal(t, "edition", changes[1].Field)
	assert.Equal(t, "vpat24-wcag", changes[1].Previous)
	assert.Equal(t, "vpat24-508", changes[1].New)
}

func TestDiffDocuments_ProductInfo(t *testing.T) {
	a := testDocument()
	b := testDocument()
	b.ProductInfo.Name = "Widget Pro"
	b.ProductInfo.Vendor = "Acme Corp"
	b.ProductInfo.EvaluatedAt = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	changes := diffDocuments(&a, &b)
	require.Len(t, changes, 3)

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{"productInfo.name", "productInfo.vendor", "productInfo.evaluatedAt"}, fields)
}

func TestDiffDocuments_CriterionLevelAndRemarks(t *testing.T) {
	a := testDocument()
	b := testDocument()
	b.Criteria[1].ConformanceLevel = acr.LevelSupports
	b.Criteria[1].Remarks = "All 1 issue(s) have been remediated"

	changes := diffDocuments(&a, &b)
	require.Len(t, changes, 2)

	assert.Equal(t, "criteria.1.4.3.conformanceLevel", changes[0].Field)
	assert.Equal(t, "Does Not Support", changes[0].Previous)
	assert.Equal(t, "Supports", changes[0].New)

	assert.Equal(t, "criteria.1.4.3.remarks", changes[1].Field)
	assert.Equal(t, "CRITICAL: low contrast", changes[1].Previous)
	assert.Equal(t, "All 1 issue(s) have been remediated", changes[1].New)
}

func TestDiffDocuments_CriterionAddedAndRemoved(t *testing.T) {
	a := testDocument()
	b := testDocument()
	b.Criteria = []acr.Criterion{
		a.Criteria[0],
		{ID: "2.4.4", Name: "Link Purpose (In Context)", Level: "A", ConformanceLevel: acr.LevelSupports},
	}

	changes := diffDocuments(&a, &b)
	require.Len(t, changes, 2)

	assert.Equal(t, "criteria.1.4.3", changes[0].Field)
	assert.Equal(t, "present", changes[0].Previous)
	assert.Equal(t, "removed", changes[0].New)

	assert.Equal(t, "criteria.2.4.4", changes[1].Field)
	assert.Nil(t, changes[1].Previous)
	assert.Equal(t, "added", changes[1].New)
}

func TestDiffDocuments_LongRemarksTruncated(t *testing.T) {
	a := testDocument()
	b := testDocument()
	b.Criteria[0].Remarks = strings.Repeat("x", 250)

	changes := diffDocuments(&a, &b)
	require.Len(t, changes, 1)

	got, ok := changes[0].New.(string)
	require.True(t, ok)
	assert.Len(t, got, maxRemarkDiffLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateRemark_CutsOnRuneBoundary(t *testing.T) {
	// The leading ASCII byte shifts every two-byte rune to an odd offset,
	// so the byte limit lands mid-rune and the cut must back off.
	long := "a" + strings.Repeat("ü", maxRemarkDiffLen)
	require.False(t, utf8.RuneStart(long[maxRemarkDiffLen]))

	got := truncateRemark(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxRemarkDiffLen+3)
	assert.NotContains(t, got, string(utf8.RuneError))

	short := "ok"
	assert.Equal(t, short, truncateRemark(short))
}

func TestSummarize(t *testing.T) {
	changes := []Change{
		{Field: "status"},
		{Field: "productInfo.name"},
		{Field: "criteria.1.4.3.conformanceLevel"},
		{Field: "criteria.1.4.3.remarks"},
		{Field: "criteria.2.4.4"},
	}

	s := summarize(changes)
	assert.Equal(t, 5, s.FieldsChanged)
	assert.Equal(t, 2, s.CriteriaTouched)
	assert.True(t, s.StatusChanged)

	s = summarize(nil)
	assert.Zero(t, s.FieldsChanged)
	assert.Zero(t, s.CriteriaTouched)
	assert.False(t, s.StatusChanged)
}
