package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/acrd/internal/acr"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
	"github.com/fyrsmithlabs/acrd/internal/issue"
)

func TestReadPayloads_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	content := `[
		{"kind": "raw-issue", "raw_issue": {"code": "img-alt", "severity": "critical", "message": "missing alt"}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	payloads, err := readPayloads([]string{path})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, issue.KindRawIssue, payloads[0].Kind)
	assert.Equal(t, "img-alt", payloads[0].RawIssue.Code)
}

func TestReadPayloads_MissingFile(t *testing.T) {
	_, err := readPayloads([]string{"/nonexistent/scan.json"})
	assert.Error(t, err)
}

func TestReadPayloads_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := readPayloads([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scan payloads")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.json")
	content := `{"edition": "vpat24-wcag", "analyses": [], "overall_confidence": 75}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	src := fileSource{path: path}
	name, jobID := src.Describe()
	assert.Equal(t, "eval.json", name)
	assert.Equal(t, path, jobID)

	eval, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vpat24-wcag", eval.Edition)
	assert.Equal(t, 75, eval.OverallConfidence)
}

func TestPrintEvaluationSummary_CountsUnmapped(t *testing.T) {
	doc := &acr.Document{
		ID:      "acr-1",
		Edition: "vpat24-wcag",
		Criteria: []acr.Criterion{
			{ID: "1.1.1", Level: "A", ConformanceLevel: acr.LevelSupports},
		},
	}
	eval := &conformance.DocumentEvaluation{
		Edition: "vpat24-wcag",
		Analyses: []conformance.Analysis{
			{CriterionID: "1.1.1", Status: conformance.StatusSupports, Confidence: 75},
		},
		TotalIssues:       2,
		OverallConfidence: 75,
		UnmappedIssues: []issue.Issue{
			{Code: "mystery-rule", Severity: issue.SeverityMinor},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printEvaluationSummary(&buf, doc, eval))

	out := buf.String()
	assert.Contains(t, out, "2 (0 fixed, 1 unmapped)")
	assert.NotContains(t, out, "%!")
	assert.Contains(t, out, "1.1.1")
	assert.Contains(t, out, "Supports")
}

func TestParseVersionArg(t *testing.T) {
	n, err := parseVersionArg("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = parseVersionArg("0")
	assert.Error(t, err)
	_, err = parseVersionArg("three")
	assert.Error(t, err)
}
