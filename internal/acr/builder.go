package acr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/acrd/internal/attribution"
	"github.com/fyrsmithlabs/acrd/internal/catalog"
	"github.com/fyrsmithlabs/acrd/internal/conformance"
)

// ErrMissingRemarks is returned by Finalize when criteria lack attributed
// remarks. The error message names the offending criterion ids.
var ErrMissingRemarks = errors.New("criteria missing attributed remarks")

// Default evaluation methods. Manual verification is appended once any
// criterion carries a human-verified tag.
const (
	methodAutomated = "Automated accessibility testing"
	methodManual    = "Manual verification"
)

// BuildRequest carries everything needed to assemble a report document.
type BuildRequest struct {
	Edition string
	Product ProductInfo

	// Evaluation holds the per-criterion analyses for the edition.
	Evaluation *conformance.DocumentEvaluation

	// Verification maps criterion id to its human verification status
	// (verified_pass / verified_fail / verified_partial, or empty).
	Verification map[string]string

	// AIGenerated marks criteria whose remarks were drafted by an AI
	// collaborator.
	AIGenerated map[string]bool
}

// Builder assembles report documents from conformance analyses. The clock
// is injectable so tests get deterministic timestamps.
type Builder struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() string
}

// NewBuilder creates a builder.
func NewBuilder(cat *catalog.Catalog, logger *zap.Logger) (*Builder, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		catalog: cat,
		logger:  logger,
		clock:   time.Now,
		newID:   func() string { return uuid.New().String() },
	}, nil
}

// WithClock overrides the clock. For tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithIDFunc overrides document id generation. For tests.
func (b *Builder) WithIDFunc(newID func() string) *Builder {
	b.newID = newID
	return b
}

// Build assembles a draft document: one row per edition criterion, in
// catalog order, each with conformance level, remarks, and attribution.
func (b *Builder) Build(req BuildRequest) (*Document, error) {
	if req.Evaluation == nil {
		return nil, errors.New("evaluation is required")
	}
	if req.Evaluation.Edition != req.Edition {
		return nil, fmt.Errorf("evaluation is for edition %q, not %q", req.Evaluation.Edition, req.Edition)
	}

	criteria := b.catalog.CriteriaForEdition(req.Edition)
	rows := make([]Criterion, 0, len(criteria))
	humanVerified := false

	for _, crit := range criteria {
		row := Criterion{
			ID:    crit.ID,
			Name:  crit.Name,
			Level: string(crit.Level),
		}

		analysis, ok := req.Evaluation.AnalysisByID(crit.ID)
		if ok {
			row.ConformanceLevel = LevelFromStatus(analysis.Status)
			row.Remarks = remarksFromAnalysis(analysis)
		} else {
			row.ConformanceLevel = LevelNotApplicable
			row.Remarks = "Not evaluated for this product."
		}

		tag := attribution.DetermineTag(req.Verification[crit.ID], req.AIGenerated[crit.ID])
		row.AttributionTag = tag
		row.AttributedRemarks = attribution.FormatRemark(row.Remarks, tag, attribution.IsAltTextCriterion(crit.ID))
		if tag == attribution.TagHumanVerified {
			humanVerified = true
		}

		rows = append(rows, row)
	}

	methods := []string{methodAutomated}
	if humanVerified {
		methods = append(methods, methodManual)
	}

	doc := &Document{
		ID:                b.newID(),
		Edition:           req.Edition,
		ProductInfo:       req.Product,
		EvaluationMethods: methods,
		Criteria:          rows,
		GeneratedAt:       b.clock(),
		Version:           1,
		Status:            StatusDraft,
	}

	b.logger.Debug("built report document",
		zap.String("id", doc.ID),
		zap.String("edition", doc.Edition),
		zap.Int("criteria", len(doc.Criteria)),
	)
	return doc, nil
}

// remarksFromAnalysis joins findings and recommendation into report remarks.
func remarksFromAnalysis(a conformance.Analysis) string {
	parts := make([]string, 0, 2)
	if len(a.Findings) > 0 {
		parts = append(parts, strings.Join(a.Findings, " "))
	} else if a.Status == conformance.StatusSupports {
		parts = append(parts, "No issues detected.")
	}
	if a.Recommendation != "" {
		parts = append(parts, a.Recommendation)
	}
	return strings.Join(parts, " ")
}

// Finalize transitions a document to final. Every criterion must carry
// non-empty attributed remarks first; this is the disclosure gate the
// downstream renderer relies on.
func Finalize(doc *Document) error {
	var missing []string
	for _, c := range doc.Criteria {
		if strings.TrimSpace(c.AttributedRemarks) == "" {
			missing = append(missing, c.ID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRemarks, strings.Join(missing, ", "))
	}
	doc.Status = StatusFinal
	return nil
}
